package staleness

import (
	"fmt"
	"strings"
)

const (
	issueTitleTemplateConstant        = "[%s] is STALE"
	inactivityLineTemplateConstant    = "Branch `%s` has had no activity for %d days."
	committerLineTemplateConstant     = "The last commit was made by @%s."
	deletionCountdownTemplateConstant = "This branch will be automatically deleted in %d days."
	deletionNextRunMessageConstant    = "This branch will be automatically deleted on the next run."
	labelFooterTemplateConstant       = "This issue is tracked with the `%s` label and closes automatically once the branch sees new commits or is deleted."
	paragraphSeparatorConstant        = "\n\n"
)

// IssueTitle derives the tracking issue title for a branch. One title identifies one branch.
func IssueTitle(branchName string) string {
	return fmt.Sprintf(issueTitleTemplateConstant, branchName)
}

// IssueTextDetails carries what issue bodies and comments describe.
type IssueTextDetails struct {
	BranchName       string
	AgeDays          int
	CommitterLogin   string
	TagLastCommitter bool
	DaysBeforeDelete int
	Label            string
}

// BuildIssueBody composes the body of a new tracking issue.
func BuildIssueBody(details IssueTextDetails) string {
	paragraphs := details.statusParagraphs()
	paragraphs = append(paragraphs, fmt.Sprintf(labelFooterTemplateConstant, details.Label))
	return strings.Join(paragraphs, paragraphSeparatorConstant)
}

// BuildIssueComment composes an update comment for mode. Mode off yields an empty comment.
func BuildIssueComment(details IssueTextDetails, mode CommentMode) string {
	switch mode {
	case CommentModeBrief:
		return details.inactivityLine()
	case CommentModeFull:
		return strings.Join(details.statusParagraphs(), paragraphSeparatorConstant)
	default:
		return ""
	}
}

func (details IssueTextDetails) statusParagraphs() []string {
	paragraphs := []string{details.inactivityLine()}
	if details.TagLastCommitter && len(details.CommitterLogin) > 0 && details.CommitterLogin != UnknownCommitterLogin {
		paragraphs = append(paragraphs, fmt.Sprintf(committerLineTemplateConstant, details.CommitterLogin))
	}
	return append(paragraphs, details.deletionLine())
}

func (details IssueTextDetails) inactivityLine() string {
	return fmt.Sprintf(inactivityLineTemplateConstant, details.BranchName, details.AgeDays)
}

func (details IssueTextDetails) deletionLine() string {
	daysUntilDelete := details.DaysBeforeDelete - details.AgeDays
	if daysUntilDelete <= 0 {
		return deletionNextRunMessageConstant
	}
	return fmt.Sprintf(deletionCountdownTemplateConstant, daysUntilDelete)
}
