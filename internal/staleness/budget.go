package staleness

import (
	"context"

	"go.uber.org/zap"

	"github.com/temirov/stale-branches/internal/githubcli"
)

const (
	budgetCalculationFailedMessageConstant = "Unable to count open tracking issues; no new issues will be created"
	budgetCalculatedMessageConstant        = "Issue budget calculated"
	logFieldMaxIssuesConstant              = "max_issues"
	logFieldOpenIssuesConstant             = "open_issues"
	logFieldIssueBudgetConstant            = "issue_budget"
)

// CalculateIssueBudget returns how many tracking issues a run may open: maxIssues minus the
// distinct open issues carrying label, floored at zero. A failed lookup yields zero.
func CalculateIssueBudget(executionContext context.Context, lister IssueLister, repository string, maxIssues int, label string, logger *zap.Logger) int {
	if logger == nil {
		logger = zap.NewNop()
	}

	issues, listError := lister.ListIssues(executionContext, repository, githubcli.IssueListOptions{Label: label, State: githubcli.IssueStateOpen})
	return issueBudgetFromListing(maxIssues, issues, listError, logger)
}

// issueBudgetFromListing derives the budget from one open-issue listing. A failed listing yields zero.
func issueBudgetFromListing(maxIssues int, issues []githubcli.Issue, listError error, logger *zap.Logger) int {
	if logger == nil {
		logger = zap.NewNop()
	}
	if listError != nil {
		logger.Error(budgetCalculationFailedMessageConstant, zap.Error(listError))
		return 0
	}

	distinctIssueNumbers := make(map[int]struct{}, len(issues))
	for _, issue := range issues {
		distinctIssueNumbers[issue.Number] = struct{}{}
	}

	budget := max(0, maxIssues-len(distinctIssueNumbers))
	logger.Info(
		budgetCalculatedMessageConstant,
		zap.Int(logFieldMaxIssuesConstant, maxIssues),
		zap.Int(logFieldOpenIssuesConstant, len(distinctIssueNumbers)),
		zap.Int(logFieldIssueBudgetConstant, budget),
	)
	return budget
}

// IssueBudget counts the tracking issues a run may still create. It never grows.
type IssueBudget struct {
	remaining int
}

// NewIssueBudget starts a budget; negative values are treated as zero.
func NewIssueBudget(remaining int) *IssueBudget {
	return &IssueBudget{remaining: max(0, remaining)}
}

// Remaining returns the issues still allowed.
func (budget *IssueBudget) Remaining() int {
	return budget.remaining
}

// Consume takes one issue from the budget and reports whether one was available.
func (budget *IssueBudget) Consume() bool {
	if budget.remaining <= 0 {
		return false
	}
	budget.remaining--
	return true
}
