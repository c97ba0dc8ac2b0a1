package staleness

import "fmt"

const lastCommitTemplateConstant = "Last commit was %d days ago"

// PlainBranchPresenter renders branch lines without terminal styling.
type PlainBranchPresenter struct{}

// FormatBranchHeader returns the branch name unchanged.
func (PlainBranchPresenter) FormatBranchHeader(branchName string, _ Classification) string {
	return branchName
}

// FormatLastCommit describes the commit age in days.
func (PlainBranchPresenter) FormatLastCommit(ageDays int, _ Classification) string {
	return fmt.Sprintf(lastCommitTemplateConstant, ageDays)
}
