package staleness

import (
	"slices"
	"time"
)

const (
	// RateLimitThresholdPercentage is the API usage above which a run stops.
	RateLimitThresholdPercentage = 95
	// UnknownCommitterLogin stands in for the committer when tagging is off or the lookup failed.
	UnknownCommitterLogin = "Unknown"
)

// Classification places a branch relative to the staleness thresholds.
type Classification string

// Branch classifications.
const (
	ClassificationActive         Classification = Classification("active")
	ClassificationStale          Classification = Classification("stale")
	ClassificationDeleteEligible Classification = Classification("delete-eligible")
)

// Classify maps a commit age in days onto a classification.
// An age equal to daysBeforeStale is stale; deletion needs an age strictly above daysBeforeDelete.
func Classify(ageDays int, daysBeforeStale int, daysBeforeDelete int) Classification {
	switch {
	case ageDays > daysBeforeDelete:
		return ClassificationDeleteEligible
	case ageDays >= daysBeforeStale:
		return ClassificationStale
	default:
		return ClassificationActive
	}
}

// IsStale reports whether the classification warrants a tracking issue.
func (classification Classification) IsStale() bool {
	return classification == ClassificationStale || classification == ClassificationDeleteEligible
}

// TrackingIssue is an open issue recording the staleness of one branch.
type TrackingIssue struct {
	Title  string
	Number int
}

// RateLimitStatus carries API usage as a percentage of the quota.
type RateLimitStatus struct {
	Used int
}

// BranchComparison decides whether a delete-eligible branch must be preserved.
type BranchComparison struct {
	Save   bool
	Reason string
}

// CloseResult reports the outcome of closing an issue.
type CloseResult struct {
	Closed bool
}

// Report accumulates the outcome of a run. It is returned even when the run stops early.
type Report struct {
	RunID                string   `json:"run_id" yaml:"run_id"`
	Repository           string   `json:"repository" yaml:"repository"`
	DryRun               bool     `json:"dry_run" yaml:"dry_run"`
	StaleBranches        []string `json:"stale_branches" yaml:"stale_branches"`
	DeletedBranches      []string `json:"deleted_branches" yaml:"deleted_branches"`
	OrphanedIssuesClosed []int    `json:"orphaned_issues_closed" yaml:"orphaned_issues_closed"`
	AssessedBranches     int      `json:"assessed_branches" yaml:"assessed_branches"`
	TotalBranches        int      `json:"total_branches" yaml:"total_branches"`
	RateLimitAborted     bool     `json:"rate_limit_aborted" yaml:"rate_limit_aborted"`
}

func newReport(runIdentifier string, configuration Configuration) Report {
	return Report{
		RunID:                runIdentifier,
		Repository:           configuration.Repository,
		DryRun:               configuration.DryRun,
		StaleBranches:        []string{},
		DeletedBranches:      []string{},
		OrphanedIssuesClosed: []int{},
	}
}

func (report *Report) recordStale(branchName string) {
	if slices.Contains(report.StaleBranches, branchName) {
		return
	}
	report.StaleBranches = append(report.StaleBranches, branchName)
}

func (report *Report) recordDeleted(branchName string) {
	if slices.Contains(report.DeletedBranches, branchName) {
		return
	}
	report.DeletedBranches = append(report.DeletedBranches, branchName)
}

// Clock abstracts time-dependent functionality for deterministic testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the standard library.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}
