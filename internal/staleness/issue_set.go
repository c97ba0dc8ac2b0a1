package staleness

// IssueWorkingSet holds the tracking issues fetched at the start of a run.
// Entries are removed as their branch is processed, so whatever remains after the
// branch walk is the orphaned set. Several issues may share a title.
type IssueWorkingSet struct {
	issues []TrackingIssue
}

// NewIssueWorkingSet copies issues into a new working set, keeping fetch order.
func NewIssueWorkingSet(issues []TrackingIssue) *IssueWorkingSet {
	duplicated := make([]TrackingIssue, len(issues))
	copy(duplicated, issues)
	return &IssueWorkingSet{issues: duplicated}
}

// Match returns every issue whose title equals title.
func (set *IssueWorkingSet) Match(title string) []TrackingIssue {
	matches := []TrackingIssue{}
	for _, issue := range set.issues {
		if issue.Title == title {
			matches = append(matches, issue)
		}
	}
	return matches
}

// Remove drops every issue titled title and returns how many were dropped.
func (set *IssueWorkingSet) Remove(title string) int {
	retained := set.issues[:0]
	for _, issue := range set.issues {
		if issue.Title != title {
			retained = append(retained, issue)
		}
	}
	removed := len(set.issues) - len(retained)
	set.issues = retained
	return removed
}

// Remaining returns the issues not yet removed, in fetch order.
func (set *IssueWorkingSet) Remaining() []TrackingIssue {
	remaining := make([]TrackingIssue, len(set.issues))
	copy(remaining, set.issues)
	return remaining
}

// Len reports how many issues remain.
func (set *IssueWorkingSet) Len() int {
	return len(set.issues)
}
