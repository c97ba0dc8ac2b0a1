// Package report exports stale-branch run reports as CSV, JSON or YAML and
// publishes the branch lists as GitHub Actions step outputs.
package report
