// Package githubcli wraps the GitHub CLI for branch and issue housekeeping.
//
// Every operation is a typed request/response pair over gh api (or gh repo view),
// executed through execshell so interactions with GitHub can be stubbed in tests.
// Paginated endpoints are requested with --paginate and decoded page by page.
package githubcli
