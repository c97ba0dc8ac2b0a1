package staleness

import (
	"context"

	"github.com/temirov/stale-branches/internal/githubcli"
)

// IssueLister lists issues of a repository.
type IssueLister interface {
	ListIssues(executionContext context.Context, repository string, options githubcli.IssueListOptions) ([]githubcli.Issue, error)
}

// HostClient exposes the GitHub operations a reconciliation run consumes.
type HostClient interface {
	IssueLister
	ListBranches(executionContext context.Context, repository string) ([]githubcli.Branch, error)
	ResolveCommit(executionContext context.Context, repository string, commitSHA string) (githubcli.Commit, error)
	CompareBranches(executionContext context.Context, repository string, base string, head string) (githubcli.BranchComparison, error)
	ResolveRateLimit(executionContext context.Context) (githubcli.RateLimit, error)
	CreateIssue(executionContext context.Context, repository string, request githubcli.IssueRequest) (githubcli.Issue, error)
	CommentOnIssue(executionContext context.Context, repository string, issueNumber int, body string) error
	CloseIssue(executionContext context.Context, repository string, issueNumber int) (githubcli.IssueState, error)
	DeleteBranch(executionContext context.Context, repository string, branchName string) error
	ResolveRepoMetadata(executionContext context.Context, repository string) (githubcli.RepositoryMetadata, error)
}

// BranchPresenter renders the header of a branch log group and its last-commit line.
type BranchPresenter interface {
	FormatBranchHeader(branchName string, classification Classification) string
	FormatLastCommit(ageDays int, classification Classification) string
}

// ReportExporter publishes the report of a finished run.
type ReportExporter interface {
	Export(report Report) error
}
