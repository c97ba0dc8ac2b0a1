package githubcli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	branchFieldNameConstant              = "branch"
	commitFieldNameConstant              = "commit"
	baseFieldNameConstant                = "base"
	branchesResourcePathConstant         = "branches?per_page=100"
	commitResourceTemplateConstant       = "commits/%s"
	compareResourceTemplateConstant      = "compare/%s...%s"
	branchReferenceResourceTemplate      = "git/refs/heads/%s"
	listBranchesOperationNameConstant    = OperationName("ListBranches")
	resolveCommitOperationNameConstant   = OperationName("ResolveCommit")
	compareBranchesOperationNameConstant = OperationName("CompareBranches")
	deleteBranchOperationNameConstant    = OperationName("DeleteBranch")
	comparisonStatusAheadConstant        = "ahead"
	comparisonStatusDivergedConstant     = "diverged"
	comparisonStatusBehindConstant       = "behind"
	comparisonStatusIdenticalConstant    = "identical"
)

// Branch is a repository branch together with its tip commit.
type Branch struct {
	Name      string
	CommitSHA string
	Protected bool
}

// Commit carries the committer details of a single commit.
type Commit struct {
	SHA            string
	CommitterDate  time.Time
	CommitterLogin string
}

// BranchComparison summarises how a head branch relates to a base branch.
type BranchComparison struct {
	Status   string
	AheadBy  int
	BehindBy int
}

// HasUniqueCommits reports whether the head carries commits that the base does not contain.
func (comparison BranchComparison) HasUniqueCommits() bool {
	switch comparison.Status {
	case comparisonStatusAheadConstant, comparisonStatusDivergedConstant:
		return true
	case comparisonStatusBehindConstant, comparisonStatusIdenticalConstant:
		return false
	default:
		return comparison.AheadBy > 0
	}
}

// ListBranches enumerates every branch of the repository across all pages.
func (client *Client) ListBranches(executionContext context.Context, repository string) ([]Branch, error) {
	repositoryIdentifier, validationError := requireRepository(repository)
	if validationError != nil {
		return nil, validationError
	}

	output, executionError := client.executeAPI(executionContext, listBranchesOperationNameConstant, repositoryEndpoint(repositoryIdentifier, branchesResourcePathConstant), paginateFlagConstant)
	if executionError != nil {
		return nil, executionError
	}

	type branchResponse struct {
		Name   string `json:"name"`
		Commit struct {
			SHA string `json:"sha"`
		} `json:"commit"`
		Protected bool `json:"protected"`
	}

	responses, decodingError := decodePaginatedArray[branchResponse](listBranchesOperationNameConstant, output)
	if decodingError != nil {
		return nil, decodingError
	}

	branches := make([]Branch, 0, len(responses))
	for _, response := range responses {
		branches = append(branches, Branch{Name: response.Name, CommitSHA: response.Commit.SHA, Protected: response.Protected})
	}
	return branches, nil
}

// ResolveCommit loads the committer date and login of a commit.
// The login falls back to the author account when the committer is not linked to a GitHub user.
func (client *Client) ResolveCommit(executionContext context.Context, repository string, commitSHA string) (Commit, error) {
	repositoryIdentifier, validationError := requireRepository(repository)
	if validationError != nil {
		return Commit{}, validationError
	}
	trimmedCommitSHA := strings.TrimSpace(commitSHA)
	if len(trimmedCommitSHA) == 0 {
		return Commit{}, InvalidInputError{FieldName: commitFieldNameConstant, Message: requiredValueMessageConstant}
	}

	endpoint := repositoryEndpoint(repositoryIdentifier, fmt.Sprintf(commitResourceTemplateConstant, trimmedCommitSHA))
	output, executionError := client.executeAPI(executionContext, resolveCommitOperationNameConstant, endpoint)
	if executionError != nil {
		return Commit{}, executionError
	}

	var response struct {
		SHA    string `json:"sha"`
		Commit struct {
			Committer struct {
				Date time.Time `json:"date"`
			} `json:"committer"`
		} `json:"commit"`
		Author *struct {
			Login string `json:"login"`
		} `json:"author"`
		Committer *struct {
			Login string `json:"login"`
		} `json:"committer"`
	}

	if decodingError := json.Unmarshal([]byte(output), &response); decodingError != nil {
		return Commit{}, ResponseDecodingError{Operation: resolveCommitOperationNameConstant, Cause: decodingError}
	}

	commit := Commit{SHA: response.SHA, CommitterDate: response.Commit.Committer.Date}
	if response.Committer != nil {
		commit.CommitterLogin = response.Committer.Login
	}
	if len(commit.CommitterLogin) == 0 && response.Author != nil {
		commit.CommitterLogin = response.Author.Login
	}
	return commit, nil
}

// CompareBranches compares head against base using the GitHub compare API.
func (client *Client) CompareBranches(executionContext context.Context, repository string, base string, head string) (BranchComparison, error) {
	repositoryIdentifier, validationError := requireRepository(repository)
	if validationError != nil {
		return BranchComparison{}, validationError
	}
	trimmedBase := strings.TrimSpace(base)
	if len(trimmedBase) == 0 {
		return BranchComparison{}, InvalidInputError{FieldName: baseFieldNameConstant, Message: requiredValueMessageConstant}
	}
	trimmedHead := strings.TrimSpace(head)
	if len(trimmedHead) == 0 {
		return BranchComparison{}, InvalidInputError{FieldName: branchFieldNameConstant, Message: requiredValueMessageConstant}
	}

	endpoint := repositoryEndpoint(repositoryIdentifier, fmt.Sprintf(compareResourceTemplateConstant, escapeReferencePath(trimmedBase), escapeReferencePath(trimmedHead)))
	output, executionError := client.executeAPI(executionContext, compareBranchesOperationNameConstant, endpoint)
	if executionError != nil {
		return BranchComparison{}, executionError
	}

	var response struct {
		Status   string `json:"status"`
		AheadBy  int    `json:"ahead_by"`
		BehindBy int    `json:"behind_by"`
	}
	if decodingError := json.Unmarshal([]byte(output), &response); decodingError != nil {
		return BranchComparison{}, ResponseDecodingError{Operation: compareBranchesOperationNameConstant, Cause: decodingError}
	}

	return BranchComparison{Status: response.Status, AheadBy: response.AheadBy, BehindBy: response.BehindBy}, nil
}

// DeleteBranch removes the branch reference from the repository.
func (client *Client) DeleteBranch(executionContext context.Context, repository string, branchName string) error {
	repositoryIdentifier, validationError := requireRepository(repository)
	if validationError != nil {
		return validationError
	}
	trimmedBranchName := strings.TrimSpace(branchName)
	if len(trimmedBranchName) == 0 {
		return InvalidInputError{FieldName: branchFieldNameConstant, Message: requiredValueMessageConstant}
	}

	endpoint := repositoryEndpoint(repositoryIdentifier, fmt.Sprintf(branchReferenceResourceTemplate, escapeReferencePath(trimmedBranchName)))
	_, executionError := client.executeAPI(executionContext, deleteBranchOperationNameConstant, endpoint, methodFlagConstant, httpMethodDeleteConstant)
	return executionError
}
