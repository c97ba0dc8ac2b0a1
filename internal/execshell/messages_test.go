package execshell

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandMessageFormatterDescribesGitHubOperations(t *testing.T) {
	testCases := []struct {
		name            string
		arguments       []string
		expectedStarted string
		expectedSuccess string
		expectedFailure string
	}{
		{
			name:            "list_branches",
			arguments:       []string{"api", "--paginate", "repos/octo/widgets/branches?per_page=100"},
			expectedStarted: "Running gh api --paginate repos/octo/widgets/branches?per_page=100",
			expectedSuccess: "Completed gh api --paginate repos/octo/widgets/branches?per_page=100",
			expectedFailure: "gh api --paginate repos/octo/widgets/branches?per_page=100 failed with exit code 1: boom",
		},
		{
			name:            "list_branches_endpoint_first",
			arguments:       []string{"api", "repos/octo/widgets/branches?per_page=100", "--paginate"},
			expectedStarted: "Listing branches for octo/widgets",
			expectedSuccess: "Listed branches for octo/widgets",
			expectedFailure: "Failed to list branches for octo/widgets (exit code 1: boom)",
		},
		{
			name:            "inspect_commit",
			arguments:       []string{"api", "repos/octo/widgets/commits/0123456789abcdef"},
			expectedStarted: "Inspecting commit 0123456 in octo/widgets",
			expectedSuccess: "Inspected commit 0123456 in octo/widgets",
			expectedFailure: "Failed to inspect commit 0123456 in octo/widgets (exit code 1: boom)",
		},
		{
			name:            "compare",
			arguments:       []string{"api", "repos/octo/widgets/compare/main...feature"},
			expectedStarted: "Comparing feature with main in octo/widgets",
			expectedSuccess: "Compared feature with main in octo/widgets",
			expectedFailure: "Failed to compare feature with main in octo/widgets (exit code 1: boom)",
		},
		{
			name:            "create_issue",
			arguments:       []string{"api", "repos/octo/widgets/issues", "--method", "POST", "--input", "-"},
			expectedStarted: "Creating issue in octo/widgets",
			expectedSuccess: "Created issue in octo/widgets",
			expectedFailure: "Failed to create issue in octo/widgets (exit code 1: boom)",
		},
		{
			name:            "comment_issue",
			arguments:       []string{"api", "repos/octo/widgets/issues/42/comments", "--method", "POST", "--input", "-"},
			expectedStarted: "Commenting on issue #42 in octo/widgets",
			expectedSuccess: "Commented on issue #42 in octo/widgets",
			expectedFailure: "Failed to comment on issue #42 in octo/widgets (exit code 1: boom)",
		},
		{
			name:            "close_issue",
			arguments:       []string{"api", "repos/octo/widgets/issues/42", "--method", "PATCH", "--input", "-"},
			expectedStarted: "Closing issue #42 in octo/widgets",
			expectedSuccess: "Closed issue #42 in octo/widgets",
			expectedFailure: "Failed to close issue #42 in octo/widgets (exit code 1: boom)",
		},
		{
			name:            "delete_branch",
			arguments:       []string{"api", "repos/octo/widgets/git/refs/heads/feature/old", "--method", "DELETE"},
			expectedStarted: "Deleting branch feature/old from octo/widgets",
			expectedSuccess: "Deleted branch feature/old from octo/widgets",
			expectedFailure: "Failed to delete branch feature/old from octo/widgets (exit code 1: boom)",
		},
		{
			name:            "repo_view",
			arguments:       []string{"repo", "view", "octo/widgets", "--json", "defaultBranchRef"},
			expectedStarted: "Resolving metadata for octo/widgets",
			expectedSuccess: "Resolved metadata for octo/widgets",
			expectedFailure: "Failed to resolve metadata for octo/widgets (exit code 1: boom)",
		},
	}

	formatter := CommandMessageFormatter{}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			command := ShellCommand{Name: CommandGitHub, Details: CommandDetails{Arguments: testCase.arguments}}
			require.Equal(t, testCase.expectedStarted, formatter.BuildStartedMessage(command))
			require.Equal(t, testCase.expectedSuccess, formatter.BuildSuccessMessage(command))
			require.Equal(t, testCase.expectedFailure, formatter.BuildFailureMessage(command, ExecutionResult{ExitCode: 1, StandardError: "boom\n"}))
		})
	}
}

func TestBuildExecutionFailureMessageIncludesCause(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{Name: CommandGitHub, Details: CommandDetails{Arguments: []string{"api", "rate_limit"}}}

	message := formatter.BuildExecutionFailureMessage(command, errors.New("executable file not found"))

	require.Equal(t, "Unable to check GitHub API rate limit: executable file not found", message)
}

func TestGenericMessageIncludesWorkingDirectory(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name:    CommandGitHub,
		Details: CommandDetails{Arguments: []string{"--version"}, WorkingDirectory: "/workspace/repo"},
	}

	require.Equal(t, "Running gh --version (in /workspace/repo)", formatter.BuildStartedMessage(command))
}

func TestRateLimitProbeSkipsStartMessage(t *testing.T) {
	formatter := CommandMessageFormatter{}

	require.False(t, formatter.ShouldLogStartMessage(ShellCommand{Name: CommandGitHub, Details: CommandDetails{Arguments: []string{"api", "rate_limit"}}}))
	require.True(t, formatter.ShouldLogStartMessage(ShellCommand{Name: CommandGitHub, Details: CommandDetails{Arguments: []string{"api", "repos/octo/widgets/branches"}}}))
}
