package githubcli_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/stale-branches/internal/execshell"
	"github.com/temirov/stale-branches/internal/githubcli"
)

const (
	testRepositoryIdentifierConstant          = "owner/example"
	testBaseBranchConstant                    = "main"
	testFeatureBranchConstant                 = "feature/example"
	testCommitSHAConstant                     = "0123456789abcdef0123456789abcdef01234567"
	testIssueLabelConstant                    = "stale branch 🗑️"
	testResolveSuccessCaseNameConstant        = "resolve_success"
	testResolveDecodeFailureCaseNameConstant  = "resolve_decode_failure"
	testResolveCommandFailureCaseNameConstant = "resolve_command_failure"
	testResolveInputFailureCaseNameConstant   = "resolve_input_failure"
)

type stubGitHubExecutor struct {
	executeFunc     func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error)
	recordedDetails []execshell.CommandDetails
}

func (executor *stubGitHubExecutor) ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	if executor.executeFunc != nil {
		return executor.executeFunc(executionContext, details)
	}
	return execshell.ExecutionResult{}, nil
}

func TestNewClientValidation(testInstance *testing.T) {
	testInstance.Run("nil_executor", func(testInstance *testing.T) {
		client, creationError := githubcli.NewClient(nil)
		require.Error(testInstance, creationError)
		require.ErrorIs(testInstance, creationError, githubcli.ErrExecutorNotConfigured)
		require.Nil(testInstance, client)
	})
}

func TestResolveRepoMetadata(testInstance *testing.T) {
	testCases := []struct {
		name        string
		repository  string
		executor    *stubGitHubExecutor
		expectError bool
		errorType   any
		verify      func(testInstance *testing.T, metadata githubcli.RepositoryMetadata, executor *stubGitHubExecutor)
	}{
		{
			name:       testResolveSuccessCaseNameConstant,
			repository: testRepositoryIdentifierConstant,
			executor: &stubGitHubExecutor{
				executeFunc: func(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
					return execshell.ExecutionResult{StandardOutput: `{"nameWithOwner":"owner/example","description":"Example repo","defaultBranchRef":{"name":"main"}}`}, nil
				},
			},
			verify: func(testInstance *testing.T, metadata githubcli.RepositoryMetadata, executor *stubGitHubExecutor) {
				require.Equal(testInstance, "owner/example", metadata.NameWithOwner)
				require.Equal(testInstance, "Example repo", metadata.Description)
				require.Equal(testInstance, "main", metadata.DefaultBranch)
				require.Len(testInstance, executor.recordedDetails, 1)
				require.Contains(testInstance, executor.recordedDetails[0].Arguments, testRepositoryIdentifierConstant)
			},
		},
		{
			name:       testResolveDecodeFailureCaseNameConstant,
			repository: testRepositoryIdentifierConstant,
			executor: &stubGitHubExecutor{executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
				return execshell.ExecutionResult{StandardOutput: "not-json"}, nil
			}},
			expectError: true,
			errorType:   githubcli.ResponseDecodingError{},
		},
		{
			name:       testResolveCommandFailureCaseNameConstant,
			repository: testRepositoryIdentifierConstant,
			executor: &stubGitHubExecutor{executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
				return execshell.ExecutionResult{}, execshell.CommandFailedError{Command: execshell.ShellCommand{Name: execshell.CommandGitHub}, Result: execshell.ExecutionResult{ExitCode: 1}}
			}},
			expectError: true,
			errorType:   githubcli.OperationError{},
		},
		{
			name:        testResolveInputFailureCaseNameConstant,
			repository:  "  ",
			executor:    &stubGitHubExecutor{},
			expectError: true,
			errorType:   githubcli.InvalidInputError{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			client, creationError := githubcli.NewClient(testCase.executor)
			require.NoError(testInstance, creationError)

			metadata, resolutionError := client.ResolveRepoMetadata(context.Background(), testCase.repository)
			if testCase.expectError {
				require.Error(testInstance, resolutionError)
				require.IsType(testInstance, testCase.errorType, resolutionError)
			} else {
				require.NoError(testInstance, resolutionError)
				require.NotNil(testInstance, testCase.verify)
				testCase.verify(testInstance, metadata, testCase.executor)
			}
		})
	}
}

func commandFailure() error {
	return execshell.CommandFailedError{Command: execshell.ShellCommand{Name: execshell.CommandGitHub}, Result: execshell.ExecutionResult{ExitCode: 1}}
}

func respondWith(output string) *stubGitHubExecutor {
	return &stubGitHubExecutor{executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
		return execshell.ExecutionResult{StandardOutput: output}, nil
	}}
}

func failWith(failure error) *stubGitHubExecutor {
	return &stubGitHubExecutor{executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
		return execshell.ExecutionResult{}, failure
	}}
}
