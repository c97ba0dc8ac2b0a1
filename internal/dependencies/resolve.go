package dependencies

import (
	"go.uber.org/zap"

	"github.com/temirov/stale-branches/internal/execshell"
	"github.com/temirov/stale-branches/internal/githubauth"
	"github.com/temirov/stale-branches/internal/githubcli"
)

// ResolveGitHubExecutor returns the provided executor or constructs a shell-backed default
// that passes environment to every gh invocation.
func ResolveGitHubExecutor(existing githubcli.GitHubCommandExecutor, logger *zap.Logger, environment map[string]string, observers ...execshell.CommandEventObserver) (githubcli.GitHubCommandExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner, observers...)
	if creationError != nil {
		return nil, creationError
	}
	if len(environment) == 0 {
		return shellExecutor, nil
	}
	return shellExecutor.WithEnvironment(environment), nil
}

// ResolveGitHubClient creates a GitHub CLI-backed client around the executor.
func ResolveGitHubClient(executor githubcli.GitHubCommandExecutor) (*githubcli.Client, error) {
	return githubcli.NewClient(executor)
}

// ResolveTokenResolver returns the provided resolver or one backed by the process environment and filesystem.
func ResolveTokenResolver(existing githubauth.TokenResolver) githubauth.TokenResolver {
	if existing != nil {
		return existing
	}
	return githubauth.NewTokenResolver(nil, nil)
}
