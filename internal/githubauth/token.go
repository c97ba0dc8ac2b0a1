package githubauth

import (
	"context"
	"os"
	"strings"
)

// Environment variable names used by GitHub authentication helpers.
const (
	EnvGitHubCLIToken = "GH_TOKEN"
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitHubAPIToken = "GITHUB_API_TOKEN"
)

var tokenPreference = []string{
	EnvGitHubCLIToken,
	EnvGitHubToken,
	EnvGitHubAPIToken,
}

// ResolveToken returns the first non-empty GitHub authentication token observed
// in the provided environment map or the process environment.
func ResolveToken(environment map[string]string) (string, bool) {
	for _, key := range tokenPreference {
		if value, ok := lookup(environment, key); ok {
			return value, true
		}
	}
	for _, key := range tokenPreference {
		if value, ok := os.LookupEnv(key); ok {
			value = strings.TrimSpace(value)
			if len(value) > 0 {
				return value, true
			}
		}
	}
	return "", false
}

// ResolveCommandEnvironment produces the environment overrides handed to gh.
// An empty declaration falls back to the standard token variables; when none is set
// the returned map is empty and gh uses its own stored credentials.
func ResolveCommandEnvironment(resolutionContext context.Context, resolver TokenResolver, declaration string) (map[string]string, error) {
	if len(strings.TrimSpace(declaration)) == 0 {
		token, found := ResolveToken(nil)
		if !found {
			return map[string]string{}, nil
		}
		return map[string]string{EnvGitHubCLIToken: token}, nil
	}

	source, parseError := ParseTokenSource(declaration)
	if parseError != nil {
		return nil, parseError
	}

	token, resolveError := resolver.ResolveToken(resolutionContext, source)
	if resolveError != nil {
		return nil, resolveError
	}
	return map[string]string{EnvGitHubCLIToken: token}, nil
}

func lookup(environment map[string]string, key string) (string, bool) {
	if environment == nil {
		return "", false
	}
	value, exists := environment[key]
	if !exists {
		return "", false
	}
	value = strings.TrimSpace(value)
	if len(value) == 0 {
		return "", false
	}
	return value, true
}
