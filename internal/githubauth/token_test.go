package githubauth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/stale-branches/internal/githubauth"
)

const (
	testEnvironmentTokenValueConstant = "environment-token"
	testFileTokenValueConstant        = "file-token"
	testCustomVariableNameConstant    = "STALE_BRANCHES_TOKEN"
	testTokenFilePathConstant         = "/run/secrets/github"
)

func TestParseTokenSource(testInstance *testing.T) {
	testCases := []struct {
		name           string
		declaration    string
		expectedSource githubauth.TokenSource
		expectError    bool
	}{
		{
			name:           "bare_environment_name",
			declaration:    testCustomVariableNameConstant,
			expectedSource: githubauth.TokenSource{Type: githubauth.TokenSourceTypeEnvironment, Reference: testCustomVariableNameConstant},
		},
		{
			name:           "explicit_environment",
			declaration:    " env: " + testCustomVariableNameConstant,
			expectedSource: githubauth.TokenSource{Type: githubauth.TokenSourceTypeEnvironment, Reference: testCustomVariableNameConstant},
		},
		{
			name:           "file",
			declaration:    "FILE:" + testTokenFilePathConstant,
			expectedSource: githubauth.TokenSource{Type: githubauth.TokenSourceTypeFile, Reference: testTokenFilePathConstant},
		},
		{name: "empty", declaration: "   ", expectError: true},
		{name: "environment_without_name", declaration: "env:", expectError: true},
		{name: "file_without_path", declaration: "file: ", expectError: true},
		{name: "unsupported_type", declaration: "vault:secret/github", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			source, parseError := githubauth.ParseTokenSource(testCase.declaration)
			if testCase.expectError {
				require.Error(testInstance, parseError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedSource, source)
		})
	}
}

func TestTokenResolverResolvesSources(testInstance *testing.T) {
	environmentLookup := func(key string) (string, bool) {
		switch key {
		case testCustomVariableNameConstant:
			return " " + testEnvironmentTokenValueConstant + "\n", true
		case "BLANK_TOKEN":
			return "  ", true
		default:
			return "", false
		}
	}
	fileReader := func(path string) ([]byte, error) {
		switch path {
		case testTokenFilePathConstant:
			return []byte(testFileTokenValueConstant + "\n"), nil
		case "/empty":
			return []byte("\n"), nil
		default:
			return nil, errors.New("missing")
		}
	}
	resolver := githubauth.NewTokenResolver(environmentLookup, fileReader)

	testCases := []struct {
		name          string
		source        githubauth.TokenSource
		expectedToken string
		expectError   bool
	}{
		{
			name:          "environment",
			source:        githubauth.TokenSource{Type: githubauth.TokenSourceTypeEnvironment, Reference: testCustomVariableNameConstant},
			expectedToken: testEnvironmentTokenValueConstant,
		},
		{
			name:        "environment_missing",
			source:      githubauth.TokenSource{Type: githubauth.TokenSourceTypeEnvironment, Reference: "UNSET"},
			expectError: true,
		},
		{
			name:        "environment_blank",
			source:      githubauth.TokenSource{Type: githubauth.TokenSourceTypeEnvironment, Reference: "BLANK_TOKEN"},
			expectError: true,
		},
		{
			name:          "file",
			source:        githubauth.TokenSource{Type: githubauth.TokenSourceTypeFile, Reference: testTokenFilePathConstant},
			expectedToken: testFileTokenValueConstant,
		},
		{
			name:        "file_unreadable",
			source:      githubauth.TokenSource{Type: githubauth.TokenSourceTypeFile, Reference: "/missing"},
			expectError: true,
		},
		{
			name:        "file_empty",
			source:      githubauth.TokenSource{Type: githubauth.TokenSourceTypeFile, Reference: "/empty"},
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			token, resolveError := resolver.ResolveToken(context.Background(), testCase.source)
			if testCase.expectError {
				require.Error(testInstance, resolveError)
				return
			}
			require.NoError(testInstance, resolveError)
			require.Equal(testInstance, testCase.expectedToken, token)
		})
	}
}

func TestResolveTokenPrefersProvidedEnvironment(testInstance *testing.T) {
	testInstance.Setenv(githubauth.EnvGitHubCLIToken, "")
	testInstance.Setenv(githubauth.EnvGitHubToken, "process-token")
	testInstance.Setenv(githubauth.EnvGitHubAPIToken, "")

	token, found := githubauth.ResolveToken(map[string]string{githubauth.EnvGitHubAPIToken: "map-token"})
	require.True(testInstance, found)
	require.Equal(testInstance, "map-token", token)

	token, found = githubauth.ResolveToken(nil)
	require.True(testInstance, found)
	require.Equal(testInstance, "process-token", token)
}

func TestResolveCommandEnvironment(testInstance *testing.T) {
	testInstance.Setenv(githubauth.EnvGitHubCLIToken, "")
	testInstance.Setenv(githubauth.EnvGitHubToken, "")
	testInstance.Setenv(githubauth.EnvGitHubAPIToken, "")

	resolver := githubauth.NewTokenResolver(func(key string) (string, bool) {
		if key == testCustomVariableNameConstant {
			return testEnvironmentTokenValueConstant, true
		}
		return "", false
	}, nil)

	environment, resolveError := githubauth.ResolveCommandEnvironment(context.Background(), resolver, "")
	require.NoError(testInstance, resolveError)
	require.Empty(testInstance, environment)

	environment, resolveError = githubauth.ResolveCommandEnvironment(context.Background(), resolver, "env:"+testCustomVariableNameConstant)
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, map[string]string{githubauth.EnvGitHubCLIToken: testEnvironmentTokenValueConstant}, environment)

	_, resolveError = githubauth.ResolveCommandEnvironment(context.Background(), resolver, "env:UNSET")
	require.Error(testInstance, resolveError)

	testInstance.Setenv(githubauth.EnvGitHubToken, "fallback-token")
	environment, resolveError = githubauth.ResolveCommandEnvironment(context.Background(), resolver, "")
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, map[string]string{githubauth.EnvGitHubCLIToken: "fallback-token"}, environment)
}
