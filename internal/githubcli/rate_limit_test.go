package githubcli_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/stale-branches/internal/githubcli"
)

func TestResolveRateLimit(testInstance *testing.T) {
	executor := respondWith(`{"resources":{"core":{"limit":5000,"used":4760,"remaining":240,"reset":1700000000}},"rate":{}}`)
	client, creationError := githubcli.NewClient(executor)
	require.NoError(testInstance, creationError)

	rateLimit, resolveError := client.ResolveRateLimit(context.Background())
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, 5000, rateLimit.Limit)
	require.Equal(testInstance, 4760, rateLimit.Used)
	require.Equal(testInstance, 240, rateLimit.Remaining)
	require.Equal(testInstance, time.Unix(1700000000, 0).UTC(), rateLimit.Reset)
	require.Equal(testInstance, 95, rateLimit.UsedPercentage())
	require.Equal(testInstance, []string{"api", "rate_limit"}, executor.recordedDetails[0].Arguments)
}

func TestRateLimitUsedPercentage(testInstance *testing.T) {
	testCases := []struct {
		name     string
		limit    githubcli.RateLimit
		expected int
	}{
		{name: "unused", limit: githubcli.RateLimit{Limit: 5000}, expected: 0},
		{name: "rounds_half_up", limit: githubcli.RateLimit{Limit: 200, Used: 191}, expected: 96},
		{name: "exhausted", limit: githubcli.RateLimit{Limit: 60, Used: 60}, expected: 100},
		{name: "unknown_limit", limit: githubcli.RateLimit{Used: 12}, expected: 0},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, testCase.limit.UsedPercentage())
		})
	}
}

func TestRateLimitExceedsPercentage(testInstance *testing.T) {
	testCases := []struct {
		name     string
		limit    githubcli.RateLimit
		expected bool
	}{
		{name: "fraction_above_threshold", limit: githubcli.RateLimit{Limit: 5000, Used: 4770}, expected: true},
		{name: "exactly_threshold", limit: githubcli.RateLimit{Limit: 5000, Used: 4750}, expected: false},
		{name: "below_threshold", limit: githubcli.RateLimit{Limit: 60, Used: 57}, expected: false},
		{name: "just_above_threshold", limit: githubcli.RateLimit{Limit: 60, Used: 58}, expected: true},
		{name: "unknown_limit", limit: githubcli.RateLimit{Used: 4770}, expected: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, testCase.limit.ExceedsPercentage(95))
		})
	}
}

func TestResolveRateLimitFailures(testInstance *testing.T) {
	failingClient, creationError := githubcli.NewClient(failWith(commandFailure()))
	require.NoError(testInstance, creationError)
	_, resolveError := failingClient.ResolveRateLimit(context.Background())
	require.IsType(testInstance, githubcli.OperationError{}, resolveError)

	decodingClient, creationError := githubcli.NewClient(respondWith("<html>"))
	require.NoError(testInstance, creationError)
	_, resolveError = decodingClient.ResolveRateLimit(context.Background())
	require.IsType(testInstance, githubcli.ResponseDecodingError{}, resolveError)
}
