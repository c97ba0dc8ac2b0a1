package githubcli

import (
	"context"
	"encoding/json"
	"math"
	"time"
)

const (
	rateLimitEndpointConstant             = "rate_limit"
	resolveRateLimitOperationNameConstant = OperationName("ResolveRateLimit")
	percentageScaleConstant               = 100.0
	percentageMultiplierConstant          = 100
)

// RateLimit reports consumption of the core REST API quota.
type RateLimit struct {
	Limit     int
	Used      int
	Remaining int
	Reset     time.Time
}

// UsedPercentage returns the consumed share of the quota as a whole percentage.
func (rateLimit RateLimit) UsedPercentage() int {
	if rateLimit.Limit <= 0 {
		return 0
	}
	return int(math.Round(float64(rateLimit.Used) * percentageScaleConstant / float64(rateLimit.Limit)))
}

// ExceedsPercentage reports whether usage is strictly above thresholdPercentage of the quota.
// Counts are compared directly so fractional usage is never rounded away.
func (rateLimit RateLimit) ExceedsPercentage(thresholdPercentage int) bool {
	if rateLimit.Limit <= 0 {
		return false
	}
	return rateLimit.Used*percentageMultiplierConstant > thresholdPercentage*rateLimit.Limit
}

// ResolveRateLimit reads the current core API quota. Querying it does not count against the quota.
func (client *Client) ResolveRateLimit(executionContext context.Context) (RateLimit, error) {
	output, executionError := client.executeAPI(executionContext, resolveRateLimitOperationNameConstant, rateLimitEndpointConstant)
	if executionError != nil {
		return RateLimit{}, executionError
	}

	var response struct {
		Resources struct {
			Core struct {
				Limit     int   `json:"limit"`
				Used      int   `json:"used"`
				Remaining int   `json:"remaining"`
				Reset     int64 `json:"reset"`
			} `json:"core"`
		} `json:"resources"`
	}
	if decodingError := json.Unmarshal([]byte(output), &response); decodingError != nil {
		return RateLimit{}, ResponseDecodingError{Operation: resolveRateLimitOperationNameConstant, Cause: decodingError}
	}

	core := response.Resources.Core
	return RateLimit{
		Limit:     core.Limit,
		Used:      core.Used,
		Remaining: core.Remaining,
		Reset:     time.Unix(core.Reset, 0).UTC(),
	}, nil
}
