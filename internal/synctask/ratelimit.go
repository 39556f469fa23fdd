// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package synctask

import (
	"golang.org/x/time/rate"

	"github.com/footanalytics/datasync/internal/connector"
)

// limiterFor builds a token bucket from the connector's declared rate limit.
// A missing or non-positive declaration disables throttling.
func limiterFor(declared connector.RateLimit) *rate.Limiter {
	if declared.RequestsPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}

	burst := declared.BurstSize
	if burst <= 0 {
		burst = 1
	}

	return rate.NewLimiter(rate.Limit(float64(declared.RequestsPerMinute)/60.0), burst)
}
