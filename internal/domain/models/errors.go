package models

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for the aggregation pipeline. Per-asset and per-adapter
// failures are absorbed into result metadata; only ErrInvalidConfiguration
// and ErrAggregationFailed reach the caller as hard failures.
var (
	ErrUpstreamUnavailable  = errors.New("upstream unavailable")
	ErrDataUnavailable      = errors.New("no data available for asset")
	ErrSchemaMismatch       = errors.New("upstream response does not match expected schema")
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrAggregationFailed    = errors.New("no canonical snapshot could be produced")
	ErrSourcesDisagree      = errors.New("sources disagree beyond tolerance")
)

// RateLimitError reports a denied admission and the minimum wait before the
// source's window resets.
type RateLimitError struct {
	Source     string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s, retry after %s", e.Source, e.RetryAfter)
}

// IsRateLimited reports whether err is a rate-limit denial.
func IsRateLimited(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}
