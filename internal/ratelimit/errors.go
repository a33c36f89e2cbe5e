package ratelimit

import (
	"net/http"
	"time"

	"github.com/pierre-fitness/pierre-server/internal/errx"
)

// ErrRegistry is C3's error registry (spec.md §4.3 "RateLimited{retry_after}").
var ErrRegistry = errx.NewRegistry("RATE")

var CodeLimited = ErrRegistry.Register("LIMITED", errx.TypeRateLimited, http.StatusTooManyRequests, "rate limit exceeded")

// ErrRateLimited carries the retry_after duration spec.md §4.3 requires so
// the MCP adapter can surface it as error code -32004 and the REST adapter
// as a Retry-After header (spec.md §8 property/S1 scenario).
func ErrRateLimited(retryAfter time.Duration) *errx.Error {
	return ErrRegistry.New(CodeLimited).WithDetail("retry_after_seconds", int(retryAfter.Seconds()))
}
