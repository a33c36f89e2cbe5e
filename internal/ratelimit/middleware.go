package ratelimit

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/pierre-fitness/pierre-server/internal/auth"
	"github.com/pierre-fitness/pierre-server/internal/store"
)

// Middleware enforces per-API-key limits on routes guarded by
// auth.Middleware.Authenticate. It is a no-op for principals that aren't
// API keys (user JWT and admin JWT calls aren't rate-limited by this
// layer, matching spec.md §4.3's "per API key" scoping).
type Middleware struct {
	limiter *Limiter
}

func NewMiddleware(limiter *Limiter) *Middleware {
	return &Middleware{limiter: limiter}
}

// Enforce reads the resolved auth.AuthResult, does nothing for non-API-key
// principals, and otherwise reserves one request against limit/windowSeconds.
func (m *Middleware) Enforce(limit, windowSeconds int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, ok := auth.FromContext(c)
		if !ok || result.Principal.Kind != auth.PrincipalAPIKey {
			return c.Next()
		}

		allowed, retryAfter := m.limiter.Reserve(result.Principal.APIKeyID, result.Tier, limit, windowSeconds)
		if !allowed {
			appErr := ErrRateLimited(retryAfter)
			secs := int(retryAfter.Seconds())
			if secs < 1 {
				secs = 1
			}
			c.Set("Retry-After", strconv.Itoa(secs))
			return c.Status(appErr.HTTPStatus).JSON(fiber.Map{
				"error":               appErr.Message,
				"code":                appErr.Code,
				"retry_after_seconds": appErr.Details["retry_after_seconds"],
			})
		}
		return c.Next()
	}
}

// KeyLimits resolves the effective limit/window for an API key, falling
// back to the deployment default when the key carries no override
// (spec.md §4.3; APIKey.rate_limit_requests/rate_limit_window_seconds are
// per-key overrides of RateLimitConfig's tier defaults).
func KeyLimits(key *store.APIKey, defaultWindow, starterLimit, professionalLimit int) (limit, windowSeconds int) {
	windowSeconds = key.RateLimitWindowSeconds
	if windowSeconds <= 0 {
		windowSeconds = defaultWindow
	}
	limit = key.RateLimitRequests
	if limit > 0 {
		return limit, windowSeconds
	}
	switch key.Tier {
	case store.TierProfessional:
		return professionalLimit, windowSeconds
	default:
		return starterLimit, windowSeconds
	}
}
