package provider

import (
	"context"
	"errors"

	"github.com/pierre-fitness/pierre-server/internal/errx"
	"github.com/pierre-fitness/pierre-server/internal/logx"
)

// retryingHandle wraps a freshly-built ProviderHandle with the one-retry
// rule spec.md §4.4 requires at the call site, not just at handle
// construction: "a 401 from the upstream with an unexpired local token
// triggers one refresh attempt; a second 401 surfaces as AuthExpired
// requiring user re-consent." Manager.Get only refreshes proactively based
// on the stored expires_at; this wrapper is what reacts to a live 401 that
// a proactively-valid token still produced (clock skew, upstream-side
// revocation that hasn't updated expires_at, etc).
type retryingHandle struct {
	mgr          *Manager
	userID       string
	tenantID     string
	providerName string
	inner        ProviderHandle
}

func (m *Manager) wrapWithRetry(userID, tenantID, providerName string, inner ProviderHandle) ProviderHandle {
	return &retryingHandle{mgr: m, userID: userID, tenantID: tenantID, providerName: providerName, inner: inner}
}

func (h *retryingHandle) Name() string { return h.inner.Name() }

func (h *retryingHandle) GetActivities(ctx context.Context, opts ListOptions) ([]Activity, error) {
	return callWithRetry(ctx, h, func(p ProviderHandle) ([]Activity, error) { return p.GetActivities(ctx, opts) })
}

func (h *retryingHandle) GetActivity(ctx context.Context, id string) (*Activity, error) {
	return callWithRetry(ctx, h, func(p ProviderHandle) (*Activity, error) { return p.GetActivity(ctx, id) })
}

func (h *retryingHandle) GetAthlete(ctx context.Context) (*Athlete, error) {
	return callWithRetry(ctx, h, func(p ProviderHandle) (*Athlete, error) { return p.GetAthlete(ctx) })
}

func (h *retryingHandle) GetStats(ctx context.Context) (*Stats, error) {
	return callWithRetry(ctx, h, func(p ProviderHandle) (*Stats, error) { return p.GetStats(ctx) })
}

func (h *retryingHandle) GetSleep(ctx context.Context) ([]SleepSample, error) {
	return callWithRetry(ctx, h, func(p ProviderHandle) ([]SleepSample, error) { return p.GetSleep(ctx) })
}

// callWithRetry runs fn against the handle's current inner client; on
// AuthExpired it forces exactly one refresh under the (user, provider)
// lock, rebuilds the inner client with the new access token, and retries
// fn once. Any error out of the retry - including a second AuthExpired -
// is returned as-is.
func callWithRetry[T any](ctx context.Context, h *retryingHandle, fn func(ProviderHandle) (T, error)) (T, error) {
	result, err := fn(h.inner)
	if !isAuthExpired(err) {
		return result, err
	}

	logx.WithField("provider", h.providerName).WithTenant(h.tenantID).
		Warn("provider: upstream 401 on a locally-valid token, forcing one refresh-and-retry")

	refreshed, rerr := h.mgr.forceRefresh(ctx, h.userID, h.tenantID, h.providerName)
	if rerr != nil {
		var zero T
		return zero, rerr
	}
	h.inner = refreshed
	return fn(h.inner)
}

func isAuthExpired(err error) bool {
	var xerr *errx.Error
	if !errors.As(err, &xerr) {
		return false
	}
	return xerr.Code == CodeAuthExpired.Code
}
