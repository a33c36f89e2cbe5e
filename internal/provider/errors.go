package provider

import (
	"net/http"

	"github.com/pierre-fitness/pierre-server/internal/errx"
)

// ErrRegistry is C4's error registry (spec.md §4.4 error propagation rules).
var ErrRegistry = errx.NewRegistry("PROVIDER")

var (
	CodeNotConnected    = ErrRegistry.Register("NOT_CONNECTED", errx.TypeBusiness, http.StatusConflict, "user has not connected this provider")
	CodeAuthExpired     = ErrRegistry.Register("AUTH_EXPIRED", errx.TypeAuthorization, http.StatusUnauthorized, "provider authorization expired, user re-consent required")
	CodeResourceNotFound = ErrRegistry.Register("RESOURCE_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "resource not found at provider")
	CodeUpstreamError   = ErrRegistry.Register("UPSTREAM_ERROR", errx.TypeExternal, http.StatusBadGateway, "provider upstream error")
	CodeUnknownProvider = ErrRegistry.Register("UNKNOWN_PROVIDER", errx.TypeValidation, http.StatusBadRequest, "unknown provider")
	CodeRefreshFailed   = ErrRegistry.Register("REFRESH_FAILED", errx.TypeExternal, http.StatusBadGateway, "failed to refresh provider access token")
)

func ErrNotConnected() *errx.Error     { return ErrRegistry.New(CodeNotConnected) }
func ErrAuthExpired() *errx.Error      { return ErrRegistry.New(CodeAuthExpired) }
func ErrResourceNotFound() *errx.Error { return ErrRegistry.New(CodeResourceNotFound) }
func ErrUnknownProvider() *errx.Error  { return ErrRegistry.New(CodeUnknownProvider) }

func errUpstream(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeUpstreamError, cause)
}

func errRefreshFailed(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeRefreshFailed, cause)
}
