package tools

import (
	"github.com/pierre-fitness/pierre-server/internal/errx"
	"github.com/pierre-fitness/pierre-server/internal/provider"
)

// providerErrToProtocol maps C4's errx-typed errors onto C5's closed
// ProtocolError taxonomy (spec.md §4.5 guarantee 4), so every handler that
// touches C4 gets consistent translation without re-deriving it.
func providerErrToProtocol(err error) *ProtocolError {
	appErr, ok := err.(*errx.Error)
	if !ok {
		return NewProtocolError(ErrInternal, err.Error())
	}
	switch appErr.Code {
	case provider.CodeResourceNotFound.Code:
		return NewProtocolError(ErrNotFound, appErr.Message)
	case provider.CodeNotConnected.Code:
		return NewProtocolError(ErrAuthExpired, appErr.Message).WithDetail("reason", "not_connected")
	case provider.CodeAuthExpired.Code, provider.CodeRefreshFailed.Code:
		return NewProtocolError(ErrAuthExpired, appErr.Message)
	case provider.CodeUnknownProvider.Code:
		return NewProtocolError(ErrInvalidParameters, appErr.Message)
	default:
		return NewProtocolError(ErrProviderError, appErr.Message).WithDetail("provider_status", appErr.HTTPStatus)
	}
}

// storeErrToProtocol maps C1 storage errors to the closed taxonomy for
// DB-only handlers (goals, connection status).
func storeErrToProtocol(err error) *ProtocolError {
	appErr, ok := err.(*errx.Error)
	if !ok {
		return NewProtocolError(ErrInternal, err.Error())
	}
	if appErr.Type == errx.TypeNotFound {
		return NewProtocolError(ErrNotFound, appErr.Message)
	}
	return NewProtocolError(ErrInternal, appErr.Message)
}
