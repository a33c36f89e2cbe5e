package restapi

import (
	"net/http"

	"github.com/pierre-fitness/pierre-server/internal/errx"
)

// ErrRegistry is C6 REST's error registry, grounded on the teacher's
// per-package errx.Registry convention.
var ErrRegistry = errx.NewRegistry("REST")

var (
	CodeInvalidBody       = ErrRegistry.Register("INVALID_BODY", errx.TypeValidation, http.StatusBadRequest, "request body is invalid")
	CodeInvalidCredentials = ErrRegistry.Register("INVALID_CREDENTIALS", errx.TypeAuthorization, http.StatusUnauthorized, "invalid email or password")
	CodeInvalidState      = ErrRegistry.Register("INVALID_STATE", errx.TypeValidation, http.StatusBadRequest, "oauth state is unknown or expired")
	CodeProviderError     = ErrRegistry.Register("PROVIDER_ERROR", errx.TypeExternal, http.StatusBadGateway, "upstream provider rejected the request")
)

func errInvalidBody(detail string) *errx.Error {
	return ErrRegistry.NewWithMessage(CodeInvalidBody, detail)
}

func errInvalidCredentials() *errx.Error { return ErrRegistry.New(CodeInvalidCredentials) }
func errInvalidState() *errx.Error       { return ErrRegistry.New(CodeInvalidState) }

func errProviderError(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeProviderError, cause)
}
