package auth

import (
	"net/http"

	"github.com/pierre-fitness/pierre-server/internal/errx"
)

// ErrRegistry is C2's error registry, grounded on the teacher's
// pkg/iam/auth.ErrRegistry (errx.NewRegistry("AUTH")).
var ErrRegistry = errx.NewRegistry("AUTH")

var (
	CodeMissingHeader   = ErrRegistry.Register("MISSING_HEADER", errx.TypeAuthorization, http.StatusUnauthorized, "missing Authorization header")
	CodeMalformedHeader = ErrRegistry.Register("MALFORMED_HEADER", errx.TypeAuthorization, http.StatusUnauthorized, "malformed Authorization header")
	CodeTokenExpired    = ErrRegistry.Register("TOKEN_EXPIRED", errx.TypeAuthorization, http.StatusUnauthorized, "token expired")
	CodeTokenInvalid    = ErrRegistry.Register("TOKEN_INVALID", errx.TypeAuthorization, http.StatusUnauthorized, "token invalid")
	CodeUserSuspended   = ErrRegistry.Register("USER_SUSPENDED", errx.TypeAuthorization, http.StatusForbidden, "user account is suspended or pending")
	CodeKeyInactive     = ErrRegistry.Register("KEY_INACTIVE", errx.TypeAuthorization, http.StatusUnauthorized, "api key is inactive or expired")
	CodeForbidden       = ErrRegistry.Register("FORBIDDEN", errx.TypeAuthorization, http.StatusForbidden, "insufficient permissions")
	CodeTokenSignFailed = ErrRegistry.Register("TOKEN_SIGN_FAILED", errx.TypeInternal, http.StatusInternalServerError, "failed to sign token")
)

func ErrMissingHeader() *errx.Error   { return ErrRegistry.New(CodeMissingHeader) }
func ErrMalformedHeader() *errx.Error { return ErrRegistry.New(CodeMalformedHeader) }
func ErrTokenExpired() *errx.Error    { return ErrRegistry.New(CodeTokenExpired) }
func ErrTokenInvalid() *errx.Error    { return ErrRegistry.New(CodeTokenInvalid) }
func ErrUserSuspended() *errx.Error   { return ErrRegistry.New(CodeUserSuspended) }
func ErrKeyInactive() *errx.Error     { return ErrRegistry.New(CodeKeyInactive) }
func ErrForbidden() *errx.Error       { return ErrRegistry.New(CodeForbidden) }

func errTokenSignFailed(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeTokenSignFailed, cause)
}

// failureCode maps an errx code back to the stable FailureCode enum the
// adapters (REST/MCP/A2A) switch on, without each adapter re-deriving it
// from the error's HTTP status.
func failureCode(err *errx.Error) FailureCode {
	switch err.Code {
	case CodeMissingHeader.Code:
		return FailureMissingHeader
	case CodeMalformedHeader.Code:
		return FailureMalformedHeader
	case CodeTokenExpired.Code:
		return FailureTokenExpired
	case CodeUserSuspended.Code:
		return FailureUserSuspended
	case CodeKeyInactive.Code:
		return FailureKeyInactive
	default:
		return FailureTokenInvalid
	}
}
