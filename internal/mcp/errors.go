package mcp

import (
	"encoding/json"

	"github.com/pierre-fitness/pierre-server/internal/auth"
	"github.com/pierre-fitness/pierre-server/internal/errx"
	"github.com/pierre-fitness/pierre-server/internal/tools"
)

// protocolErrorToRPC maps C5's closed ProtocolError taxonomy onto the
// MCP-prescribed integer error codes (spec.md §4.6/§7).
func protocolErrorToRPC(id json.RawMessage, perr *tools.ProtocolError) Response {
	code := CodeInternalError
	switch perr.Code {
	case tools.ErrInvalidParameters:
		code = CodeInvalidParams
	case tools.ErrNotFound:
		code = CodeInvalidParams
	case tools.ErrAuthExpired:
		code = CodeAuthExpired
	case tools.ErrRateLimited:
		code = CodeRateLimited
	case tools.ErrCancelled:
		code = CodeInternalError
	case tools.ErrProviderError:
		code = CodeInternalError
	}
	return newErrorResponse(id, code, perr.Message, perr.Details)
}

// authFailureToRPC maps an authentication failure to a distinguishable MCP
// error code plus a detailed_error field in data, so clients can tell
// expired from invalid (spec.md §4.6).
func authFailureToRPC(id json.RawMessage, err error) Response {
	code := CodeAuthInvalid
	detail := "invalid"
	if appErr, ok := err.(*errx.Error); ok {
		switch appErr.Code {
		case auth.CodeTokenExpired.Code:
			code, detail = CodeAuthExpired, "expired"
		case auth.CodeForbidden.Code:
			code, detail = CodeForbidden, "forbidden"
		case auth.CodeUserSuspended.Code, auth.CodeKeyInactive.Code:
			code, detail = CodeForbidden, "suspended"
		}
	}
	return newErrorResponse(id, code, "authentication failed", map[string]string{"detailed_error": detail})
}
