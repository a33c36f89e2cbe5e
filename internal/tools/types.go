// Package tools implements C5, the universal tool executor (spec.md §4.5):
// a single async entrypoint that resolves a symbolic tool call, fans out to
// a static handler table, and returns a protocol-neutral response every
// adapter (internal/mcp, internal/a2a, internal/restapi) can translate the
// same way. Grounded on original_source/src/tools/engine.rs's ToolEngine
// and original_source/src/protocols/universal's UniversalToolExecutor,
// generalized per spec.md §9 ("the static tool registry is a match on the
// tool name at the point of dispatch").
package tools

import (
	"encoding/json"

	"github.com/pierre-fitness/pierre-server/internal/auth"
)

// OutputFormat selects the serialization spec.md §4.5's format-transform
// guarantee requires every handler to honour.
type OutputFormat string

const (
	FormatJSON OutputFormat = "json"
	FormatTOON OutputFormat = "toon"
)

// ProgressPhase names the four progress checkpoints spec.md §4.5 requires
// long-running handlers to report: "authentication, fetch, analyse, done".
type ProgressPhase string

const (
	PhaseAuthentication ProgressPhase = "authentication"
	PhaseFetch          ProgressPhase = "fetch"
	PhaseAnalyse        ProgressPhase = "analyse"
	PhaseDone           ProgressPhase = "done"
)

// ProgressReporter is the typed channel spec.md §9 calls for ("Progress
// reporting is a typed channel, not ambient") instead of an implicit
// ambient mechanism. Clients that don't supply one get no events
// (spec.md §4.5 guarantee 3).
type ProgressReporter interface {
	Report(phase ProgressPhase, fraction float64, message string)
}

// NoopProgress discards every report; the zero value for requests that
// don't wire a reporter.
type NoopProgress struct{}

func (NoopProgress) Report(ProgressPhase, float64, string) {}

// SamplingPeer is the MCP capability spec.md §4.5/glossary describes:
// "an MCP capability where the server asks the client's LLM to produce
// text". Two handlers (get_activity_intelligence, generate_recommendations)
// use it opportunistically and fall back to the deterministic analyser on
// failure.
type SamplingPeer interface {
	// Sample asks the connected client's LLM to answer prompt, returning
	// raw text. An error triggers the handler's deterministic fallback.
	Sample(ctx CallContext, prompt string) (string, error)
}

// UniversalRequest is C5's single request shape (spec.md §4.5), built by
// every C6 adapter from its own wire frame.
type UniversalRequest struct {
	ToolName          string
	Parameters        json.RawMessage
	UserID            string
	TenantID          string
	Auth              auth.AuthResult
	Cancellation      auth.CancellationToken
	Progress          ProgressReporter
	SamplingPeer      SamplingPeer
	OutputFormat      OutputFormat
}

// UniversalResponse is C5's single response shape; adapters translate it
// once into their own wire form (MCP CallToolResult, A2A task result, REST
// JSON body).
type UniversalResponse struct {
	Result json.RawMessage
	IsError bool
	ErrorCode ErrorCode
}

// ErrorCode is the closed taxonomy spec.md §4.5 guarantee 4 and §9 require
// ("replace [string-keyed error codes] with a closed enum whose variants
// carry context structs").
type ErrorCode string

const (
	ErrInvalidParameters ErrorCode = "InvalidParameters"
	ErrNotFound          ErrorCode = "NotFound"
	ErrProviderError     ErrorCode = "ProviderError"
	ErrAuthExpired       ErrorCode = "AuthExpired"
	ErrRateLimited       ErrorCode = "RateLimited"
	ErrCancelled         ErrorCode = "Cancelled"
	ErrInternal          ErrorCode = "InternalError"
)

// ProtocolError is the error shape every handler returns instead of an
// opaque error (spec.md §4.5 guarantee 4, §9 "use a concrete AppError with
// variants").
type ProtocolError struct {
	Code    ErrorCode
	Message string
	Details map[string]any
}

func (e *ProtocolError) Error() string { return string(e.Code) + ": " + e.Message }

func NewProtocolError(code ErrorCode, message string) *ProtocolError {
	return &ProtocolError{Code: code, Message: message}
}

func (e *ProtocolError) WithDetail(key string, value any) *ProtocolError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}
