package tools

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pierre-fitness/pierre-server/internal/auth"
	"github.com/pierre-fitness/pierre-server/internal/logx"
	"github.com/pierre-fitness/pierre-server/internal/ratelimit"
	"github.com/pierre-fitness/pierre-server/internal/store"
	"github.com/pierre-fitness/pierre-server/internal/usage"
)

// RateLimitConfig carries the tier defaults Executor applies to API-key
// principals (spec.md §4.3); user/admin principals bypass this layer
// entirely, matching ratelimit.Middleware's REST-side scoping.
type RateLimitConfig struct {
	WindowSeconds     int
	StarterLimit      int
	ProfessionalLimit int
}

// Executor is C5: it owns the static tool registry and is the single
// entrypoint every protocol adapter calls (spec.md §4.5's single async
// `handle` shape). Rate-limit reservation and usage recording happen here,
// once, instead of being duplicated across MCP/A2A/REST adapters.
type Executor struct {
	registry *Registry
	limiter  *ratelimit.Limiter
	recorder *usage.Recorder
	rlConfig RateLimitConfig
	cc       func() CallContext
}

func NewExecutor(registry *Registry, limiter *ratelimit.Limiter, recorder *usage.Recorder, rlConfig RateLimitConfig, ccFactory func() CallContext) *Executor {
	return &Executor{registry: registry, limiter: limiter, recorder: recorder, rlConfig: rlConfig, cc: ccFactory}
}

// Execute dispatches req.ToolName against the static registry, applying
// rate limiting, usage recording, and the output-format transform
// uniformly for every caller (spec.md §4.5 guarantees 1 and 4).
func (e *Executor) Execute(req UniversalRequest) UniversalResponse {
	start := time.Now()

	tool, ok := e.registry.Lookup(req.ToolName)
	if !ok {
		return e.errorResponse(NewProtocolError(ErrNotFound, "unknown tool: "+req.ToolName))
	}

	if req.Auth.Principal.Kind == auth.PrincipalAPIKey {
		limit, window := e.apiKeyLimits(req)
		allowed, retryAfter := e.limiter.Reserve(req.Auth.Principal.APIKeyID, req.Auth.Tier, limit, window)
		if !allowed {
			perr := NewProtocolError(ErrRateLimited, "rate limit exceeded").WithDetail("retry_after_seconds", int(retryAfter.Seconds()))
			logx.WithTool(req.ToolName).WithTenant(req.TenantID).
				WithField("retry_after_seconds", int(retryAfter.Seconds())).
				Warn("executor: rejected call, rate limit exceeded")
			e.record(req, start, false, perr)
			return e.errorResponse(perr)
		}
	}

	if req.Cancellation.IsCancelled() {
		perr := NewProtocolError(ErrCancelled, "operation cancelled")
		e.record(req, start, false, perr)
		return e.errorResponse(perr)
	}

	if req.Progress == nil {
		req.Progress = NoopProgress{}
	}

	cc := e.cc()
	req.Progress.Report(PhaseAuthentication, 0.0, "dispatching "+req.ToolName)
	result, perr := tool.Handler(cc, req)
	if perr != nil {
		e.record(req, start, false, perr)
		return e.errorResponse(perr)
	}

	raw, perr := marshalResult(result)
	if perr != nil {
		e.record(req, start, false, perr)
		return e.errorResponse(perr)
	}

	if req.OutputFormat == FormatTOON {
		toon, err := ToTOON(raw)
		if err != nil {
			perr := NewProtocolError(ErrInternal, "failed to render toon output: "+err.Error())
			e.record(req, start, false, perr)
			return e.errorResponse(perr)
		}
		raw = []byte(toon)
	}

	e.record(req, start, true, nil)
	return UniversalResponse{Result: raw}
}

func (e *Executor) apiKeyLimits(req UniversalRequest) (limit, windowSeconds int) {
	windowSeconds = e.rlConfig.WindowSeconds
	if req.Auth.Tier == store.TierProfessional {
		return e.rlConfig.ProfessionalLimit, windowSeconds
	}
	return e.rlConfig.StarterLimit, windowSeconds
}

func (e *Executor) record(req UniversalRequest, start time.Time, success bool, perr *ProtocolError) {
	if req.Auth.Principal.Kind != auth.PrincipalAPIKey || e.recorder == nil {
		return
	}
	statusCode := 200
	var errMsg *string
	if !success {
		statusCode = 500
		if perr != nil {
			statusCode = protocolErrorHTTPStatus(perr.Code)
			msg := perr.Error()
			errMsg = &msg
		}
	}
	row := store.APIKeyUsage{
		ID:             uuid.NewString(),
		APIKeyID:       req.Auth.Principal.APIKeyID,
		Timestamp:      time.Now(),
		ToolName:       req.ToolName,
		StatusCode:     statusCode,
		ResponseTimeMs: int(time.Since(start).Milliseconds()),
		ErrorMessage:   errMsg,
	}
	e.recorder.Record(context.Background(), row)
}

func (e *Executor) errorResponse(perr *ProtocolError) UniversalResponse {
	raw, _ := marshalResult(perr)
	return UniversalResponse{Result: raw, IsError: true, ErrorCode: perr.Code}
}

func protocolErrorHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrInvalidParameters:
		return 400
	case ErrNotFound:
		return 404
	case ErrAuthExpired:
		return 401
	case ErrRateLimited:
		return 429
	case ErrCancelled:
		return 499
	case ErrProviderError:
		return 502
	default:
		return 500
	}
}
