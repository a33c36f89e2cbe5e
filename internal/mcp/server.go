package mcp

import (
	"encoding/json"

	"github.com/pierre-fitness/pierre-server/internal/auth"
	"github.com/pierre-fitness/pierre-server/internal/tools"
)

const protocolVersion = "2024-11-05"

// Server is C6's MCP adapter: it translates JSON-RPC 2.0 envelopes into
// UniversalRequests and Executor's responses back into CallToolResult-
// shaped JSON-RPC responses (spec.md §4.6). It is transport-agnostic; see
// http.go and stdio.go for the two transports spec.md §6 names.
type Server struct {
	executor *tools.Executor
	registry *tools.Registry
	sampling tools.SamplingPeer
}

func NewServer(executor *tools.Executor, registry *tools.Registry) *Server {
	return &Server{executor: executor, registry: registry}
}

// WithSamplingPeer attaches a dev-mode SamplingPeer (see internal/aisampling)
// that every session handled by this server falls back to when the
// connected MCP client doesn't advertise its own sampling capability.
// Production deployments leave this unset; sess.sampling stays nil and
// handlers take their deterministic fallback path.
func (s *Server) WithSamplingPeer(peer tools.SamplingPeer) *Server {
	s.sampling = peer
	return s
}

// session is the per-connection state a transport assembles once
// authentication resolves, then threads through every JSON-RPC call.
type session struct {
	auth         auth.AuthResult
	cancellation auth.CancellationToken
	progress     tools.ProgressReporter
	sampling     tools.SamplingPeer
}

// Handle dispatches one JSON-RPC request and returns the response to
// write back (nil for a notification, which gets no response per JSON-RPC
// 2.0).
func (s *Server) Handle(req Request, sess session) *Response {
	switch req.Method {
	case "initialize":
		resp := newResponse(req.ID, initializeResult())
		return &resp
	case "ping":
		resp := newResponse(req.ID, map[string]any{})
		return &resp
	case "tools/list":
		resp := newResponse(req.ID, s.toolsList())
		return &resp
	case "tools/call":
		resp := s.toolsCall(req, sess)
		return &resp
	case "resources/list":
		resp := newResponse(req.ID, map[string]any{"resources": []any{}})
		return &resp
	case "resources/read":
		resp := newErrorResponse(req.ID, CodeInvalidParams, "no resources are registered", nil)
		return &resp
	case "notifications/initialized":
		return nil // client-to-server notification, no response
	default:
		resp := newErrorResponse(req.ID, CodeMethodNotFound, "unknown method: "+req.Method, nil)
		return &resp
	}
}

func initializeResult() map[string]any {
	return map[string]any{
		"protocolVersion": protocolVersion,
		"serverInfo":      map[string]string{"name": "pierre", "version": "1.0.0"},
		"capabilities": map[string]any{
			"tools":     map[string]any{"listChanged": false},
			"resources": map[string]any{"listChanged": false},
		},
	}
}

type toolDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

func (s *Server) toolsList() map[string]any {
	list := s.registry.List()
	out := make([]toolDescriptor, len(list))
	for i, t := range list {
		out[i] = toolDescriptor{Name: t.Name, Description: t.Description, InputSchema: t.InputSchema}
	}
	return map[string]any{"tools": out}
}

type callToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
	Meta      struct {
		OutputFormat string `json:"output_format"`
		TenantID     string `json:"tenant_id"`
	} `json:"_meta"`
}

// toolsCall translates { name, arguments } to a UniversalRequest, attaches
// the session's cancellation token and progress reporter, and translates
// the result back into a CallToolResult shape (spec.md §4.6).
func (s *Server) toolsCall(req Request, sess session) Response {
	var p callToolParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return newErrorResponse(req.ID, CodeInvalidParams, "invalid tools/call params: "+err.Error(), nil)
	}
	if p.Name == "" {
		return newErrorResponse(req.ID, CodeInvalidParams, "name is required", nil)
	}

	outputFormat := tools.FormatJSON
	if p.Meta.OutputFormat == string(tools.FormatTOON) {
		outputFormat = tools.FormatTOON
	}
	tenantID := p.Meta.TenantID
	if tenantID == "" {
		tenantID = sess.auth.TenantID
	}

	uresp := s.executor.Execute(tools.UniversalRequest{
		ToolName:     p.Name,
		Parameters:   p.Arguments,
		UserID:       sess.auth.Principal.UserID,
		TenantID:     tenantID,
		Auth:         sess.auth,
		Cancellation: sess.cancellation,
		Progress:     sess.progress,
		SamplingPeer: sess.sampling,
		OutputFormat: outputFormat,
	})

	if uresp.IsError {
		var perr tools.ProtocolError
		_ = json.Unmarshal(uresp.Result, &perr)
		return protocolErrorToRPC(req.ID, &perr)
	}

	return newResponse(req.ID, callToolResult(uresp, outputFormat))
}

// callToolResult renders a CallToolResult: a single text content block
// carrying the JSON or TOON-rendered payload.
func callToolResult(uresp tools.UniversalResponse, format tools.OutputFormat) map[string]any {
	text := string(uresp.Result)
	return map[string]any{
		"content": []map[string]any{{"type": "text", "text": text}},
		"isError": false,
	}
}
