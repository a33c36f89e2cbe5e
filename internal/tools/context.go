package tools

import (
	"context"

	"github.com/pierre-fitness/pierre-server/internal/provider"
	"github.com/pierre-fitness/pierre-server/internal/store"
)

// CallContext bundles the per-call context.Context with the collaborators
// a handler needs, replacing the "global singletons and Arc-cloned
// handles" pattern spec.md §9 flags: every component a handler needs is
// passed in explicitly through CallContext/Executor, never looked up from
// process-wide state.
type CallContext struct {
	Ctx        context.Context
	Store      store.Store
	Providers  *provider.Manager
	OAuthState *provider.StateStore
	Weather    WeatherService
}

// Handler is the shape every tool implements (spec.md §4.5): it receives
// the executor's collaborators via CallContext, the UniversalRequest, and
// returns a UniversalResponse or a typed ProtocolError. No handler recurses
// or boxes its own future: dispatch is a single match in Executor.Execute
// (spec.md §9).
type Handler func(cc CallContext, req UniversalRequest) (any, *ProtocolError)

// Tool pairs a handler with the schema metadata C6's MCP adapter serves
// from tools/list (spec.md §4.6, §6).
type Tool struct {
	Name        string
	Description string
	InputSchema map[string]any
	Handler     Handler
}
