// Package restapi implements C6's REST adapter (spec.md §4.6, §6):
// hand-written endpoints for registration, login, the OAuth
// authorize/callback bridge, API key management, and the operator
// dashboard, grounded on the teacher's pkg/iam HTTP handlers but scoped to
// Pierre's domain instead of ATS's.
package restapi

import (
	"time"

	"github.com/pierre-fitness/pierre-server/internal/auth"
	"github.com/pierre-fitness/pierre-server/internal/config"
	"github.com/pierre-fitness/pierre-server/internal/provider"
	"github.com/pierre-fitness/pierre-server/internal/ratelimit"
	"github.com/pierre-fitness/pierre-server/internal/sse"
	"github.com/pierre-fitness/pierre-server/internal/store"
)

// Deps bundles every collaborator the REST handlers need, assembled once
// at composition-root time (spec.md §9's explicit-collaborators style
// rather than global singletons).
type Deps struct {
	Store          store.Store
	JWT            *auth.JWTService
	APIKeys        *auth.APIKeyHasher
	Authn          *auth.Authenticator
	Providers      *provider.Manager
	ProviderRegistry *provider.Registry
	OAuthState     *provider.StateStore
	Notifications  *sse.Hub
	AdminKeys      *auth.KeyManager
	Limiter        *ratelimit.Limiter
	RateLimit      config.RateLimitConfig
	DefaultTenant  string
	ServiceName    string
	RefreshWindow  time.Duration
}
