// Package admin implements C8 (spec.md §4.8): provisioning and revoking API
// keys, managing admin tokens, and the pending-user approval workflow.
// Every operation here is a thin call into C1 (internal/store) and C2
// (internal/auth) guarded by a single permission bit, following the
// teacher's pkg/iam admin handlers but scoped to Pierre's permission model
// instead of tenant-scoped IAM roles.
package admin

import (
	"github.com/pierre-fitness/pierre-server/internal/auth"
	"github.com/pierre-fitness/pierre-server/internal/config"
	"github.com/pierre-fitness/pierre-server/internal/notify"
	"github.com/pierre-fitness/pierre-server/internal/store"
)

// Deps bundles every collaborator the admin handlers need, assembled once
// at composition-root time.
type Deps struct {
	Store         store.Store
	AdminJWT      *auth.AdminJWTService
	Keys          *auth.KeyManager
	APIKeys       *auth.APIKeyHasher
	DefaultTenant string
	RateLimit     config.RateLimitConfig
	Notifier      notify.EmailSender
}
