// Package auth implements Pierre's auth pipeline (spec.md C2): it resolves
// a bearer JWT, admin JWT, or API key to a single AuthResult shape
// regardless of which protocol adapter received the request, following the
// teacher's pkg/iam/auth port/service split.
package auth

import (
	"time"

	"github.com/pierre-fitness/pierre-server/internal/store"
)

// PrincipalKind distinguishes the three credential kinds spec.md §4.2 lands
// at the same entry point.
type PrincipalKind string

const (
	PrincipalUser   PrincipalKind = "user"
	PrincipalAPIKey PrincipalKind = "api_key"
	PrincipalAdmin  PrincipalKind = "admin"
)

// Principal identifies who is calling, independent of how they authenticated.
type Principal struct {
	Kind        PrincipalKind
	UserID      string // set for PrincipalUser and PrincipalAPIKey
	APIKeyID    string // set for PrincipalAPIKey
	AdminTokenID string // set for PrincipalAdmin
	Permissions store.Permission // set for PrincipalAdmin
}

// AuthResult is C2's unified output (spec.md §4.2).
type AuthResult struct {
	Principal     Principal
	TenantID      string
	Tier          store.Tier
	DisplayMethod string
}

// IsEnterprise reports whether C3 must bypass rate-limit counting
// (spec.md §8 property 1).
func (a AuthResult) IsEnterprise() bool { return a.Tier == store.TierEnterprise }

// FailureCode is the stable integer enumeration spec.md §4.2/§7 requires so
// adapters can distinguish e.g. expired from invalid.
type FailureCode int

const (
	FailureMissingHeader FailureCode = iota + 1
	FailureMalformedHeader
	FailureTokenExpired
	FailureTokenInvalid
	FailureUserSuspended
	FailureKeyInactive
)

// AuthType is the detected credential shape (SUPPLEMENTED FEATURES item 2,
// ported from original_source/src/utils/auth.rs detect_auth_type).
type AuthType int

const (
	AuthTypeUnknown AuthType = iota
	AuthTypeBearerJWT
	AuthTypeAPIKey
)

// CancellationToken is the explicit, parameter-passed cancellation handle
// spec.md §9 calls for (no implicit task cancellation): a thin wrapper
// around a cancel channel and an optional deadline, not a context, so
// handlers can poll IsCancelled() at suspension points
// without importing context directly into every call site.
type CancellationToken struct {
	deadline time.Time
	cancelCh <-chan struct{}
}

func NewCancellationToken(cancelCh <-chan struct{}) CancellationToken {
	return CancellationToken{cancelCh: cancelCh}
}

func (t CancellationToken) IsCancelled() bool {
	if t.cancelCh == nil {
		return false
	}
	select {
	case <-t.cancelCh:
		return true
	default:
		return false
	}
}
