package store

import (
	"context"
	"time"
)

// UserRepository is C1's user/tenant contract (spec.md §4.1).
type UserRepository interface {
	CreateUser(ctx context.Context, u User) (string, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateUser(ctx context.Context, u User) error
	GetUsersByStatus(ctx context.Context, status UserStatus) ([]User, error)
	UpdateUserStatus(ctx context.Context, id string, status UserStatus, approvedBy *string) error
	CountAdmins(ctx context.Context) (int, error)
}

// TenantRepository manages tenants and their per-provider OAuth app
// credentials.
type TenantRepository interface {
	CreateTenant(ctx context.Context, t Tenant) (string, error)
	GetTenant(ctx context.Context, id string) (*Tenant, error)
	UpsertTenantOAuthCredentials(ctx context.Context, c TenantOAuthCredentials) error
	GetTenantOAuthCredentials(ctx context.Context, tenantID, provider string) (*TenantOAuthCredentials, error)
}

// OAuthTokenRepository is C1's token-at-rest contract, consumed exclusively
// by C4 and the login/callback endpoints (spec.md §8 property 5).
type OAuthTokenRepository interface {
	UpsertUserOAuthToken(ctx context.Context, t UserOAuthToken) error
	GetUserOAuthToken(ctx context.Context, userID, tenantID, provider string) (*UserOAuthToken, error)
	DeleteUserOAuthToken(ctx context.Context, userID, tenantID, provider string) error
}

// APIKeyRepository persists API keys and their usage rows.
type APIKeyRepository interface {
	CreateAPIKey(ctx context.Context, k APIKey) error
	GetAPIKeyByID(ctx context.Context, id string) (*APIKey, error)
	GetAPIKeyByHash(ctx context.Context, hash string) (*APIKey, error)
	ListAPIKeysByUser(ctx context.Context, userID string) ([]APIKey, error)
	UpdateAPIKey(ctx context.Context, k APIKey) error
	DeactivateAPIKey(ctx context.Context, id string) error
	TouchLastUsed(ctx context.Context, id string, when time.Time) error
	RecordUsage(ctx context.Context, row APIKeyUsage) error
	ListUsage(ctx context.Context, apiKeyID string, start, end time.Time) ([]APIKeyUsage, error)
}

// AdminTokenRepository backs C8's admin-token lifecycle.
type AdminTokenRepository interface {
	CreateAdminToken(ctx context.Context, t AdminToken) error
	GetAdminToken(ctx context.Context, tokenID string) (*AdminToken, error)
	ListAdminTokens(ctx context.Context) ([]AdminToken, error)
	DeactivateAdminToken(ctx context.Context, tokenID string) error
	CountActiveAdminTokens(ctx context.Context) (int, error)
}

// A2ATaskRepository persists task state machine rows for C6's A2A adapter.
type A2ATaskRepository interface {
	CreateTask(ctx context.Context, t A2ATask) error
	GetTask(ctx context.Context, taskID string) (*A2ATask, error)
	UpdateTaskProgress(ctx context.Context, taskID string, progress float64) error
	TransitionTask(ctx context.Context, taskID string, status A2ATaskStatus, result []byte, taskErr *string) error
}

// NotificationRepository persists OAuth callback notifications for C7.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n OAuthNotification) (string, error)
	MarkDelivered(ctx context.Context, id string, when time.Time) error
	ListUndelivered(ctx context.Context, userID string) ([]OAuthNotification, error)
}

// AuditRepository persists C8's per-action audit trail.
type AuditRepository interface {
	CreateAuditRow(ctx context.Context, row AuditRow) error
	ListAuditRows(ctx context.Context, limit int) ([]AuditRow, error)
}

// GoalRepository backs the DB-only goals/configuration tool group.
type GoalRepository interface {
	CreateGoal(ctx context.Context, g Goal) (string, error)
	GetGoal(ctx context.Context, id string) (*Goal, error)
	ListGoalsByUser(ctx context.Context, userID string) ([]Goal, error)
	UpdateGoalProgress(ctx context.Context, id string, currentValue float64) error
}

// Store aggregates every repository contract C1 exposes. Concrete backends
// (storepg, storesqlite) implement the whole surface against one underlying
// connection; callers depend on the narrower per-concern interfaces above.
type Store interface {
	UserRepository
	TenantRepository
	OAuthTokenRepository
	APIKeyRepository
	AdminTokenRepository
	A2ATaskRepository
	NotificationRepository
	GoalRepository
	AuditRepository

	Close() error
}
