// Package store defines Pierre's credential & tenant persistence contract
// (spec.md C1) and the domain types it persists. Concrete backends live in
// storepg (PostgreSQL/sqlx, the teacher's stack) and storesqlite (the
// default single-file deployment, spec.md §6).
package store

import "time"

type Tier string

const (
	TierStarter      Tier = "starter"
	TierProfessional Tier = "professional"
	TierEnterprise   Tier = "enterprise"
)

type UserStatus string

const (
	UserStatusPending   UserStatus = "pending"
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

type UserRole string

const (
	RoleUser       UserRole = "user"
	RoleAdmin      UserRole = "admin"
	RoleSuperAdmin UserRole = "super_admin"
)

type AuthProvider string

const (
	AuthProviderEmail  AuthProvider = "email"
	AuthProviderGoogle AuthProvider = "google"
	AuthProviderApple  AuthProvider = "apple"
)

// Tenant is the isolation boundary: a user belongs to exactly one tenant.
type Tenant struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// User mirrors spec.md §3's User entity.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	DisplayName  *string    `db:"display_name" json:"display_name,omitempty"`
	Tier         Tier       `db:"tier" json:"tier"`
	Status       UserStatus `db:"status" json:"status"`
	Role         UserRole   `db:"role" json:"role"`
	TenantID     string     `db:"tenant_id" json:"tenant_id"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	LastActive   time.Time  `db:"last_active" json:"last_active"`
	ApprovedBy   *string    `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt   *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	AuthProvider AuthProvider `db:"auth_provider" json:"auth_provider"`
	FirebaseUID  *string    `db:"firebase_uid" json:"firebase_uid,omitempty"`
}

// CanLogIn enforces the status=pending invariant from spec.md §3.
func (u *User) CanLogIn() bool { return u.Status == UserStatusActive }

// IsAdmin reports whether the role is admin or super_admin; it does not look at Status.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin || u.Role == RoleSuperAdmin }

// TenantOAuthCredentials is the per-tenant provider app registration.
type TenantOAuthCredentials struct {
	TenantID           string   `db:"tenant_id" json:"tenant_id"`
	Provider           string   `db:"provider" json:"provider"`
	ClientID           string   `db:"client_id" json:"client_id"`
	ClientSecretEnc    []byte   `db:"client_secret_enc" json:"-"`
	Scopes             []string `db:"-" json:"scopes"`
	ScopesRaw          string   `db:"scopes" json:"-"`
	RedirectURI        string   `db:"redirect_uri" json:"redirect_uri"`
}

// UserOAuthToken is the per-user per-provider credential (spec.md §3).
// AccessTokenEnc/RefreshTokenEnc are AEAD ciphertext; plaintext never
// leaves C4/C1 (spec.md §8 property 5).
type UserOAuthToken struct {
	UserID          string     `db:"user_id" json:"user_id"`
	TenantID        string     `db:"tenant_id" json:"tenant_id"`
	Provider        string     `db:"provider" json:"provider"`
	AccessTokenEnc  []byte     `db:"access_token_enc" json:"-"`
	RefreshTokenEnc []byte     `db:"refresh_token_enc" json:"-"`
	ExpiresAt       *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	Scope           *string    `db:"scope" json:"scope,omitempty"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// IsValid reports whether the access token is still usable with the ε
// margin C4 applies before triggering a refresh.
func (t *UserOAuthToken) IsValid(epsilon time.Duration) bool {
	if t.ExpiresAt == nil {
		return true
	}
	return t.ExpiresAt.After(time.Now().Add(epsilon))
}

func (t *UserOAuthToken) IsRefreshable() bool { return len(t.RefreshTokenEnc) > 0 }

// APIKey is the hashed, prefix-displayed credential of spec.md §3.
type APIKey struct {
	ID                    string     `db:"id" json:"id"`
	UserID                string     `db:"user_id" json:"user_id"`
	Name                  string     `db:"name" json:"name"`
	Description           *string    `db:"description" json:"description,omitempty"`
	KeyHash               string     `db:"key_hash" json:"-"`
	KeyPrefix             string     `db:"key_prefix" json:"key_prefix"`
	Tier                  Tier       `db:"tier" json:"tier"`
	RateLimitRequests     int        `db:"rate_limit_requests" json:"rate_limit_requests"`
	RateLimitWindowSeconds int       `db:"rate_limit_window_seconds" json:"rate_limit_window_seconds"`
	IsActive              bool       `db:"is_active" json:"is_active"`
	ExpiresAt             *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	LastUsedAt            *time.Time `db:"last_used_at" json:"last_used_at,omitempty"`
}

func (k *APIKey) IsExpired() bool {
	return k.ExpiresAt != nil && time.Now().After(*k.ExpiresAt)
}

func (k *APIKey) IsValid() bool { return k.IsActive && !k.IsExpired() }

// APIKeyUsage is an append-only audit row (spec.md §3, §8 property 2).
type APIKeyUsage struct {
	ID                 string    `db:"id" json:"id"`
	APIKeyID           string    `db:"api_key_id" json:"api_key_id"`
	Timestamp          time.Time `db:"timestamp" json:"timestamp"`
	ToolName           string    `db:"tool_name" json:"tool_name"`
	StatusCode         int       `db:"status_code" json:"status_code"`
	ResponseTimeMs     int       `db:"response_time_ms" json:"response_time_ms"`
	ErrorMessage       *string   `db:"error_message" json:"error_message,omitempty"`
	RequestSizeBytes   *int      `db:"request_size_bytes" json:"request_size_bytes,omitempty"`
	ResponseSizeBytes  *int      `db:"response_size_bytes" json:"response_size_bytes,omitempty"`
	IPAddress          *string   `db:"ip_address" json:"ip_address,omitempty"`
	UserAgent          *string   `db:"user_agent" json:"user_agent,omitempty"`
}

// Permission is a bit in the AdminToken bitmask (spec.md §3).
type Permission uint64

const (
	PermProvisionKeys Permission = 1 << iota
	PermRevokeKeys
	PermListKeys
	PermUpdateKeyLimits
	PermManageUsers
	PermManageAdminTokens
	PermViewAuditLogs
)

var permissionNames = map[Permission]string{
	PermProvisionKeys:     "ProvisionKeys",
	PermRevokeKeys:        "RevokeKeys",
	PermListKeys:          "ListKeys",
	PermUpdateKeyLimits:   "UpdateKeyLimits",
	PermManageUsers:       "ManageUsers",
	PermManageAdminTokens: "ManageAdminTokens",
	PermViewAuditLogs:     "ViewAuditLogs",
}

func (p Permission) String() string {
	if name, ok := permissionNames[p]; ok {
		return name
	}
	return "Unknown"
}

// AllPermissions is the set a super-admin token implicitly carries.
func AllPermissions() Permission {
	var all Permission
	for p := range permissionNames {
		all |= p
	}
	return all
}

// Has reports whether mask contains p.
func (p Permission) Has(check Permission) bool { return p&check == check }

// AdminToken is the service-principal credential of spec.md §3/§4.2/§4.8.
type AdminToken struct {
	TokenID            string     `db:"token_id" json:"token_id"`
	ServiceName        string     `db:"service_name" json:"service_name"`
	ServiceDescription *string    `db:"service_description" json:"service_description,omitempty"`
	Permissions        Permission `db:"permissions" json:"permissions"`
	IsSuperAdmin       bool       `db:"is_super_admin" json:"is_super_admin"`
	JWTTokenHash       string     `db:"jwt_token_hash" json:"-"`
	TokenPrefix        string     `db:"token_prefix" json:"token_prefix"`
	IssuedAt           time.Time  `db:"issued_at" json:"issued_at"`
	ExpiresAt          *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	IsActive           bool       `db:"is_active" json:"is_active"`
}

func (t *AdminToken) EffectivePermissions() Permission {
	if t.IsSuperAdmin {
		return AllPermissions()
	}
	return t.Permissions
}

type A2ATaskStatus string

const (
	A2ATaskPending   A2ATaskStatus = "pending"
	A2ATaskRunning   A2ATaskStatus = "running"
	A2ATaskSucceeded A2ATaskStatus = "succeeded"
	A2ATaskFailed    A2ATaskStatus = "failed"
	A2ATaskCancelled A2ATaskStatus = "cancelled"
)

func (s A2ATaskStatus) IsTerminal() bool {
	return s == A2ATaskSucceeded || s == A2ATaskFailed || s == A2ATaskCancelled
}

// A2ATask is the long-running-call handle of spec.md §3/§4.6.
type A2ATask struct {
	TaskID    string        `db:"task_id" json:"task_id"`
	ClientID  string        `db:"client_id" json:"client_id"`
	Status    A2ATaskStatus `db:"status" json:"status"`
	Progress  float64       `db:"progress" json:"progress"`
	Result    []byte        `db:"result" json:"result,omitempty"`
	Error     *string       `db:"error" json:"error,omitempty"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}

// OAuthNotification is written by the callback handler and read by C7.
type OAuthNotification struct {
	ID          string     `db:"id" json:"id"`
	UserID      string     `db:"user_id" json:"user_id"`
	Provider    string     `db:"provider" json:"provider"`
	Success     bool       `db:"success" json:"success"`
	Message     string     `db:"message" json:"message"`
	ExpiresAt   *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	DeliveredAt *time.Time `db:"delivered_at" json:"delivered_at,omitempty"`
}

// Goal is a DB-only configuration object used by the goals/configuration
// handler group (spec.md §4.5).
type Goal struct {
	ID          string     `db:"id" json:"id"`
	UserID      string     `db:"user_id" json:"user_id"`
	Provider    *string    `db:"provider" json:"provider,omitempty"`
	Title       string     `db:"title" json:"title"`
	GoalType    string     `db:"goal_type" json:"goal_type"`
	TargetValue float64    `db:"target_value" json:"target_value"`
	CurrentValue float64   `db:"current_value" json:"current_value"`
	Unit        string     `db:"unit" json:"unit"`
	TargetDate  *time.Time `db:"target_date" json:"target_date,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// AuditRow is C8's per-action record (spec.md §4.8 "every admin action
// produces an audit row (who, when, what id, before/after)"). Before/After
// are opaque JSON snapshots of the affected row, not typed per-action, so
// one table and one writer serve every admin operation.
type AuditRow struct {
	ID         string    `db:"id" json:"id"`
	ActorID    string    `db:"actor_id" json:"actor_id"` // AdminToken.token_id
	Action     string    `db:"action" json:"action"`
	TargetID   string    `db:"target_id" json:"target_id"`
	Before     []byte    `db:"before_state" json:"before,omitempty"`
	After      []byte    `db:"after_state" json:"after,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
