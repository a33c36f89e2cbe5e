// Package storesqlite implements internal/store.Store on the default
// single-file SQLite deployment named in spec.md §6 (./data/users.db,
// rwc mode), using the same sqlx access pattern as storepg so both
// backends can be swapped via DatabaseConfig.Driver without touching
// internal/tools or internal/auth. Grounded on modernc.org/sqlite
// (Mindburn-Labs-helm, a pure-Go CGO-free driver) registered under the
// "sqlite" driver name that jmoiron/sqlx expects.
package storesqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/pierre-fitness/pierre-server/internal/store"
)

// Schema mirrors storepg.Schema with SQLite-compatible column types.
const Schema = `
CREATE TABLE IF NOT EXISTS tenants (
	id TEXT PRIMARY KEY, name TEXT NOT NULL, created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY, email TEXT NOT NULL UNIQUE, password_hash TEXT NOT NULL,
	display_name TEXT, tier TEXT NOT NULL DEFAULT 'starter', status TEXT NOT NULL DEFAULT 'pending',
	role TEXT NOT NULL DEFAULT 'user', tenant_id TEXT NOT NULL, created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_active DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP, approved_by TEXT, approved_at DATETIME,
	auth_provider TEXT NOT NULL DEFAULT 'email', firebase_uid TEXT
);
CREATE TABLE IF NOT EXISTS tenant_oauth_credentials (
	tenant_id TEXT NOT NULL, provider TEXT NOT NULL, client_id TEXT NOT NULL,
	client_secret_enc BLOB NOT NULL, scopes TEXT NOT NULL DEFAULT '', redirect_uri TEXT NOT NULL,
	PRIMARY KEY (tenant_id, provider)
);
CREATE TABLE IF NOT EXISTS user_oauth_tokens (
	user_id TEXT NOT NULL, tenant_id TEXT NOT NULL, provider TEXT NOT NULL,
	access_token_enc BLOB NOT NULL, refresh_token_enc BLOB, expires_at DATETIME, scope TEXT,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (user_id, tenant_id, provider)
);
CREATE TABLE IF NOT EXISTS api_keys (
	id TEXT PRIMARY KEY, user_id TEXT NOT NULL, name TEXT NOT NULL, description TEXT,
	key_hash TEXT NOT NULL UNIQUE, key_prefix TEXT NOT NULL, tier TEXT NOT NULL,
	rate_limit_requests INTEGER NOT NULL, rate_limit_window_seconds INTEGER NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT 1, expires_at DATETIME,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP, last_used_at DATETIME
);
CREATE TABLE IF NOT EXISTS api_key_usage (
	id TEXT PRIMARY KEY, api_key_id TEXT NOT NULL, timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	tool_name TEXT NOT NULL, status_code INTEGER NOT NULL, response_time_ms INTEGER NOT NULL,
	error_message TEXT, request_size_bytes INTEGER, response_size_bytes INTEGER, ip_address TEXT, user_agent TEXT
);
CREATE INDEX IF NOT EXISTS idx_api_key_usage_key_ts ON api_key_usage(api_key_id, timestamp);
CREATE TABLE IF NOT EXISTS admin_tokens (
	token_id TEXT PRIMARY KEY, service_name TEXT NOT NULL, service_description TEXT,
	permissions INTEGER NOT NULL DEFAULT 0, is_super_admin BOOLEAN NOT NULL DEFAULT 0,
	jwt_token_hash TEXT NOT NULL UNIQUE, token_prefix TEXT NOT NULL,
	issued_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP, expires_at DATETIME, is_active BOOLEAN NOT NULL DEFAULT 1
);
CREATE TABLE IF NOT EXISTS a2a_tasks (
	task_id TEXT PRIMARY KEY, client_id TEXT NOT NULL, status TEXT NOT NULL DEFAULT 'pending',
	progress REAL NOT NULL DEFAULT 0, result BLOB, error TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP, updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS oauth_notifications (
	id TEXT PRIMARY KEY, user_id TEXT NOT NULL, provider TEXT NOT NULL, success BOOLEAN NOT NULL,
	message TEXT NOT NULL, expires_at DATETIME, created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP, delivered_at DATETIME
);
CREATE TABLE IF NOT EXISTS goals (
	id TEXT PRIMARY KEY, user_id TEXT NOT NULL, provider TEXT, title TEXT NOT NULL, goal_type TEXT NOT NULL,
	target_value REAL NOT NULL, current_value REAL NOT NULL DEFAULT 0, unit TEXT NOT NULL, target_date DATETIME,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP, updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS audit_log (
	id TEXT PRIMARY KEY, actor_id TEXT NOT NULL, action TEXT NOT NULL, target_id TEXT NOT NULL,
	before_state BLOB, after_state BLOB, created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_audit_log_created_at ON audit_log(created_at DESC);
`

// Repository is the SQLite-backed store.Store implementation.
type Repository struct {
	db *sqlx.DB
}

// Open opens (creating if absent, rwc mode) the SQLite file at path,
// applies Schema, and returns a ready Repository.
func Open(path string) (*Repository, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, wrapErr(err)
	}
	db.SetMaxOpenConns(1) // SQLite serializes writers; avoid "database is locked"
	if _, err := db.Exec(Schema); err != nil {
		return nil, wrapErr(err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error { return r.db.Close() }

func (r *Repository) CreateUser(ctx context.Context, u store.User) (string, error) {
	query := `INSERT INTO users (id, email, password_hash, display_name, tier, status, role, tenant_id, created_at, last_active, approved_by, approved_at, auth_provider, firebase_uid)
		VALUES (:id, :email, :password_hash, :display_name, :tier, :status, :role, :tenant_id, :created_at, :last_active, :approved_by, :approved_at, :auth_provider, :firebase_uid)`
	_, err := r.db.NamedExecContext(ctx, query, u)
	if err != nil {
		if isUniqueViolation(err) {
			return "", store.ErrUserAlreadyExists()
		}
		return "", wrapErr(err)
	}
	return u.ID, nil
}

func (r *Repository) GetUserByID(ctx context.Context, id string) (*store.User, error) {
	var u store.User
	if err := r.db.GetContext(ctx, &u, `SELECT * FROM users WHERE id = ?`, id); err != nil {
		return nil, wrapNotFound(err, store.ErrUserNotFound())
	}
	return &u, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	var u store.User
	if err := r.db.GetContext(ctx, &u, `SELECT * FROM users WHERE email = ?`, email); err != nil {
		return nil, wrapNotFound(err, store.ErrUserNotFound())
	}
	return &u, nil
}

func (r *Repository) UpdateUser(ctx context.Context, u store.User) error {
	query := `UPDATE users SET display_name=:display_name, tier=:tier, status=:status, role=:role, last_active=:last_active, approved_by=:approved_by, approved_at=:approved_at WHERE id=:id`
	res, err := r.db.NamedExecContext(ctx, query, u)
	if err != nil {
		return wrapErr(err)
	}
	return requireRowsAffected(res, store.ErrUserNotFound())
}

func (r *Repository) GetUsersByStatus(ctx context.Context, status store.UserStatus) ([]store.User, error) {
	var users []store.User
	err := r.db.SelectContext(ctx, &users, `SELECT * FROM users WHERE status = ? ORDER BY created_at`, status)
	if err != nil {
		return nil, wrapErr(err)
	}
	return users, nil
}

func (r *Repository) UpdateUserStatus(ctx context.Context, id string, status store.UserStatus, approvedBy *string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET status = ?, approved_by = ?, approved_at = CURRENT_TIMESTAMP WHERE id = ?`, status, approvedBy, id)
	if err != nil {
		return wrapErr(err)
	}
	return requireRowsAffected(res, store.ErrUserNotFound())
}

func (r *Repository) CountAdmins(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT count(*) FROM users WHERE role IN ('admin', 'super_admin')`)
	return n, wrapErr(err)
}

func (r *Repository) CreateTenant(ctx context.Context, t store.Tenant) (string, error) {
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO tenants (id, name, created_at) VALUES (:id, :name, :created_at)`, t)
	if err != nil {
		return "", wrapErr(err)
	}
	return t.ID, nil
}

func (r *Repository) GetTenant(ctx context.Context, id string) (*store.Tenant, error) {
	var t store.Tenant
	if err := r.db.GetContext(ctx, &t, `SELECT * FROM tenants WHERE id = ?`, id); err != nil {
		return nil, wrapNotFound(err, store.ErrTenantNotFound())
	}
	return &t, nil
}

type tenantOAuthCredsRow struct {
	TenantID        string `db:"tenant_id"`
	Provider        string `db:"provider"`
	ClientID        string `db:"client_id"`
	ClientSecretEnc []byte `db:"client_secret_enc"`
	Scopes          string `db:"scopes"`
	RedirectURI     string `db:"redirect_uri"`
}

func (r *Repository) UpsertTenantOAuthCredentials(ctx context.Context, c store.TenantOAuthCredentials) error {
	row := tenantOAuthCredsRow{c.TenantID, c.Provider, c.ClientID, c.ClientSecretEnc, strings.Join(c.Scopes, ","), c.RedirectURI}
	query := `INSERT INTO tenant_oauth_credentials (tenant_id, provider, client_id, client_secret_enc, scopes, redirect_uri)
		VALUES (:tenant_id, :provider, :client_id, :client_secret_enc, :scopes, :redirect_uri)
		ON CONFLICT (tenant_id, provider) DO UPDATE SET client_id=excluded.client_id, client_secret_enc=excluded.client_secret_enc, scopes=excluded.scopes, redirect_uri=excluded.redirect_uri`
	_, err := r.db.NamedExecContext(ctx, query, row)
	return wrapErr(err)
}

func (r *Repository) GetTenantOAuthCredentials(ctx context.Context, tenantID, provider string) (*store.TenantOAuthCredentials, error) {
	var row tenantOAuthCredsRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM tenant_oauth_credentials WHERE tenant_id = ? AND provider = ?`, tenantID, provider)
	if err != nil {
		return nil, wrapNotFound(err, store.ErrCredsNotFound())
	}
	var scopes []string
	if row.Scopes != "" {
		scopes = strings.Split(row.Scopes, ",")
	}
	return &store.TenantOAuthCredentials{TenantID: row.TenantID, Provider: row.Provider, ClientID: row.ClientID, ClientSecretEnc: row.ClientSecretEnc, Scopes: scopes, RedirectURI: row.RedirectURI}, nil
}

func (r *Repository) UpsertUserOAuthToken(ctx context.Context, t store.UserOAuthToken) error {
	query := `INSERT INTO user_oauth_tokens (user_id, tenant_id, provider, access_token_enc, refresh_token_enc, expires_at, scope, updated_at)
		VALUES (:user_id, :tenant_id, :provider, :access_token_enc, :refresh_token_enc, :expires_at, :scope, :updated_at)
		ON CONFLICT (user_id, tenant_id, provider) DO UPDATE SET access_token_enc=excluded.access_token_enc, refresh_token_enc=excluded.refresh_token_enc, expires_at=excluded.expires_at, scope=excluded.scope, updated_at=excluded.updated_at`
	_, err := r.db.NamedExecContext(ctx, query, t)
	return wrapErr(err)
}

func (r *Repository) GetUserOAuthToken(ctx context.Context, userID, tenantID, provider string) (*store.UserOAuthToken, error) {
	var t store.UserOAuthToken
	query := `SELECT * FROM user_oauth_tokens WHERE user_id = ? AND tenant_id = ? AND provider = ?`
	if err := r.db.GetContext(ctx, &t, query, userID, tenantID, provider); err != nil {
		return nil, wrapNotFound(err, store.ErrTokenNotFound())
	}
	return &t, nil
}

func (r *Repository) DeleteUserOAuthToken(ctx context.Context, userID, tenantID, provider string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_oauth_tokens WHERE user_id = ? AND tenant_id = ? AND provider = ?`, userID, tenantID, provider)
	if err != nil {
		return wrapErr(err)
	}
	return requireRowsAffected(res, store.ErrTokenNotFound())
}

func (r *Repository) CreateAPIKey(ctx context.Context, k store.APIKey) error {
	query := `INSERT INTO api_keys (id, user_id, name, description, key_hash, key_prefix, tier, rate_limit_requests, rate_limit_window_seconds, is_active, expires_at, created_at, last_used_at)
		VALUES (:id, :user_id, :name, :description, :key_hash, :key_prefix, :tier, :rate_limit_requests, :rate_limit_window_seconds, :is_active, :expires_at, :created_at, :last_used_at)`
	_, err := r.db.NamedExecContext(ctx, query, k)
	return wrapErr(err)
}

func (r *Repository) GetAPIKeyByID(ctx context.Context, id string) (*store.APIKey, error) {
	var k store.APIKey
	if err := r.db.GetContext(ctx, &k, `SELECT * FROM api_keys WHERE id = ?`, id); err != nil {
		return nil, wrapNotFound(err, store.ErrAPIKeyNotFound())
	}
	return &k, nil
}

func (r *Repository) GetAPIKeyByHash(ctx context.Context, hash string) (*store.APIKey, error) {
	var k store.APIKey
	if err := r.db.GetContext(ctx, &k, `SELECT * FROM api_keys WHERE key_hash = ?`, hash); err != nil {
		return nil, wrapNotFound(err, store.ErrAPIKeyNotFound())
	}
	return &k, nil
}

func (r *Repository) ListAPIKeysByUser(ctx context.Context, userID string) ([]store.APIKey, error) {
	var keys []store.APIKey
	err := r.db.SelectContext(ctx, &keys, `SELECT * FROM api_keys WHERE user_id = ? ORDER BY created_at DESC`, userID)
	return keys, wrapErr(err)
}

func (r *Repository) UpdateAPIKey(ctx context.Context, k store.APIKey) error {
	query := `UPDATE api_keys SET name=:name, description=:description, tier=:tier, rate_limit_requests=:rate_limit_requests, rate_limit_window_seconds=:rate_limit_window_seconds, is_active=:is_active, expires_at=:expires_at WHERE id=:id`
	res, err := r.db.NamedExecContext(ctx, query, k)
	if err != nil {
		return wrapErr(err)
	}
	return requireRowsAffected(res, store.ErrAPIKeyNotFound())
}

func (r *Repository) DeactivateAPIKey(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE api_keys SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return wrapErr(err)
	}
	return requireRowsAffected(res, store.ErrAPIKeyNotFound())
}

func (r *Repository) TouchLastUsed(ctx context.Context, id string, when time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE api_keys SET last_used_at = ? WHERE id = ?`, when, id)
	return wrapErr(err)
}

func (r *Repository) RecordUsage(ctx context.Context, row store.APIKeyUsage) error {
	query := `INSERT INTO api_key_usage (id, api_key_id, timestamp, tool_name, status_code, response_time_ms, error_message, request_size_bytes, response_size_bytes, ip_address, user_agent)
		VALUES (:id, :api_key_id, :timestamp, :tool_name, :status_code, :response_time_ms, :error_message, :request_size_bytes, :response_size_bytes, :ip_address, :user_agent)`
	_, err := r.db.NamedExecContext(ctx, query, row)
	return wrapErr(err)
}

func (r *Repository) ListUsage(ctx context.Context, apiKeyID string, start, end time.Time) ([]store.APIKeyUsage, error) {
	var rows []store.APIKeyUsage
	query := `SELECT * FROM api_key_usage WHERE api_key_id = ? AND timestamp BETWEEN ? AND ? ORDER BY timestamp`
	err := r.db.SelectContext(ctx, &rows, query, apiKeyID, start, end)
	return rows, wrapErr(err)
}

func (r *Repository) CreateAdminToken(ctx context.Context, t store.AdminToken) error {
	query := `INSERT INTO admin_tokens (token_id, service_name, service_description, permissions, is_super_admin, jwt_token_hash, token_prefix, issued_at, expires_at, is_active)
		VALUES (:token_id, :service_name, :service_description, :permissions, :is_super_admin, :jwt_token_hash, :token_prefix, :issued_at, :expires_at, :is_active)`
	_, err := r.db.NamedExecContext(ctx, query, t)
	return wrapErr(err)
}

func (r *Repository) GetAdminToken(ctx context.Context, tokenID string) (*store.AdminToken, error) {
	var t store.AdminToken
	if err := r.db.GetContext(ctx, &t, `SELECT * FROM admin_tokens WHERE token_id = ?`, tokenID); err != nil {
		return nil, wrapNotFound(err, store.ErrAdminTokenNotFound())
	}
	return &t, nil
}

func (r *Repository) ListAdminTokens(ctx context.Context) ([]store.AdminToken, error) {
	var tokens []store.AdminToken
	err := r.db.SelectContext(ctx, &tokens, `SELECT * FROM admin_tokens ORDER BY issued_at DESC`)
	return tokens, wrapErr(err)
}

func (r *Repository) DeactivateAdminToken(ctx context.Context, tokenID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE admin_tokens SET is_active = 0 WHERE token_id = ?`, tokenID)
	if err != nil {
		return wrapErr(err)
	}
	return requireRowsAffected(res, store.ErrAdminTokenNotFound())
}

func (r *Repository) CountActiveAdminTokens(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT count(*) FROM admin_tokens WHERE is_active = 1`)
	return n, wrapErr(err)
}

func (r *Repository) CreateTask(ctx context.Context, t store.A2ATask) error {
	query := `INSERT INTO a2a_tasks (task_id, client_id, status, progress, result, error, created_at, updated_at)
		VALUES (:task_id, :client_id, :status, :progress, :result, :error, :created_at, :updated_at)`
	_, err := r.db.NamedExecContext(ctx, query, t)
	return wrapErr(err)
}

func (r *Repository) GetTask(ctx context.Context, taskID string) (*store.A2ATask, error) {
	var t store.A2ATask
	if err := r.db.GetContext(ctx, &t, `SELECT * FROM a2a_tasks WHERE task_id = ?`, taskID); err != nil {
		return nil, wrapNotFound(err, store.ErrTaskNotFound())
	}
	return &t, nil
}

func (r *Repository) UpdateTaskProgress(ctx context.Context, taskID string, progress float64) error {
	query := `UPDATE a2a_tasks SET progress = ?, updated_at = CURRENT_TIMESTAMP WHERE task_id = ? AND progress <= ? AND status NOT IN ('succeeded','failed','cancelled')`
	_, err := r.db.ExecContext(ctx, query, progress, taskID, progress)
	return wrapErr(err)
}

func (r *Repository) TransitionTask(ctx context.Context, taskID string, status store.A2ATaskStatus, result []byte, taskErr *string) error {
	query := `UPDATE a2a_tasks SET status = ?, result = ?, error = ?, updated_at = CURRENT_TIMESTAMP WHERE task_id = ? AND status NOT IN ('succeeded','failed','cancelled')`
	res, err := r.db.ExecContext(ctx, query, status, result, taskErr, taskID)
	if err != nil {
		return wrapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, getErr := r.GetTask(ctx, taskID); getErr != nil {
			return getErr
		}
		return store.ErrStorage(nil)
	}
	return nil
}

func (r *Repository) CreateNotification(ctx context.Context, n store.OAuthNotification) (string, error) {
	query := `INSERT INTO oauth_notifications (id, user_id, provider, success, message, expires_at, created_at, delivered_at)
		VALUES (:id, :user_id, :provider, :success, :message, :expires_at, :created_at, :delivered_at)`
	_, err := r.db.NamedExecContext(ctx, query, n)
	return n.ID, wrapErr(err)
}

func (r *Repository) MarkDelivered(ctx context.Context, id string, when time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE oauth_notifications SET delivered_at = ? WHERE id = ?`, when, id)
	return wrapErr(err)
}

func (r *Repository) ListUndelivered(ctx context.Context, userID string) ([]store.OAuthNotification, error) {
	var rows []store.OAuthNotification
	err := r.db.SelectContext(ctx, &rows, `SELECT * FROM oauth_notifications WHERE user_id = ? AND delivered_at IS NULL ORDER BY created_at`, userID)
	return rows, wrapErr(err)
}

func (r *Repository) CreateGoal(ctx context.Context, g store.Goal) (string, error) {
	query := `INSERT INTO goals (id, user_id, provider, title, goal_type, target_value, current_value, unit, target_date, created_at, updated_at)
		VALUES (:id, :user_id, :provider, :title, :goal_type, :target_value, :current_value, :unit, :target_date, :created_at, :updated_at)`
	_, err := r.db.NamedExecContext(ctx, query, g)
	return g.ID, wrapErr(err)
}

func (r *Repository) GetGoal(ctx context.Context, id string) (*store.Goal, error) {
	var g store.Goal
	if err := r.db.GetContext(ctx, &g, `SELECT * FROM goals WHERE id = ?`, id); err != nil {
		return nil, wrapNotFound(err, store.ErrGoalNotFound())
	}
	return &g, nil
}

func (r *Repository) ListGoalsByUser(ctx context.Context, userID string) ([]store.Goal, error) {
	var goals []store.Goal
	err := r.db.SelectContext(ctx, &goals, `SELECT * FROM goals WHERE user_id = ? ORDER BY created_at DESC`, userID)
	return goals, wrapErr(err)
}

func (r *Repository) UpdateGoalProgress(ctx context.Context, id string, currentValue float64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE goals SET current_value = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, currentValue, id)
	if err != nil {
		return wrapErr(err)
	}
	return requireRowsAffected(res, store.ErrGoalNotFound())
}

func (r *Repository) CreateAuditRow(ctx context.Context, row store.AuditRow) error {
	query := `INSERT INTO audit_log (id, actor_id, action, target_id, before_state, after_state, created_at)
		VALUES (:id, :actor_id, :action, :target_id, :before_state, :after_state, :created_at)`
	_, err := r.db.NamedExecContext(ctx, query, row)
	return wrapErr(err)
}

func (r *Repository) ListAuditRows(ctx context.Context, limit int) ([]store.AuditRow, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []store.AuditRow
	err := r.db.SelectContext(ctx, &rows, `SELECT * FROM audit_log ORDER BY created_at DESC LIMIT ?`, limit)
	return rows, wrapErr(err)
}

// wrapErr adapts store.ErrStorage for call sites that don't already guard
// on err != nil: returning a typed *errx.Error(nil) through an `error`
// return would produce a non-nil interface, so this checks first.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	return store.ErrStorage(err)
}

func wrapNotFound(err error, notFound error) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return wrapErr(err)
}

func requireRowsAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return wrapErr(err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}
