package storepg

import (
	"context"
	"database/sql"
	"time"

	"github.com/pierre-fitness/pierre-server/internal/store"
)

func (r *Repository) CreateAPIKey(ctx context.Context, k store.APIKey) error {
	query := `
		INSERT INTO api_keys (
			id, user_id, name, description, key_hash, key_prefix, tier,
			rate_limit_requests, rate_limit_window_seconds, is_active,
			expires_at, created_at, last_used_at
		) VALUES (
			:id, :user_id, :name, :description, :key_hash, :key_prefix, :tier,
			:rate_limit_requests, :rate_limit_window_seconds, :is_active,
			:expires_at, :created_at, :last_used_at
		)`
	_, err := r.db.NamedExecContext(ctx, query, k)
	if err != nil {
		return store.ErrStorage(err)
	}
	return nil
}

func (r *Repository) GetAPIKeyByID(ctx context.Context, id string) (*store.APIKey, error) {
	var k store.APIKey
	err := r.db.GetContext(ctx, &k, `SELECT * FROM api_keys WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrAPIKeyNotFound()
		}
		return nil, store.ErrStorage(err)
	}
	return &k, nil
}

// GetAPIKeyByHash is the O(log n) lookup spec.md §4.1 requires: key_hash
// carries a unique index so this is an index-only scan.
func (r *Repository) GetAPIKeyByHash(ctx context.Context, hash string) (*store.APIKey, error) {
	var k store.APIKey
	err := r.db.GetContext(ctx, &k, `SELECT * FROM api_keys WHERE key_hash = $1`, hash)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrAPIKeyNotFound()
		}
		return nil, store.ErrStorage(err)
	}
	return &k, nil
}

func (r *Repository) ListAPIKeysByUser(ctx context.Context, userID string) ([]store.APIKey, error) {
	var keys []store.APIKey
	err := r.db.SelectContext(ctx, &keys, `SELECT * FROM api_keys WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, store.ErrStorage(err)
	}
	return keys, nil
}

func (r *Repository) UpdateAPIKey(ctx context.Context, k store.APIKey) error {
	query := `
		UPDATE api_keys SET
			name = :name, description = :description, tier = :tier,
			rate_limit_requests = :rate_limit_requests,
			rate_limit_window_seconds = :rate_limit_window_seconds,
			is_active = :is_active, expires_at = :expires_at
		WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, k)
	if err != nil {
		return store.ErrStorage(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return store.ErrAPIKeyNotFound()
	}
	return nil
}

// DeactivateAPIKey is a soft delete (spec.md §3 invariant).
func (r *Repository) DeactivateAPIKey(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE api_keys SET is_active = false WHERE id = $1`, id)
	if err != nil {
		return store.ErrStorage(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return store.ErrAPIKeyNotFound()
	}
	return nil
}

func (r *Repository) TouchLastUsed(ctx context.Context, id string, when time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE api_keys SET last_used_at = $1 WHERE id = $2`, when, id)
	if err != nil {
		return store.ErrStorage(err)
	}
	return nil
}

// RecordUsage appends an audit row. Rows survive key deactivation per
// spec.md §3 ("APIKeyUsage rows ... survive deactivation for audit").
func (r *Repository) RecordUsage(ctx context.Context, row store.APIKeyUsage) error {
	query := `
		INSERT INTO api_key_usage (
			id, api_key_id, timestamp, tool_name, status_code, response_time_ms,
			error_message, request_size_bytes, response_size_bytes, ip_address, user_agent
		) VALUES (
			:id, :api_key_id, :timestamp, :tool_name, :status_code, :response_time_ms,
			:error_message, :request_size_bytes, :response_size_bytes, :ip_address, :user_agent
		)`
	_, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return store.ErrStorage(err)
	}
	return nil
}

func (r *Repository) ListUsage(ctx context.Context, apiKeyID string, start, end time.Time) ([]store.APIKeyUsage, error) {
	var rows []store.APIKeyUsage
	query := `SELECT * FROM api_key_usage WHERE api_key_id = $1 AND timestamp BETWEEN $2 AND $3 ORDER BY timestamp`
	err := r.db.SelectContext(ctx, &rows, query, apiKeyID, start, end)
	if err != nil {
		return nil, store.ErrStorage(err)
	}
	return rows, nil
}
