package storepg

import (
	"context"
	"database/sql"

	"github.com/pierre-fitness/pierre-server/internal/store"
)

// UpsertUserOAuthToken replaces the (user, tenant, provider) row atomically
// (spec.md §3 invariant: at most one row per key, upsert on refresh).
func (r *Repository) UpsertUserOAuthToken(ctx context.Context, t store.UserOAuthToken) error {
	query := `
		INSERT INTO user_oauth_tokens (user_id, tenant_id, provider, access_token_enc, refresh_token_enc, expires_at, scope, updated_at)
		VALUES (:user_id, :tenant_id, :provider, :access_token_enc, :refresh_token_enc, :expires_at, :scope, :updated_at)
		ON CONFLICT (user_id, tenant_id, provider) DO UPDATE SET
			access_token_enc = EXCLUDED.access_token_enc,
			refresh_token_enc = EXCLUDED.refresh_token_enc,
			expires_at = EXCLUDED.expires_at,
			scope = EXCLUDED.scope,
			updated_at = EXCLUDED.updated_at`
	_, err := r.db.NamedExecContext(ctx, query, t)
	if err != nil {
		return store.ErrStorage(err)
	}
	return nil
}

func (r *Repository) GetUserOAuthToken(ctx context.Context, userID, tenantID, provider string) (*store.UserOAuthToken, error) {
	var t store.UserOAuthToken
	query := `SELECT * FROM user_oauth_tokens WHERE user_id = $1 AND tenant_id = $2 AND provider = $3`
	err := r.db.GetContext(ctx, &t, query, userID, tenantID, provider)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrTokenNotFound()
		}
		return nil, store.ErrStorage(err)
	}
	return &t, nil
}

func (r *Repository) DeleteUserOAuthToken(ctx context.Context, userID, tenantID, provider string) error {
	query := `DELETE FROM user_oauth_tokens WHERE user_id = $1 AND tenant_id = $2 AND provider = $3`
	result, err := r.db.ExecContext(ctx, query, userID, tenantID, provider)
	if err != nil {
		return store.ErrStorage(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return store.ErrTokenNotFound()
	}
	return nil
}
