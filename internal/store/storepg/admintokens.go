package storepg

import (
	"context"
	"database/sql"

	"github.com/pierre-fitness/pierre-server/internal/store"
)

func (r *Repository) CreateAdminToken(ctx context.Context, t store.AdminToken) error {
	query := `
		INSERT INTO admin_tokens (
			token_id, service_name, service_description, permissions, is_super_admin,
			jwt_token_hash, token_prefix, issued_at, expires_at, is_active
		) VALUES (
			:token_id, :service_name, :service_description, :permissions, :is_super_admin,
			:jwt_token_hash, :token_prefix, :issued_at, :expires_at, :is_active
		)`
	_, err := r.db.NamedExecContext(ctx, query, t)
	if err != nil {
		return store.ErrStorage(err)
	}
	return nil
}

func (r *Repository) GetAdminToken(ctx context.Context, tokenID string) (*store.AdminToken, error) {
	var t store.AdminToken
	err := r.db.GetContext(ctx, &t, `SELECT * FROM admin_tokens WHERE token_id = $1`, tokenID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrAdminTokenNotFound()
		}
		return nil, store.ErrStorage(err)
	}
	return &t, nil
}

func (r *Repository) ListAdminTokens(ctx context.Context) ([]store.AdminToken, error) {
	var tokens []store.AdminToken
	err := r.db.SelectContext(ctx, &tokens, `SELECT * FROM admin_tokens ORDER BY issued_at DESC`)
	if err != nil {
		return nil, store.ErrStorage(err)
	}
	return tokens, nil
}

func (r *Repository) DeactivateAdminToken(ctx context.Context, tokenID string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE admin_tokens SET is_active = false WHERE token_id = $1`, tokenID)
	if err != nil {
		return store.ErrStorage(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return store.ErrAdminTokenNotFound()
	}
	return nil
}

func (r *Repository) CountActiveAdminTokens(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT count(*) FROM admin_tokens WHERE is_active = true`)
	if err != nil {
		return 0, store.ErrStorage(err)
	}
	return n, nil
}
