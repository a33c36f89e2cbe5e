package storepg

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/pierre-fitness/pierre-server/internal/store"
)

func (r *Repository) CreateUser(ctx context.Context, u store.User) (string, error) {
	query := `
		INSERT INTO users (
			id, email, password_hash, display_name, tier, status, role,
			tenant_id, created_at, last_active, approved_by, approved_at,
			auth_provider, firebase_uid
		) VALUES (
			:id, :email, :password_hash, :display_name, :tier, :status, :role,
			:tenant_id, :created_at, :last_active, :approved_by, :approved_at,
			:auth_provider, :firebase_uid
		)`
	_, err := r.db.NamedExecContext(ctx, query, u)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return "", store.ErrUserAlreadyExists()
		}
		return "", store.ErrStorage(err)
	}
	return u.ID, nil
}

func (r *Repository) GetUserByID(ctx context.Context, id string) (*store.User, error) {
	var u store.User
	err := r.db.GetContext(ctx, &u, `SELECT * FROM users WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrUserNotFound()
		}
		return nil, store.ErrStorage(err)
	}
	return &u, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	var u store.User
	err := r.db.GetContext(ctx, &u, `SELECT * FROM users WHERE email = $1`, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrUserNotFound()
		}
		return nil, store.ErrStorage(err)
	}
	return &u, nil
}

func (r *Repository) UpdateUser(ctx context.Context, u store.User) error {
	query := `
		UPDATE users SET
			display_name = :display_name, tier = :tier, status = :status,
			role = :role, last_active = :last_active, approved_by = :approved_by,
			approved_at = :approved_at
		WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, u)
	if err != nil {
		return store.ErrStorage(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return store.ErrUserNotFound()
	}
	return nil
}

func (r *Repository) GetUsersByStatus(ctx context.Context, status store.UserStatus) ([]store.User, error) {
	var users []store.User
	err := r.db.SelectContext(ctx, &users, `SELECT * FROM users WHERE status = $1 ORDER BY created_at`, status)
	if err != nil {
		return nil, store.ErrStorage(err)
	}
	return users, nil
}

func (r *Repository) UpdateUserStatus(ctx context.Context, id string, status store.UserStatus, approvedBy *string) error {
	query := `UPDATE users SET status = $1, approved_by = $2, approved_at = now() WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, status, approvedBy, id)
	if err != nil {
		return store.ErrStorage(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return store.ErrUserNotFound()
	}
	return nil
}

func (r *Repository) CountAdmins(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT count(*) FROM users WHERE role IN ('admin', 'super_admin')`)
	if err != nil {
		return 0, store.ErrStorage(err)
	}
	return n, nil
}
