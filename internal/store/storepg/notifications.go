package storepg

import (
	"context"
	"time"

	"github.com/pierre-fitness/pierre-server/internal/store"
)

func (r *Repository) CreateNotification(ctx context.Context, n store.OAuthNotification) (string, error) {
	query := `
		INSERT INTO oauth_notifications (id, user_id, provider, success, message, expires_at, created_at, delivered_at)
		VALUES (:id, :user_id, :provider, :success, :message, :expires_at, :created_at, :delivered_at)`
	_, err := r.db.NamedExecContext(ctx, query, n)
	if err != nil {
		return "", store.ErrStorage(err)
	}
	return n.ID, nil
}

func (r *Repository) MarkDelivered(ctx context.Context, id string, when time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE oauth_notifications SET delivered_at = $1 WHERE id = $2`, when, id)
	if err != nil {
		return store.ErrStorage(err)
	}
	return nil
}

func (r *Repository) ListUndelivered(ctx context.Context, userID string) ([]store.OAuthNotification, error) {
	var rows []store.OAuthNotification
	query := `SELECT * FROM oauth_notifications WHERE user_id = $1 AND delivered_at IS NULL ORDER BY created_at`
	err := r.db.SelectContext(ctx, &rows, query, userID)
	if err != nil {
		return nil, store.ErrStorage(err)
	}
	return rows, nil
}
