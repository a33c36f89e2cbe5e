package storepg

import (
	"context"

	"github.com/pierre-fitness/pierre-server/internal/store"
)

func (r *Repository) CreateAuditRow(ctx context.Context, row store.AuditRow) error {
	query := `
		INSERT INTO audit_log (id, actor_id, action, target_id, before_state, after_state, created_at)
		VALUES (:id, :actor_id, :action, :target_id, :before_state, :after_state, :created_at)`
	_, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return store.ErrStorage(err)
	}
	return nil
}

func (r *Repository) ListAuditRows(ctx context.Context, limit int) ([]store.AuditRow, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []store.AuditRow
	err := r.db.SelectContext(ctx, &rows, `SELECT * FROM audit_log ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, store.ErrStorage(err)
	}
	return rows, nil
}
