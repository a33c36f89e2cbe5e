package storepg

import (
	"context"
	"database/sql"

	"github.com/pierre-fitness/pierre-server/internal/store"
)

func (r *Repository) CreateGoal(ctx context.Context, g store.Goal) (string, error) {
	query := `
		INSERT INTO goals (id, user_id, provider, title, goal_type, target_value, current_value, unit, target_date, created_at, updated_at)
		VALUES (:id, :user_id, :provider, :title, :goal_type, :target_value, :current_value, :unit, :target_date, :created_at, :updated_at)`
	_, err := r.db.NamedExecContext(ctx, query, g)
	if err != nil {
		return "", store.ErrStorage(err)
	}
	return g.ID, nil
}

func (r *Repository) GetGoal(ctx context.Context, id string) (*store.Goal, error) {
	var g store.Goal
	err := r.db.GetContext(ctx, &g, `SELECT * FROM goals WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrGoalNotFound()
		}
		return nil, store.ErrStorage(err)
	}
	return &g, nil
}

func (r *Repository) ListGoalsByUser(ctx context.Context, userID string) ([]store.Goal, error) {
	var goals []store.Goal
	err := r.db.SelectContext(ctx, &goals, `SELECT * FROM goals WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, store.ErrStorage(err)
	}
	return goals, nil
}

func (r *Repository) UpdateGoalProgress(ctx context.Context, id string, currentValue float64) error {
	result, err := r.db.ExecContext(ctx, `UPDATE goals SET current_value = $1, updated_at = now() WHERE id = $2`, currentValue, id)
	if err != nil {
		return store.ErrStorage(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return store.ErrGoalNotFound()
	}
	return nil
}
