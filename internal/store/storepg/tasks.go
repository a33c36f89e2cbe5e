package storepg

import (
	"context"
	"database/sql"

	"github.com/pierre-fitness/pierre-server/internal/store"
)

func (r *Repository) CreateTask(ctx context.Context, t store.A2ATask) error {
	query := `
		INSERT INTO a2a_tasks (task_id, client_id, status, progress, result, error, created_at, updated_at)
		VALUES (:task_id, :client_id, :status, :progress, :result, :error, :created_at, :updated_at)`
	_, err := r.db.NamedExecContext(ctx, query, t)
	if err != nil {
		return store.ErrStorage(err)
	}
	return nil
}

func (r *Repository) GetTask(ctx context.Context, taskID string) (*store.A2ATask, error) {
	var t store.A2ATask
	err := r.db.GetContext(ctx, &t, `SELECT * FROM a2a_tasks WHERE task_id = $1`, taskID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrTaskNotFound()
		}
		return nil, store.ErrStorage(err)
	}
	return &t, nil
}

// UpdateTaskProgress enforces the monotonic-progress invariant (spec.md §3)
// at the SQL layer: a concurrent writer cannot move progress backwards.
func (r *Repository) UpdateTaskProgress(ctx context.Context, taskID string, progress float64) error {
	query := `UPDATE a2a_tasks SET progress = $1, updated_at = now() WHERE task_id = $2 AND progress <= $1 AND status NOT IN ('succeeded','failed','cancelled')`
	_, err := r.db.ExecContext(ctx, query, progress, taskID)
	if err != nil {
		return store.ErrStorage(err)
	}
	return nil
}

// TransitionTask moves a task to any status unless it is already terminal;
// terminal states are immutable (spec.md §3). The order among non-terminal
// states (pending, running) is not checked.
func (r *Repository) TransitionTask(ctx context.Context, taskID string, status store.A2ATaskStatus, result []byte, taskErr *string) error {
	query := `
		UPDATE a2a_tasks SET status = $1, result = $2, error = $3, updated_at = now()
		WHERE task_id = $4 AND status NOT IN ('succeeded','failed','cancelled')`
	res, err := r.db.ExecContext(ctx, query, status, result, taskErr, taskID)
	if err != nil {
		return store.ErrStorage(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Either the task does not exist, or it is already terminal —
		// either way this transition must not silently appear to succeed.
		if _, getErr := r.GetTask(ctx, taskID); getErr != nil {
			return getErr
		}
		return store.ErrStorage(nil)
	}
	return nil
}
