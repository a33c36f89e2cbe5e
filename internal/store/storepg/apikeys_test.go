package storepg_test

import (
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/pierre-fitness/pierre-server/internal/errx"
	"github.com/pierre-fitness/pierre-server/internal/store"
	"github.com/pierre-fitness/pierre-server/internal/store/storepg"
)

// newMock wires a sqlmock connection through sqlx the way storepg.New
// expects, following jordigilh-kubernaut's repository-test pattern of
// driving the DB layer against a scripted driver instead of a live
// Postgres instance.
func newMock(t *testing.T) (*storepg.Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return storepg.New(sqlx.NewDb(db, "postgres")), mock
}

func TestGetAPIKeyByHash_Found(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now()
	cols := []string{
		"id", "user_id", "name", "description", "key_hash", "key_prefix", "tier",
		"rate_limit_requests", "rate_limit_window_seconds", "is_active",
		"expires_at", "created_at", "last_used_at",
	}
	mock.ExpectQuery(`SELECT \* FROM api_keys WHERE key_hash = \$1`).
		WithArgs("hashed-secret").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			"key-1", "user-1", "ci key", nil, "hashed-secret", "pk_abcd1234", store.TierStarter,
			100, 3600, true, nil, now, nil,
		))

	key, err := repo.GetAPIKeyByHash(t.Context(), "hashed-secret")
	require.NoError(t, err)
	require.Equal(t, "key-1", key.ID)
	require.True(t, key.IsActive)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAPIKeyByHash_NotFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(`SELECT \* FROM api_keys WHERE key_hash = \$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetAPIKeyByHash(t.Context(), "missing")
	require.Error(t, err)
	appErr, ok := err.(*errx.Error)
	require.True(t, ok)
	require.Equal(t, store.CodeAPIKeyNotFound.Code, appErr.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivateAPIKey_NotFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(`UPDATE api_keys SET is_active = false WHERE id = \$1`).
		WithArgs("missing-key").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeactivateAPIKey(t.Context(), "missing-key")
	require.Error(t, err)
	appErr, ok := err.(*errx.Error)
	require.True(t, ok)
	require.Equal(t, store.CodeAPIKeyNotFound.Code, appErr.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivateAPIKey_Success(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(`UPDATE api_keys SET is_active = false WHERE id = \$1`).
		WithArgs("key-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeactivateAPIKey(t.Context(), "key-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordUsage(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(`INSERT INTO api_key_usage`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	row := store.APIKeyUsage{
		ID:         "usage-1",
		APIKeyID:   "key-1",
		Timestamp:  time.Now(),
		ToolName:   "get_activities",
		StatusCode: 200,
	}
	require.NoError(t, repo.RecordUsage(t.Context(), row))
	require.NoError(t, mock.ExpectationsWereMet())
}
