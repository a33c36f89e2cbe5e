// Package storepg implements internal/store.Store on PostgreSQL via sqlx,
// following the teacher's pkg/iam/apikey/apikeyinfra repository pattern:
// named-parameter INSERT/UPDATE, pq.Error code 23505 mapped to a typed
// conflict, struct tags bridging domain and persistence shapes.
package storepg

import (
	"github.com/jmoiron/sqlx"
)

// Repository is the PostgreSQL-backed store.Store implementation. A single
// *sqlx.DB is shared across all sub-repositories; it is owned by the
// composition root (cmd/pierre-server), not by Repository.
type Repository struct {
	db *sqlx.DB
}

// New wraps an already-connected *sqlx.DB. Callers are responsible for
// running migrations (see the Schema constant in migrations.go) before first use.
func New(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Close() error { return r.db.Close() }
