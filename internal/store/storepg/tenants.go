package storepg

import (
	"database/sql"
	"strings"

	"context"

	"github.com/pierre-fitness/pierre-server/internal/store"
)

func (r *Repository) CreateTenant(ctx context.Context, t store.Tenant) (string, error) {
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO tenants (id, name, created_at) VALUES (:id, :name, :created_at)`, t)
	if err != nil {
		return "", store.ErrStorage(err)
	}
	return t.ID, nil
}

func (r *Repository) GetTenant(ctx context.Context, id string) (*store.Tenant, error) {
	var t store.Tenant
	err := r.db.GetContext(ctx, &t, `SELECT * FROM tenants WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrTenantNotFound()
		}
		return nil, store.ErrStorage(err)
	}
	return &t, nil
}

// tenantOAuthCredsRow bridges store.TenantOAuthCredentials (which holds
// Scopes as []string in memory) to the comma-joined TEXT column on disk,
// mirroring the teacher's apiKeyPersistence bridging pattern.
type tenantOAuthCredsRow struct {
	TenantID        string `db:"tenant_id"`
	Provider        string `db:"provider"`
	ClientID        string `db:"client_id"`
	ClientSecretEnc []byte `db:"client_secret_enc"`
	Scopes          string `db:"scopes"`
	RedirectURI     string `db:"redirect_uri"`
}

func (r *Repository) UpsertTenantOAuthCredentials(ctx context.Context, c store.TenantOAuthCredentials) error {
	row := tenantOAuthCredsRow{
		TenantID:        c.TenantID,
		Provider:        c.Provider,
		ClientID:        c.ClientID,
		ClientSecretEnc: c.ClientSecretEnc,
		Scopes:          strings.Join(c.Scopes, ","),
		RedirectURI:     c.RedirectURI,
	}
	query := `
		INSERT INTO tenant_oauth_credentials (tenant_id, provider, client_id, client_secret_enc, scopes, redirect_uri)
		VALUES (:tenant_id, :provider, :client_id, :client_secret_enc, :scopes, :redirect_uri)
		ON CONFLICT (tenant_id, provider) DO UPDATE SET
			client_id = EXCLUDED.client_id,
			client_secret_enc = EXCLUDED.client_secret_enc,
			scopes = EXCLUDED.scopes,
			redirect_uri = EXCLUDED.redirect_uri`
	_, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return store.ErrStorage(err)
	}
	return nil
}

func (r *Repository) GetTenantOAuthCredentials(ctx context.Context, tenantID, provider string) (*store.TenantOAuthCredentials, error) {
	var row tenantOAuthCredsRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM tenant_oauth_credentials WHERE tenant_id = $1 AND provider = $2`, tenantID, provider)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrCredsNotFound()
		}
		return nil, store.ErrStorage(err)
	}
	var scopes []string
	if row.Scopes != "" {
		scopes = strings.Split(row.Scopes, ",")
	}
	return &store.TenantOAuthCredentials{
		TenantID:        row.TenantID,
		Provider:        row.Provider,
		ClientID:        row.ClientID,
		ClientSecretEnc: row.ClientSecretEnc,
		Scopes:          scopes,
		RedirectURI:     row.RedirectURI,
	}, nil
}
