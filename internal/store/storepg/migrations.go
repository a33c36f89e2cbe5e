package storepg

// Schema is the full PostgreSQL DDL for Pierre's data model (spec.md §3).
// Applied by cmd/pierre-server at startup via a single idempotent batch,
// matching the teacher's preference for explicit SQL over a migration
// framework dependency it does not otherwise carry.
const Schema = `
CREATE TABLE IF NOT EXISTS tenants (
	id          UUID PRIMARY KEY,
	name        TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	display_name  TEXT,
	tier          TEXT NOT NULL DEFAULT 'starter',
	status        TEXT NOT NULL DEFAULT 'pending',
	role          TEXT NOT NULL DEFAULT 'user',
	tenant_id     UUID NOT NULL REFERENCES tenants(id),
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_active   TIMESTAMPTZ NOT NULL DEFAULT now(),
	approved_by   UUID,
	approved_at   TIMESTAMPTZ,
	auth_provider TEXT NOT NULL DEFAULT 'email',
	firebase_uid  TEXT
);

CREATE TABLE IF NOT EXISTS tenant_oauth_credentials (
	tenant_id        UUID NOT NULL REFERENCES tenants(id),
	provider         TEXT NOT NULL,
	client_id        TEXT NOT NULL,
	client_secret_enc BYTEA NOT NULL,
	scopes           TEXT NOT NULL DEFAULT '',
	redirect_uri     TEXT NOT NULL,
	PRIMARY KEY (tenant_id, provider)
);

CREATE TABLE IF NOT EXISTS user_oauth_tokens (
	user_id           UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	tenant_id         UUID NOT NULL,
	provider          TEXT NOT NULL,
	access_token_enc  BYTEA NOT NULL,
	refresh_token_enc BYTEA,
	expires_at        TIMESTAMPTZ,
	scope             TEXT,
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (user_id, tenant_id, provider)
);

CREATE TABLE IF NOT EXISTS api_keys (
	id                        UUID PRIMARY KEY,
	user_id                   UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	name                      TEXT NOT NULL,
	description               TEXT,
	key_hash                  TEXT NOT NULL UNIQUE,
	key_prefix                TEXT NOT NULL,
	tier                      TEXT NOT NULL,
	rate_limit_requests       INT NOT NULL,
	rate_limit_window_seconds INT NOT NULL,
	is_active                 BOOLEAN NOT NULL DEFAULT true,
	expires_at                TIMESTAMPTZ,
	created_at                TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_used_at              TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS api_key_usage (
	id                  UUID PRIMARY KEY,
	api_key_id          UUID NOT NULL REFERENCES api_keys(id),
	timestamp           TIMESTAMPTZ NOT NULL DEFAULT now(),
	tool_name           TEXT NOT NULL,
	status_code         INT NOT NULL,
	response_time_ms    INT NOT NULL,
	error_message       TEXT,
	request_size_bytes  INT,
	response_size_bytes INT,
	ip_address          TEXT,
	user_agent          TEXT
);
CREATE INDEX IF NOT EXISTS idx_api_key_usage_key_ts ON api_key_usage(api_key_id, timestamp);

CREATE TABLE IF NOT EXISTS admin_tokens (
	token_id            UUID PRIMARY KEY,
	service_name        TEXT NOT NULL,
	service_description TEXT,
	permissions         BIGINT NOT NULL DEFAULT 0,
	is_super_admin      BOOLEAN NOT NULL DEFAULT false,
	jwt_token_hash      TEXT NOT NULL UNIQUE,
	token_prefix        TEXT NOT NULL,
	issued_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at          TIMESTAMPTZ,
	is_active           BOOLEAN NOT NULL DEFAULT true
);

CREATE TABLE IF NOT EXISTS a2a_tasks (
	task_id    UUID PRIMARY KEY,
	client_id  TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'pending',
	progress   DOUBLE PRECISION NOT NULL DEFAULT 0,
	result     BYTEA,
	error      TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS oauth_notifications (
	id           UUID PRIMARY KEY,
	user_id      UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	provider     TEXT NOT NULL,
	success      BOOLEAN NOT NULL,
	message      TEXT NOT NULL,
	expires_at   TIMESTAMPTZ,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	delivered_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS goals (
	id            UUID PRIMARY KEY,
	user_id       UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	provider      TEXT,
	title         TEXT NOT NULL,
	goal_type     TEXT NOT NULL,
	target_value  DOUBLE PRECISION NOT NULL,
	current_value DOUBLE PRECISION NOT NULL DEFAULT 0,
	unit          TEXT NOT NULL,
	target_date   TIMESTAMPTZ,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS audit_log (
	id           UUID PRIMARY KEY,
	actor_id     TEXT NOT NULL,
	action       TEXT NOT NULL,
	target_id    TEXT NOT NULL,
	before_state BYTEA,
	after_state  BYTEA,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_audit_log_created_at ON audit_log(created_at DESC);
`
