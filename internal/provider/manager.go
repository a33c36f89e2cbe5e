package provider

import (
	"context"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/pierre-fitness/pierre-server/internal/logx"
	"github.com/pierre-fitness/pierre-server/internal/store"
)

// refreshEpsilon is the "ε" margin spec.md §3/§4.4 applies before a token is
// considered near-expiry and worth refreshing proactively.
const refreshEpsilon = 60 * time.Second

// Manager implements C4: given (user_id, provider, tenant_id) it resolves a
// live, refreshed OAuth token and hands back a typed ProviderHandle. It is
// tenant-scoped for secrets (TenantOAuthCredentials) but shares provider
// code across tenants (spec.md §4.4).
type Manager struct {
	store    store.Store
	cipher   *store.TokenCipher
	registry *Registry

	mu    sync.Mutex
	locks map[string]*sync.Mutex // keyed by user_id:provider, spec.md §5 TokenRefreshLock
}

func NewManager(st store.Store, cipher *store.TokenCipher, registry *Registry) *Manager {
	return &Manager{
		store:    st,
		cipher:   cipher,
		registry: registry,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (m *Manager) keyLock(userID, providerName string) *sync.Mutex {
	key := userID + ":" + providerName
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	return l
}

// Get resolves a ProviderHandle for (userID, providerName, tenantID),
// transparently refreshing an expiring token under a per-(user,provider)
// lock (spec.md §4.4 steps 1-3, §5 "Token refresh is serialized per
// (user, provider); readers after a refresh see only the new token", §8
// property 3 "at most one refresh HTTP request is in flight").
func (m *Manager) Get(ctx context.Context, userID, providerName, tenantID string) (ProviderHandle, error) {
	tok, err := m.store.GetUserOAuthToken(ctx, userID, tenantID, providerName)
	if err != nil {
		return nil, ErrNotConnected()
	}

	if !tok.IsValid(refreshEpsilon) {
		lock := m.keyLock(userID, providerName)
		lock.Lock()
		defer lock.Unlock()

		// Re-check inside the lock: another goroutine may have already
		// refreshed while we were waiting (spec.md §4.4 step 2).
		tok, err = m.store.GetUserOAuthToken(ctx, userID, tenantID, providerName)
		if err != nil {
			return nil, ErrNotConnected()
		}
		if !tok.IsValid(refreshEpsilon) {
			refreshed, rerr := m.refresh(ctx, userID, tenantID, providerName, tok)
			if rerr != nil {
				return nil, rerr
			}
			tok = refreshed
		}
	}

	accessToken, err := m.cipher.Decrypt(tok.AccessTokenEnc)
	if err != nil {
		return nil, errUpstream(err)
	}
	handle, err := m.registry.Build(providerName, accessToken)
	if err != nil {
		return nil, err
	}
	return m.wrapWithRetry(userID, tenantID, providerName, handle), nil
}

// forceRefresh performs exactly one refresh attempt regardless of the
// stored token's expires_at, the retry half of spec.md §4.4's 401 handling:
// "a 401 from the upstream with an unexpired local token triggers one
// refresh attempt." Unlike Get, it does not re-check validity before
// refreshing - the caller already observed a live 401, so the locally
// cached expiry was wrong. Called under the same per-(user,provider) lock
// as the proactive path, so it still satisfies §8 property 3 (at most one
// refresh in flight).
func (m *Manager) forceRefresh(ctx context.Context, userID, tenantID, providerName string) (ProviderHandle, error) {
	lock := m.keyLock(userID, providerName)
	lock.Lock()
	defer lock.Unlock()

	tok, err := m.store.GetUserOAuthToken(ctx, userID, tenantID, providerName)
	if err != nil {
		return nil, ErrNotConnected()
	}
	refreshed, rerr := m.refresh(ctx, userID, tenantID, providerName, tok)
	if rerr != nil {
		return nil, rerr
	}
	accessToken, err := m.cipher.Decrypt(refreshed.AccessTokenEnc)
	if err != nil {
		return nil, errUpstream(err)
	}
	return m.registry.Build(providerName, accessToken)
}

// refresh performs the actual refresh-token HTTP round trip and upserts the
// new token. Called only while the caller holds the per-(user,provider)
// lock (spec.md §4.4 step 2).
func (m *Manager) refresh(ctx context.Context, userID, tenantID, providerName string, tok *store.UserOAuthToken) (*store.UserOAuthToken, error) {
	if !tok.IsRefreshable() {
		return nil, ErrAuthExpired()
	}

	creds, err := m.store.GetTenantOAuthCredentials(ctx, tenantID, providerName)
	if err != nil {
		return nil, ErrNotConnected()
	}
	clientSecret, err := m.cipher.Decrypt(creds.ClientSecretEnc)
	if err != nil {
		return nil, errUpstream(err)
	}
	oauthCfg, err := buildOAuthConfig(creds, clientSecret)
	if err != nil {
		return nil, errUpstream(err)
	}

	refreshToken, err := m.cipher.Decrypt(tok.RefreshTokenEnc)
	if err != nil {
		return nil, errUpstream(err)
	}

	src := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	newToken, err := src.Token()
	if err != nil {
		logx.WithError(err).WithField("provider", providerName).WithTenant(tenantID).Warn("provider: refresh token request failed")
		return nil, errRefreshFailed(err)
	}

	accessEnc, err := m.cipher.Encrypt(newToken.AccessToken)
	if err != nil {
		return nil, errUpstream(err)
	}
	refreshEnc := tok.RefreshTokenEnc
	if newToken.RefreshToken != "" {
		refreshEnc, err = m.cipher.Encrypt(newToken.RefreshToken)
		if err != nil {
			return nil, errUpstream(err)
		}
	}

	var expiresAt *time.Time
	if !newToken.Expiry.IsZero() {
		e := newToken.Expiry
		expiresAt = &e
	}

	updated := store.UserOAuthToken{
		UserID:          userID,
		TenantID:        tenantID,
		Provider:        providerName,
		AccessTokenEnc:  accessEnc,
		RefreshTokenEnc: refreshEnc,
		ExpiresAt:       expiresAt,
		Scope:           tok.Scope,
		UpdatedAt:       time.Now(),
	}
	if err := m.store.UpsertUserOAuthToken(ctx, updated); err != nil {
		return nil, errUpstream(err)
	}
	return &updated, nil
}

// Disconnect removes the stored token so a later Get reports NotConnected
// (spec.md §4.5 disconnect_provider).
func (m *Manager) Disconnect(ctx context.Context, userID, tenantID, providerName string) error {
	return m.store.DeleteUserOAuthToken(ctx, userID, tenantID, providerName)
}

// ConnectionStatus reports whether a provider is connected and whether its
// token is currently valid, used by get_connection_status.
type ConnectionStatus struct {
	Provider  string `json:"provider"`
	Connected bool   `json:"connected"`
	Expired   bool   `json:"expired"`
}

func (m *Manager) Status(ctx context.Context, userID, tenantID string) []ConnectionStatus {
	out := make([]ConnectionStatus, 0, len(m.registry.Names()))
	for _, name := range m.registry.Names() {
		tok, err := m.store.GetUserOAuthToken(ctx, userID, tenantID, name)
		if err != nil {
			out = append(out, ConnectionStatus{Provider: name, Connected: false})
			continue
		}
		out = append(out, ConnectionStatus{Provider: name, Connected: true, Expired: !tok.IsValid(refreshEpsilon)})
	}
	return out
}
