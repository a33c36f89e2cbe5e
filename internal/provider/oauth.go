package provider

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/pierre-fitness/pierre-server/internal/store"
)

// endpoints hardcodes the two provider's OAuth token endpoints; spec.md
// §4.4 only requires the registry be tenant-scoped for *credentials*, not
// for this provider-fixed wiring.
var endpoints = map[string]oauth2.Endpoint{
	"strava": {
		AuthURL:  "https://www.strava.com/oauth/authorize",
		TokenURL: "https://www.strava.com/oauth/token",
	},
	"fitbit": {
		AuthURL:  "https://www.fitbit.com/oauth2/authorize",
		TokenURL: "https://api.fitbit.com/oauth2/token",
	},
}

// buildOAuthConfig assembles an oauth2.Config from a tenant's stored app
// credentials (spec.md §4.4 "tenant-scoped for secrets").
func buildOAuthConfig(creds *store.TenantOAuthCredentials, clientSecret string) (*oauth2.Config, error) {
	endpoint, ok := endpoints[creds.Provider]
	if !ok {
		return nil, fmt.Errorf("provider: unknown provider %q", creds.Provider)
	}
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: clientSecret,
		Endpoint:     endpoint,
		RedirectURL:  creds.RedirectURI,
		Scopes:       creds.Scopes,
	}, nil
}

// AuthorizationURL builds the OAuth authorization-code URL connect_strava /
// connect_fitbit / connect_provider hand back (spec.md §4.5 "return an
// OAuth authorization URL with a CSRF state value").
func (m *Manager) AuthorizationURL(ctx context.Context, tenantID, providerName, state string) (string, error) {
	creds, err := m.store.GetTenantOAuthCredentials(ctx, tenantID, providerName)
	if err != nil {
		return "", ErrNotConnected()
	}
	clientSecret, err := m.cipher.Decrypt(creds.ClientSecretEnc)
	if err != nil {
		return "", errUpstream(err)
	}
	oauthCfg, err := buildOAuthConfig(creds, clientSecret)
	if err != nil {
		return "", errUpstream(err)
	}
	return oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline), nil
}

// ExchangeCode completes the OAuth callback (GET /oauth/callback/{provider})
// by trading the authorization code for tokens and persisting them
// (spec.md §6, §7 "successful callbacks return a JSON payload").
func (m *Manager) ExchangeCode(ctx context.Context, userID, tenantID, providerName, code string) error {
	creds, err := m.store.GetTenantOAuthCredentials(ctx, tenantID, providerName)
	if err != nil {
		return ErrNotConnected()
	}
	clientSecret, err := m.cipher.Decrypt(creds.ClientSecretEnc)
	if err != nil {
		return errUpstream(err)
	}
	oauthCfg, err := buildOAuthConfig(creds, clientSecret)
	if err != nil {
		return errUpstream(err)
	}

	tok, err := oauthCfg.Exchange(ctx, code)
	if err != nil {
		return errRefreshFailed(err)
	}

	accessEnc, err := m.cipher.Encrypt(tok.AccessToken)
	if err != nil {
		return errUpstream(err)
	}
	refreshEnc, err := m.cipher.Encrypt(tok.RefreshToken)
	if err != nil {
		return errUpstream(err)
	}
	var expiresAt *time.Time
	if !tok.Expiry.IsZero() {
		e := tok.Expiry
		expiresAt = &e
	}

	return m.store.UpsertUserOAuthToken(ctx, store.UserOAuthToken{
		UserID:          userID,
		TenantID:        tenantID,
		Provider:        providerName,
		AccessTokenEnc:  accessEnc,
		RefreshTokenEnc: refreshEnc,
		ExpiresAt:       expiresAt,
		UpdatedAt:       time.Now(),
	})
}
