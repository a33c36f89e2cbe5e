package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pierre-fitness/pierre-server/internal/auth"
	"github.com/pierre-fitness/pierre-server/internal/errx"
	"github.com/pierre-fitness/pierre-server/internal/store"
)

// assertErrCode checks the error's registered code, since two independently
// constructed *errx.Error values are distinct pointers and errors.Is (hence
// assert.ErrorIs) would never match them.
func assertErrCode(t *testing.T, err error, want *errx.Error) {
	t.Helper()
	appErr, ok := err.(*errx.Error)
	if !ok {
		t.Fatalf("expected *errx.Error, got %T: %v", err, err)
	}
	assert.Equal(t, want.Code, appErr.Code)
}

// fakeStore implements just enough of store.Store for pipeline tests; the
// rest panics so an accidental new dependency on the interface surfaces
// immediately rather than silently returning zero values.
type fakeStore struct {
	store.Store
	users      map[string]*store.User
	adminToks  map[string]*store.AdminToken
	apiKeys    map[string]*store.APIKey
	touched    []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     make(map[string]*store.User),
		adminToks: make(map[string]*store.AdminToken),
		apiKeys:   make(map[string]*store.APIKey),
	}
}

func (f *fakeStore) GetUserByID(ctx context.Context, id string) (*store.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, store.ErrUserNotFound()
}

func (f *fakeStore) GetAdminToken(ctx context.Context, tokenID string) (*store.AdminToken, error) {
	if t, ok := f.adminToks[tokenID]; ok {
		return t, nil
	}
	return nil, store.ErrAdminTokenNotFound()
}

func (f *fakeStore) GetAPIKeyByHash(ctx context.Context, hash string) (*store.APIKey, error) {
	for _, k := range f.apiKeys {
		if k.KeyHash == hash {
			return k, nil
		}
	}
	return nil, store.ErrAPIKeyNotFound()
}

func (f *fakeStore) TouchLastUsed(ctx context.Context, id string, when time.Time) error {
	f.touched = append(f.touched, id)
	return nil
}

func newTestAuthenticator(t *testing.T, st *fakeStore) (*auth.Authenticator, *auth.JWTService, *auth.AdminJWTService, *auth.APIKeyHasher) {
	t.Helper()
	jwtSvc := auth.NewJWTService("test-secret", time.Hour, "pierre-test")
	km, err := auth.NewKeyManager()
	require.NoError(t, err)
	adminSvc := auth.NewAdminJWTService(km, time.Hour, "pierre-admin-test")
	hasher := auth.NewAPIKeyHasher("test-master-key")
	return auth.NewAuthenticator(st, jwtSvc, adminSvc, hasher), jwtSvc, adminSvc, hasher
}

func TestAuthenticator_UserJWT(t *testing.T) {
	st := newFakeStore()
	st.users["user-1"] = &store.User{ID: "user-1", Email: "alice@x.test", TenantID: "tenant-1", Tier: store.TierStarter, Status: store.UserStatusActive}

	authn, jwtSvc, _, _ := newTestAuthenticator(t, st)

	token, err := jwtSvc.GenerateAccessToken("user-1", "tenant-1", store.TierStarter, nil)
	require.NoError(t, err)

	result, err := authn.Authenticate(context.Background(), "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, auth.PrincipalUser, result.Principal.Kind)
	assert.Equal(t, "user-1", result.Principal.UserID)
	assert.Equal(t, store.TierStarter, result.Tier)
}

func TestAuthenticator_SuspendedUserRejected(t *testing.T) {
	st := newFakeStore()
	st.users["user-1"] = &store.User{ID: "user-1", TenantID: "tenant-1", Status: store.UserStatusSuspended}

	authn, jwtSvc, _, _ := newTestAuthenticator(t, st)
	token, err := jwtSvc.GenerateAccessToken("user-1", "tenant-1", store.TierStarter, nil)
	require.NoError(t, err)

	_, err = authn.Authenticate(context.Background(), "Bearer "+token)
	assertErrCode(t, err, auth.ErrUserSuspended())
}

func TestAuthenticator_AdminJWT(t *testing.T) {
	st := newFakeStore()
	st.adminToks["tok-1"] = &store.AdminToken{TokenID: "tok-1", ServiceName: "ops-bot", IsActive: true, Permissions: store.PermProvisionKeys}

	authn, _, adminSvc, _ := newTestAuthenticator(t, st)
	token, err := adminSvc.GenerateToken("tok-1", "ops-bot", store.PermProvisionKeys, false)
	require.NoError(t, err)

	result, err := authn.Authenticate(context.Background(), "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, auth.PrincipalAdmin, result.Principal.Kind)
	assert.True(t, result.Principal.Permissions.Has(store.PermProvisionKeys))
}

func TestAuthenticator_APIKey(t *testing.T) {
	st := newFakeStore()
	authn, _, _, hasher := newTestAuthenticator(t, st)

	fullKey, prefix, secretHash, err := hasher.GenerateAPIKey()
	require.NoError(t, err)
	st.apiKeys["key-1"] = &store.APIKey{ID: "key-1", UserID: "user-1", KeyHash: secretHash, KeyPrefix: prefix, Tier: store.TierProfessional, IsActive: true}

	result, err := authn.Authenticate(context.Background(), fullKey)
	require.NoError(t, err)
	assert.Equal(t, auth.PrincipalAPIKey, result.Principal.Kind)
	assert.Equal(t, "key-1", result.Principal.APIKeyID)
	assert.Equal(t, store.TierProfessional, result.Tier)
	assert.Len(t, st.touched, 1)
}

func TestAuthenticator_InactiveAPIKeyRejected(t *testing.T) {
	st := newFakeStore()
	authn, _, _, hasher := newTestAuthenticator(t, st)

	fullKey, prefix, secretHash, err := hasher.GenerateAPIKey()
	require.NoError(t, err)
	st.apiKeys["key-1"] = &store.APIKey{ID: "key-1", KeyHash: secretHash, KeyPrefix: prefix, IsActive: false}

	_, err = authn.Authenticate(context.Background(), fullKey)
	assertErrCode(t, err, auth.ErrKeyInactive())
}

func TestAuthenticator_MissingHeader(t *testing.T) {
	authn, _, _, _ := newTestAuthenticator(t, newFakeStore())
	_, err := authn.Authenticate(context.Background(), "")
	assertErrCode(t, err, auth.ErrMissingHeader())
}
