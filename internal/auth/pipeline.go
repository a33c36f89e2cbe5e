package auth

import (
	"context"
	"time"

	"github.com/pierre-fitness/pierre-server/internal/errx"
	"github.com/pierre-fitness/pierre-server/internal/store"
)

// Authenticator resolves any of C2's three credential shapes to a single
// AuthResult (spec.md §4.2), the way the teacher's TokenMiddleware resolves
// a bearer JWT but generalized to also cover API keys and admin tokens.
type Authenticator struct {
	store     store.Store
	jwt       *JWTService
	adminJWT  *AdminJWTService
	apiKeys   *APIKeyHasher
}

func NewAuthenticator(st store.Store, jwtSvc *JWTService, adminJWTSvc *AdminJWTService, apiKeyHasher *APIKeyHasher) *Authenticator {
	return &Authenticator{store: st, jwt: jwtSvc, adminJWT: adminJWTSvc, apiKeys: apiKeyHasher}
}

// Authenticate dispatches on DetectAuthType, then fans out to the bearer
// path (which further distinguishes a user JWT from an admin JWT by trying
// the user key first) or the API-key path.
func (a *Authenticator) Authenticate(ctx context.Context, authHeader string) (*AuthResult, error) {
	token, failure := ExtractBearerToken(authHeader)
	switch DetectAuthType(authHeader) {
	case AuthTypeAPIKey:
		return a.authenticateAPIKey(ctx, authHeader)
	case AuthTypeBearerJWT:
		return a.authenticateBearer(ctx, token)
	default:
		if failure != nil {
			return nil, errFromFailure(*failure)
		}
		return nil, ErrMalformedHeader()
	}
}

func (a *Authenticator) authenticateBearer(ctx context.Context, token string) (*AuthResult, error) {
	claims, userErr := a.jwt.ValidateAccessToken(token)
	if userErr == nil {
		return a.resolveUser(ctx, claims)
	}

	adminClaims, err := a.adminJWT.ValidateToken(token)
	if err != nil {
		var appErr *errx.Error
		if errx.As(userErr, &appErr) && appErr.Code == CodeTokenExpired.Code {
			return nil, userErr
		}
		return nil, err
	}
	return a.resolveAdmin(ctx, adminClaims)
}

func (a *Authenticator) resolveUser(ctx context.Context, claims *UserClaims) (*AuthResult, error) {
	u, err := a.store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrTokenInvalid()
	}
	if !u.CanLogIn() {
		return nil, ErrUserSuspended()
	}
	return &AuthResult{
		Principal: Principal{Kind: PrincipalUser, UserID: u.ID},
		TenantID:  u.TenantID,
		Tier:      u.Tier,
		DisplayMethod: "jwt:" + u.Email,
	}, nil
}

func (a *Authenticator) resolveAdmin(ctx context.Context, claims *AdminClaims) (*AuthResult, error) {
	tok, err := a.store.GetAdminToken(ctx, claims.TokenID)
	if err != nil {
		return nil, ErrTokenInvalid()
	}
	if !tok.IsActive {
		return nil, ErrKeyInactive()
	}
	return &AuthResult{
		Principal: Principal{
			Kind:         PrincipalAdmin,
			AdminTokenID: tok.TokenID,
			Permissions:  tok.EffectivePermissions(),
		},
		DisplayMethod: "admin:" + tok.ServiceName,
	}, nil
}

// authenticateAPIKey implements spec.md §4.2's "caller supplies
// pk_<prefix>_<secret>; the server hashes the secret, looks up the row by
// hash, asserts is_active && !expired" and the O(log n) lookup contract
// of spec.md §4.1 get_api_key_by_hash.
func (a *Authenticator) authenticateAPIKey(ctx context.Context, authHeader string) (*AuthResult, error) {
	_, secret, ok := ParseAPIKey(authHeader)
	if !ok {
		return nil, ErrMalformedHeader()
	}
	hash := a.apiKeys.Hash(secret)
	key, err := a.store.GetAPIKeyByHash(ctx, hash)
	if err != nil {
		return nil, ErrTokenInvalid()
	}
	if !key.IsValid() {
		return nil, ErrKeyInactive()
	}

	_ = a.store.TouchLastUsed(ctx, key.ID, time.Now())

	return &AuthResult{
		Principal:     Principal{Kind: PrincipalAPIKey, UserID: key.UserID, APIKeyID: key.ID},
		Tier:          key.Tier,
		DisplayMethod: "api_key:" + key.KeyPrefix,
	}, nil
}

func errFromFailure(code FailureCode) error {
	switch code {
	case FailureMissingHeader:
		return ErrMissingHeader()
	case FailureMalformedHeader:
		return ErrMalformedHeader()
	default:
		return ErrTokenInvalid()
	}
}
