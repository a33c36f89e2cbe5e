package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pierre-fitness/pierre-server/internal/store"
)

// UserClaims is the user-facing JWT payload, grounded on the teacher's
// iam/auth.JWTClaims but carrying Pierre's tier/scope shape instead of
// tenant scopes (spec.md §4.2).
type UserClaims struct {
	UserID   string     `json:"user_id"`
	TenantID string     `json:"tenant_id"`
	Tier     store.Tier `json:"tier"`
	Scope    []string   `json:"scope"`
	jwt.RegisteredClaims
}

// JWTService issues and validates the primary user-facing access token.
// One instance per process, signed HS256 with the deployment's
// JWT_SIGNING_KEY (spec.md §6), mirroring the teacher's JWTService.
type JWTService struct {
	secretKey []byte
	ttl       time.Duration
	issuer    string
}

func NewJWTService(secretKey string, ttl time.Duration, issuer string) *JWTService {
	if ttl == 0 {
		ttl = time.Hour
	}
	if issuer == "" {
		issuer = "pierre"
	}
	return &JWTService{secretKey: []byte(secretKey), ttl: ttl, issuer: issuer}
}

// TTL returns the access-token lifetime, so callers (e.g. the REST
// login/refresh handlers) can report expires_at without duplicating it.
func (j *JWTService) TTL() time.Duration { return j.ttl }

func (j *JWTService) GenerateAccessToken(userID, tenantID string, tier store.Tier, scope []string) (string, error) {
	now := time.Now()
	claims := UserClaims{
		UserID:   userID,
		TenantID: tenantID,
		Tier:     tier,
		Scope:    scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   userID,
			Audience:  []string{"pierre-api"},
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", errTokenSignFailed(err)
	}
	return signed, nil
}

func (j *JWTService) ValidateAccessToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return j.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired()
		}
		return nil, ErrTokenInvalid()
	}
	if !token.Valid {
		return nil, ErrTokenInvalid()
	}
	claims, ok := token.Claims.(*UserClaims)
	if !ok {
		return nil, ErrTokenInvalid()
	}
	return claims, nil
}

// ValidateForRefresh accepts a token that has already expired, so long as
// it expired within refreshWindow, and otherwise validates signature and
// claims normally. Used by POST /api/auth/refresh (spec.md §6), which
// mints a fresh access token from an expired-but-recent one rather than
// tracking a separate refresh-token credential.
func (j *JWTService) ValidateForRefresh(tokenString string, refreshWindow time.Duration) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return j.secretKey, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, ErrTokenInvalid()
	}
	claims, ok := token.Claims.(*UserClaims)
	if !ok {
		return nil, ErrTokenInvalid()
	}
	if claims.ExpiresAt != nil && time.Since(claims.ExpiresAt.Time) > refreshWindow {
		return nil, ErrTokenExpired()
	}
	return claims, nil
}
