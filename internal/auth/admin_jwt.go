package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pierre-fitness/pierre-server/internal/store"
)

// AdminClaims is the service-principal JWT payload (spec.md §3/§4.2): admin
// tokens carry a permission bitmask and a super-admin flag rather than a
// user tier, and are signed RS256 so the public half can be served from
// JWKS (spec.md §3 "JWKS: signed by a key whose public half is served at
// /.well-known/jwks.json").
type AdminClaims struct {
	TokenID      string           `json:"token_id"`
	ServiceName  string           `json:"service_name"`
	Permissions  store.Permission `json:"permissions"`
	IsSuperAdmin bool             `json:"is_super_admin"`
	jwt.RegisteredClaims
}

// AdminJWTService signs and validates admin tokens against the currently
// active signing key, adapting the teacher's JWTService to RS256 + JWKS.
type AdminJWTService struct {
	keys   *KeyManager
	ttl    time.Duration
	issuer string
}

func NewAdminJWTService(keys *KeyManager, ttl time.Duration, issuer string) *AdminJWTService {
	if ttl == 0 {
		ttl = 90 * 24 * time.Hour
	}
	if issuer == "" {
		issuer = "pierre-admin"
	}
	return &AdminJWTService{keys: keys, ttl: ttl, issuer: issuer}
}

func (a *AdminJWTService) GenerateToken(tokenID, serviceName string, perms store.Permission, isSuperAdmin bool) (string, error) {
	now := time.Now()
	claims := AdminClaims{
		TokenID:      tokenID,
		ServiceName:  serviceName,
		Permissions:  perms,
		IsSuperAdmin: isSuperAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			Subject:   tokenID,
			Audience:  []string{"pierre-admin"},
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	primary := a.keys.Primary()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = primary.KID
	signed, err := token.SignedString(primary.Private)
	if err != nil {
		return "", errTokenSignFailed(err)
	}
	return signed, nil
}

// ValidateToken checks the signature against every key the KeyManager
// still recognizes (primary and retired-but-not-expired), so tokens signed
// before the last rotation keep validating (spec.md §3 "old public keys
// remain published until all issued tokens expire").
func (a *AdminJWTService) ValidateToken(tokenString string) (*AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		kid, _ := t.Header["kid"].(string)
		key, ok := a.keys.Lookup(kid)
		if !ok {
			return nil, fmt.Errorf("unknown signing key %q", kid)
		}
		return &key.Private.PublicKey, nil
	})
	if err != nil {
		return nil, ErrTokenInvalid()
	}
	if !token.Valid {
		return nil, ErrTokenInvalid()
	}
	claims, ok := token.Claims.(*AdminClaims)
	if !ok {
		return nil, ErrTokenInvalid()
	}
	return claims, nil
}

// SigningKey is one generation of the admin JWT keypair.
type SigningKey struct {
	KID       string
	Private   *rsa.PrivateKey
	Retired   bool
	RetiredAt time.Time
}

// KeyManager holds the primary signing key plus retired keys whose public
// half must stay published until every token they signed has expired
// (spec.md §3 JWKS invariant). Rotation never removes a key outright.
type KeyManager struct {
	keys    map[string]*SigningKey
	primary string
}

func NewKeyManager() (*KeyManager, error) {
	km := &KeyManager{keys: make(map[string]*SigningKey)}
	if err := km.Rotate(); err != nil {
		return nil, err
	}
	return km, nil
}

// LoadPrimary installs a deployment-provided PEM-encoded RSA private key as
// the primary signing key instead of generating one, for deployments that
// pin ADMIN_JWT_PRIVATE_KEY_PEM (spec.md §6).
func (km *KeyManager) LoadPrimary(pemBlock string, kid string) error {
	block, _ := pem.Decode([]byte(pemBlock))
	if block == nil {
		return fmt.Errorf("auth: invalid PEM block for admin signing key")
	}
	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		keyAny, err2 := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err2 != nil {
			return fmt.Errorf("auth: parse admin signing key: %w", err)
		}
		rsaKey, ok := keyAny.(*rsa.PrivateKey)
		if !ok {
			return fmt.Errorf("auth: admin signing key is not RSA")
		}
		key = rsaKey
	}
	if kid == "" {
		kid = fmt.Sprintf("k%d", time.Now().Unix())
	}
	km.keys[kid] = &SigningKey{KID: kid, Private: key}
	km.primary = kid
	return nil
}

// Rotate generates a fresh primary key and retires the previous one. Old
// keys stay in the manager (and therefore in JWKS output) until the caller
// explicitly calls Prune once their tokens can no longer be valid.
func (km *KeyManager) Rotate() error {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return fmt.Errorf("auth: generate admin signing key: %w", err)
	}
	if prev, ok := km.keys[km.primary]; ok {
		prev.Retired = true
		prev.RetiredAt = time.Now()
	}
	kid := fmt.Sprintf("k%d", time.Now().UnixNano())
	km.keys[kid] = &SigningKey{KID: kid, Private: key}
	km.primary = kid
	return nil
}

// Prune drops retired keys older than maxAge: safe once maxAge exceeds the
// admin token TTL, so no live token could still reference them.
func (km *KeyManager) Prune(maxAge time.Duration) {
	for kid, k := range km.keys {
		if k.Retired && time.Since(k.RetiredAt) > maxAge {
			delete(km.keys, kid)
		}
	}
}

func (km *KeyManager) Primary() *SigningKey { return km.keys[km.primary] }

func (km *KeyManager) Lookup(kid string) (*SigningKey, bool) {
	k, ok := km.keys[kid]
	return k, ok
}

func (km *KeyManager) All() []*SigningKey {
	out := make([]*SigningKey, 0, len(km.keys))
	for _, k := range km.keys {
		out = append(out, k)
	}
	return out
}
