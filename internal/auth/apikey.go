package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const apiKeyPrefix = "pk"
const apiKeySecretBytes = 32 // 256 bits, comfortably over spec.md's ≥192-bit floor

// APIKeyHasher implements spec.md §4.1's "fast peppered hash" for API-key
// secrets: HMAC-SHA256 keyed on a deployment pepper, not bcrypt, because
// the secret's own entropy already makes brute force infeasible and the
// lookup path (C3's hot path) needs to be cheap.
type APIKeyHasher struct {
	pepper []byte
}

// NewAPIKeyHasher derives the HMAC key from the deployment master key,
// using a distinct label so the derived key never collides with C1's
// AEAD token-encryption key even though both start from the same secret.
func NewAPIKeyHasher(masterKey string) *APIKeyHasher {
	sum := sha256.Sum256([]byte("pierre-api-key-pepper:" + masterKey))
	return &APIKeyHasher{pepper: sum[:]}
}

// GenerateAPIKey mints a new `pk_<prefix>_<secret>` credential (spec.md
// §4.1). prefix is the first 8 hex characters of a random id and is safe
// to display; secretHash is what gets persisted.
func (h *APIKeyHasher) GenerateAPIKey() (fullKey, prefix, secretHash string, err error) {
	prefixBytes := make([]byte, 4)
	if _, err = rand.Read(prefixBytes); err != nil {
		return "", "", "", fmt.Errorf("auth: generate api key prefix: %w", err)
	}
	secretBytes := make([]byte, apiKeySecretBytes)
	if _, err = rand.Read(secretBytes); err != nil {
		return "", "", "", fmt.Errorf("auth: generate api key secret: %w", err)
	}

	prefix = hex.EncodeToString(prefixBytes)
	secret := hex.EncodeToString(secretBytes)
	fullKey = fmt.Sprintf("%s_%s_%s", apiKeyPrefix, prefix, secret)
	secretHash = h.Hash(secret)
	return fullKey, prefix, secretHash, nil
}

// Hash computes the peppered HMAC digest used both at issuance and at
// lookup time; spec.md §4.1 requires the raw secret never be reconstructible
// from key_hash, which a keyed HMAC satisfies.
func (h *APIKeyHasher) Hash(secret string) string {
	mac := hmac.New(sha256.New, h.pepper)
	mac.Write([]byte(secret))
	return hex.EncodeToString(mac.Sum(nil))
}

// ParseAPIKey splits a caller-supplied `pk_<prefix>_<secret>` credential so
// callers can hash the secret and look the row up by that hash
// (spec.md §4.2 "caller supplies pk_<prefix>_<secret>").
func ParseAPIKey(fullKey string) (prefix, secret string, ok bool) {
	parts := strings.SplitN(fullKey, "_", 3)
	if len(parts) != 3 || parts[0] != apiKeyPrefix || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}
