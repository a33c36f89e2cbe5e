package auth_test

import (
	"strings"
	"testing"

	"github.com/pierre-fitness/pierre-server/internal/auth"
)

func TestAPIKeyHasher_GenerateAndHash(t *testing.T) {
	hasher := auth.NewAPIKeyHasher("deployment-master-key")

	fullKey, prefix, secretHash, err := hasher.GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey: %v", err)
	}
	if !strings.HasPrefix(fullKey, "pk_"+prefix+"_") {
		t.Fatalf("expected full key to start with pk_%s_, got %s", prefix, fullKey)
	}

	gotPrefix, secret, ok := auth.ParseAPIKey(fullKey)
	if !ok {
		t.Fatalf("ParseAPIKey failed on %q", fullKey)
	}
	if gotPrefix != prefix {
		t.Fatalf("expected prefix %s, got %s", prefix, gotPrefix)
	}
	if hasher.Hash(secret) != secretHash {
		t.Fatal("re-hashing the extracted secret should reproduce the stored hash")
	}
}

func TestAPIKeyHasher_DifferentSecretsDifferentHashes(t *testing.T) {
	hasher := auth.NewAPIKeyHasher("deployment-master-key")

	_, _, hash1, err := hasher.GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey: %v", err)
	}
	_, _, hash2, err := hasher.GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey: %v", err)
	}
	if hash1 == hash2 {
		t.Fatal("expected independently generated keys to hash differently")
	}
}

func TestParseAPIKey_RejectsMalformed(t *testing.T) {
	cases := []string{"", "pk_onlyprefix", "Bearer abc", "pk__", "notpk_a_b"}
	for _, c := range cases {
		if _, _, ok := auth.ParseAPIKey(c); ok {
			t.Errorf("expected %q to fail to parse", c)
		}
	}
}

func TestDetectAuthType(t *testing.T) {
	hasher := auth.NewAPIKeyHasher("k")
	fullKey, _, _, _ := hasher.GenerateAPIKey()

	if got := auth.DetectAuthType("Bearer abc.def.ghi"); got != auth.AuthTypeBearerJWT {
		t.Errorf("expected bearer JWT, got %v", got)
	}
	if got := auth.DetectAuthType(fullKey); got != auth.AuthTypeAPIKey {
		t.Errorf("expected api key, got %v", got)
	}
	if got := auth.DetectAuthType("garbage"); got != auth.AuthTypeUnknown {
		t.Errorf("expected unknown, got %v", got)
	}
}
