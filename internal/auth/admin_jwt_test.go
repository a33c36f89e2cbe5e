package auth_test

import (
	"testing"
	"time"

	"github.com/pierre-fitness/pierre-server/internal/auth"
	"github.com/pierre-fitness/pierre-server/internal/store"
)

func TestAdminJWT_RoundTripAndJWKS(t *testing.T) {
	km, err := auth.NewKeyManager()
	if err != nil {
		t.Fatalf("NewKeyManager: %v", err)
	}
	svc := auth.NewAdminJWTService(km, time.Hour, "pierre-admin-test")

	token, err := svc.GenerateToken("tok-1", "ops-bot", store.PermProvisionKeys|store.PermListKeys, false)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.TokenID != "tok-1" || claims.IsSuperAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if !claims.Permissions.Has(store.PermProvisionKeys) {
		t.Fatalf("expected ProvisionKeys bit set")
	}

	jwks := km.JWKS()
	if len(jwks.Keys) != 1 {
		t.Fatalf("expected 1 published key before rotation, got %d", len(jwks.Keys))
	}
}

func TestAdminJWT_TokenValidAfterRotation(t *testing.T) {
	km, err := auth.NewKeyManager()
	if err != nil {
		t.Fatalf("NewKeyManager: %v", err)
	}
	svc := auth.NewAdminJWTService(km, time.Hour, "pierre-admin-test")

	token, err := svc.GenerateToken("tok-1", "ops-bot", store.AllPermissions(), true)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if err := km.Rotate(); err != nil {
		t.Fatalf("Rotate: %v", err)
	}

	// A token signed under the retired key must still validate until its
	// own expiry (spec.md §3 "old public keys remain published until all
	// issued tokens expire").
	if _, err := svc.ValidateToken(token); err != nil {
		t.Fatalf("expected token signed by retired key to still validate, got %v", err)
	}

	jwks := km.JWKS()
	if len(jwks.Keys) != 2 {
		t.Fatalf("expected both primary and retired key published, got %d", len(jwks.Keys))
	}
}
