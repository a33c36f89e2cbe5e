package auth_test

import (
	"testing"
	"time"

	"github.com/pierre-fitness/pierre-server/internal/auth"
	"github.com/pierre-fitness/pierre-server/internal/store"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := auth.NewJWTService("test-secret", time.Hour, "pierre-test")

	token, err := svc.GenerateAccessToken("user-1", "tenant-1", store.TierStarter, []string{"read:activities"})
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := svc.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if claims.UserID != "user-1" || claims.TenantID != "tenant-1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Tier != store.TierStarter {
		t.Fatalf("expected tier starter, got %s", claims.Tier)
	}
}

func TestJWTService_ExpiredToken(t *testing.T) {
	svc := auth.NewJWTService("test-secret", -time.Hour, "pierre-test")

	token, err := svc.GenerateAccessToken("user-1", "tenant-1", store.TierStarter, nil)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	if _, err := svc.ValidateAccessToken(token); err == nil {
		t.Fatal("expected expired token to fail validation")
	}
}

func TestJWTService_WrongSecret(t *testing.T) {
	signing := auth.NewJWTService("secret-a", time.Hour, "pierre-test")
	verifying := auth.NewJWTService("secret-b", time.Hour, "pierre-test")

	token, err := signing.GenerateAccessToken("user-1", "tenant-1", store.TierStarter, nil)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	if _, err := verifying.ValidateAccessToken(token); err == nil {
		t.Fatal("expected token signed with a different secret to fail validation")
	}
}
