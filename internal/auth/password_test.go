package auth_test

import (
	"testing"

	"github.com/pierre-fitness/pierre-server/internal/auth"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := auth.HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !auth.VerifyPassword(hash, "correct horse battery staple") {
		t.Fatal("expected correct password to verify")
	}
	if auth.VerifyPassword(hash, "wrong password") {
		t.Fatal("expected wrong password to fail verification")
	}
}
