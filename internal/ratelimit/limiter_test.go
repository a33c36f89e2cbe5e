package ratelimit_test

import (
	"testing"
	"time"

	"github.com/pierre-fitness/pierre-server/internal/ratelimit"
	"github.com/pierre-fitness/pierre-server/internal/store"
)

func TestLimiter_AllowsUpToLimit(t *testing.T) {
	l := ratelimit.NewLimiter()

	for i := 0; i < 10; i++ {
		allowed, _ := l.Reserve("key-1", store.TierStarter, 10, 3600)
		if !allowed {
			t.Fatalf("request %d should have been allowed", i+1)
		}
	}

	allowed, retryAfter := l.Reserve("key-1", store.TierStarter, 10, 3600)
	if allowed {
		t.Fatal("the 11th request should have been rejected")
	}
	if retryAfter <= 0 {
		t.Fatal("expected a positive retry_after on rejection")
	}
}

func TestLimiter_EnterpriseBypassesCounting(t *testing.T) {
	l := ratelimit.NewLimiter()

	for i := 0; i < 1000; i++ {
		allowed, _ := l.Reserve("key-ent", store.TierEnterprise, 1, 3600)
		if !allowed {
			t.Fatalf("enterprise tier must never be rate limited, failed at request %d", i+1)
		}
	}
}

func TestLimiter_WindowResets(t *testing.T) {
	l := ratelimit.NewLimiter()

	allowed, _ := l.Reserve("key-1", store.TierStarter, 1, 1)
	if !allowed {
		t.Fatal("first request should be allowed")
	}
	allowed, _ = l.Reserve("key-1", store.TierStarter, 1, 1)
	if allowed {
		t.Fatal("second request within the same window should be rejected")
	}

	time.Sleep(1100 * time.Millisecond)

	allowed, _ = l.Reserve("key-1", store.TierStarter, 1, 1)
	if !allowed {
		t.Fatal("request after the window elapsed should be allowed")
	}
}

func TestLimiter_SeparateKeysIndependent(t *testing.T) {
	l := ratelimit.NewLimiter()

	allowed, _ := l.Reserve("key-a", store.TierStarter, 1, 3600)
	if !allowed {
		t.Fatal("key-a first request should be allowed")
	}
	allowed, _ = l.Reserve("key-b", store.TierStarter, 1, 3600)
	if !allowed {
		t.Fatal("key-b should have its own independent counter")
	}
}
