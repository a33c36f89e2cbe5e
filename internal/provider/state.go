package provider

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// StateEntry is what a CSRF state value resolves back to (spec.md §9
// "OAuth state storage via logs" redesign: a typed
// {state -> (user_id, provider, created_at)} map with a 10-minute TTL,
// rejected if unknown or expired — replacing the source's TODO-style log
// stub).
type StateEntry struct {
	UserID    string
	Provider  string
	TenantID  string
	CreatedAt time.Time
}

// StateStore holds pending OAuth authorization CSRF state values
// (spec.md §4.5 connect_* handlers: "return an OAuth authorization URL
// with a CSRF state value the server persists for ≤ 10 minutes").
type StateStore struct {
	mu      sync.Mutex
	entries map[string]StateEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewStateStore(ttl time.Duration) *StateStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &StateStore{entries: make(map[string]StateEntry), ttl: ttl, now: time.Now}
}

// TTL reports how long a minted state value remains valid, so callers can
// surface an expires_in_minutes hint (spec.md §6 oauth/auth response).
func (s *StateStore) TTL() time.Duration { return s.ttl }

// Create mints a fresh random state value and records it.
func (s *StateStore) Create(userID, tenantID, providerName string) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	state := hex.EncodeToString(buf)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[state] = StateEntry{UserID: userID, Provider: providerName, TenantID: tenantID, CreatedAt: s.now()}
	return state, nil
}

// Consume validates and removes a state value, rejecting it if unknown or
// expired (spec.md §4.5). States are single-use.
func (s *StateStore) Consume(state string) (StateEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[state]
	if !ok {
		return StateEntry{}, false
	}
	delete(s.entries, state)

	if s.now().Sub(entry.CreatedAt) > s.ttl {
		return StateEntry{}, false
	}
	return entry, true
}

// Sweep drops expired entries nobody ever consumed, called periodically by
// the composition root to bound memory.
func (s *StateStore) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, v := range s.entries {
		if now.Sub(v.CreatedAt) > s.ttl {
			delete(s.entries, k)
		}
	}
}
