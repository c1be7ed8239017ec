package memory

import (
	"context"
	"sync"
	"time"
)

// RevocationStore is an in-memory implementation of app.RevocationStore.
// Expired entries are dropped lazily on lookup and on every revoke.
type RevocationStore struct {
	mu      sync.Mutex
	now     func() time.Time
	revoked map[string]time.Time
}

func NewRevocationStore() *RevocationStore {
	return NewRevocationStoreWithClock(time.Now)
}

// NewRevocationStoreWithClock is test-only for deterministic expiry.
func NewRevocationStoreWithClock(now func() time.Time) *RevocationStore {
	return &RevocationStore{now: now, revoked: make(map[string]time.Time)}
}

func (s *RevocationStore) Revoke(_ context.Context, tokenID string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, exp := range s.revoked {
		if !exp.After(now) {
			delete(s.revoked, id)
		}
	}
	if until.After(now) {
		s.revoked[tokenID] = until
	}
	return nil
}

func (s *RevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !exp.After(s.now()) {
		delete(s.revoked, tokenID)
		return false, nil
	}
	return true, nil
}
