package chat

import (
	"context"
	"sync"
	"time"

	"github.com/nyka2002/nekretnine-search/internal/models"
)

// MemoryStore is a process-local stand-in for the external session cache,
// used for development/tests. A production deployment would back
// SessionStore with the same external cache collaborator the embedding
// service's two-tier cache targets.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]sessionEntry
}

type sessionEntry struct {
	session *models.ChatSession
	expires time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]sessionEntry{}}
}

// Get returns the session for id if present and unexpired.
func (s *MemoryStore) Get(ctx context.Context, id string) (*models.ChatSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok || time.Now().After(e.expires) {
		return nil, false
	}
	return e.session, true
}

// Set stores s under its ID with the given TTL.
func (s *MemoryStore) Set(ctx context.Context, session *models.ChatSession, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[session.ID] = sessionEntry{session: session, expires: time.Now().Add(ttl)}
	return nil
}
