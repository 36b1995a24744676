package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/archibald-labs/archisync/internal/core/domain"
	"github.com/archibald-labs/archisync/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore is an in-memory implementation of driven.SessionStore.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.SyncSession
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]domain.SyncSession),
	}
}

// Save creates or updates a session.
func (s *SessionStore) Save(_ context.Context, session *domain.SyncSession) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = *session
	return nil
}

// Get retrieves a session.
func (s *SessionStore) Get(_ context.Context, id string) (*domain.SyncSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &session, nil
}

// List returns recent sessions, most recent first.
func (s *SessionStore) List(_ context.Context, entityType domain.EntityType, limit int) ([]domain.SyncSession, error) {
	return page(s.sorted(entityType), 0, limit), nil
}

// LastCompleted returns the most recent completed session of a type.
func (s *SessionStore) LastCompleted(_ context.Context, entityType domain.EntityType) (*domain.SyncSession, error) {
	for _, session := range s.sorted(entityType) {
		if session.Status == domain.SessionCompleted {
			return &session, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Prune keeps the most recent 'keep' finalised sessions per entity type.
// Running sessions are never pruned.
func (s *SessionStore) Prune(_ context.Context, keep int) error {
	all := s.sorted("")

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[domain.EntityType]int)
	for _, session := range all {
		if !session.Status.IsTerminal() {
			continue
		}
		seen[session.EntityType]++
		if seen[session.EntityType] > keep {
			delete(s.sessions, session.ID)
		}
	}
	return nil
}

// sorted returns the sessions of a type (all types if empty), newest first.
func (s *SessionStore) sorted(entityType domain.EntityType) []domain.SyncSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.SyncSession
	for _, session := range s.sessions {
		if entityType == "" || session.EntityType == entityType {
			out = append(out, session)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out
}
