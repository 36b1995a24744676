package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/archibald-labs/archisync/internal/core/domain"
	"github.com/archibald-labs/archisync/internal/core/ports/driven"
)

// Ensure MatchStore implements the interface.
var _ driven.MatchStore = (*MatchStore)(nil)

type assocKey struct {
	pair      domain.PairType
	sourceKey string
	targetKey string
}

// MatchStore is an in-memory implementation of driven.MatchStore.
type MatchStore struct {
	mu     sync.RWMutex
	assocs map[assocKey]domain.MatchAssociation
}

// NewMatchStore creates a new in-memory match store.
func NewMatchStore() *MatchStore {
	return &MatchStore{
		assocs: make(map[assocKey]domain.MatchAssociation),
	}
}

// Upsert writes an association, leaving manual ones untouched by
// automatic writes.
func (s *MatchStore) Upsert(_ context.Context, assoc *domain.MatchAssociation) (bool, error) {
	if assoc == nil || assoc.SourceKey == "" || assoc.TargetKey == "" {
		return false, domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := assocKey{assoc.Pair, assoc.SourceKey, assoc.TargetKey}
	now := time.Now().UTC()

	existing, ok := s.assocs[k]
	if !ok {
		a := *assoc
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		a.UpdatedAt = now
		s.assocs[k] = a
		return true, nil
	}

	if existing.IsManual() && !assoc.IsManual() {
		return false, nil
	}

	a := *assoc
	a.ID = existing.ID
	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = now
	s.assocs[k] = a
	return false, nil
}

// Get retrieves one association.
func (s *MatchStore) Get(
	_ context.Context,
	pair domain.PairType,
	sourceKey, targetKey string,
) (*domain.MatchAssociation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.assocs[assocKey{pair, sourceKey, targetKey}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

// ListBySource returns the associations of a source record, best first.
func (s *MatchStore) ListBySource(
	_ context.Context,
	pair domain.PairType,
	sourceKey string,
) ([]domain.MatchAssociation, error) {
	return s.filter(func(k assocKey) bool { return k.pair == pair && k.sourceKey == sourceKey }), nil
}

// ListByTarget returns the associations of a target record, best first.
func (s *MatchStore) ListByTarget(
	_ context.Context,
	pair domain.PairType,
	targetKey string,
) ([]domain.MatchAssociation, error) {
	return s.filter(func(k assocKey) bool { return k.pair == pair && k.targetKey == targetKey }), nil
}

// List returns every association of a pair.
func (s *MatchStore) List(_ context.Context, pair domain.PairType) ([]domain.MatchAssociation, error) {
	return s.filter(func(k assocKey) bool { return k.pair == pair }), nil
}

// Delete removes one association.
func (s *MatchStore) Delete(_ context.Context, pair domain.PairType, sourceKey, targetKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := assocKey{pair, sourceKey, targetKey}
	if _, ok := s.assocs[k]; !ok {
		return domain.ErrNotFound
	}
	delete(s.assocs, k)
	return nil
}

func (s *MatchStore) filter(keep func(assocKey) bool) []domain.MatchAssociation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.MatchAssociation
	for k, a := range s.assocs {
		if keep(k) {
			out = append(out, a)
		}
	}
	sortAssociations(out)
	return out
}

// sortAssociations orders by confidence descending, then by keys.
func sortAssociations(assocs []domain.MatchAssociation) {
	sort.Slice(assocs, func(i, j int) bool {
		a, b := assocs[i], assocs[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.SourceKey != b.SourceKey {
			return a.SourceKey < b.SourceKey
		}
		return a.TargetKey < b.TargetKey
	})
}
