package incidences

import (
	"context"
	"sync"

	id "nexus/pkg/domain"
	"nexus/pkg/platform/sentinel"
)

// Store persists incidences.
type Store interface {
	Create(ctx context.Context, i *Incidence) error
	Get(ctx context.Context, incidenceID id.IncidenceID) (*Incidence, error)
	Update(ctx context.Context, i *Incidence) error
}

// InMemoryStore backs tests and local runs.
type InMemoryStore struct {
	mu         sync.RWMutex
	incidences map[id.IncidenceID]*Incidence
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{incidences: make(map[id.IncidenceID]*Incidence)}
}

func (s *InMemoryStore) Create(_ context.Context, i *Incidence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.incidences[i.ID]; exists {
		return sentinel.ErrConflict
	}
	copied := *i
	s.incidences[i.ID] = &copied
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, incidenceID id.IncidenceID) (*Incidence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.incidences[incidenceID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *i
	return &copied, nil
}

func (s *InMemoryStore) Update(_ context.Context, i *Incidence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.incidences[i.ID]; !ok {
		return sentinel.ErrNotFound
	}
	copied := *i
	s.incidences[i.ID] = &copied
	return nil
}
