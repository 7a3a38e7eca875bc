package wiki

import (
	"context"
	"sync"

	id "nexus/pkg/domain"
	"nexus/pkg/platform/sentinel"
)

// Store persists wiki guides.
type Store interface {
	Create(ctx context.Context, g *Guide) error
	Get(ctx context.Context, guideID id.GuideID) (*Guide, error)
	Update(ctx context.Context, g *Guide) error
	ListVisible(ctx context.Context, tenantID id.TenantID) ([]*Guide, error)
}

// InMemoryStore backs tests and local runs.
type InMemoryStore struct {
	mu     sync.RWMutex
	guides map[id.GuideID]*Guide
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{guides: make(map[id.GuideID]*Guide)}
}

func (s *InMemoryStore) Create(_ context.Context, g *Guide) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.guides[g.ID]; exists {
		return sentinel.ErrConflict
	}
	copied := *g
	s.guides[g.ID] = &copied
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, guideID id.GuideID) (*Guide, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.guides[guideID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *g
	return &copied, nil
}

func (s *InMemoryStore) Update(_ context.Context, g *Guide) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.guides[g.ID]; !ok {
		return sentinel.ErrNotFound
	}
	copied := *g
	s.guides[g.ID] = &copied
	return nil
}

// ListVisible returns published guides readable from the given tenant: its own
// guides plus all global ones. Drafts stay private to this listing.
func (s *InMemoryStore) ListVisible(_ context.Context, tenantID id.TenantID) ([]*Guide, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Guide
	for _, g := range s.guides {
		if g.Status != StatusPublished {
			continue
		}
		if g.IsGlobal() || g.TenantID == tenantID {
			copied := *g
			out = append(out, &copied)
		}
	}
	return out, nil
}
