package tenant

import (
	"context"
	"sync"

	id "nexus/pkg/domain"
	"nexus/pkg/platform/sentinel"
)

// Store persists tenants.
type Store interface {
	Create(ctx context.Context, t *Tenant) error
	Get(ctx context.Context, tenantID id.TenantID) (*Tenant, error)
	Update(ctx context.Context, t *Tenant) error
	List(ctx context.Context) ([]*Tenant, error)
}

// InMemoryStore backs tests and local runs.
type InMemoryStore struct {
	mu      sync.RWMutex
	tenants map[id.TenantID]*Tenant
	byCode  map[string]id.TenantID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		tenants: make(map[id.TenantID]*Tenant),
		byCode:  make(map[string]id.TenantID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, t *Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tenants[t.ID]; exists {
		return sentinel.ErrConflict
	}
	if _, exists := s.byCode[t.Code]; exists {
		return sentinel.ErrConflict
	}
	copied := *t
	s.tenants[t.ID] = &copied
	s.byCode[t.Code] = t.ID
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, tenantID id.TenantID) (*Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tenants[tenantID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (s *InMemoryStore) Update(_ context.Context, t *Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tenants[t.ID]; !ok {
		return sentinel.ErrNotFound
	}
	copied := *t
	s.tenants[t.ID] = &copied
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Tenant, 0, len(s.tenants))
	for _, t := range s.tenants {
		copied := *t
		out = append(out, &copied)
	}
	return out, nil
}
