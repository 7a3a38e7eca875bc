package tickets

import (
	"context"
	"sync"

	id "nexus/pkg/domain"
	"nexus/pkg/platform/sentinel"
)

// Store persists tickets.
type Store interface {
	Create(ctx context.Context, t *Ticket) error
	Get(ctx context.Context, ticketID id.TicketID) (*Ticket, error)
	Update(ctx context.Context, t *Ticket) error
	ListByTenant(ctx context.Context, tenantID id.TenantID) ([]*Ticket, error)
}

// InMemoryStore backs tests and local runs.
type InMemoryStore struct {
	mu      sync.RWMutex
	tickets map[id.TicketID]*Ticket
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{tickets: make(map[id.TicketID]*Ticket)}
}

func (s *InMemoryStore) Create(_ context.Context, t *Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tickets[t.ID]; exists {
		return sentinel.ErrConflict
	}
	copied := *t
	s.tickets[t.ID] = &copied
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, ticketID id.TicketID) (*Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tickets[ticketID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (s *InMemoryStore) Update(_ context.Context, t *Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tickets[t.ID]; !ok {
		return sentinel.ErrNotFound
	}
	copied := *t
	s.tickets[t.ID] = &copied
	return nil
}

func (s *InMemoryStore) ListByTenant(_ context.Context, tenantID id.TenantID) ([]*Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Ticket
	for _, t := range s.tickets {
		if t.TenantID == tenantID {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}
