package tasks

import (
	"context"
	"sync"

	id "nexus/pkg/domain"
	"nexus/pkg/platform/sentinel"
)

// Store persists tasks.
type Store interface {
	Create(ctx context.Context, t *Task) error
	Get(ctx context.Context, taskID id.TaskID) (*Task, error)
	Update(ctx context.Context, t *Task) error
}

// InMemoryStore backs tests and local runs.
type InMemoryStore struct {
	mu    sync.RWMutex
	tasks map[id.TaskID]*Task
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{tasks: make(map[id.TaskID]*Task)}
}

func (s *InMemoryStore) Create(_ context.Context, t *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tasks[t.ID]; exists {
		return sentinel.ErrConflict
	}
	copied := *t
	s.tasks[t.ID] = &copied
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, taskID id.TaskID) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[taskID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (s *InMemoryStore) Update(_ context.Context, t *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[t.ID]; !ok {
		return sentinel.ErrNotFound
	}
	copied := *t
	s.tasks[t.ID] = &copied
	return nil
}
