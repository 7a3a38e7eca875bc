package notification

import (
	"context"
	"sort"
	"sync"
	"time"

	id "nexus/pkg/domain"
	"nexus/pkg/platform/sentinel"
)

type receiptKey struct {
	notification id.NotificationID
	reader       id.UserID
}

// InMemoryStore backs tests and local runs.
type InMemoryStore struct {
	mu            sync.RWMutex
	notifications map[id.NotificationID]*Notification
	receipts      map[receiptKey]*ReadReceipt
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		notifications: make(map[id.NotificationID]*Notification),
		receipts:      make(map[receiptKey]*ReadReceipt),
	}
}

func (s *InMemoryStore) Create(_ context.Context, n *Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.notifications[n.ID]; exists {
		return sentinel.ErrConflict
	}
	copied := *n
	s.notifications[n.ID] = &copied
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, notificationID id.NotificationID) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.notifications[notificationID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *n
	return &copied, nil
}

func (s *InMemoryStore) ListVisibleTo(_ context.Context, userID id.UserID, tenantID id.TenantID, roleName string) ([]VisibleNotification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []VisibleNotification
	for _, n := range s.notifications {
		if !n.Active || !n.VisibleTo(userID, tenantID, roleName) {
			continue
		}
		visible := VisibleNotification{Notification: *n}
		if receipt, ok := s.receipts[receiptKey{n.ID, userID}]; ok {
			visible.Read = true
			readAt := receipt.ReadAt
			visible.ReadAt = &readAt
		}
		out = append(out, visible)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) MarkRead(_ context.Context, notificationID id.NotificationID, readerID id.UserID, readAt time.Time) (*ReadReceipt, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notifications[notificationID]; !ok {
		return nil, false, sentinel.ErrNotFound
	}
	key := receiptKey{notificationID, readerID}
	if existing, ok := s.receipts[key]; ok {
		copied := *existing
		return &copied, false, nil
	}
	receipt := &ReadReceipt{
		NotificationID: notificationID,
		ReaderID:       readerID,
		ReadAt:         readAt,
	}
	s.receipts[key] = receipt
	copied := *receipt
	return &copied, true, nil
}

func (s *InMemoryStore) CountUnread(_ context.Context, userID id.UserID, tenantID id.TenantID, roleName string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.notifications {
		if !n.Active || !n.VisibleTo(userID, tenantID, roleName) {
			continue
		}
		if _, read := s.receipts[receiptKey{n.ID, userID}]; !read {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryStore) isRead(notificationID id.NotificationID) bool {
	for key := range s.receipts {
		if key.notification == notificationID {
			return true
		}
	}
	return false
}

func (s *InMemoryStore) ListSweepableDirectiveGlobal(_ context.Context, cutoff time.Time) ([]id.NotificationID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []id.NotificationID
	for _, n := range s.notifications {
		if (n.IsDirective || n.Scope.Global) && n.CreatedAt.Before(cutoff) {
			out = append(out, n.ID)
		}
	}
	return out, nil
}

func (s *InMemoryStore) ListSweepableRead(_ context.Context, cutoff time.Time) ([]id.NotificationID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []id.NotificationID
	for _, n := range s.notifications {
		if n.IsDirective || n.Scope.Global {
			continue
		}
		if n.CreatedAt.Before(cutoff) && s.isRead(n.ID) {
			out = append(out, n.ID)
		}
	}
	return out, nil
}

func (s *InMemoryStore) ListSweepableUnread(_ context.Context, cutoff time.Time) ([]id.NotificationID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []id.NotificationID
	for _, n := range s.notifications {
		if n.IsDirective || n.Scope.Global {
			continue
		}
		if n.CreatedAt.Before(cutoff) && !s.isRead(n.ID) {
			out = append(out, n.ID)
		}
	}
	return out, nil
}

func (s *InMemoryStore) DeleteByIDs(_ context.Context, ids []id.NotificationID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for _, notificationID := range ids {
		if _, ok := s.notifications[notificationID]; !ok {
			continue
		}
		delete(s.notifications, notificationID)
		deleted++
		for key := range s.receipts {
			if key.notification == notificationID {
				delete(s.receipts, key)
			}
		}
	}
	return deleted, nil
}

func (s *InMemoryStore) Deactivate(_ context.Context, ids []id.NotificationID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	flipped := 0
	for _, notificationID := range ids {
		if n, ok := s.notifications[notificationID]; ok && n.Active {
			n.Active = false
			flipped++
		}
	}
	return flipped, nil
}
