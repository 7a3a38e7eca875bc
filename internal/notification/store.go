package notification

import (
	"context"
	"time"

	id "nexus/pkg/domain"
)

// Store persists notifications and read receipts.
//
// A notification counts as read once any receipt references it; the sweep
// buckets rely on that. The three ListSweepable* queries are disjoint by
// construction: directive/global rows never appear in the read or unread
// buckets, and receipt existence splits read from unread.
type Store interface {
	Create(ctx context.Context, n *Notification) error
	Get(ctx context.Context, notificationID id.NotificationID) (*Notification, error)

	// ListVisibleTo returns active notifications whose scope matches the
	// identity, newest first, with the per-identity read flag resolved.
	ListVisibleTo(ctx context.Context, userID id.UserID, tenantID id.TenantID, roleName string) ([]VisibleNotification, error)

	// MarkRead creates the (notification, reader) receipt if absent and
	// returns the surviving one. Idempotent; created reports whether this
	// call inserted it.
	MarkRead(ctx context.Context, notificationID id.NotificationID, readerID id.UserID, readAt time.Time) (receipt *ReadReceipt, created bool, err error)

	// CountUnread counts active visible notifications with no receipt from
	// this reader.
	CountUnread(ctx context.Context, userID id.UserID, tenantID id.TenantID, roleName string) (int, error)

	// Sweep bucket queries. Each takes its own cutoff, all derived from the
	// sweep's single captured now.
	ListSweepableDirectiveGlobal(ctx context.Context, cutoff time.Time) ([]id.NotificationID, error)
	ListSweepableRead(ctx context.Context, cutoff time.Time) ([]id.NotificationID, error)
	ListSweepableUnread(ctx context.Context, cutoff time.Time) ([]id.NotificationID, error)

	// DeleteByIDs removes notifications and cascades their receipts.
	DeleteByIDs(ctx context.Context, ids []id.NotificationID) (int, error)

	// Deactivate flips active to false without deleting.
	Deactivate(ctx context.Context, ids []id.NotificationID) (int, error)
}

// VisibleNotification is a notification joined with the requesting
// identity's read status.
type VisibleNotification struct {
	Notification
	Read   bool
	ReadAt *time.Time
}
