package reactor

import (
	"context"
	"time"

	"nexus/internal/audit"
	"nexus/internal/notification"
	id "nexus/pkg/domain"
)

var reactNow = time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)

type directCall struct {
	msg   notification.Message
	scope notification.Scope
}

type roleCall struct {
	msg      notification.Message
	tenantID id.TenantID
	roles    []string
}

// fakeNotifier records every dispatch instead of persisting anything.
type fakeNotifier struct {
	direct []directCall
	byRole []roleCall
	err    error
}

func (f *fakeNotifier) Dispatch(_ context.Context, msg notification.Message, scope notification.Scope) (*notification.Notification, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.direct = append(f.direct, directCall{msg: msg, scope: scope})
	return &notification.Notification{}, nil
}

func (f *fakeNotifier) DispatchByRoles(_ context.Context, msg notification.Message, tenantID id.TenantID, roleNames ...string) error {
	if f.err != nil {
		return f.err
	}
	f.byRole = append(f.byRole, roleCall{msg: msg, tenantID: tenantID, roles: roleNames})
	return nil
}

func (f *fakeNotifier) total() int { return len(f.direct) + len(f.byRole) }

// otherEntity is an auditable kind no reactor watches.
type otherEntity struct{}

func (otherEntity) AuditKind() audit.Kind         { return audit.KindAuditRecord }
func (otherEntity) AuditEntityID() string         { return "other" }
func (otherEntity) AuditSnapshot() audit.Snapshot { return audit.Snapshot{} }
