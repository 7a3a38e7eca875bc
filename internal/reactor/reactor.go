// Package reactor holds the event reactors: the declarative watch tables
// that turn entity lifecycle events into notifications. Each reactor watches
// one entity kind and fires only on creation or on a genuine transition —
// re-saving an entity in the same state stays silent, which is what keeps
// notification fan-out from multiplying under retries and idle edits.
package reactor

import (
	"context"

	"nexus/internal/audit"
	"nexus/internal/lifecycle"
	"nexus/internal/notification"
	id "nexus/pkg/domain"
)

// Notifier is the slice of the notification router the reactors use.
type Notifier interface {
	Dispatch(ctx context.Context, msg notification.Message, scope notification.Scope) (*notification.Notification, error)
	DispatchByRoles(ctx context.Context, msg notification.Message, tenantID id.TenantID, roleNames ...string) error
}

// Registry assembles every reactor against one notifier, in the order the
// lifecycle manager will run them.
func Registry(notifier Notifier) []lifecycle.Reactor {
	return []lifecycle.Reactor{
		NewTicketReactor(notifier),
		NewIncidenceReactor(notifier),
		NewTaskReactor(notifier),
		NewWikiReactor(notifier),
	}
}

// audience is the target half of a watch table row: a set of tenant roles
// to fan out to, specific users, or everyone.
type audience struct {
	global bool
	roles  []string
	users  []id.UserID
}

func roleAudience(roles ...string) audience    { return audience{roles: roles} }
func userAudience(users ...id.UserID) audience { return audience{users: users} }

// send delivers one message to an audience. Every target is attempted; the
// first error comes back after the rest were tried.
func send(ctx context.Context, n Notifier, msg notification.Message, tenantID id.TenantID, aud audience) error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if aud.global {
		_, err := n.Dispatch(ctx, msg, notification.GlobalScope())
		keep(err)
	}
	if len(aud.roles) > 0 {
		keep(n.DispatchByRoles(ctx, msg, tenantID, aud.roles...))
	}
	for _, userID := range aud.users {
		if userID.IsNil() {
			continue
		}
		_, err := n.Dispatch(ctx, msg, notification.UserScope(userID))
		keep(err)
	}
	return firstErr
}

// beforeValue reads one field out of a pre-image snapshot. The second return
// is false when the snapshot is missing, the field is absent, or its value
// was nil.
func beforeValue(before audit.Snapshot, field string) (string, bool) {
	if before == nil {
		return "", false
	}
	v, ok := before[field]
	if !ok || v == nil {
		return "", false
	}
	return *v, true
}

// transitioned reports whether an update moved the named field INTO the
// target value. Creates never count, nor do updates whose pre-image already
// held the target (a re-save of an unchanged state), nor updates with no
// pre-image at all, which keeps transition reactions quiet when the before
// snapshot could not be captured.
func transitioned(ev lifecycle.Event, field, current, target string) bool {
	if ev.Action != audit.ActionUpdate || current != target || ev.Before == nil {
		return false
	}
	prev, _ := beforeValue(ev.Before, field)
	return prev != target
}

// assigneeChangedTo reports whether an update set the assignee to the given
// concrete user, covering both first assignment and reassignment.
func assigneeChangedTo(ev lifecycle.Event, current *id.UserID) bool {
	if ev.Action != audit.ActionUpdate || current == nil || ev.Before == nil {
		return false
	}
	prev, ok := beforeValue(ev.Before, "assignee_id")
	return !ok || prev != current.String()
}
