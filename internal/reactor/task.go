package reactor

import (
	"context"
	"fmt"

	"nexus/internal/audit"
	"nexus/internal/lifecycle"
	"nexus/internal/notification"
	"nexus/internal/roles"
	"nexus/internal/tasks"
	id "nexus/pkg/domain"
)

// taskRoute is one row of the task watch table.
type taskRoute struct {
	to       tasks.Status
	severity notification.Severity
	title    func(t *tasks.Task) string
	body     func(t *tasks.Task) string
	audience func(t *tasks.Task) audience
}

var taskStatusRoutes = []taskRoute{
	{
		to:       tasks.StatusCompleted,
		severity: notification.SeverityInfo,
		title:    func(t *tasks.Task) string { return fmt.Sprintf("Task completed: %s", t.Title) },
		body:     func(t *tasks.Task) string { return "A special task you created has been completed." },
		audience: func(t *tasks.Task) audience {
			aud := audience{roles: []string{roles.Management}, users: []id.UserID{t.CreatorID}}
			// Point-bearing tasks also confirm the award to whoever did the work.
			if t.Points > 0 && t.AssigneeID != nil {
				aud.users = append(aud.users, *t.AssigneeID)
			}
			return aud
		},
	},
	{
		to:       tasks.StatusCancelled,
		severity: notification.SeverityInfo,
		title:    func(t *tasks.Task) string { return fmt.Sprintf("Task cancelled: %s", t.Title) },
		body:     func(t *tasks.Task) string { return "A special task you created was cancelled." },
		audience: func(t *tasks.Task) audience { return userAudience(t.CreatorID) },
	},
}

// TaskReactor notifies on task creation, completion, cancellation, and
// assignment.
type TaskReactor struct {
	notifier Notifier
}

func NewTaskReactor(notifier Notifier) *TaskReactor {
	return &TaskReactor{notifier: notifier}
}

func (r *TaskReactor) React(ctx context.Context, ev lifecycle.Event) error {
	t, ok := ev.Entity.(*tasks.Task)
	if !ok {
		return nil
	}

	if ev.Action == audit.ActionCreate {
		msg := notification.Message{
			Title:    fmt.Sprintf("New task: %s", t.Title),
			Body:     t.Description,
			Severity: notification.SeverityAlert,
			Category: notification.CategorySystem,
		}
		return send(ctx, r.notifier, msg, t.TenantID,
			roleAudience(roles.Technician, roles.SystemsSupervisor))
	}

	var firstErr error
	for _, route := range taskStatusRoutes {
		if !transitioned(ev, "status", string(t.Status), string(route.to)) {
			continue
		}
		msg := notification.Message{
			Title:    route.title(t),
			Body:     route.body(t),
			Severity: route.severity,
			Category: notification.CategorySystem,
		}
		if err := send(ctx, r.notifier, msg, t.TenantID, route.audience(t)); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if assigneeChangedTo(ev, t.AssigneeID) {
		msg := notification.Message{
			Title:    fmt.Sprintf("Task assigned to you: %s", t.Title),
			Body:     t.Description,
			Severity: notification.SeverityInfo,
			Category: notification.CategorySystem,
		}
		if err := send(ctx, r.notifier, msg, t.TenantID, userAudience(*t.AssigneeID)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
