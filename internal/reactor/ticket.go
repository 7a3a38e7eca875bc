package reactor

import (
	"context"
	"fmt"

	"nexus/internal/audit"
	"nexus/internal/lifecycle"
	"nexus/internal/notification"
	"nexus/internal/roles"
	"nexus/internal/tickets"
)

// ticketRoute is one row of the ticket watch table: when the ticket reaches
// the given status, notify the audience with the given severity.
type ticketRoute struct {
	to       tickets.Status
	severity notification.Severity
	title    func(t *tickets.Ticket) string
	body     func(t *tickets.Ticket) string
	audience func(t *tickets.Ticket) audience
}

var ticketStatusRoutes = []ticketRoute{
	{
		to:       tickets.StatusClosed,
		severity: notification.SeverityInfo,
		title:    func(t *tickets.Ticket) string { return fmt.Sprintf("Ticket closed: %s", t.Title) },
		body:     func(t *tickets.Ticket) string { return "The ticket you reported has been resolved and closed." },
		audience: func(t *tickets.Ticket) audience { return userAudience(t.ReporterID) },
	},
	{
		to:       tickets.StatusReopened,
		severity: notification.SeverityAlert,
		title:    func(t *tickets.Ticket) string { return fmt.Sprintf("Ticket reopened: %s", t.Title) },
		body:     func(t *tickets.Ticket) string { return "A ticket assigned to you was reopened and needs attention." },
		audience: func(t *tickets.Ticket) audience {
			if t.AssigneeID == nil {
				return audience{}
			}
			return userAudience(*t.AssigneeID)
		},
	},
}

// TicketReactor notifies on ticket creation, closure, reopening, and
// assignment.
type TicketReactor struct {
	notifier Notifier
}

func NewTicketReactor(notifier Notifier) *TicketReactor {
	return &TicketReactor{notifier: notifier}
}

func (r *TicketReactor) React(ctx context.Context, ev lifecycle.Event) error {
	t, ok := ev.Entity.(*tickets.Ticket)
	if !ok {
		return nil
	}

	if ev.Action == audit.ActionCreate {
		msg := notification.Message{
			Title:    fmt.Sprintf("New ticket: %s", t.Title),
			Body:     fmt.Sprintf("A machine ticket was reported (machine %s).", t.MachineCode),
			Severity: notification.SeverityAlert,
			Category: notification.CategoryTicket,
		}
		return send(ctx, r.notifier, msg, t.TenantID,
			roleAudience(roles.Technician, roles.SystemsSupervisor))
	}

	var firstErr error
	for _, route := range ticketStatusRoutes {
		if !transitioned(ev, "status", string(t.Status), string(route.to)) {
			continue
		}
		msg := notification.Message{
			Title:    route.title(t),
			Body:     route.body(t),
			Severity: route.severity,
			Category: notification.CategoryTicket,
		}
		if err := send(ctx, r.notifier, msg, t.TenantID, route.audience(t)); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if assigneeChangedTo(ev, t.AssigneeID) {
		msg := notification.Message{
			Title:    fmt.Sprintf("Ticket assigned to you: %s", t.Title),
			Body:     fmt.Sprintf("You are now the assignee for machine %s.", t.MachineCode),
			Severity: notification.SeverityAlert,
			Category: notification.CategoryTicket,
		}
		if err := send(ctx, r.notifier, msg, t.TenantID, userAudience(*t.AssigneeID)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
