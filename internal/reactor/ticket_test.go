package reactor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexus/internal/audit"
	"nexus/internal/lifecycle"
	"nexus/internal/notification"
	"nexus/internal/roles"
	"nexus/internal/tickets"
	id "nexus/pkg/domain"
)

func newTicket(t *testing.T) *tickets.Ticket {
	t.Helper()
	ticket, err := tickets.New(
		id.NewTicketID(), id.NewTenantID(), id.NewUserID(),
		"Slot 204 coin jam", "Coin mechanism jammed mid-session", "SL-204",
		tickets.CategoryHardware, tickets.PriorityHigh, reactNow,
	)
	require.NoError(t, err)
	return ticket
}

func TestTicketReactor_CreateAlertsTechnicalRoles(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewTicketReactor(notifier)
	ticket := newTicket(t)

	err := r.React(context.Background(), lifecycle.Event{Action: audit.ActionCreate, Entity: ticket})
	require.NoError(t, err)

	require.Len(t, notifier.byRole, 1)
	assert.Equal(t, []string{roles.Technician, roles.SystemsSupervisor}, notifier.byRole[0].roles)
	assert.Equal(t, ticket.TenantID, notifier.byRole[0].tenantID)
	assert.Equal(t, notification.SeverityAlert, notifier.byRole[0].msg.Severity)
	assert.Equal(t, notification.CategoryTicket, notifier.byRole[0].msg.Category)
	assert.Empty(t, notifier.direct)
}

func TestTicketReactor_CloseNotifiesReporter(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewTicketReactor(notifier)
	ticket := newTicket(t)

	before := ticket.AuditSnapshot()
	require.NoError(t, ticket.ApplyStatus(tickets.StatusClosed, reactNow))

	err := r.React(context.Background(), lifecycle.Event{Action: audit.ActionUpdate, Entity: ticket, Before: before})
	require.NoError(t, err)

	require.Len(t, notifier.direct, 1)
	assert.Equal(t, ticket.ReporterID, notifier.direct[0].scope.UserID)
	assert.Equal(t, notification.SeverityInfo, notifier.direct[0].msg.Severity)
	assert.Empty(t, notifier.byRole)
}

func TestTicketReactor_ResaveClosedFiresNothing(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewTicketReactor(notifier)
	ticket := newTicket(t)
	require.NoError(t, ticket.ApplyStatus(tickets.StatusClosed, reactNow))

	// The pre-image already says closed, so the save is not a transition.
	before := ticket.AuditSnapshot()
	err := r.React(context.Background(), lifecycle.Event{Action: audit.ActionUpdate, Entity: ticket, Before: before})
	require.NoError(t, err)
	assert.Zero(t, notifier.total())
}

func TestTicketReactor_NilBeforeStaysQuiet(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewTicketReactor(notifier)
	ticket := newTicket(t)
	require.NoError(t, ticket.ApplyStatus(tickets.StatusClosed, reactNow))

	err := r.React(context.Background(), lifecycle.Event{Action: audit.ActionUpdate, Entity: ticket})
	require.NoError(t, err)
	assert.Zero(t, notifier.total())
}

func TestTicketReactor_ReopenAlertsAssignee(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewTicketReactor(notifier)
	ticket := newTicket(t)
	assignee := id.NewUserID()
	ticket.ApplyAssignee(&assignee, reactNow)
	require.NoError(t, ticket.ApplyStatus(tickets.StatusClosed, reactNow))

	before := ticket.AuditSnapshot()
	require.NoError(t, ticket.ApplyStatus(tickets.StatusReopened, reactNow))

	err := r.React(context.Background(), lifecycle.Event{Action: audit.ActionUpdate, Entity: ticket, Before: before})
	require.NoError(t, err)

	require.Len(t, notifier.direct, 1)
	assert.Equal(t, assignee, notifier.direct[0].scope.UserID)
	assert.Equal(t, notification.SeverityAlert, notifier.direct[0].msg.Severity)
}

func TestTicketReactor_ReopenWithoutAssigneeStaysQuiet(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewTicketReactor(notifier)
	ticket := newTicket(t)
	require.NoError(t, ticket.ApplyStatus(tickets.StatusClosed, reactNow))

	before := ticket.AuditSnapshot()
	require.NoError(t, ticket.ApplyStatus(tickets.StatusReopened, reactNow))

	err := r.React(context.Background(), lifecycle.Event{Action: audit.ActionUpdate, Entity: ticket, Before: before})
	require.NoError(t, err)
	assert.Zero(t, notifier.total())
}

func TestTicketReactor_AssignmentNotifiesNewAssignee(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewTicketReactor(notifier)
	ticket := newTicket(t)

	before := ticket.AuditSnapshot()
	assignee := id.NewUserID()
	ticket.ApplyAssignee(&assignee, reactNow)

	err := r.React(context.Background(), lifecycle.Event{Action: audit.ActionUpdate, Entity: ticket, Before: before})
	require.NoError(t, err)

	require.Len(t, notifier.direct, 1)
	assert.Equal(t, assignee, notifier.direct[0].scope.UserID)
}

func TestTicketReactor_SameAssigneeResaveStaysQuiet(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewTicketReactor(notifier)
	ticket := newTicket(t)
	assignee := id.NewUserID()
	ticket.ApplyAssignee(&assignee, reactNow)

	before := ticket.AuditSnapshot()
	err := r.React(context.Background(), lifecycle.Event{Action: audit.ActionUpdate, Entity: ticket, Before: before})
	require.NoError(t, err)
	assert.Zero(t, notifier.total())
}

func TestTicketReactor_ReassignmentNotifiesNewAssignee(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewTicketReactor(notifier)
	ticket := newTicket(t)
	first := id.NewUserID()
	ticket.ApplyAssignee(&first, reactNow)

	before := ticket.AuditSnapshot()
	second := id.NewUserID()
	ticket.ApplyAssignee(&second, reactNow)

	err := r.React(context.Background(), lifecycle.Event{Action: audit.ActionUpdate, Entity: ticket, Before: before})
	require.NoError(t, err)

	require.Len(t, notifier.direct, 1)
	assert.Equal(t, second, notifier.direct[0].scope.UserID)
}

func TestTicketReactor_IgnoresOtherEntities(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewTicketReactor(notifier)

	err := r.React(context.Background(), lifecycle.Event{Action: audit.ActionCreate, Entity: otherEntity{}})
	require.NoError(t, err)
	assert.Zero(t, notifier.total())
}
