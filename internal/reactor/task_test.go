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
	"nexus/internal/tasks"
	id "nexus/pkg/domain"
)

func newTask(t *testing.T, points int) *tasks.Task {
	t.Helper()
	task, err := tasks.New(
		id.NewTaskID(), id.NewTenantID(), id.NewUserID(),
		"Quarterly slot audit", "Count and verify floor 1 machines", points, reactNow,
	)
	require.NoError(t, err)
	return task
}

func TestTaskReactor_CreateAlertsTechnicalRoles(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewTaskReactor(notifier)
	task := newTask(t, 0)

	err := r.React(context.Background(), lifecycle.Event{Action: audit.ActionCreate, Entity: task})
	require.NoError(t, err)

	require.Len(t, notifier.byRole, 1)
	assert.Equal(t, []string{roles.Technician, roles.SystemsSupervisor}, notifier.byRole[0].roles)
	assert.Equal(t, notification.SeverityAlert, notifier.byRole[0].msg.Severity)
	assert.Equal(t, notification.CategorySystem, notifier.byRole[0].msg.Category)
}

func TestTaskReactor_CompletionNotifiesCreatorAndManagement(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewTaskReactor(notifier)
	task := newTask(t, 0)

	before := task.AuditSnapshot()
	require.NoError(t, task.ApplyStatus(tasks.StatusCompleted, reactNow))

	err := r.React(context.Background(), lifecycle.Event{Action: audit.ActionUpdate, Entity: task, Before: before})
	require.NoError(t, err)

	require.Len(t, notifier.direct, 1)
	assert.Equal(t, task.CreatorID, notifier.direct[0].scope.UserID)
	require.Len(t, notifier.byRole, 1)
	assert.Equal(t, []string{roles.Management}, notifier.byRole[0].roles)
}

func TestTaskReactor_CompletionWithPointsAlsoNotifiesAssignee(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewTaskReactor(notifier)
	task := newTask(t, 50)
	assignee := id.NewUserID()
	task.ApplyAssignee(&assignee, reactNow)

	before := task.AuditSnapshot()
	require.NoError(t, task.ApplyStatus(tasks.StatusCompleted, reactNow))

	err := r.React(context.Background(), lifecycle.Event{Action: audit.ActionUpdate, Entity: task, Before: before})
	require.NoError(t, err)

	require.Len(t, notifier.direct, 2)
	targets := []id.UserID{notifier.direct[0].scope.UserID, notifier.direct[1].scope.UserID}
	assert.Contains(t, targets, task.CreatorID)
	assert.Contains(t, targets, assignee)
}

func TestTaskReactor_CancellationNotifiesCreatorOnly(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewTaskReactor(notifier)
	task := newTask(t, 50)

	before := task.AuditSnapshot()
	require.NoError(t, task.ApplyStatus(tasks.StatusCancelled, reactNow))

	err := r.React(context.Background(), lifecycle.Event{Action: audit.ActionUpdate, Entity: task, Before: before})
	require.NoError(t, err)

	require.Len(t, notifier.direct, 1)
	assert.Equal(t, task.CreatorID, notifier.direct[0].scope.UserID)
	assert.Empty(t, notifier.byRole)
}

func TestTaskReactor_ResaveCompletedFiresNothing(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewTaskReactor(notifier)
	task := newTask(t, 0)
	require.NoError(t, task.ApplyStatus(tasks.StatusCompleted, reactNow))

	before := task.AuditSnapshot()
	err := r.React(context.Background(), lifecycle.Event{Action: audit.ActionUpdate, Entity: task, Before: before})
	require.NoError(t, err)
	assert.Zero(t, notifier.total())
}

func TestTaskReactor_AssignmentNotifiesNewAssignee(t *testing.T) {
	notifier := &fakeNotifier{}
	r := NewTaskReactor(notifier)
	task := newTask(t, 0)

	before := task.AuditSnapshot()
	assignee := id.NewUserID()
	task.ApplyAssignee(&assignee, reactNow)

	err := r.React(context.Background(), lifecycle.Event{Action: audit.ActionUpdate, Entity: task, Before: before})
	require.NoError(t, err)

	require.Len(t, notifier.direct, 1)
	assert.Equal(t, assignee, notifier.direct[0].scope.UserID)
	assert.Equal(t, notification.SeverityInfo, notifier.direct[0].msg.Severity)
}
