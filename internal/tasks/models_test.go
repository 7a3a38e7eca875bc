package tasks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "nexus/pkg/domain"
	dErrors "nexus/pkg/domain-errors"
)

var modelNow = time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)

func makeTask(t *testing.T, points int) *Task {
	t.Helper()
	task, err := New(id.NewTaskID(), id.NewTenantID(), id.NewUserID(),
		"Replace chair castors", "Floor 2 seating maintenance", points, modelNow)
	require.NoError(t, err)
	return task
}

func TestNew_Validation(t *testing.T) {
	_, err := New(id.NewTaskID(), id.NewTenantID(), id.NewUserID(), "", "", 0, modelNow)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = New(id.NewTaskID(), id.NewTenantID(), id.NewUserID(), "t", "", -5, modelNow)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestApplyStatus_TerminalStatesRejectFurtherMoves(t *testing.T) {
	task := makeTask(t, 0)
	require.NoError(t, task.ApplyStatus(StatusCompleted, modelNow))

	err := task.ApplyStatus(StatusInProgress, modelNow)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

	cancelled := makeTask(t, 0)
	require.NoError(t, cancelled.ApplyStatus(StatusCancelled, modelNow))
	err = cancelled.ApplyStatus(StatusCompleted, modelNow)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestApplyStatus_PendingPaths(t *testing.T) {
	task := makeTask(t, 0)
	require.NoError(t, task.ApplyStatus(StatusInProgress, modelNow))
	require.NoError(t, task.ApplyStatus(StatusCompleted, modelNow))
	assert.Equal(t, StatusCompleted, task.Status)
}

func TestAuditSnapshot_TracksAssigneeAndPoints(t *testing.T) {
	task := makeTask(t, 25)
	snap := task.AuditSnapshot()
	assert.Nil(t, snap["assignee_id"])
	require.NotNil(t, snap["points"])
	assert.Equal(t, "25", *snap["points"])

	assignee := id.NewUserID()
	task.ApplyAssignee(&assignee, modelNow)
	snap = task.AuditSnapshot()
	require.NotNil(t, snap["assignee_id"])
	assert.Equal(t, assignee.String(), *snap["assignee_id"])
}
