// Package tasks covers special assignments outside routine maintenance.
// Completion feeds the technician rewards layer, so finishing a task
// notifies both the creator and management.
package tasks

import (
	"time"

	"nexus/internal/audit"
	id "nexus/pkg/domain"
	dErrors "nexus/pkg/domain-errors"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

var validTransitions = map[Status][]Status{
	StatusPending:    {StatusInProgress, StatusCompleted, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

func (s Status) CanTransitionTo(next Status) bool {
	if s == next {
		return true
	}
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Task is one special assignment.
//
// Invariants:
//   - Title non-empty, TenantID and CreatorID immutable
//   - Completed and cancelled are terminal
//   - Points never negative
type Task struct {
	ID          id.TaskID
	TenantID    id.TenantID
	Title       string
	Description string
	Status      Status
	CreatorID   id.UserID
	AssigneeID  *id.UserID
	Points      int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func New(taskID id.TaskID, tenantID id.TenantID, creatorID id.UserID, title, description string, points int, now time.Time) (*Task, error) {
	if title == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "task title cannot be empty")
	}
	if tenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "task requires a tenant")
	}
	if points < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "task points cannot be negative")
	}
	return &Task{
		ID:          taskID,
		TenantID:    tenantID,
		Title:       title,
		Description: description,
		Status:      StatusPending,
		CreatorID:   creatorID,
		Points:      points,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (t *Task) ApplyStatus(next Status, now time.Time) error {
	if !next.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid task status")
	}
	if !t.Status.CanTransitionTo(next) {
		return dErrors.Newf(dErrors.CodeConflict, "cannot move task from %s to %s", t.Status, next)
	}
	if t.Status == next {
		return nil
	}
	t.Status = next
	t.UpdatedAt = now
	return nil
}

func (t *Task) ApplyAssignee(assignee *id.UserID, now time.Time) {
	t.AssigneeID = assignee
	t.UpdatedAt = now
}

func (t *Task) AuditKind() audit.Kind { return audit.KindTask }
func (t *Task) AuditEntityID() string { return t.ID.String() }

func (t *Task) AuditSnapshot() audit.Snapshot {
	var assignee any
	if t.AssigneeID != nil {
		assignee = *t.AssigneeID
	}
	return audit.Capture(map[string]any{
		"title":       t.Title,
		"description": t.Description,
		"status":      string(t.Status),
		"creator_id":  t.CreatorID,
		"assignee_id": assignee,
		"points":      t.Points,
	})
}
