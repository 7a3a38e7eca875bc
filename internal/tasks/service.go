package tasks

import (
	"context"
	"errors"
	"strings"

	"nexus/internal/lifecycle"
	id "nexus/pkg/domain"
	dErrors "nexus/pkg/domain-errors"
	"nexus/pkg/platform/sentinel"
	"nexus/pkg/requestcontext"
)

// Service orchestrates task writes.
type Service struct {
	store     Store
	lifecycle *lifecycle.Manager
}

func NewService(store Store, lc *lifecycle.Manager) *Service {
	return &Service{store: store, lifecycle: lc}
}

type CreateParams struct {
	Title       string
	Description string
	Points      int
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Task, error) {
	actor := requestcontext.Actor(ctx)
	if actor.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	tenantID := requestcontext.Tenant(ctx)
	if tenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeForbidden, "tasks belong to a tenant")
	}

	t, err := New(
		id.NewTaskID(),
		tenantID,
		actor.UserID,
		strings.TrimSpace(params.Title),
		strings.TrimSpace(params.Description),
		params.Points,
		requestcontext.Now(ctx),
	)
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, t); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create task")
	}

	s.lifecycle.Created(ctx, t)
	return t, nil
}

func (s *Service) Get(ctx context.Context, taskID id.TaskID) (*Task, error) {
	t, err := s.store.Get(ctx, taskID)
	if err != nil {
		return nil, wrapTaskErr(err)
	}
	return t, nil
}

func (s *Service) UpdateStatus(ctx context.Context, taskID id.TaskID, next Status) (*Task, error) {
	t, err := s.store.Get(ctx, taskID)
	if err != nil {
		return nil, wrapTaskErr(err)
	}

	before := t.AuditSnapshot()
	if err := t.ApplyStatus(next, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, t); err != nil {
		return nil, wrapTaskErr(err)
	}

	s.lifecycle.Updated(ctx, before, t)
	return t, nil
}

func (s *Service) Assign(ctx context.Context, taskID id.TaskID, assignee *id.UserID) (*Task, error) {
	t, err := s.store.Get(ctx, taskID)
	if err != nil {
		return nil, wrapTaskErr(err)
	}

	before := t.AuditSnapshot()
	t.ApplyAssignee(assignee, requestcontext.Now(ctx))

	if err := s.store.Update(ctx, t); err != nil {
		return nil, wrapTaskErr(err)
	}

	s.lifecycle.Updated(ctx, before, t)
	return t, nil
}

func wrapTaskErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "task not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "task store failure")
}
