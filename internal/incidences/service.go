package incidences

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

// Service orchestrates incidence writes.
type Service struct {
	store     Store
	lifecycle *lifecycle.Manager
}

func NewService(store Store, lc *lifecycle.Manager) *Service {
	return &Service{store: store, lifecycle: lc}
}

type CreateParams struct {
	Title            string
	Description      string
	Severity         Severity
	AffectsOperation bool
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Incidence, error) {
	actor := requestcontext.Actor(ctx)
	if actor.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	tenantID := requestcontext.Tenant(ctx)
	if tenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeForbidden, "incidences belong to a tenant")
	}

	i, err := New(
		id.NewIncidenceID(),
		tenantID,
		actor.UserID,
		strings.TrimSpace(params.Title),
		strings.TrimSpace(params.Description),
		params.Severity,
		params.AffectsOperation,
		requestcontext.Now(ctx),
	)
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, i); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create incidence")
	}

	s.lifecycle.Created(ctx, i)
	return i, nil
}

func (s *Service) Get(ctx context.Context, incidenceID id.IncidenceID) (*Incidence, error) {
	i, err := s.store.Get(ctx, incidenceID)
	if err != nil {
		return nil, wrapIncidenceErr(err)
	}
	return i, nil
}

// End marks the outage as resolved.
func (s *Service) End(ctx context.Context, incidenceID id.IncidenceID) (*Incidence, error) {
	i, err := s.store.Get(ctx, incidenceID)
	if err != nil {
		return nil, wrapIncidenceErr(err)
	}

	before := i.AuditSnapshot()
	if err := i.ApplyEnd(requestcontext.Now(ctx)); err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, i); err != nil {
		return nil, wrapIncidenceErr(err)
	}

	s.lifecycle.Updated(ctx, before, i)
	return i, nil
}

func wrapIncidenceErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "incidence not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "incidence store failure")
}
