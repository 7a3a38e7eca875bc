package wiki

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

// Service orchestrates guide writes.
type Service struct {
	store     Store
	lifecycle *lifecycle.Manager
}

func NewService(store Store, lc *lifecycle.Manager) *Service {
	return &Service{store: store, lifecycle: lc}
}

type CreateParams struct {
	Title  string
	Body   string
	Points int
	Global bool
}

// Create authors a new draft guide. Tenant actors may author either a guide
// for their own site or, with Global set, a platform-wide one; actors bound to
// no tenant always author globally.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Guide, error) {
	actor := requestcontext.Actor(ctx)
	if actor.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	tenantID := requestcontext.Tenant(ctx)
	if params.Global {
		tenantID = id.TenantID{}
	}

	g, err := New(
		id.NewGuideID(),
		tenantID,
		actor.UserID,
		strings.TrimSpace(params.Title),
		params.Body,
		params.Points,
		requestcontext.Now(ctx),
	)
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, g); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create guide")
	}

	s.lifecycle.Created(ctx, g)
	return g, nil
}

func (s *Service) Get(ctx context.Context, guideID id.GuideID) (*Guide, error) {
	g, err := s.store.Get(ctx, guideID)
	if err != nil {
		return nil, wrapGuideErr(err)
	}
	return g, nil
}

func (s *Service) Publish(ctx context.Context, guideID id.GuideID) (*Guide, error) {
	g, err := s.store.Get(ctx, guideID)
	if err != nil {
		return nil, wrapGuideErr(err)
	}

	before := g.AuditSnapshot()
	if err := g.ApplyPublish(requestcontext.Now(ctx)); err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, g); err != nil {
		return nil, wrapGuideErr(err)
	}

	s.lifecycle.Updated(ctx, before, g)
	return g, nil
}

func (s *Service) ListVisible(ctx context.Context) ([]*Guide, error) {
	guides, err := s.store.ListVisible(ctx, requestcontext.Tenant(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list guides")
	}
	return guides, nil
}

func wrapGuideErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "guide not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "guide store failure")
}
