package tenant

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"nexus/internal/lifecycle"
	"nexus/internal/roles"
	id "nexus/pkg/domain"
	dErrors "nexus/pkg/domain-errors"
	"nexus/pkg/platform/sentinel"
	"nexus/pkg/requestcontext"
)

// Service registers and manages casino sites.
type Service struct {
	store       Store
	provisioner roles.Provisioner
	lifecycle   *lifecycle.Manager
	logger      *slog.Logger
}

type ServiceOption func(*Service)

func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

func NewService(store Store, provisioner roles.Provisioner, lc *lifecycle.Manager, opts ...ServiceOption) *Service {
	s := &Service{store: store, provisioner: provisioner, lifecycle: lc}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

type CreateParams struct {
	Name string
	Code string
}

// Create registers a site and seeds its default role catalog. A provisioning
// failure does not roll back the registration; roles can be re-provisioned,
// and the seeding is idempotent.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Tenant, error) {
	t, err := New(
		id.NewTenantID(),
		strings.TrimSpace(params.Name),
		strings.ToUpper(strings.TrimSpace(params.Code)),
		requestcontext.Now(ctx),
	)
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, t); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "tenant code already in use")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create tenant")
	}

	if err := s.provisioner.Provision(ctx, t.ID, roles.Defaults...); err != nil {
		s.logger.ErrorContext(ctx, "role provisioning failed",
			"tenant_id", t.ID,
			"error", err,
		)
	}

	s.lifecycle.Created(ctx, t)
	return t, nil
}

func (s *Service) Get(ctx context.Context, tenantID id.TenantID) (*Tenant, error) {
	t, err := s.store.Get(ctx, tenantID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "tenant not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "tenant store failure")
	}
	return t, nil
}

func (s *Service) List(ctx context.Context) ([]*Tenant, error) {
	tenants, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tenants")
	}
	return tenants, nil
}

// Deactivate takes a site out of service.
func (s *Service) Deactivate(ctx context.Context, tenantID id.TenantID) (*Tenant, error) {
	t, err := s.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	before := t.AuditSnapshot()
	t.Deactivate(requestcontext.Now(ctx))

	if err := s.store.Update(ctx, t); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to deactivate tenant")
	}

	s.lifecycle.Updated(ctx, before, t)
	return t, nil
}
