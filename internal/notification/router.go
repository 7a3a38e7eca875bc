package notification

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"nexus/internal/platform/metrics"
	id "nexus/pkg/domain"
	dErrors "nexus/pkg/domain-errors"
	"nexus/pkg/requestcontext"
)

// RoleCatalog resolves role names for a tenant. Names absent from the
// catalog are skipped during fan-out, not treated as errors.
type RoleCatalog interface {
	Exists(ctx context.Context, tenantID id.TenantID, roleName string) (bool, error)
}

// Message is the payload half of a dispatch, separate from its targeting.
type Message struct {
	Title       string
	Body        string
	Severity    Severity
	Category    Category
	IsDirective bool
}

// Router validates segmentation and persists notifications. It guarantees
// nothing about idempotence: two identical dispatches create two rows, and
// callers guard against re-firing with their own transition detection.
type Router struct {
	store   Store
	catalog RoleCatalog
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type routerConfig struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type RouterOption func(*routerConfig)

func WithRouterLogger(logger *slog.Logger) RouterOption {
	return func(c *routerConfig) { c.logger = logger }
}

func WithRouterMetrics(m *metrics.Metrics) RouterOption {
	return func(c *routerConfig) { c.metrics = m }
}

func NewRouter(store Store, catalog RoleCatalog, opts ...RouterOption) *Router {
	cfg := &routerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return &Router{
		store:   store,
		catalog: catalog,
		logger:  cfg.logger,
		metrics: cfg.metrics,
	}
}

// Dispatch validates the scope and persists one notification. A scope
// violation is a logic bug in the caller's watch table and surfaces as a
// validation error; a store failure surfaces too, so callers decide whether
// to swallow.
func (r *Router) Dispatch(ctx context.Context, msg Message, scope Scope) (*Notification, error) {
	n, err := New(
		id.NewNotificationID(),
		msg.Title,
		msg.Body,
		msg.Severity,
		msg.Category,
		scope,
		msg.IsDirective,
		requestcontext.Now(ctx),
	)
	if err != nil {
		return nil, err
	}

	if err := r.store.Create(ctx, n); err != nil {
		r.metrics.IncNotificationFailed()
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist notification")
	}

	r.metrics.IncNotificationCreated(string(msg.Category))
	r.logger.InfoContext(ctx, "notification dispatched",
		"notification_id", n.ID,
		"category", msg.Category,
		"severity", msg.Severity,
		"global", scope.Global,
		"request_id", requestcontext.RequestID(ctx),
	)
	return n, nil
}

// DispatchByRoles issues one tenant+role dispatch per role name that exists
// in the tenant's catalog. Unknown names are skipped silently. One role's
// failure never aborts the remaining roles; the first error is returned
// after all roles were attempted.
func (r *Router) DispatchByRoles(ctx context.Context, msg Message, tenantID id.TenantID, roleNames ...string) error {
	if tenantID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "role fan-out requires a tenant")
	}

	var firstErr error
	for _, roleName := range roleNames {
		exists, err := r.catalog.Exists(ctx, tenantID, roleName)
		if err != nil {
			r.logger.WarnContext(ctx, "role lookup failed, skipping role",
				"tenant_id", uuid.UUID(tenantID),
				"role", roleName,
				"error", err,
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if !exists {
			continue
		}

		if _, err := r.Dispatch(ctx, msg, TenantRoleScope(tenantID, roleName)); err != nil {
			r.logger.ErrorContext(ctx, "role dispatch failed",
				"tenant_id", uuid.UUID(tenantID),
				"role", roleName,
				"error", err,
			)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
