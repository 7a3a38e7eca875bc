package notification

import (
	"context"
	"errors"
	"log/slog"

	"nexus/internal/platform/metrics"
	id "nexus/pkg/domain"
	dErrors "nexus/pkg/domain-errors"
	"nexus/pkg/platform/sentinel"
	"nexus/pkg/requestcontext"
)

// Service is the read side: list what an identity can see, count unread,
// acknowledge reads.
type Service struct {
	store   Store
	cache   *UnreadCache
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type serviceConfig struct {
	cache   *UnreadCache
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type ServiceOption func(*serviceConfig)

func WithCache(cache *UnreadCache) ServiceOption {
	return func(c *serviceConfig) { c.cache = cache }
}

func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(c *serviceConfig) { c.logger = logger }
}

func WithServiceMetrics(m *metrics.Metrics) ServiceOption {
	return func(c *serviceConfig) { c.metrics = m }
}

func NewService(store Store, opts ...ServiceOption) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return &Service{
		store:   store,
		cache:   cfg.cache,
		logger:  cfg.logger,
		metrics: cfg.metrics,
	}
}

// ListVisible returns active notifications the actor can see, newest first.
func (s *Service) ListVisible(ctx context.Context) ([]VisibleNotification, error) {
	actor := requestcontext.Actor(ctx)
	if actor.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	visible, err := s.store.ListVisibleTo(ctx, actor.UserID, actor.TenantID, actor.RoleName)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list notifications")
	}
	return visible, nil
}

// UnreadCount returns the badge counter, served from cache when warm.
func (s *Service) UnreadCount(ctx context.Context) (int, error) {
	actor := requestcontext.Actor(ctx)
	if actor.IsNil() {
		return 0, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	if count, ok := s.cache.Get(ctx, actor.UserID); ok {
		s.metrics.IncUnreadCacheHit()
		return count, nil
	}
	s.metrics.IncUnreadCacheMiss()

	count, err := s.store.CountUnread(ctx, actor.UserID, actor.TenantID, actor.RoleName)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count unread notifications")
	}
	s.cache.Set(ctx, actor.UserID, count)
	return count, nil
}

// MarkRead acknowledges a notification for the actor. Re-acknowledging is
// idempotent and returns the original receipt. The notification must be
// visible to the actor; acknowledging someone else's mail is a 404, not a
// hint that it exists.
func (s *Service) MarkRead(ctx context.Context, notificationID id.NotificationID) (*ReadReceipt, error) {
	actor := requestcontext.Actor(ctx)
	if actor.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	n, err := s.store.Get(ctx, notificationID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "notification not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load notification")
	}
	if !n.VisibleTo(actor.UserID, actor.TenantID, actor.RoleName) {
		return nil, dErrors.New(dErrors.CodeNotFound, "notification not found")
	}

	receipt, created, err := s.store.MarkRead(ctx, notificationID, actor.UserID, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record read receipt")
	}
	if created {
		s.cache.Invalidate(ctx, actor.UserID)
	}
	return receipt, nil
}
