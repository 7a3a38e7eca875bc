package notification

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"nexus/internal/platform/metrics"
	id "nexus/pkg/domain"
	dErrors "nexus/pkg/domain-errors"
)

var sweepTracer = otel.Tracer("nexus.retention")

// Retention thresholds. Directive and global notifications live a week no
// matter what; everything else turns over within days, faster once read.
const (
	RetentionDirectiveGlobal = 7 * 24 * time.Hour
	RetentionRead            = 48 * time.Hour
	RetentionUnread          = 72 * time.Hour
)

// SweepCounts reports per-bucket results of one sweep. The buckets are
// mutually exclusive, so the sum is the total affected.
type SweepCounts struct {
	DirectiveGlobal int  `json:"directive_global"`
	Read            int  `json:"read"`
	Unread          int  `json:"unread"`
	DryRun          bool `json:"dry_run"`
}

// Total sums the three buckets.
func (c SweepCounts) Total() int {
	return c.DirectiveGlobal + c.Read + c.Unread
}

// Sweeper enforces notification retention. Re-entrant: a second sweep with
// no new rows deletes nothing and reports zeros.
type Sweeper struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

type sweeperConfig struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

type SweeperOption func(*sweeperConfig)

func WithSweeperLogger(logger *slog.Logger) SweeperOption {
	return func(c *sweeperConfig) { c.logger = logger }
}

func WithSweeperMetrics(m *metrics.Metrics) SweeperOption {
	return func(c *sweeperConfig) { c.metrics = m }
}

// WithSweeperClock overrides the time source in tests.
func WithSweeperClock(now func() time.Time) SweeperOption {
	return func(c *sweeperConfig) { c.now = now }
}

func NewSweeper(store Store, opts ...SweeperOption) *Sweeper {
	cfg := &sweeperConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.now == nil {
		cfg.now = time.Now
	}
	return &Sweeper{
		store:   store,
		logger:  cfg.logger,
		metrics: cfg.metrics,
		now:     cfg.now,
	}
}

// Sweep computes the three eligible buckets against one captured now and,
// unless dryRun, deletes them (receipts cascade). Each bucket's deletion
// commits independently; an interruption leaves prior buckets deleted,
// which a later sweep simply no longer finds.
func (s *Sweeper) Sweep(ctx context.Context, dryRun bool) (SweepCounts, error) {
	ctx, span := sweepTracer.Start(ctx, "retention.Sweep")
	defer span.End()

	now := s.now().UTC()
	counts := SweepCounts{DryRun: dryRun}

	directiveGlobal, err := s.store.ListSweepableDirectiveGlobal(ctx, now.Add(-RetentionDirectiveGlobal))
	if err != nil {
		return counts, dErrors.Wrap(err, dErrors.CodeInternal, "failed to query directive/global bucket")
	}
	read, err := s.store.ListSweepableRead(ctx, now.Add(-RetentionRead))
	if err != nil {
		return counts, dErrors.Wrap(err, dErrors.CodeInternal, "failed to query read bucket")
	}
	unread, err := s.store.ListSweepableUnread(ctx, now.Add(-RetentionUnread))
	if err != nil {
		return counts, dErrors.Wrap(err, dErrors.CodeInternal, "failed to query unread bucket")
	}

	counts.DirectiveGlobal = len(directiveGlobal)
	counts.Read = len(read)
	counts.Unread = len(unread)

	span.SetAttributes(
		attribute.Int("bucket.directive_global", counts.DirectiveGlobal),
		attribute.Int("bucket.read", counts.Read),
		attribute.Int("bucket.unread", counts.Unread),
		attribute.Bool("dry_run", dryRun),
	)

	if !dryRun {
		if _, err := s.store.DeleteByIDs(ctx, directiveGlobal); err != nil {
			return counts, dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete directive/global bucket")
		}
		s.metrics.AddSweepDeleted("directive_global", counts.DirectiveGlobal)

		if _, err := s.store.DeleteByIDs(ctx, read); err != nil {
			return counts, dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete read bucket")
		}
		s.metrics.AddSweepDeleted("read", counts.Read)

		if _, err := s.store.DeleteByIDs(ctx, unread); err != nil {
			return counts, dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete unread bucket")
		}
		s.metrics.AddSweepDeleted("unread", counts.Unread)
	}

	s.logger.InfoContext(ctx, "retention sweep finished",
		"directive_global", counts.DirectiveGlobal,
		"read", counts.Read,
		"unread", counts.Unread,
		"dry_run", dryRun,
	)
	return counts, nil
}

// AutoExpire flips active=false on everything the sweep would delete,
// hiding stale rows immediately without waiting for the physical purge.
// Advisory housekeeping only.
func (s *Sweeper) AutoExpire(ctx context.Context) (int, error) {
	now := s.now().UTC()

	var all [][]id.NotificationID
	directiveGlobal, err := s.store.ListSweepableDirectiveGlobal(ctx, now.Add(-RetentionDirectiveGlobal))
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to query directive/global bucket")
	}
	read, err := s.store.ListSweepableRead(ctx, now.Add(-RetentionRead))
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to query read bucket")
	}
	unread, err := s.store.ListSweepableUnread(ctx, now.Add(-RetentionUnread))
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to query unread bucket")
	}
	all = append(all, directiveGlobal, read, unread)

	flipped := 0
	for _, ids := range all {
		n, err := s.store.Deactivate(ctx, ids)
		if err != nil {
			return flipped, dErrors.Wrap(err, dErrors.CodeInternal, "failed to deactivate notifications")
		}
		flipped += n
	}
	return flipped, nil
}

// Run sweeps on the interval until the context is canceled.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.Sweep(ctx, false); err != nil {
				s.logger.ErrorContext(ctx, "scheduled sweep failed", "error", err)
			}
		}
	}
}
