package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"nexus/internal/platform/metrics"
	"nexus/pkg/requestcontext"
)

// Store persists audit records.
type Store interface {
	Append(ctx context.Context, record Record) error
	List(ctx context.Context, filter Filter) ([]Record, error)
}

// Recorder turns entity snapshots into audit records. Every Record* method
// is best-effort: a store failure is logged and counted but never surfaces,
// so the business write that triggered it always stands.
type Recorder struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type recorderConfig struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures optional Recorder dependencies.
type Option func(*recorderConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *recorderConfig) { c.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *recorderConfig) { c.metrics = m }
}

func NewRecorder(store Store, opts ...Option) *Recorder {
	cfg := &recorderConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return &Recorder{
		store:   store,
		logger:  cfg.logger,
		metrics: cfg.metrics,
	}
}

// RecordCreate audits a freshly created entity. Every audited field appears
// as a change from nil to its initial value.
func (r *Recorder) RecordCreate(ctx context.Context, entity Auditable) {
	r.record(ctx, ActionCreate, entity.AuditKind(), entity.AuditEntityID(), Diff(nil, entity.AuditSnapshot()))
}

// RecordUpdate audits a modification given the pre-image snapshot. When the
// diff is empty the update was a no-op and no record is written. A nil
// before snapshot degrades to a full-value diff rather than dropping the
// record.
func (r *Recorder) RecordUpdate(ctx context.Context, before Snapshot, entity Auditable) {
	changes := Diff(before, entity.AuditSnapshot())
	if len(changes) == 0 {
		r.metrics.IncAuditSkipped()
		return
	}
	r.record(ctx, ActionUpdate, entity.AuditKind(), entity.AuditEntityID(), changes)
}

// RecordDelete audits a removal. The final snapshot is kept as the old side
// of the diff so the record preserves what was deleted.
func (r *Recorder) RecordDelete(ctx context.Context, entity Auditable) {
	r.record(ctx, ActionDelete, entity.AuditKind(), entity.AuditEntityID(), Diff(entity.AuditSnapshot(), nil))
}

func (r *Recorder) record(ctx context.Context, action Action, kind Kind, entityID string, changes map[string]FieldChange) {
	if r == nil || r.store == nil {
		return
	}
	if Excluded(kind) {
		r.metrics.IncAuditSkipped()
		return
	}

	actor := requestcontext.Actor(ctx)
	record := Record{
		ID:         uuid.New(),
		EntityKind: kind,
		EntityID:   entityID,
		Action:     action,
		ActorID:    actor.UserID,
		ActorName:  actor.DisplayName,
		TenantID:   requestcontext.Tenant(ctx),
		Changes:    changes,
		RequestID:  requestcontext.RequestID(ctx),
		CreatedAt:  requestcontext.Now(ctx),
	}

	if err := r.store.Append(ctx, record); err != nil {
		r.metrics.IncAuditFailed()
		r.logger.ErrorContext(ctx, "audit append failed",
			"log_type", "audit",
			"entity_kind", kind,
			"entity_id", entityID,
			"action", action,
			"error", err,
		)
		return
	}

	r.metrics.IncAuditWritten()
	r.logger.InfoContext(ctx, "audit record written",
		"log_type", "audit",
		"entity_kind", kind,
		"entity_id", entityID,
		"action", action,
		"fields", ChangedFields(changes),
		"request_id", record.RequestID,
	)
}

// List returns audit records matching the filter.
func (r *Recorder) List(ctx context.Context, filter Filter) ([]Record, error) {
	return r.store.List(ctx, filter)
}
