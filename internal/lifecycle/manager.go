// Package lifecycle fans a committed entity write out to its side effects:
// the audit trail and the event reactors. Side effects are strictly
// isolated; no failure or panic in any of them reaches the caller, so the
// business write that already happened is never put in question.
package lifecycle

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"nexus/internal/audit"
	"nexus/internal/platform/metrics"
)

var tracer = otel.Tracer("nexus.lifecycle")

// Event describes one committed write. Before is nil for creates; for
// updates it holds the pre-image snapshot so reactors can detect
// transitions instead of re-firing on every save.
type Event struct {
	Action audit.Action
	Entity audit.Auditable
	Before audit.Snapshot
}

// Reactor receives lifecycle events. Implementations type-assert
// Event.Entity to the kinds they watch and ignore the rest.
type Reactor interface {
	React(ctx context.Context, ev Event) error
}

// Manager dispatches lifecycle events.
type Manager struct {
	recorder *audit.Recorder
	reactors []Reactor
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type managerConfig struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*managerConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *managerConfig) { c.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *managerConfig) { c.metrics = m }
}

func NewManager(recorder *audit.Recorder, reactors []Reactor, opts ...Option) *Manager {
	cfg := &managerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return &Manager{
		recorder: recorder,
		reactors: reactors,
		logger:   cfg.logger,
		metrics:  cfg.metrics,
	}
}

// Created runs the side effects for a freshly persisted entity.
func (m *Manager) Created(ctx context.Context, entity audit.Auditable) {
	m.dispatch(ctx, Event{Action: audit.ActionCreate, Entity: entity})
}

// Updated runs the side effects for a modified entity. Callers capture the
// before snapshot prior to mutating; a nil before still audits but gives
// reactors nothing to diff against, so transition-gated reactions stay
// quiet.
func (m *Manager) Updated(ctx context.Context, before audit.Snapshot, entity audit.Auditable) {
	m.dispatch(ctx, Event{Action: audit.ActionUpdate, Entity: entity, Before: before})
}

// Deleted runs the side effects for a removed entity.
func (m *Manager) Deleted(ctx context.Context, entity audit.Auditable) {
	m.dispatch(ctx, Event{Action: audit.ActionDelete, Entity: entity})
}

func (m *Manager) dispatch(ctx context.Context, ev Event) {
	if m == nil {
		return
	}
	ctx, span := tracer.Start(ctx, "lifecycle.dispatch")
	span.SetAttributes(
		attribute.String("entity_kind", string(ev.Entity.AuditKind())),
		attribute.String("action", string(ev.Action)),
	)
	defer span.End()

	if m.recorder != nil {
		switch ev.Action {
		case audit.ActionCreate:
			m.recorder.RecordCreate(ctx, ev.Entity)
		case audit.ActionUpdate:
			m.recorder.RecordUpdate(ctx, ev.Before, ev.Entity)
		case audit.ActionDelete:
			m.recorder.RecordDelete(ctx, ev.Entity)
		}
	}

	for _, r := range m.reactors {
		m.react(ctx, r, ev)
	}
}

// react isolates one reactor invocation. Errors and panics are logged and
// counted, never propagated.
func (m *Manager) react(ctx context.Context, r Reactor, ev Event) {
	defer func() {
		if rec := recover(); rec != nil {
			m.metrics.IncReactorFailure()
			m.logger.ErrorContext(ctx, "reactor panicked",
				"entity_kind", ev.Entity.AuditKind(),
				"action", ev.Action,
				"panic", rec,
			)
		}
	}()
	if err := r.React(ctx, ev); err != nil {
		m.metrics.IncReactorFailure()
		m.logger.ErrorContext(ctx, "reactor failed",
			"entity_kind", ev.Entity.AuditKind(),
			"action", ev.Action,
			"error", err,
		)
	}
}
