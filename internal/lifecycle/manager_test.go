package lifecycle

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexus/internal/audit"
)

type recordingReactor struct {
	events []Event
	err    error
	panics bool
}

func (r *recordingReactor) React(_ context.Context, ev Event) error {
	if r.panics {
		panic("boom")
	}
	r.events = append(r.events, ev)
	return r.err
}

type stubEntity struct {
	kind   audit.Kind
	id     string
	fields map[string]any
}

func (s stubEntity) AuditKind() audit.Kind      { return s.kind }
func (s stubEntity) AuditEntityID() string      { return s.id }
func (s stubEntity) AuditSnapshot() audit.Snapshot { return audit.Capture(s.fields) }

func newManager(store audit.Store, reactors ...Reactor) *Manager {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	recorder := audit.NewRecorder(store, audit.WithLogger(logger))
	return NewManager(recorder, reactors, WithLogger(logger))
}

func TestCreated_AuditsAndNotifiesReactors(t *testing.T) {
	store := audit.NewInMemoryStore()
	reactor := &recordingReactor{}
	m := newManager(store, reactor)

	entity := stubEntity{kind: audit.KindTicket, id: "t1", fields: map[string]any{"status": "open"}}
	m.Created(context.Background(), entity)

	records, err := store.List(context.Background(), audit.Filter{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, audit.ActionCreate, records[0].Action)

	require.Len(t, reactor.events, 1)
	assert.Equal(t, audit.ActionCreate, reactor.events[0].Action)
	assert.Nil(t, reactor.events[0].Before)
}

func TestUpdated_PassesBeforeSnapshotToReactors(t *testing.T) {
	store := audit.NewInMemoryStore()
	reactor := &recordingReactor{}
	m := newManager(store, reactor)

	before := audit.Capture(map[string]any{"status": "open"})
	entity := stubEntity{kind: audit.KindTicket, id: "t1", fields: map[string]any{"status": "closed"}}
	m.Updated(context.Background(), before, entity)

	require.Len(t, reactor.events, 1)
	ev := reactor.events[0]
	assert.Equal(t, audit.ActionUpdate, ev.Action)
	require.NotNil(t, ev.Before)
	assert.Equal(t, "open", *ev.Before["status"])
}

func TestDispatch_ReactorFailureIsolated(t *testing.T) {
	store := audit.NewInMemoryStore()
	failing := &recordingReactor{err: errors.New("router down")}
	second := &recordingReactor{}
	m := newManager(store, failing, second)

	entity := stubEntity{kind: audit.KindTicket, id: "t1", fields: map[string]any{"status": "open"}}
	m.Created(context.Background(), entity)

	// Later reactors still run after an earlier one fails.
	assert.Len(t, second.events, 1)

	records, err := store.List(context.Background(), audit.Filter{})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestDispatch_ReactorPanicIsolated(t *testing.T) {
	store := audit.NewInMemoryStore()
	panicking := &recordingReactor{panics: true}
	second := &recordingReactor{}
	m := newManager(store, panicking, second)

	entity := stubEntity{kind: audit.KindTicket, id: "t1", fields: map[string]any{"status": "open"}}
	require.NotPanics(t, func() {
		m.Created(context.Background(), entity)
	})
	assert.Len(t, second.events, 1)
}

func TestUpdated_NoOpStillReachesReactorsButNotAudit(t *testing.T) {
	store := audit.NewInMemoryStore()
	reactor := &recordingReactor{}
	m := newManager(store, reactor)

	entity := stubEntity{kind: audit.KindTicket, id: "t1", fields: map[string]any{"status": "open"}}
	m.Updated(context.Background(), entity.AuditSnapshot(), entity)

	records, err := store.List(context.Background(), audit.Filter{})
	require.NoError(t, err)
	assert.Empty(t, records, "no-op update writes no audit record")
	assert.Len(t, reactor.events, 1, "reactors still observe the save")
}
