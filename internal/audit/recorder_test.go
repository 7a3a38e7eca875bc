package audit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "nexus/pkg/domain"
	"nexus/pkg/requestcontext"
)

type fakeEntity struct {
	kind     Kind
	entityID string
	fields   map[string]any
}

func (f fakeEntity) AuditKind() Kind         { return f.kind }
func (f fakeEntity) AuditEntityID() string   { return f.entityID }
func (f fakeEntity) AuditSnapshot() Snapshot { return Capture(f.fields) }

type failingStore struct{}

func (failingStore) Append(context.Context, Record) error { return errors.New("store down") }
func (failingStore) List(context.Context, Filter) ([]Record, error) {
	return nil, errors.New("store down")
}

func testCtx(t *testing.T) (context.Context, requestcontext.ActorInfo) {
	t.Helper()
	actor := requestcontext.ActorInfo{
		UserID:      id.UserID(uuid.New()),
		TenantID:    id.TenantID(uuid.New()),
		RoleName:    "TECHNICIAN",
		DisplayName: "Ana Torres",
	}
	ctx := requestcontext.WithActor(context.Background(), actor)
	ctx = requestcontext.WithTenant(ctx, actor.TenantID)
	ctx = requestcontext.WithRequestID(ctx, "req-123")
	ctx = requestcontext.WithTime(ctx, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	return ctx, actor
}

func newTestRecorder(store Store) *Recorder {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return NewRecorder(store, WithLogger(logger))
}

func TestRecordCreate_CapturesActorAndChanges(t *testing.T) {
	ctx, actor := testCtx(t)
	store := NewInMemoryStore()
	rec := newTestRecorder(store)

	rec.RecordCreate(ctx, fakeEntity{
		kind:     KindTicket,
		entityID: "ticket-1",
		fields:   map[string]any{"status": "open", "title": "slot 12 down"},
	})

	records, err := store.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, ActionCreate, r.Action)
	assert.Equal(t, KindTicket, r.EntityKind)
	assert.Equal(t, "ticket-1", r.EntityID)
	assert.Equal(t, actor.UserID, r.ActorID)
	assert.Equal(t, "Ana Torres", r.ActorName)
	assert.Equal(t, actor.TenantID, r.TenantID)
	assert.Equal(t, "req-123", r.RequestID)

	require.Contains(t, r.Changes, "status")
	assert.Nil(t, r.Changes["status"].Old)
	require.NotNil(t, r.Changes["status"].New)
	assert.Equal(t, "open", *r.Changes["status"].New)
}

func TestRecordUpdate_NoOpSkipsRecord(t *testing.T) {
	ctx, _ := testCtx(t)
	store := NewInMemoryStore()
	rec := newTestRecorder(store)

	entity := fakeEntity{
		kind:     KindTicket,
		entityID: "ticket-1",
		fields:   map[string]any{"status": "open", "title": "slot 12 down"},
	}
	rec.RecordUpdate(ctx, entity.AuditSnapshot(), entity)

	records, err := store.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Empty(t, records, "identical before and after must not produce a record")
}

func TestRecordUpdate_DiffOnlyChangedFields(t *testing.T) {
	ctx, _ := testCtx(t)
	store := NewInMemoryStore()
	rec := newTestRecorder(store)

	before := Capture(map[string]any{"status": "open", "title": "slot 12 down"})
	after := fakeEntity{
		kind:     KindTicket,
		entityID: "ticket-1",
		fields:   map[string]any{"status": "closed", "title": "slot 12 down"},
	}
	rec.RecordUpdate(ctx, before, after)

	records, err := store.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Len(t, records[0].Changes, 1)
	change := records[0].Changes["status"]
	assert.Equal(t, "open", *change.Old)
	assert.Equal(t, "closed", *change.New)
}

func TestRecordUpdate_NilBeforeDegradesToFullDiff(t *testing.T) {
	ctx, _ := testCtx(t)
	store := NewInMemoryStore()
	rec := newTestRecorder(store)

	rec.RecordUpdate(ctx, nil, fakeEntity{
		kind:     KindTicket,
		entityID: "ticket-1",
		fields:   map[string]any{"status": "closed"},
	})

	records, err := store.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].Changes["status"].Old)
	assert.Equal(t, "closed", *records[0].Changes["status"].New)
}

func TestRecord_ExcludedKindsSkipped(t *testing.T) {
	ctx, _ := testCtx(t)
	store := NewInMemoryStore()
	rec := newTestRecorder(store)

	for _, kind := range []Kind{KindNotification, KindNotificationReceipt, KindAuditRecord} {
		rec.RecordCreate(ctx, fakeEntity{
			kind:     kind,
			entityID: "x",
			fields:   map[string]any{"a": "b"},
		})
	}

	records, err := store.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRecord_StoreFailureDoesNotPanicOrPropagate(t *testing.T) {
	ctx, _ := testCtx(t)
	rec := newTestRecorder(failingStore{})

	// Must not panic and has no error to return; the business write stands.
	rec.RecordCreate(ctx, fakeEntity{
		kind:     KindTicket,
		entityID: "ticket-1",
		fields:   map[string]any{"status": "open"},
	})
}

func TestDiff_Normalization(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.FixedZone("CST", -6*3600))
	snap := Capture(map[string]any{
		"created_at": created,
		"closed_at":  (*time.Time)(nil),
		"priority":   3,
		"active":     true,
	})

	require.NotNil(t, snap["created_at"])
	assert.Equal(t, "2026-03-01T15:30:00Z", *snap["created_at"], "times normalize to UTC")
	assert.Nil(t, snap["closed_at"])
	assert.Equal(t, "3", *snap["priority"])
	assert.Equal(t, "true", *snap["active"])
}

func TestList_FilterByEntityAndActor(t *testing.T) {
	ctx, actor := testCtx(t)
	store := NewInMemoryStore()
	rec := newTestRecorder(store)

	rec.RecordCreate(ctx, fakeEntity{kind: KindTicket, entityID: "t1", fields: map[string]any{"a": "1"}})
	rec.RecordCreate(ctx, fakeEntity{kind: KindTask, entityID: "k1", fields: map[string]any{"a": "1"}})

	records, err := store.List(ctx, Filter{EntityKind: KindTask})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "k1", records[0].EntityID)

	records, err = store.List(ctx, Filter{ActorID: actor.UserID})
	require.NoError(t, err)
	assert.Len(t, records, 2)

	records, err = store.List(ctx, Filter{ActorID: id.UserID(uuid.New())})
	require.NoError(t, err)
	assert.Empty(t, records)
}
