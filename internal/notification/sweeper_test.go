package notification

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "nexus/pkg/domain"
)

var sweepNow = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func newTestSweeper(store Store) *Sweeper {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return NewSweeper(store,
		WithSweeperLogger(logger),
		WithSweeperClock(func() time.Time { return sweepNow }),
	)
}

func seedAged(t *testing.T, store Store, age time.Duration, directive, global, read bool) *Notification {
	t.Helper()
	scope := UserScope(id.NewUserID())
	if global {
		scope = GlobalScope()
	}
	n, err := New(id.NewNotificationID(), "t", "b", SeverityInfo, CategorySystem, scope, directive, sweepNow.Add(-age))
	require.NoError(t, err)
	require.NoError(t, store.Create(context.Background(), n))
	if read {
		_, _, err := store.MarkRead(context.Background(), n.ID, id.NewUserID(), sweepNow.Add(-age/2))
		require.NoError(t, err)
	}
	return n
}

func TestSweep_BucketPartition(t *testing.T) {
	store := NewInMemoryStore()
	sweeper := newTestSweeper(store)

	// Too fresh for any bucket.
	seedAged(t, store, time.Hour, false, false, false)
	seedAged(t, store, time.Hour, true, false, true)

	// Read at 49h: read bucket.
	seedAged(t, store, 49*time.Hour, false, false, true)
	// Unread at 49h: not yet eligible (72h threshold).
	seedAged(t, store, 49*time.Hour, false, false, false)
	// Unread at 73h: unread bucket.
	seedAged(t, store, 73*time.Hour, false, false, false)
	// Directive at 73h, read: held for the 7-day directive window, and the
	// directive flag keeps it out of the read bucket.
	seedAged(t, store, 73*time.Hour, true, false, true)
	// Directive and global at 8 days: directive/global bucket only, never
	// double-counted through their read status.
	seedAged(t, store, 8*24*time.Hour, true, false, true)
	seedAged(t, store, 8*24*time.Hour, false, true, false)

	counts, err := sweeper.Sweep(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, counts.DryRun)
	assert.Equal(t, 2, counts.DirectiveGlobal)
	assert.Equal(t, 1, counts.Read)
	assert.Equal(t, 1, counts.Unread)
	assert.Equal(t, 4, counts.Total())
}

func TestSweep_DryRunDeletesNothing(t *testing.T) {
	store := NewInMemoryStore()
	sweeper := newTestSweeper(store)
	n := seedAged(t, store, 8*24*time.Hour, false, true, false)

	_, err := sweeper.Sweep(context.Background(), true)
	require.NoError(t, err)

	_, err = store.Get(context.Background(), n.ID)
	assert.NoError(t, err, "dry run must leave rows in place")
}

func TestSweep_DeletesAndIsReentrant(t *testing.T) {
	store := NewInMemoryStore()
	sweeper := newTestSweeper(store)
	old := seedAged(t, store, 8*24*time.Hour, false, true, false)
	fresh := seedAged(t, store, time.Hour, false, false, false)

	counts, err := sweeper.Sweep(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Total())

	_, err = store.Get(context.Background(), old.ID)
	assert.Error(t, err)
	_, err = store.Get(context.Background(), fresh.ID)
	assert.NoError(t, err)

	// A second sweep with nothing new reports all zeros.
	counts, err = sweeper.Sweep(context.Background(), false)
	require.NoError(t, err)
	assert.Zero(t, counts.Total())
}

func TestSweep_CascadesReceipts(t *testing.T) {
	store := NewInMemoryStore()
	sweeper := newTestSweeper(store)
	reader := id.NewUserID()

	n, err := New(id.NewNotificationID(), "t", "b", SeverityInfo, CategorySystem, UserScope(reader), false, sweepNow.Add(-50*time.Hour))
	require.NoError(t, err)
	require.NoError(t, store.Create(context.Background(), n))
	_, _, err = store.MarkRead(context.Background(), n.ID, reader, sweepNow.Add(-49*time.Hour))
	require.NoError(t, err)

	counts, err := sweeper.Sweep(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Read)

	count, err := store.CountUnread(context.Background(), reader, id.TenantID{}, "")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestAutoExpire_HidesWithoutDeleting(t *testing.T) {
	store := NewInMemoryStore()
	sweeper := newTestSweeper(store)
	reader := id.NewUserID()

	n, err := New(id.NewNotificationID(), "t", "b", SeverityInfo, CategorySystem, UserScope(reader), false, sweepNow.Add(-80*time.Hour))
	require.NoError(t, err)
	require.NoError(t, store.Create(context.Background(), n))

	flipped, err := sweeper.AutoExpire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, flipped)

	stored, err := store.Get(context.Background(), n.ID)
	require.NoError(t, err, "auto-expire must not delete")
	assert.False(t, stored.Active)

	// Idempotent: already-inactive rows are not re-flipped.
	flipped, err = sweeper.AutoExpire(context.Background())
	require.NoError(t, err)
	assert.Zero(t, flipped)
}
