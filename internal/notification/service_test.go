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
	dErrors "nexus/pkg/domain-errors"
	"nexus/pkg/requestcontext"
)

func serviceCtx(userID id.UserID, tenantID id.TenantID, roleName string) context.Context {
	ctx := requestcontext.WithActor(context.Background(), requestcontext.ActorInfo{
		UserID:   userID,
		TenantID: tenantID,
		RoleName: roleName,
	})
	ctx = requestcontext.WithTenant(ctx, tenantID)
	return requestcontext.WithTime(ctx, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
}

func newTestService(store Store) *Service {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return NewService(store, WithServiceLogger(logger))
}

func seed(t *testing.T, store Store, scope Scope) *Notification {
	t.Helper()
	n, err := New(id.NewNotificationID(), "t", "b", SeverityInfo, CategorySystem, scope, false, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, store.Create(context.Background(), n))
	return n
}

func TestMarkRead_Idempotent(t *testing.T) {
	store := NewInMemoryStore()
	svc := newTestService(store)
	me := id.NewUserID()
	ctx := serviceCtx(me, id.NewTenantID(), "TECHNICIAN")

	n := seed(t, store, UserScope(me))

	first, err := svc.MarkRead(ctx, n.ID)
	require.NoError(t, err)
	second, err := svc.MarkRead(ctx, n.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ReadAt, second.ReadAt, "second acknowledgement returns the original receipt")

	count, err := store.CountUnread(ctx, me, id.TenantID{}, "")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMarkRead_InvisibleNotificationIsNotFound(t *testing.T) {
	store := NewInMemoryStore()
	svc := newTestService(store)
	ctx := serviceCtx(id.NewUserID(), id.NewTenantID(), "TECHNICIAN")

	other := seed(t, store, UserScope(id.NewUserID()))

	_, err := svc.MarkRead(ctx, other.ID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestMarkRead_UnknownIDIsNotFound(t *testing.T) {
	svc := newTestService(NewInMemoryStore())
	ctx := serviceCtx(id.NewUserID(), id.NewTenantID(), "")
	_, err := svc.MarkRead(ctx, id.NewNotificationID())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestListVisible_OverlappingScopesShowBoth(t *testing.T) {
	store := NewInMemoryStore()
	svc := newTestService(store)
	me := id.NewUserID()
	tenant := id.NewTenantID()
	ctx := serviceCtx(me, tenant, "TECHNICIAN")

	// A tenant-wide and a tenant+role notification both match; visibility
	// is an OR of scopes, not deduplicated.
	seed(t, store, TenantScope(tenant))
	seed(t, store, TenantRoleScope(tenant, "TECHNICIAN"))

	visible, err := svc.ListVisible(ctx)
	require.NoError(t, err)
	assert.Len(t, visible, 2)
}

func TestUnreadCount_DropsAfterRead(t *testing.T) {
	store := NewInMemoryStore()
	svc := newTestService(store)
	me := id.NewUserID()
	tenant := id.NewTenantID()
	ctx := serviceCtx(me, tenant, "TECHNICIAN")

	n1 := seed(t, store, UserScope(me))
	seed(t, store, TenantScope(tenant))
	seed(t, store, GlobalScope())

	count, err := svc.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	_, err = svc.MarkRead(ctx, n1.ID)
	require.NoError(t, err)

	count, err = svc.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestService_RequiresActor(t *testing.T) {
	svc := newTestService(NewInMemoryStore())
	ctx := context.Background()

	_, err := svc.ListVisible(ctx)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	_, err = svc.UnreadCount(ctx)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	_, err = svc.MarkRead(ctx, id.NewNotificationID())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestInactiveNotificationsHidden(t *testing.T) {
	store := NewInMemoryStore()
	svc := newTestService(store)
	me := id.NewUserID()
	ctx := serviceCtx(me, id.NewTenantID(), "")

	n := seed(t, store, UserScope(me))
	_, err := store.Deactivate(ctx, []id.NotificationID{n.ID})
	require.NoError(t, err)

	visible, err := svc.ListVisible(ctx)
	require.NoError(t, err)
	assert.Empty(t, visible)

	count, err := svc.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
