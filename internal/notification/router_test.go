package notification

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexus/internal/roles"
	id "nexus/pkg/domain"
	dErrors "nexus/pkg/domain-errors"
	"nexus/pkg/requestcontext"
)

func newTestRouter(store Store, catalog RoleCatalog) *Router {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return NewRouter(store, catalog, WithRouterLogger(logger))
}

func routerCtx() context.Context {
	return requestcontext.WithTime(context.Background(), time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
}

func TestDispatch_PersistsOneRow(t *testing.T) {
	store := NewInMemoryStore()
	router := newTestRouter(store, roles.NewInMemoryCatalog())

	n, err := router.Dispatch(routerCtx(), Message{
		Title:    "slot 12 down",
		Body:     "machine offline",
		Severity: SeverityAlert,
		Category: CategoryTicket,
	}, GlobalScope())
	require.NoError(t, err)

	stored, err := store.Get(context.Background(), n.ID)
	require.NoError(t, err)
	assert.Equal(t, "slot 12 down", stored.Title)
	assert.True(t, stored.Active)
}

func TestDispatch_ScopeViolationCreatesNothing(t *testing.T) {
	store := NewInMemoryStore()
	router := newTestRouter(store, roles.NewInMemoryCatalog())

	// USER scope combined with a tenant target must be rejected.
	badScope := Scope{UserID: id.NewUserID(), TenantID: id.NewTenantID()}
	_, err := router.Dispatch(routerCtx(), Message{
		Title:    "t",
		Severity: SeverityInfo,
		Category: CategorySystem,
	}, badScope)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	visible, err := store.ListVisibleTo(context.Background(), id.NewUserID(), id.NewTenantID(), "")
	require.NoError(t, err)
	assert.Empty(t, visible)
}

func TestDispatch_NotIdempotent(t *testing.T) {
	store := NewInMemoryStore()
	router := newTestRouter(store, roles.NewInMemoryCatalog())
	user := id.NewUserID()

	msg := Message{Title: "t", Severity: SeverityInfo, Category: CategorySystem}
	_, err := router.Dispatch(routerCtx(), msg, UserScope(user))
	require.NoError(t, err)
	_, err = router.Dispatch(routerCtx(), msg, UserScope(user))
	require.NoError(t, err)

	visible, err := store.ListVisibleTo(context.Background(), user, id.TenantID{}, "")
	require.NoError(t, err)
	assert.Len(t, visible, 2, "identical dispatches create distinct rows; dedup is the reactors' job")
}

func TestDispatchByRoles_UnknownRoleSkippedSilently(t *testing.T) {
	store := NewInMemoryStore()
	catalog := roles.NewInMemoryCatalog()
	tenant := id.NewTenantID()
	catalog.Grant(tenant, roles.Technician)
	// SYSTEMS_SUPERVISOR deliberately absent from this tenant's catalog.

	router := newTestRouter(store, catalog)
	err := router.DispatchByRoles(routerCtx(), Message{
		Title:    "new ticket",
		Severity: SeverityAlert,
		Category: CategoryTicket,
	}, tenant, roles.Technician, roles.SystemsSupervisor)
	require.NoError(t, err)

	tech := id.NewUserID()
	visible, err := store.ListVisibleTo(context.Background(), tech, tenant, roles.Technician)
	require.NoError(t, err)
	assert.Len(t, visible, 1)

	sup, err := store.ListVisibleTo(context.Background(), tech, tenant, roles.SystemsSupervisor)
	require.NoError(t, err)
	assert.Empty(t, sup, "role missing from catalog produces no notification")
}

func TestDispatchByRoles_RequiresTenant(t *testing.T) {
	router := newTestRouter(NewInMemoryStore(), roles.NewInMemoryCatalog())
	err := router.DispatchByRoles(routerCtx(), Message{
		Title: "t", Severity: SeverityInfo, Category: CategorySystem,
	}, id.TenantID{}, roles.Technician)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

// failOnceStore fails the first Create and succeeds afterwards.
type failOnceStore struct {
	Store
	failed bool
}

func (s *failOnceStore) Create(ctx context.Context, n *Notification) error {
	if !s.failed {
		s.failed = true
		return errors.New("insert failed")
	}
	return s.Store.Create(ctx, n)
}

func TestDispatchByRoles_PerRoleFailureIsolated(t *testing.T) {
	inner := NewInMemoryStore()
	store := &failOnceStore{Store: inner}
	catalog := roles.NewInMemoryCatalog()
	tenant := id.NewTenantID()
	catalog.Grant(tenant, roles.Technician, roles.SystemsSupervisor)

	router := newTestRouter(store, catalog)
	err := router.DispatchByRoles(routerCtx(), Message{
		Title:    "new ticket",
		Severity: SeverityAlert,
		Category: CategoryTicket,
	}, tenant, roles.Technician, roles.SystemsSupervisor)
	require.Error(t, err, "the first role's failure is reported")

	// The second role's dispatch still went through.
	user := id.NewUserID()
	visible, listErr := inner.ListVisibleTo(context.Background(), user, tenant, roles.SystemsSupervisor)
	require.NoError(t, listErr)
	assert.Len(t, visible, 1)
}
