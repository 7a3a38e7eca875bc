package tenant

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexus/internal/roles"
	dErrors "nexus/pkg/domain-errors"
	"nexus/pkg/requestcontext"
)

func testCtx() context.Context {
	return requestcontext.WithTime(context.Background(),
		time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC))
}

func TestCreate_ProvisionsDefaultRoles(t *testing.T) {
	catalog := roles.NewInMemoryCatalog()
	svc := NewService(NewInMemoryStore(), catalog, nil)

	created, err := svc.Create(testCtx(), CreateParams{Name: "Casino Pacifico", Code: "pac"})
	require.NoError(t, err)
	assert.Equal(t, "PAC", created.Code)
	assert.True(t, created.Active)

	for _, roleName := range roles.Defaults {
		exists, err := catalog.Exists(context.Background(), created.ID, roleName)
		require.NoError(t, err)
		assert.True(t, exists, roleName)
	}
}

func TestCreate_DuplicateCodeConflicts(t *testing.T) {
	svc := NewService(NewInMemoryStore(), roles.NewInMemoryCatalog(), nil)

	_, err := svc.Create(testCtx(), CreateParams{Name: "First", Code: "DUP"})
	require.NoError(t, err)

	_, err = svc.Create(testCtx(), CreateParams{Name: "Second", Code: "DUP"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestDeactivate(t *testing.T) {
	svc := NewService(NewInMemoryStore(), roles.NewInMemoryCatalog(), nil)

	created, err := svc.Create(testCtx(), CreateParams{Name: "Casino Norte", Code: "NOR"})
	require.NoError(t, err)

	deactivated, err := svc.Deactivate(testCtx(), created.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.Active)

	fetched, err := svc.Get(testCtx(), created.ID)
	require.NoError(t, err)
	assert.False(t, fetched.Active)
}
