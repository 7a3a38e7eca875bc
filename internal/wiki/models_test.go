package wiki

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "nexus/pkg/domain"
	dErrors "nexus/pkg/domain-errors"
)

var modelNow = time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)

func makeGuide(t *testing.T, tenantID id.TenantID) *Guide {
	t.Helper()
	g, err := New(id.NewGuideID(), tenantID, id.NewUserID(),
		"Hopper refill procedure", "How to refill and reconcile the hopper", 25, modelNow)
	require.NoError(t, err)
	return g
}

func TestNew_Validation(t *testing.T) {
	_, err := New(id.NewGuideID(), id.NewTenantID(), id.NewUserID(), "", "body", 0, modelNow)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = New(id.NewGuideID(), id.NewTenantID(), id.UserID{}, "title", "body", 0, modelNow)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = New(id.NewGuideID(), id.NewTenantID(), id.NewUserID(), "title", "body", -5, modelNow)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestIsGlobal(t *testing.T) {
	assert.True(t, makeGuide(t, id.TenantID{}).IsGlobal())
	assert.False(t, makeGuide(t, id.NewTenantID()).IsGlobal())
}

func TestApplyPublish(t *testing.T) {
	g := makeGuide(t, id.NewTenantID())
	require.Equal(t, StatusDraft, g.Status)

	require.NoError(t, g.ApplyPublish(modelNow))
	assert.Equal(t, StatusPublished, g.Status)
	require.NotNil(t, g.PublishedAt)
	assert.Equal(t, modelNow, *g.PublishedAt)

	// Publishing again keeps the original publication time.
	require.NoError(t, g.ApplyPublish(modelNow.Add(time.Hour)))
	assert.Equal(t, modelNow, *g.PublishedAt)
}

func TestAuditSnapshot_TenantAndPublication(t *testing.T) {
	g := makeGuide(t, id.TenantID{})
	snap := g.AuditSnapshot()
	assert.Nil(t, snap["tenant_id"])
	assert.Nil(t, snap["published_at"])
	require.NotNil(t, snap["status"])
	assert.Equal(t, "draft", *snap["status"])
	require.NotNil(t, snap["points"])
	assert.Equal(t, "25", *snap["points"])

	tenantID := id.NewTenantID()
	scoped := makeGuide(t, tenantID)
	require.NoError(t, scoped.ApplyPublish(modelNow))
	snap = scoped.AuditSnapshot()
	require.NotNil(t, snap["tenant_id"])
	assert.Equal(t, tenantID.String(), *snap["tenant_id"])
	assert.NotNil(t, snap["published_at"])
}
