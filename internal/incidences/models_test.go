package incidences

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "nexus/pkg/domain"
	dErrors "nexus/pkg/domain-errors"
)

var modelNow = time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)

func makeIncidence(t *testing.T, severity Severity, affectsOperation bool) *Incidence {
	t.Helper()
	inc, err := New(id.NewIncidenceID(), id.NewTenantID(), id.NewUserID(),
		"CCTV segment down", "Cameras 12-18 offline", severity, affectsOperation, modelNow)
	require.NoError(t, err)
	return inc
}

func TestNew_RejectsInvalidSeverity(t *testing.T) {
	_, err := New(id.NewIncidenceID(), id.NewTenantID(), id.NewUserID(),
		"t", "", Severity("catastrophic"), false, modelNow)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestHighImpact(t *testing.T) {
	assert.True(t, makeIncidence(t, SeverityCritical, false).HighImpact())
	assert.True(t, makeIncidence(t, SeverityHigh, false).HighImpact())
	assert.True(t, makeIncidence(t, SeverityLow, true).HighImpact())
	assert.False(t, makeIncidence(t, SeverityMedium, false).HighImpact())
}

func TestApplyEnd_OnceOnly(t *testing.T) {
	inc := makeIncidence(t, SeverityLow, false)
	require.NoError(t, inc.ApplyEnd(modelNow))
	require.NotNil(t, inc.EndedAt)
	assert.Equal(t, modelNow, *inc.EndedAt)

	err := inc.ApplyEnd(modelNow.Add(time.Hour))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	assert.Equal(t, modelNow, *inc.EndedAt)
}

func TestAuditSnapshot_EndedAtEdge(t *testing.T) {
	inc := makeIncidence(t, SeverityLow, false)
	assert.Nil(t, inc.AuditSnapshot()["ended_at"])

	require.NoError(t, inc.ApplyEnd(modelNow))
	snap := inc.AuditSnapshot()
	require.NotNil(t, snap["ended_at"])
	assert.Equal(t, "2026-04-02T09:00:00Z", *snap["ended_at"])
}
