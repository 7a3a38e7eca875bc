// Package incidences tracks infrastructure outages (power, network,
// surveillance) per site. High-impact incidences alert management the
// moment they are reported; resolution notifies the same audience.
package incidences

import (
	"time"

	"nexus/internal/audit"
	id "nexus/pkg/domain"
	dErrors "nexus/pkg/domain-errors"
)

// Severity grades an incidence's impact.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Incidence is one infrastructure outage.
//
// Invariants:
//   - Title is non-empty
//   - TenantID is set and immutable
//   - EndedAt, once set, never reverts to nil
type Incidence struct {
	ID               id.IncidenceID
	TenantID         id.TenantID
	Title            string
	Description      string
	Severity         Severity
	AffectsOperation bool
	ReporterID       id.UserID
	StartedAt        time.Time
	EndedAt          *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func New(incidenceID id.IncidenceID, tenantID id.TenantID, reporterID id.UserID, title, description string, severity Severity, affectsOperation bool, now time.Time) (*Incidence, error) {
	if title == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "incidence title cannot be empty")
	}
	if tenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "incidence requires a tenant")
	}
	if !severity.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid incidence severity")
	}
	return &Incidence{
		ID:               incidenceID,
		TenantID:         tenantID,
		Title:            title,
		Description:      description,
		Severity:         severity,
		AffectsOperation: affectsOperation,
		ReporterID:       reporterID,
		StartedAt:        now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// HighImpact reports whether the incidence warrants an urgent escalation.
func (i *Incidence) HighImpact() bool {
	return i.Severity == SeverityHigh || i.Severity == SeverityCritical || i.AffectsOperation
}

// ApplyEnd marks the outage as over. Ending twice is a conflict.
func (i *Incidence) ApplyEnd(now time.Time) error {
	if i.EndedAt != nil {
		return dErrors.New(dErrors.CodeConflict, "incidence already ended")
	}
	i.EndedAt = &now
	i.UpdatedAt = now
	return nil
}

func (i *Incidence) AuditKind() audit.Kind { return audit.KindIncidence }
func (i *Incidence) AuditEntityID() string { return i.ID.String() }

func (i *Incidence) AuditSnapshot() audit.Snapshot {
	var endedAt any
	if i.EndedAt != nil {
		endedAt = *i.EndedAt
	}
	return audit.Capture(map[string]any{
		"title":             i.Title,
		"description":       i.Description,
		"severity":          string(i.Severity),
		"affects_operation": i.AffectsOperation,
		"started_at":        i.StartedAt,
		"ended_at":          endedAt,
	})
}
