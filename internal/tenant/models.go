// Package tenant manages the casino sites the platform serves. Every
// role-scoped notification and every audited entity hangs off a tenant, so
// registration also seeds the site's role catalog.
package tenant

import (
	"time"

	"nexus/internal/audit"
	id "nexus/pkg/domain"
	dErrors "nexus/pkg/domain-errors"
)

// Tenant is one casino site.
type Tenant struct {
	ID        id.TenantID
	Name      string
	Code      string // short operator code, unique across sites
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func New(tenantID id.TenantID, name, code string, now time.Time) (*Tenant, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "tenant name cannot be empty")
	}
	if code == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "tenant code cannot be empty")
	}
	return &Tenant{
		ID:        tenantID,
		Name:      name,
		Code:      code,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Deactivate takes the site out of service. Its data stays for the audit
// trail; only new activity stops.
func (t *Tenant) Deactivate(now time.Time) {
	t.Active = false
	t.UpdatedAt = now
}

func (t *Tenant) AuditKind() audit.Kind { return audit.KindTenant }
func (t *Tenant) AuditEntityID() string { return t.ID.String() }

func (t *Tenant) AuditSnapshot() audit.Snapshot {
	return audit.Capture(map[string]any{
		"name":   t.Name,
		"code":   t.Code,
		"active": t.Active,
	})
}
