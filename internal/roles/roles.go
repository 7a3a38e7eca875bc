// Package roles holds the per-tenant role catalog. The notification router
// resolves role names through it before fanning out tenant+role messages;
// names missing from a tenant's catalog are skipped, not errors.
package roles

import (
	"context"

	id "nexus/pkg/domain"
)

// Canonical role names. Tenants may carry a subset; smaller sites often run
// without a dedicated systems supervisor.
const (
	Technician        = "TECHNICIAN"
	SystemsSupervisor = "SYSTEMS_SUPERVISOR"
	Management        = "MANAGEMENT"
	Director          = "DIRECTOR"
	Admin             = "ADMIN"
)

// Defaults is the role set provisioned for a freshly registered tenant.
var Defaults = []string{Technician, SystemsSupervisor, Management, Director, Admin}

// Catalog answers whether a role name exists for a tenant.
type Catalog interface {
	Exists(ctx context.Context, tenantID id.TenantID, roleName string) (bool, error)
}

// Provisioner seeds role names into a tenant's catalog.
type Provisioner interface {
	Provision(ctx context.Context, tenantID id.TenantID, roleNames ...string) error
}
