package roles

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "nexus/pkg/domain"
)

// PostgresCatalog reads the tenant_roles table.
type PostgresCatalog struct {
	db *sql.DB
}

func NewPostgresCatalog(db *sql.DB) *PostgresCatalog {
	return &PostgresCatalog{db: db}
}

// Provision inserts role names for a tenant, ignoring ones already present.
func (c *PostgresCatalog) Provision(ctx context.Context, tenantID id.TenantID, roleNames ...string) error {
	query := `
		INSERT INTO tenant_roles (id, tenant_id, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (tenant_id, name) DO NOTHING
	`
	for _, name := range roleNames {
		if _, err := c.db.ExecContext(ctx, query, uuid.New(), uuid.UUID(tenantID), name); err != nil {
			return fmt.Errorf("provision tenant role %s: %w", name, err)
		}
	}
	return nil
}

func (c *PostgresCatalog) Exists(ctx context.Context, tenantID id.TenantID, roleName string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM tenant_roles WHERE tenant_id = $1 AND name = $2)`
	var exists bool
	err := c.db.QueryRowContext(ctx, query, uuid.UUID(tenantID), roleName).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query tenant role: %w", err)
	}
	return exists, nil
}
