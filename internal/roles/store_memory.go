package roles

import (
	"context"
	"sync"

	id "nexus/pkg/domain"
)

// InMemoryCatalog is the test and local-run catalog.
type InMemoryCatalog struct {
	mu    sync.RWMutex
	byTen map[id.TenantID]map[string]struct{}
}

func NewInMemoryCatalog() *InMemoryCatalog {
	return &InMemoryCatalog{byTen: make(map[id.TenantID]map[string]struct{})}
}

// Grant registers a role name for a tenant.
func (c *InMemoryCatalog) Grant(tenantID id.TenantID, roleNames ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	set, ok := c.byTen[tenantID]
	if !ok {
		set = make(map[string]struct{})
		c.byTen[tenantID] = set
	}
	for _, name := range roleNames {
		set[name] = struct{}{}
	}
}

// Provision implements the Provisioner interface over Grant.
func (c *InMemoryCatalog) Provision(_ context.Context, tenantID id.TenantID, roleNames ...string) error {
	c.Grant(tenantID, roleNames...)
	return nil
}

func (c *InMemoryCatalog) Exists(_ context.Context, tenantID id.TenantID, roleName string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.byTen[tenantID][roleName]
	return ok, nil
}
