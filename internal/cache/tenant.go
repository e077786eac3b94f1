package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/slatepad/slatepad/internal/model"
)

const (
	// tenantCachePrefix is the Redis key prefix for tenant records.
	tenantCachePrefix = "tenant:slug:"
	// tenantCacheTTL is the time-to-live for cached tenants.
	tenantCacheTTL = 5 * time.Minute
)

// GetTenant retrieves a cached tenant by slug.
// Returns nil on cache miss; a miss is not an error.
func (c *Cache) GetTenant(ctx context.Context, slug string) (*model.Tenant, error) {
	key := tenantCachePrefix + slug

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, nil //nolint:nilerr
	}

	var tenant model.Tenant
	if err := json.Unmarshal(data, &tenant); err != nil {
		// Corrupt entry - drop it and treat as a miss
		_ = c.client.Del(ctx, key).Err()
		return nil, nil //nolint:nilerr
	}

	return &tenant, nil
}

// SetTenant caches a tenant record by slug.
func (c *Cache) SetTenant(ctx context.Context, tenant *model.Tenant) error {
	key := tenantCachePrefix + tenant.Slug

	data, err := json.Marshal(tenant)
	if err != nil {
		return fmt.Errorf("marshal tenant: %w", err)
	}

	if err := c.client.Set(ctx, key, data, tenantCacheTTL).Err(); err != nil {
		return fmt.Errorf("cache tenant: %w", err)
	}

	return nil
}

// InvalidateTenant removes a cached tenant. Called on plan upgrades so a
// stale free-plan entry never outlives the upgrade.
func (c *Cache) InvalidateTenant(ctx context.Context, slug string) error {
	key := tenantCachePrefix + slug

	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("invalidate tenant: %w", err)
	}

	return nil
}
