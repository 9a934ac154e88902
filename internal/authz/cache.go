package authz

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/salesloop/crm-backend/internal"
)

const (
	defaultCacheEntries = 10000
	defaultCacheTTL     = 5 * time.Minute
)

// CachedEngine memoizes decision results keyed by the full argument tuple,
// tenant id included. It is a pure performance layer: a hit returns exactly
// what the wrapped engine computed, and a concurrent first-time computation
// of the same key is duplicated rather than serialized (last write wins).
// Entries expire on the configured TTL; mutating services additionally call
// InvalidateTenant so staleness is bounded below the TTL in practice.
type CachedEngine struct {
	engine    Decider
	decisions *lru.LRU[string, bool]
	subtrees  *lru.LRU[string, []int64]

	// generations maps tenantID to an *atomic.Int64 folded into every key,
	// so bumping one tenant's generation orphans only that tenant's entries.
	generations sync.Map

	hits   atomic.Int64
	misses atomic.Int64
}

// CacheStats reports hit/miss counters for observability endpoints.
type CacheStats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
	Entries int     `json:"entries"`
}

func NewCachedEngine(engine Decider, maxEntries int, ttl time.Duration) *CachedEngine {
	if maxEntries < 1 {
		maxEntries = defaultCacheEntries
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachedEngine{
		engine:    engine,
		decisions: lru.NewLRU[string, bool](maxEntries, nil, ttl),
		subtrees:  lru.NewLRU[string, []int64](maxEntries, nil, ttl),
	}
}

var _ Decider = (*CachedEngine)(nil)
var _ Invalidator = (*CachedEngine)(nil)

func (c *CachedEngine) tenantGeneration(tenantID string) *atomic.Int64 {
	g, _ := c.generations.LoadOrStore(tenantID, new(atomic.Int64))
	return g.(*atomic.Int64)
}

// tenantKey prefixes every cache key with the tenant and its current
// generation. Keys from a superseded generation are never looked up again
// and simply age out of the LRU.
func (c *CachedEngine) tenantKey(tenantID string) string {
	return fmt.Sprintf("%s@%d", tenantID, c.tenantGeneration(tenantID).Load())
}

// lookup memoizes a boolean decision under key, computing it at most once
// per TTL window per cache instance. Errors are never cached.
func (c *CachedEngine) lookup(key string, compute func() (bool, error)) (bool, error) {
	if v, ok := c.decisions.Get(key); ok {
		c.hits.Add(1)
		return v, nil
	}
	c.misses.Add(1)

	v, err := compute()
	if err != nil {
		return false, err
	}
	c.decisions.Add(key, v)
	return v, nil
}

func (c *CachedEngine) HasPermission(ctx context.Context, userID int64, object ObjectType, action Action) (bool, error) {
	tenantID, err := internal.RequireTenantID(ctx)
	if err != nil {
		return false, err
	}
	key := fmt.Sprintf("%s|perm|%d|%s|%s", c.tenantKey(tenantID), userID, object, action)
	return c.lookup(key, func() (bool, error) {
		return c.engine.HasPermission(ctx, userID, object, action)
	})
}

func (c *CachedEngine) CanViewRecord(ctx context.Context, userID, recordOwnerID int64, object ObjectType) (bool, error) {
	tenantID, err := internal.RequireTenantID(ctx)
	if err != nil {
		return false, err
	}
	key := fmt.Sprintf("%s|view|%d|%d|%s", c.tenantKey(tenantID), userID, recordOwnerID, object)
	return c.lookup(key, func() (bool, error) {
		return c.engine.CanViewRecord(ctx, userID, recordOwnerID, object)
	})
}

func (c *CachedEngine) HasFieldPermission(ctx context.Context, userID int64, object ObjectType, fieldName string, action FieldAction) (bool, error) {
	tenantID, err := internal.RequireTenantID(ctx)
	if err != nil {
		return false, err
	}
	key := fmt.Sprintf("%s|field|%d|%s|%s|%s", c.tenantKey(tenantID), userID, object, fieldName, action)
	return c.lookup(key, func() (bool, error) {
		return c.engine.HasFieldPermission(ctx, userID, object, fieldName, action)
	})
}

func (c *CachedEngine) HasSystemPermission(ctx context.Context, userID int64, permission RolePermission) (bool, error) {
	tenantID, err := internal.RequireTenantID(ctx)
	if err != nil {
		return false, err
	}
	key := fmt.Sprintf("%s|sys|%d|%s", c.tenantKey(tenantID), userID, permission)
	return c.lookup(key, func() (bool, error) {
		return c.engine.HasSystemPermission(ctx, userID, permission)
	})
}

func (c *CachedEngine) IsSubordinate(ctx context.Context, managerID, targetID int64) (bool, error) {
	tenantID, err := internal.RequireTenantID(ctx)
	if err != nil {
		return false, err
	}
	key := fmt.Sprintf("%s|sub|%d|%d", c.tenantKey(tenantID), managerID, targetID)
	return c.lookup(key, func() (bool, error) {
		return c.engine.IsSubordinate(ctx, managerID, targetID)
	})
}

func (c *CachedEngine) AllSubordinates(ctx context.Context, managerID int64) ([]int64, error) {
	tenantID, err := internal.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s|subtree|%d", c.tenantKey(tenantID), managerID)

	if v, ok := c.subtrees.Get(key); ok {
		c.hits.Add(1)
		return v, nil
	}
	c.misses.Add(1)

	v, err := c.engine.AllSubordinates(ctx, managerID)
	if err != nil {
		return nil, err
	}
	c.subtrees.Add(key, v)
	return v, nil
}

// InvalidateTenant drops cached decisions after a role, profile, or manager
// mutation. Bumping the tenant's generation makes its existing keys
// unreachable without evicting other tenants' warm entries; the orphaned
// entries expire on the TTL or fall out of the LRU.
func (c *CachedEngine) InvalidateTenant(tenantID string) {
	c.tenantGeneration(tenantID).Add(1)
}

func (c *CachedEngine) Stats() CacheStats {
	stats := CacheStats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.decisions.Len() + c.subtrees.Len(),
	}
	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}
	return stats
}
