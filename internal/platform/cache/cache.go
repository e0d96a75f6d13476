// Package cache is a process-local TTL cache used in front of slow reads.
// It is an optimization only: every service reads through to the store, so
// running with the cache disabled changes latency, never results.
package cache

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/bigdiet/backend/pkg/metrics"
)

// Well-known key families. Writers invalidate by these substrings.
const (
	KeyCustomers      = "customers"
	KeyPackages       = "packages"
	KeyCustomerName   = "customer_name_" // + customer id
	KeyActivities     = "activities"     // + feed params
	KeyDashboardStats = "dashboard_stats"
)

type Cache struct {
	c   *gocache.Cache
	ops *prometheus.CounterVec
}

func New() *Cache {
	ops := metrics.NewMetric(metrics.CacheOps, "bigdiet").(*prometheus.CounterVec)
	if err := prometheus.Register(ops); err != nil {
		// Already registered (tests construct multiple caches); reuse.
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			ops = are.ExistingCollector.(*prometheus.CounterVec)
		}
	}
	// Per-entry TTLs are passed on Set; expired entries are dropped lazily
	// on read plus a coarse janitor sweep.
	return &Cache{
		c:   gocache.New(gocache.NoExpiration, 10*time.Minute),
		ops: ops,
	}
}

// Get returns the cached value if present and not expired.
func (c *Cache) Get(key string) (any, bool) {
	v, ok := c.c.Get(key)
	if ok {
		c.ops.WithLabelValues("hit").Inc()
	} else {
		c.ops.WithLabelValues("miss").Inc()
	}
	return v, ok
}

func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.ops.WithLabelValues("set").Inc()
	c.c.Set(key, value, ttl)
}

// Invalidate removes every entry whose key contains pattern as a substring.
// An empty pattern flushes the whole cache.
func (c *Cache) Invalidate(pattern string) {
	c.ops.WithLabelValues("invalidate").Inc()
	if pattern == "" {
		c.c.Flush()
		return
	}
	for key := range c.c.Items() {
		if strings.Contains(key, pattern) {
			c.c.Delete(key)
		}
	}
}

// InvalidateAll clears the key families a write could stale, plus the
// dashboard stats which depend on everything.
func (c *Cache) InvalidateAll(patterns ...string) {
	for _, p := range patterns {
		c.Invalidate(p)
	}
	c.Invalidate(KeyDashboardStats)
}

var Module = fx.Options(
	fx.Provide(New),
)
