// Package cache memoizes aggregation output for a few seconds so bursts
// of viewers share one store query per snapshot kind.
package cache

import (
	"encoding/json"
	"time"

	"github.com/dgraph-io/ristretto"

	"rdioactivity/internal/models"
)

// DefaultTTL is how long a stored snapshot stays fresh. One global TTL
// applies to every key.
const DefaultTTL = 5 * time.Second

// SnapshotCache defines the interface for short-TTL snapshot caching
type SnapshotCache interface {
	Get(key string) ([]models.ActiveEntity, bool)
	Set(key string, entities []models.ActiveEntity)
	Active() bool
	Size() int
	Clear()
	Metrics() Metrics
}

// Metrics provides cache performance metrics
type Metrics struct {
	Hits        uint64
	Misses      uint64
	KeysAdded   uint64
	KeysEvicted uint64
}

// Config holds Ristretto cache configuration
type Config struct {
	TTL         time.Duration
	MaxCost     int64 // Maximum cost of cache (bytes)
	NumCounters int64 // Number of counters for TinyLFU admission policy
	BufferItems int64 // Buffer size for async operations
	Metrics     bool  // Enable metrics collection
}

// entry is one immutable cached snapshot. Freshness is decided from
// StoredAt on every read, independent of Ristretto's own eviction.
type entry struct {
	Entities []models.ActiveEntity
	StoredAt time.Time
}

type snapshotCache struct {
	cache  *ristretto.Cache
	config Config
	now    func() time.Time
}

// snapshotKeys are the keys Active() probes for a fresh entry.
var snapshotKeys = []string{string(models.KindUnit), string(models.KindTalkgroup)}

// New creates a Ristretto-backed snapshot cache.
func New(config Config) (SnapshotCache, error) {
	if config.TTL <= 0 {
		config.TTL = DefaultTTL
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		MaxCost:     config.MaxCost,
		NumCounters: config.NumCounters,
		BufferItems: config.BufferItems,
		Metrics:     config.Metrics,
	})
	if err != nil {
		return nil, err
	}

	return &snapshotCache{
		cache:  cache,
		config: config,
		now:    time.Now,
	}, nil
}

// Get retrieves a snapshot if it is still fresh. Entries past the TTL
// are removed on observation and reported as absent.
func (c *snapshotCache) Get(key string) ([]models.ActiveEntity, bool) {
	value, found := c.cache.Get(key)
	if !found {
		return nil, false
	}

	ent, ok := value.(entry)
	if !ok {
		// Handle corrupted cache entry
		c.cache.Del(key)
		return nil, false
	}

	if c.now().Sub(ent.StoredAt) >= c.config.TTL {
		c.cache.Del(key)
		return nil, false
	}

	return ent.Entities, true
}

// Set stores a snapshot under the global TTL. Entries are whole,
// immutable values; a reader either sees a complete snapshot or none.
func (c *snapshotCache) Set(key string, entities []models.ActiveEntity) {
	ent := entry{Entities: entities, StoredAt: c.now()}
	c.cache.SetWithTTL(key, ent, c.estimateCost(entities), c.config.TTL)

	// Wait for Ristretto's buffers so the entry is visible to the next
	// request immediately.
	c.cache.Wait()
}

// Active reports whether any snapshot key currently holds a fresh entry.
func (c *snapshotCache) Active() bool {
	for _, key := range snapshotKeys {
		if _, ok := c.Get(key); ok {
			return true
		}
	}
	return false
}

// Size returns the approximate number of items in the cache. Ristretto
// is eventually consistent, so this is derived from its counters.
func (c *snapshotCache) Size() int {
	if !c.config.Metrics {
		return 0
	}
	metrics := c.cache.Metrics
	return int(metrics.KeysAdded() - metrics.KeysEvicted())
}

// Clear removes all items from the cache.
func (c *snapshotCache) Clear() {
	c.cache.Clear()
}

// Metrics returns cache performance metrics.
func (c *snapshotCache) Metrics() Metrics {
	if !c.config.Metrics {
		return Metrics{}
	}
	metrics := c.cache.Metrics
	return Metrics{
		Hits:        metrics.Hits(),
		Misses:      metrics.Misses(),
		KeysAdded:   metrics.KeysAdded(),
		KeysEvicted: metrics.KeysEvicted(),
	}
}

// estimateCost estimates the memory cost of a snapshot.
func (c *snapshotCache) estimateCost(entities []models.ActiveEntity) int64 {
	data, err := json.Marshal(entities)
	if err != nil {
		return 1024
	}
	return int64(len(data) + 100)
}
