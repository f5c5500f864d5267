package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"rdioactivity/internal/aggregate"
	"rdioactivity/internal/cache"
	"rdioactivity/internal/config"
	"rdioactivity/internal/metrics"
	"rdioactivity/internal/models"
	"rdioactivity/internal/names"
	"rdioactivity/internal/presence"
	"rdioactivity/internal/store"
)

// Aggregator computes an activity snapshot for one entity kind.
type Aggregator interface {
	Aggregate(ctx context.Context, kind models.EntityKind) ([]models.ActiveEntity, error)
}

// SnapshotService implements the core business logic: presence
// tracking, the short-TTL snapshot cache, and aggregation on miss.
type SnapshotService struct {
	agg     Aggregator
	cache   cache.SnapshotCache
	tracker *presence.Tracker
	store   store.EventStore
	log     zerolog.Logger
}

// NewSnapshotService creates a new snapshot service
func NewSnapshotService(agg Aggregator, snapCache cache.SnapshotCache, tracker *presence.Tracker, eventStore store.EventStore, log zerolog.Logger) *SnapshotService {
	return &SnapshotService{
		agg:     agg,
		cache:   snapCache,
		tracker: tracker,
		store:   eventStore,
		log:     log,
	}
}

// Snapshot returns the activity snapshot for a kind, serving from the
// cache while fresh and aggregating on miss. Concurrent misses may
// aggregate twice; the store is read-only so that is only wasted work.
func (s *SnapshotService) Snapshot(ctx context.Context, kind models.EntityKind) ([]models.ActiveEntity, error) {
	key := string(kind)
	if entities, ok := s.cache.Get(key); ok {
		return entities, nil
	}

	start := time.Now()
	entities, err := s.agg.Aggregate(ctx, kind)
	if err != nil {
		return nil, err
	}
	metrics.ObserveAggregation(key, time.Since(start))

	s.cache.Set(key, entities)
	s.log.Debug().Str("kind", key).Int("entities", len(entities)).Msg("snapshot recomputed")
	return entities, nil
}

// TouchVisitor records contact from a visitor identity and returns the
// live visitor count.
func (s *SnapshotService) TouchVisitor(identity string) int {
	return s.tracker.Touch(identity)
}

// Status reports the live visitor set and cache freshness. It never
// triggers an aggregation.
func (s *SnapshotService) Status() models.Status {
	ips := s.tracker.ActiveIPs()
	return models.Status{
		ActiveVisitors5Min: len(ips),
		ActiveIPs:          ips,
		CacheActive:        s.cache.Active(),
	}
}

// CacheSize exposes the snapshot cache occupancy for metrics.
func (s *SnapshotService) CacheSize() int {
	return s.cache.Size()
}

// VisitorCount exposes the live visitor count for metrics.
func (s *SnapshotService) VisitorCount() int {
	return s.tracker.Count()
}

// Ready checks whether the event store is reachable.
func (s *SnapshotService) Ready(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Close closes the service and its dependencies.
func (s *SnapshotService) Close() error {
	if err := s.store.Close(); err != nil {
		return fmt.Errorf("failed to close event store: %w", err)
	}
	s.cache.Clear()
	return nil
}

// ServiceBuilder helps build a complete snapshot service
type ServiceBuilder struct {
	config *config.Config
	log    zerolog.Logger
}

// NewServiceBuilder creates a new service builder
func NewServiceBuilder(config *config.Config, log zerolog.Logger) *ServiceBuilder {
	return &ServiceBuilder{config: config, log: log}
}

// Build builds and configures all service components
func (b *ServiceBuilder) Build() (*SnapshotService, error) {
	eventStore, err := store.New(store.Config{Path: b.config.Store.Path})
	if err != nil {
		return nil, fmt.Errorf("failed to open event store: %w", err)
	}

	ttl, err := b.config.Cache.GetTTL()
	if err != nil {
		return nil, fmt.Errorf("invalid cache TTL: %w", err)
	}
	snapCache, err := cache.New(cache.Config{
		TTL:         ttl,
		MaxCost:     b.config.Cache.MaxCost,
		NumCounters: b.config.Cache.NumCounters,
		BufferItems: b.config.Cache.BufferItems,
		Metrics:     b.config.Cache.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot cache: %w", err)
	}

	window, err := b.config.Activity.GetWindow()
	if err != nil {
		return nil, fmt.Errorf("invalid activity window: %w", err)
	}
	resolver := names.NewResolver(eventStore, b.log)
	agg := aggregate.New(eventStore, resolver, window)

	timeout, err := b.config.Presence.GetTimeout()
	if err != nil {
		return nil, fmt.Errorf("invalid presence timeout: %w", err)
	}
	tracker := presence.NewTracker(timeout)

	return NewSnapshotService(agg, snapCache, tracker, eventStore, b.log), nil
}
