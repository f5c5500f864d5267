// Package aggregate turns the raw call log into ranked activity
// snapshots: one entity per distinct label, counted and ranked by most
// recent activity inside a trailing window.
package aggregate

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"rdioactivity/internal/models"
	"rdioactivity/internal/store"
)

const (
	// DefaultWindow bounds which calls count as active.
	DefaultWindow = time.Hour
	// MaxEntities caps the snapshot size.
	MaxEntities = 200
)

// Error represents a failed aggregation. Store failures are wrapped
// exactly once here and mapped to a generic response at the HTTP
// boundary; there are no retries.
type Error struct {
	Kind models.EntityKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("aggregate %s activity: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// EventSource supplies labeled events for a window.
type EventSource interface {
	LabeledEvents(ctx context.Context, kind models.EntityKind, cutoff time.Time) ([]store.LabeledEvent, error)
}

// NameResolver maps system ids to display names.
type NameResolver interface {
	Resolve(ctx context.Context, systemID int64) string
}

// Aggregator computes activity snapshots from an event source.
type Aggregator struct {
	source EventSource
	names  NameResolver
	window time.Duration
	now    func() time.Time
}

// New creates an aggregator with the given window.
func New(source EventSource, names NameResolver, window time.Duration) *Aggregator {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Aggregator{
		source: source,
		names:  names,
		window: window,
		now:    time.Now,
	}
}

// Aggregate builds the ranked snapshot for one entity kind.
//
// Events sharing a label collapse into a single entity regardless of
// their raw ids; that is the dedup policy, two radios programmed with
// the same label count as one. Per label: lowest id, lowest system id,
// event count, and latest event time. Ranking is by last seen
// descending with a stable sort, so ties keep the store's row order.
func (a *Aggregator) Aggregate(ctx context.Context, kind models.EntityKind) ([]models.ActiveEntity, error) {
	if !kind.IsValid() {
		return nil, &Error{Kind: kind, Err: fmt.Errorf("unknown entity kind %q", kind)}
	}

	cutoff := a.now().UTC().Add(-a.window)
	events, err := a.source.LabeledEvents(ctx, kind, cutoff)
	if err != nil {
		return nil, &Error{Kind: kind, Err: err}
	}

	groups := make(map[string]*models.ActiveEntity)
	var order []string
	for _, ev := range events {
		if strings.TrimSpace(ev.Label) == "" {
			continue
		}
		e, ok := groups[ev.Label]
		if !ok {
			groups[ev.Label] = &models.ActiveEntity{
				ID:          ev.EntityID,
				Label:       ev.Label,
				SystemID:    ev.SystemID,
				SeenCount:   1,
				LastSeen:    ev.Time,
				LastSeenRaw: ev.RawTime,
			}
			order = append(order, ev.Label)
			continue
		}
		e.SeenCount++
		if ev.EntityID < e.ID {
			e.ID = ev.EntityID
		}
		if ev.SystemID < e.SystemID {
			e.SystemID = ev.SystemID
		}
		if laterEvent(ev.Time, ev.RawTime, e.LastSeen, e.LastSeenRaw) {
			e.LastSeen = ev.Time
			e.LastSeenRaw = ev.RawTime
		}
	}

	entities := make([]models.ActiveEntity, 0, len(order))
	for _, label := range order {
		e := groups[label]
		e.SystemName = a.names.Resolve(ctx, e.SystemID)
		entities = append(entities, *e)
	}

	sort.SliceStable(entities, func(i, j int) bool {
		return laterEvent(entities[i].LastSeen, entities[i].LastSeenRaw,
			entities[j].LastSeen, entities[j].LastSeenRaw)
	})

	if len(entities) > MaxEntities {
		entities = entities[:MaxEntities]
	}
	return entities, nil
}

// laterEvent reports whether (t, raw) is strictly later than (ot, oraw).
// When either timestamp failed to parse, the raw strings are compared;
// the store's canonical format sorts lexically in time order.
func laterEvent(t time.Time, raw string, ot time.Time, oraw string) bool {
	if !t.IsZero() && !ot.IsZero() {
		return t.After(ot)
	}
	return raw > oraw
}
