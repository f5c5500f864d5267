package models

import (
	"time"
)

// EntityKind selects which label dimension an aggregation runs against.
type EntityKind string

const (
	KindUnit      EntityKind = "unit"
	KindTalkgroup EntityKind = "talkgroup"
)

// IsValid checks if the entity kind is valid
func (k EntityKind) IsValid() bool {
	switch k {
	case KindUnit, KindTalkgroup:
		return true
	default:
		return false
	}
}

// ActiveEntity is one deduplicated row of an activity snapshot. Entities
// are recomputed on every aggregation and never mutated afterwards.
type ActiveEntity struct {
	ID         int64
	Label      string
	SystemID   int64
	SystemName string
	SeenCount  int
	LastSeen   time.Time
	// LastSeenRaw keeps the store's original timestamp text so a value
	// the parser rejects still renders instead of failing the response.
	LastSeenRaw string
}

// LastSeenISO renders the last-seen time as ISO-8601, assuming UTC when
// the source carried no zone. Unparseable timestamps fall back to the
// raw store text.
func (e ActiveEntity) LastSeenISO() string {
	if e.LastSeen.IsZero() {
		return e.LastSeenRaw
	}
	return e.LastSeen.UTC().Format(time.RFC3339Nano)
}

// ActiveUnit mirrors the legacy API's unit row.
type ActiveUnit struct {
	UnitID      int64  `json:"unit_id"`
	Label       string `json:"label"`
	SystemID    int64  `json:"system_id"`
	SystemName  string `json:"system_name"`
	SeenCount   int    `json:"seen_count"`
	LastSeenISO string `json:"last_seen_iso"`
	// Agency duplicates SystemName for older frontends.
	Agency string `json:"agency"`
}

// ActiveTalkgroup mirrors the legacy API's talkgroup row.
type ActiveTalkgroup struct {
	TalkgroupID int64  `json:"talkgroup_id"`
	Label       string `json:"label"`
	SystemID    int64  `json:"system_id"`
	SystemName  string `json:"system_name"`
	SeenCount   int    `json:"seen_count"`
	LastSeenISO string `json:"last_seen_iso"`
	Agency      string `json:"agency"`
}

// ActiveUnits shapes a snapshot as the units response body. The result
// is never nil so an empty snapshot encodes as [].
func ActiveUnits(entities []ActiveEntity) []ActiveUnit {
	out := make([]ActiveUnit, 0, len(entities))
	for _, e := range entities {
		out = append(out, ActiveUnit{
			UnitID:      e.ID,
			Label:       e.Label,
			SystemID:    e.SystemID,
			SystemName:  e.SystemName,
			SeenCount:   e.SeenCount,
			LastSeenISO: e.LastSeenISO(),
			Agency:      e.SystemName,
		})
	}
	return out
}

// ActiveTalkgroups shapes a snapshot as the talkgroups response body.
func ActiveTalkgroups(entities []ActiveEntity) []ActiveTalkgroup {
	out := make([]ActiveTalkgroup, 0, len(entities))
	for _, e := range entities {
		out = append(out, ActiveTalkgroup{
			TalkgroupID: e.ID,
			Label:       e.Label,
			SystemID:    e.SystemID,
			SystemName:  e.SystemName,
			SeenCount:   e.SeenCount,
			LastSeenISO: e.LastSeenISO(),
			Agency:      e.SystemName,
		})
	}
	return out
}

// Status is the /api/status response body.
type Status struct {
	ActiveVisitors5Min int      `json:"active_visitors_5min"`
	ActiveIPs          []string `json:"active_ips"`
	CacheActive        bool     `json:"cache_active"`
}

// ErrorResponse is the generic failure body.
type ErrorResponse struct {
	Error string `json:"error"`
}
