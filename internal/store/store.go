package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"rdioactivity/internal/models"
)

// EventStore is the read-only view of the rdio-scanner call log. The
// log is populated by an external process; this side never writes.
type EventStore interface {
	LabeledEvents(ctx context.Context, kind models.EntityKind, cutoff time.Time) ([]LabeledEvent, error)
	SystemColumns(ctx context.Context) ([]string, error)
	SystemNames(ctx context.Context, nameColumn string) (map[int64]string, error)
	Ping(ctx context.Context) error
	Close() error
}

// LabeledEvent is one call row joined to its label dimension. Rows come
// back in the store's natural order, which the aggregator relies on for
// stable tie-breaking.
type LabeledEvent struct {
	EntityID int64
	Label    string
	SystemID int64
	Time     time.Time // zero when RawTime did not parse
	RawTime  string
}

// Config holds configuration for the event store
type Config struct {
	Path string
}

type sqliteStore struct {
	db *sql.DB
}

// New opens the rdio-scanner database for reading.
func New(config Config) (EventStore, error) {
	if strings.TrimSpace(config.Path) == "" {
		return nil, fmt.Errorf("event store path is required")
	}

	dsn := config.Path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open event store: %w", err)
	}

	return &sqliteStore{db: db}, nil
}

// timeLayouts are the accepted dateTime formats, probed in order. The
// canonical rdio-scanner format comes first; anything that matches none
// of them is kept as raw text rather than failing the row.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

func parseEventTime(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// LabeledEvents returns every call inside the window joined to its
// label row, excluding calls whose label is null or blank after
// trimming. The join and filters mirror the indexes on the call table.
func (s *sqliteStore) LabeledEvents(ctx context.Context, kind models.EntityKind, cutoff time.Time) ([]LabeledEvent, error) {
	var query string
	switch kind {
	case models.KindUnit:
		query = `
			SELECT c.source, u.label, c.system, c.dateTime
			FROM rdioScannerCalls c
			JOIN rdioScannerUnits u
			  ON u.systemId = c.system
			 AND u.id       = c.source
			WHERE c.dateTime >= ?
			  AND u.label IS NOT NULL
			  AND TRIM(u.label) != ''
			ORDER BY c.rowid`
	case models.KindTalkgroup:
		query = `
			SELECT c.talkgroup, tg.label, c.system, c.dateTime
			FROM rdioScannerCalls c
			JOIN rdioScannerTalkgroups tg
			  ON tg.systemId = c.system
			 AND tg.id       = c.talkgroup
			WHERE c.dateTime >= ?
			  AND tg.label IS NOT NULL
			  AND TRIM(tg.label) != ''
			ORDER BY c.rowid`
	default:
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}

	cutoffStr := cutoff.UTC().Format("2006-01-02 15:04:05")
	rows, err := s.db.QueryContext(ctx, query, cutoffStr)
	if err != nil {
		return nil, fmt.Errorf("query %s events: %w", kind, err)
	}
	defer rows.Close()

	var events []LabeledEvent
	for rows.Next() {
		var (
			ev  LabeledEvent
			raw sql.NullString
		)
		if err := rows.Scan(&ev.EntityID, &ev.Label, &ev.SystemID, &raw); err != nil {
			return nil, fmt.Errorf("scan %s event: %w", kind, err)
		}
		ev.RawTime = raw.String
		ev.Time, _ = parseEventTime(raw.String)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s events: %w", kind, err)
	}

	return events, nil
}

// SystemColumns lists the columns of the systems table so the name
// resolver can pick a display-name column without assuming a schema.
func (s *sqliteStore) SystemColumns(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `PRAGMA table_info(rdioScannerSystems)`)
	if err != nil {
		return nil, fmt.Errorf("introspect systems table: %w", err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   sql.NullString
			notNull   sql.NullInt64
			dfltValue sql.NullString
			pk        sql.NullInt64
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("scan systems column: %w", err)
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate systems columns: %w", err)
	}

	return columns, nil
}

// SystemNames returns the systemId -> display name mapping using the
// given column. The column is quoted; callers pass only values detected
// via SystemColumns.
func (s *sqliteStore) SystemNames(ctx context.Context, nameColumn string) (map[int64]string, error) {
	query := fmt.Sprintf(`SELECT id, "%s" FROM rdioScannerSystems`, nameColumn)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query system names: %w", err)
	}
	defer rows.Close()

	names := make(map[int64]string)
	for rows.Next() {
		var (
			id   int64
			name sql.NullString
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan system name: %w", err)
		}
		if name.Valid {
			names[id] = name.String
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate system names: %w", err)
	}

	return names, nil
}

// Ping validates store connectivity for the readiness probe.
func (s *sqliteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database handle.
func (s *sqliteStore) Close() error {
	return s.db.Close()
}
