package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"rdioactivity/internal/models"
)

const testSchema = `
CREATE TABLE rdioScannerCalls (
	id INTEGER PRIMARY KEY,
	dateTime TEXT,
	source INTEGER,
	talkgroup INTEGER,
	system INTEGER
);
CREATE TABLE rdioScannerUnits (
	id INTEGER,
	systemId INTEGER,
	label TEXT
);
CREATE TABLE rdioScannerTalkgroups (
	id INTEGER,
	systemId INTEGER,
	label TEXT
);
CREATE TABLE rdioScannerSystems (
	id INTEGER PRIMARY KEY,
	name TEXT
);
`

// newTestStore creates a scanner database on disk, seeds it through the
// returned handle, and opens an EventStore over it.
func newTestStore(t *testing.T) (EventStore, *sql.DB) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "rdio-scanner.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("Failed to open seed database: %v", err)
	}
	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	st, err := New(Config{Path: path})
	if err != nil {
		t.Fatalf("Failed to open event store: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
		db.Close()
	})
	return st, db
}

func seedCall(t *testing.T, db *sql.DB, dateTime string, source, talkgroup, system int64) {
	t.Helper()
	if _, err := db.Exec(
		`INSERT INTO rdioScannerCalls (dateTime, source, talkgroup, system) VALUES (?, ?, ?, ?)`,
		dateTime, source, talkgroup, system,
	); err != nil {
		t.Fatalf("Failed to seed call: %v", err)
	}
}

func seedUnit(t *testing.T, db *sql.DB, id, systemID int64, label any) {
	t.Helper()
	if _, err := db.Exec(
		`INSERT INTO rdioScannerUnits (id, systemId, label) VALUES (?, ?, ?)`,
		id, systemID, label,
	); err != nil {
		t.Fatalf("Failed to seed unit: %v", err)
	}
}

func TestLabeledEventsWindowAndLabelFilter(t *testing.T) {
	st, db := newTestStore(t)
	ctx := context.Background()

	seedUnit(t, db, 1, 5, "ENG31")
	seedUnit(t, db, 2, 5, "   ")
	seedUnit(t, db, 3, 5, nil)

	seedCall(t, db, "2024-03-01 12:00:00", 1, 100, 5) // inside window
	seedCall(t, db, "2024-03-01 10:00:00", 1, 100, 5) // before cutoff
	seedCall(t, db, "2024-03-01 12:05:00", 2, 100, 5) // blank label
	seedCall(t, db, "2024-03-01 12:06:00", 3, 100, 5) // null label
	seedCall(t, db, "2024-03-01 12:07:00", 9, 100, 5) // no unit row

	cutoff := time.Date(2024, 3, 1, 11, 30, 0, 0, time.UTC)
	events, err := st.LabeledEvents(ctx, models.KindUnit, cutoff)
	if err != nil {
		t.Fatalf("LabeledEvents failed: %v", err)
	}

	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.EntityID != 1 || ev.Label != "ENG31" || ev.SystemID != 5 {
		t.Errorf("Unexpected event %+v", ev)
	}
	want := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if !ev.Time.Equal(want) {
		t.Errorf("Expected parsed time %v, got %v", want, ev.Time)
	}
	if ev.RawTime != "2024-03-01 12:00:00" {
		t.Errorf("Expected raw time preserved, got %q", ev.RawTime)
	}
}

func TestLabeledEventsNaturalOrder(t *testing.T) {
	st, db := newTestStore(t)
	ctx := context.Background()

	seedUnit(t, db, 1, 5, "ENG31")
	seedUnit(t, db, 2, 5, "MED12")

	seedCall(t, db, "2024-03-01 12:00:00", 2, 100, 5)
	seedCall(t, db, "2024-03-01 12:00:00", 1, 100, 5)
	seedCall(t, db, "2024-03-01 12:00:00", 2, 100, 5)

	events, err := st.LabeledEvents(ctx, models.KindUnit, time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("LabeledEvents failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(events))
	}
	gotOrder := []int64{events[0].EntityID, events[1].EntityID, events[2].EntityID}
	wantOrder := []int64{2, 1, 2}
	for i := range wantOrder {
		if gotOrder[i] != wantOrder[i] {
			t.Fatalf("Expected insert order %v, got %v", wantOrder, gotOrder)
		}
	}
}

func TestLabeledEventsTalkgroupKind(t *testing.T) {
	st, db := newTestStore(t)
	ctx := context.Background()

	if _, err := db.Exec(`INSERT INTO rdioScannerTalkgroups (id, systemId, label) VALUES (100, 5, 'FIRE1')`); err != nil {
		t.Fatalf("Failed to seed talkgroup: %v", err)
	}
	seedCall(t, db, "2024-03-01 12:00:00", 1, 100, 5)

	events, err := st.LabeledEvents(ctx, models.KindTalkgroup, time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("LabeledEvents failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if events[0].EntityID != 100 || events[0].Label != "FIRE1" {
		t.Errorf("Unexpected talkgroup event %+v", events[0])
	}
}

func TestLabeledEventsUnknownKind(t *testing.T) {
	st, _ := newTestStore(t)
	if _, err := st.LabeledEvents(context.Background(), models.EntityKind("system"), time.Now()); err == nil {
		t.Error("Expected error for unknown kind")
	}
}

func TestLabeledEventsMissingTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	st, err := New(Config{Path: path})
	if err != nil {
		t.Fatalf("Failed to open event store: %v", err)
	}
	defer st.Close()

	if _, err := st.LabeledEvents(context.Background(), models.KindUnit, time.Now()); err == nil {
		t.Error("Expected error when the call table is missing")
	}
}

func TestSystemColumnsAndNames(t *testing.T) {
	st, db := newTestStore(t)
	ctx := context.Background()

	if _, err := db.Exec(`INSERT INTO rdioScannerSystems (id, name) VALUES (5, 'County Fire'), (6, NULL)`); err != nil {
		t.Fatalf("Failed to seed systems: %v", err)
	}

	columns, err := st.SystemColumns(ctx)
	if err != nil {
		t.Fatalf("SystemColumns failed: %v", err)
	}
	found := false
	for _, c := range columns {
		if c == "name" {
			found = true
		}
	}
	if !found {
		t.Fatalf("Expected 'name' in columns %v", columns)
	}

	namesByID, err := st.SystemNames(ctx, "name")
	if err != nil {
		t.Fatalf("SystemNames failed: %v", err)
	}
	if namesByID[5] != "County Fire" {
		t.Errorf("Expected system 5 named 'County Fire', got %q", namesByID[5])
	}
	if _, ok := namesByID[6]; ok {
		t.Error("Expected NULL-named system to be absent from the map")
	}
}

func TestParseEventTimeFormats(t *testing.T) {
	cases := []struct {
		raw string
		ok  bool
	}{
		{"2024-03-01 12:00:00", true},
		{"2024-03-01T12:00:00", true},
		{"2024-03-01 12:00:00.123456", true},
		{"2024-03-01T12:00:00Z", true},
		{"2024-03-01T12:00:00+02:00", true},
		{"not a timestamp", false},
		{"", false},
	}
	for _, c := range cases {
		ts, ok := parseEventTime(c.raw)
		if ok != c.ok {
			t.Errorf("parseEventTime(%q) ok=%v, expected %v", c.raw, ok, c.ok)
		}
		if ok && ts.Location() != time.UTC && c.raw != "2024-03-01T12:00:00+02:00" {
			t.Errorf("parseEventTime(%q) not UTC: %v", c.raw, ts)
		}
	}
}
