package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestEntityKindIsValid(t *testing.T) {
	if !KindUnit.IsValid() || !KindTalkgroup.IsValid() {
		t.Error("Expected unit and talkgroup kinds to be valid")
	}
	if EntityKind("system").IsValid() {
		t.Error("Expected unknown kind to be invalid")
	}
}

func TestLastSeenISO(t *testing.T) {
	ts := time.Date(2024, 3, 1, 15, 4, 5, 0, time.UTC)
	e := ActiveEntity{LastSeen: ts, LastSeenRaw: "2024-03-01 15:04:05"}
	if got := e.LastSeenISO(); got != "2024-03-01T15:04:05Z" {
		t.Errorf("Expected ISO rendering, got %q", got)
	}
}

func TestLastSeenISOFallsBackToRaw(t *testing.T) {
	e := ActiveEntity{LastSeenRaw: "yesterday-ish"}
	if got := e.LastSeenISO(); got != "yesterday-ish" {
		t.Errorf("Expected raw fallback, got %q", got)
	}
}

func TestActiveUnitsPayloadShape(t *testing.T) {
	ts := time.Date(2024, 3, 1, 15, 4, 5, 0, time.UTC)
	payload := ActiveUnits([]ActiveEntity{{
		ID:         7,
		Label:      "ENG31",
		SystemID:   5,
		SystemName: "County Fire",
		SeenCount:  3,
		LastSeen:   ts,
	}})

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	body := string(data)

	for _, key := range []string{`"unit_id":7`, `"label":"ENG31"`, `"system_id":5`, `"system_name":"County Fire"`, `"seen_count":3`, `"last_seen_iso":"2024-03-01T15:04:05Z"`, `"agency":"County Fire"`} {
		if !strings.Contains(body, key) {
			t.Errorf("Expected %s in body %s", key, body)
		}
	}
}

func TestActiveTalkgroupsPayloadKey(t *testing.T) {
	payload := ActiveTalkgroups([]ActiveEntity{{ID: 42, Label: "FIRE1"}})
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"talkgroup_id":42`) {
		t.Errorf("Expected talkgroup_id key, got %s", data)
	}
}

func TestEmptySnapshotEncodesAsArray(t *testing.T) {
	data, err := json.Marshal(ActiveUnits(nil))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("Expected [], got %s", data)
	}
}
