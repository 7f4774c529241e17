package models

import (
	"strings"
	"testing"
	"time"

	"github.com/spdhub/spdhub_backend/utils"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04", value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return parsed
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name    string
		aStart  string
		aEnd    string
		bStart  string
		bEnd    string
		overlap bool
	}{
		{"partial overlap", "2026-09-01 09:00", "2026-09-01 12:00", "2026-09-01 11:00", "2026-09-01 13:00", true},
		{"touching boundary is free", "2026-09-01 09:00", "2026-09-01 12:00", "2026-09-01 12:00", "2026-09-01 14:00", false},
		{"contained window", "2026-09-01 09:00", "2026-09-01 17:00", "2026-09-01 10:00", "2026-09-01 11:00", true},
		{"identical windows", "2026-09-01 09:00", "2026-09-01 12:00", "2026-09-01 09:00", "2026-09-01 12:00", true},
		{"disjoint", "2026-09-01 09:00", "2026-09-01 10:00", "2026-09-01 14:00", "2026-09-01 15:00", false},
		{"reverse touching boundary", "2026-09-01 12:00", "2026-09-01 14:00", "2026-09-01 09:00", "2026-09-01 12:00", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Overlaps(mustTime(t, tc.aStart), mustTime(t, tc.aEnd), mustTime(t, tc.bStart), mustTime(t, tc.bEnd))
			if got != tc.overlap {
				t.Fatalf("Overlaps(%s-%s vs %s-%s) = %v, want %v",
					tc.aStart, tc.aEnd, tc.bStart, tc.bEnd, got, tc.overlap)
			}
		})
	}
}

func TestCheckAvailabilityRejectsBadWindow(t *testing.T) {
	date := mustTime(t, "2026-09-01 00:00")

	// Validation fires before any query, so no DB handle is needed.
	cases := []struct {
		name  string
		start string
		end   string
	}{
		{"zero-length window", "2026-09-01 09:00", "2026-09-01 09:00"},
		{"inverted window", "2026-09-01 12:00", "2026-09-01 09:00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CheckAvailability(nil, ResourceTypeVehicle, 1, date, mustTime(t, tc.start), mustTime(t, tc.end))
			if !utils.IsValidationError(err) {
				t.Fatalf("want validation error, got %v", err)
			}
		})
	}
}

func TestConflictErrorNamesEveryEvent(t *testing.T) {
	err := &ConflictError{Conflicts: []EventConflict{
		{
			ResourceType: ResourceTypeVehicle,
			ResourceId:   3,
			EventId:      11,
			EventName:    "Morning tasting",
			StartTime:    mustTime(t, "2026-09-01 09:00"),
			EndTime:      mustTime(t, "2026-09-01 12:00"),
		},
		{
			ResourceType: ResourceTypePropagandist,
			ResourceId:   7,
			EventId:      12,
			EventName:    "Mall activation",
			StartTime:    mustTime(t, "2026-09-01 10:00"),
			EndTime:      mustTime(t, "2026-09-01 11:00"),
		},
	}}

	msg := err.Error()
	for _, want := range []string{"Morning tasting", "Mall activation", "09:00-12:00", "10:00-11:00"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error message missing %q: %s", want, msg)
		}
	}
}

func TestEventTransitionTable(t *testing.T) {
	allowed := func(from, to EventStatus) bool {
		for _, next := range eventTransitions[from] {
			if next == to {
				return true
			}
		}
		return false
	}

	if !allowed(EventStatusScheduled, EventStatusInProgress) {
		t.Error("scheduled event must be able to start")
	}
	if !allowed(EventStatusScheduled, EventStatusCancelled) {
		t.Error("scheduled event must be cancellable")
	}
	if !allowed(EventStatusInProgress, EventStatusClosed) {
		t.Error("running event must be closable")
	}
	if allowed(EventStatusScheduled, EventStatusClosed) {
		t.Error("scheduled event must not close without starting")
	}
	if len(eventTransitions[EventStatusClosed]) != 0 {
		t.Error("closed is terminal")
	}
	if len(eventTransitions[EventStatusCancelled]) != 0 {
		t.Error("cancelled is terminal")
	}
}
