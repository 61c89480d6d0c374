package api

import (
	"testing"
	"time"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation(dayLayout, s, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestWindowCreatedQuery(t *testing.T) {
	w := Window{Start: day(t, "2026-08-01"), End: day(t, "2026-08-31")}
	if got := w.CreatedQuery(); got != "2026-08-01..2026-08-31" {
		t.Errorf("CreatedQuery() = %q", got)
	}
}

func TestWindowContains(t *testing.T) {
	w := Window{Start: day(t, "2026-08-01"), End: day(t, "2026-08-31")}
	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"start midnight", day(t, "2026-08-01"), true},
		{"just before start", day(t, "2026-08-01").Add(-time.Second), false},
		{"mid range", day(t, "2026-08-15").Add(12 * time.Hour), true},
		{"last second of end day", day(t, "2026-08-31").Add(24*time.Hour - time.Second), true},
		{"midnight after end day", day(t, "2026-09-01"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.Contains(tt.at); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestWindowDays(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       int
	}{
		{"month", "2026-08-01", "2026-08-31", 30},
		{"single day clamps to one", "2026-08-01", "2026-08-01", 1},
		{"two days", "2026-08-01", "2026-08-02", 1},
		{"week", "2026-08-01", "2026-08-08", 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Window{Start: day(t, tt.start), End: day(t, tt.end)}
			if got := w.Days(); got != tt.want {
				t.Errorf("Days() = %d, want %d", got, tt.want)
			}
		})
	}
}
