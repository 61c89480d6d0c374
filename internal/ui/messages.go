package ui

import (
	"time"

	"github.com/altin/gh-actions-cost/internal/fetch"
)

// ProgressMsg carries a tier's completion count into the display.
type ProgressMsg struct {
	Tier      fetch.Tier
	Completed int
	Total     int
}

// RateLimitMsg announces a rate-limit backoff in progress.
type RateLimitMsg struct {
	Kind string
	Wait time.Duration
}

// DoneMsg ends the display once the fetch pipeline has finished.
type DoneMsg struct {
	Err error
}
