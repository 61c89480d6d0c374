package api

import (
	"fmt"
	"time"
)

const dayLayout = "2006-01-02"

// Window is the requested reporting range. Start and End are UTC calendar
// days (midnight instants); both days are included.
type Window struct {
	Start time.Time
	End   time.Time
}

// CreatedQuery renders the range for the API's `created` filter.
func (w Window) CreatedQuery() string {
	return fmt.Sprintf("%s..%s", w.Start.Format(dayLayout), w.End.Format(dayLayout))
}

// Contains re-checks an instant against the exact range. The server filter
// works on whole days, so results are re-filtered client-side with this.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End.AddDate(0, 0, 1))
}

// Days returns the span in days, never less than one so that same-day
// ranges don't divide projections by zero.
func (w Window) Days() int {
	days := int(w.End.Sub(w.Start).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}
