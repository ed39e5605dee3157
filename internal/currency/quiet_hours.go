package currency

import (
	"fmt"
	"time"
)

// QuietHours is a daily window, in a fixed time zone, during which rates are
// not refreshed and scheduled price updates are skipped.
// Start is inclusive, End exclusive. Start > End wraps past midnight;
// Start == End disables the window.
type QuietHours struct {
	Start    int
	End      int
	Location *time.Location
}

// NewQuietHours validates the hours and loads the zone.
func NewQuietHours(start, end int, tz string) (QuietHours, error) {
	if start < 0 || start > 23 || end < 0 || end > 23 {
		return QuietHours{}, fmt.Errorf("quiet hours must be within 0-23, got %d-%d", start, end)
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return QuietHours{}, fmt.Errorf("loading quiet hours time zone %q: %w", tz, err)
	}
	return QuietHours{Start: start, End: end, Location: loc}, nil
}

// Contains reports whether t falls inside the window.
func (q QuietHours) Contains(t time.Time) bool {
	if q.Start == q.End {
		return false
	}
	loc := q.Location
	if loc == nil {
		loc = time.UTC
	}
	h := t.In(loc).Hour()
	if q.Start < q.End {
		return h >= q.Start && h < q.End
	}
	return h >= q.Start || h < q.End
}
