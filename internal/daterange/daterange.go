// Package daterange resolves the coarse filters the records view
// offers (day, week, month, year) plus an anchor date into concrete
// inclusive timestamp boundaries for the sale listing.
package daterange

import (
	"fmt"
	"strings"
	"time"
)

type Filter string

const (
	Day   Filter = "day"
	Week  Filter = "week"
	Month Filter = "month"
	Year  Filter = "year"
)

// ParseFilter accepts the lowercase filter names, case-insensitively.
func ParseFilter(value string) (Filter, error) {
	switch Filter(strings.ToLower(strings.TrimSpace(value))) {
	case Day:
		return Day, nil
	case Week:
		return Week, nil
	case Month:
		return Month, nil
	case Year:
		return Year, nil
	}
	return "", fmt.Errorf("unknown date filter %q (want day, week, month or year)", value)
}

// Resolve returns the inclusive [from, to] boundaries of the period
// containing anchor. Weeks run Monday through Sunday. Boundaries are
// midnight-to-last-instant in the anchor's location.
func Resolve(filter Filter, anchor time.Time) (time.Time, time.Time, error) {
	loc := anchor.Location()
	year, month, day := anchor.Date()

	var from, next time.Time
	switch filter {
	case Day:
		from = time.Date(year, month, day, 0, 0, 0, 0, loc)
		next = from.AddDate(0, 0, 1)
	case Week:
		offset := (int(anchor.Weekday()) + 6) % 7 // Monday = 0
		from = time.Date(year, month, day-offset, 0, 0, 0, 0, loc)
		next = from.AddDate(0, 0, 7)
	case Month:
		from = time.Date(year, month, 1, 0, 0, 0, 0, loc)
		next = from.AddDate(0, 1, 0)
	case Year:
		from = time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
		next = from.AddDate(1, 0, 0)
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown date filter %q", filter)
	}
	return from, next.Add(-time.Nanosecond), nil
}
