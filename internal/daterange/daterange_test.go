package daterange_test

import (
	"testing"
	"time"

	"minimarket/internal/daterange"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseFilter(t *testing.T) {
	for raw, want := range map[string]daterange.Filter{
		"day":    daterange.Day,
		"Week":   daterange.Week,
		" month": daterange.Month,
		"YEAR":   daterange.Year,
	} {
		got, err := daterange.ParseFilter(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got)
	}

	_, err := daterange.ParseFilter("quarter")
	require.Error(t, err)
}

func TestResolveDay(t *testing.T) {
	anchor := time.Date(2026, time.August, 31, 14, 30, 12, 0, time.UTC)
	from, to, err := daterange.Resolve(daterange.Day, anchor)
	require.NoError(t, err)
	assert.Equal(t, date(2026, time.August, 31), from)
	assert.Equal(t, date(2026, time.September, 1).Add(-time.Nanosecond), to)
}

func TestResolveWeekRunsMondayToSunday(t *testing.T) {
	// 2026-08-31 is a Monday.
	monday := date(2026, time.August, 31)

	from, to, err := daterange.Resolve(daterange.Week, monday)
	require.NoError(t, err)
	assert.Equal(t, monday, from)
	assert.Equal(t, date(2026, time.September, 7).Add(-time.Nanosecond), to)

	// A Sunday resolves back to the same Monday, across the month edge.
	sunday := date(2026, time.September, 6)
	from, to, err = daterange.Resolve(daterange.Week, sunday)
	require.NoError(t, err)
	assert.Equal(t, monday, from)
	assert.Equal(t, date(2026, time.September, 7).Add(-time.Nanosecond), to)
}

func TestResolveMonth(t *testing.T) {
	from, to, err := daterange.Resolve(daterange.Month, date(2024, time.February, 15))
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.February, 1), from)
	// 2024 is a leap year; the month ends on the 29th.
	assert.Equal(t, date(2024, time.March, 1).Add(-time.Nanosecond), to)
	assert.Equal(t, 29, to.Day())
}

func TestResolveYear(t *testing.T) {
	from, to, err := daterange.Resolve(daterange.Year, date(2026, time.June, 10))
	require.NoError(t, err)
	assert.Equal(t, date(2026, time.January, 1), from)
	assert.Equal(t, date(2027, time.January, 1).Add(-time.Nanosecond), to)
}

func TestResolveKeepsLocation(t *testing.T) {
	loc := time.FixedZone("UTC-4", -4*3600)
	anchor := time.Date(2026, time.March, 3, 23, 50, 0, 0, loc)
	from, to, err := daterange.Resolve(daterange.Day, anchor)
	require.NoError(t, err)
	assert.Equal(t, loc, from.Location())
	assert.Equal(t, 3, from.Day())
	assert.Equal(t, 3, to.Day())
}

func TestResolveUnknownFilter(t *testing.T) {
	_, _, err := daterange.Resolve(daterange.Filter("decade"), date(2026, time.January, 1))
	require.Error(t, err)
}
