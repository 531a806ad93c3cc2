// Package dates provides a canonical, timezone-proof representation of a
// calendar day. All recurrence computation in this module traffics in
// dates.Date values; a Date can only be built through the UTC-normalizing
// constructors here, so a local-time-formatted string can never reach the
// scheduling engine.
package dates

import (
	"fmt"
	"time"
)

// Layout is the canonical storage format: a UTC calendar day.
const Layout = "2006-01-02"

// parseLayouts are accepted by Parse, tried in order. Instants carrying a
// zone offset are converted to UTC before the calendar fields are read.
var parseLayouts = []string{
	Layout,
	"20060102",
	"20060102T150405Z",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// Date is a single calendar day, anchored to the UTC calendar. The zero
// value is "no date"; use IsZero to test for it.
type Date struct {
	year  int
	month time.Month
	day   int
}

// DateFormatError reports input that could not be interpreted as a calendar
// date. It is never produced for dates that merely fall outside an expected
// range; only for text that does not parse at all.
type DateFormatError struct {
	Input string
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("malformed date %q: want %s", e.Input, Layout)
}

// New builds a Date from calendar fields. Out-of-range fields are
// normalized the same way time.Date normalizes them (e.g. January 32
// becomes February 1).
func New(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Date{year: t.Year(), month: t.Month(), day: t.Day()}
}

// FromTime reads the UTC calendar fields of an instant. The instant's zone
// never influences the result beyond the UTC conversion itself.
func FromTime(t time.Time) Date {
	u := t.UTC()
	return Date{year: u.Year(), month: u.Month(), day: u.Day()}
}

// Parse interprets s as a calendar date. It accepts the canonical
// YYYY-MM-DD form plus the iCalendar basic forms and RFC 3339. Anything
// else returns *DateFormatError; malformed input is never coerced to
// "today".
func Parse(s string) (Date, error) {
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return FromTime(t), nil
		}
	}
	return Date{}, &DateFormatError{Input: s}
}

// MustParse is Parse for fixtures and tests; it panics on malformed input.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// IsZero reports whether d is the zero "no date" value.
func (d Date) IsZero() bool {
	return d == Date{}
}

// String renders the canonical YYYY-MM-DD form; the zero Date renders as
// the empty string.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(Layout)
}

// Time returns the date anchored at UTC midnight.
func (d Date) Time() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

// Year returns the calendar year.
func (d Date) Year() int { return d.year }

// Month returns the calendar month.
func (d Date) Month() time.Month { return d.month }

// Day returns the day of month, 1-based.
func (d Date) Day() int { return d.day }

// Weekday is computed from UTC fields (Sunday = 0).
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// AddDays returns the date n days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return FromTime(d.Time().AddDate(0, 0, n))
}

// AddMonths returns the date n months later, normalized the way
// time.Time.AddDate normalizes overflow (Jan 31 + 1 month = Mar 3).
func (d Date) AddMonths(n int) Date {
	return FromTime(d.Time().AddDate(0, n, 0))
}

// AddYears returns the date n years later, with the same overflow
// normalization (Feb 29 + 1 year = Mar 1).
func (d Date) AddYears(n int) Date {
	return FromTime(d.Time().AddDate(n, 0, 0))
}

// StartOfMonth returns the first day of the month containing d.
func (d Date) StartOfMonth() Date {
	return Date{year: d.year, month: d.month, day: 1}
}

// Before reports whether d falls strictly before o.
func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }

// After reports whether d falls strictly after o.
func (d Date) After(o Date) bool { return d.Compare(o) > 0 }

// Equal reports whether d and o are the same calendar day.
func (d Date) Equal(o Date) bool { return d == o }

// Compare orders two dates chronologically: -1, 0 or +1.
func (d Date) Compare(o Date) int {
	switch {
	case d.year != o.year:
		return sign(d.year - o.year)
	case d.month != o.month:
		return sign(int(d.month) - int(o.month))
	default:
		return sign(d.day - o.day)
	}
}

// DaysSince returns the number of calendar days from o to d (negative when
// d precedes o).
func (d Date) DaysSince(o Date) int {
	return int(d.Time().Sub(o.Time()) / (24 * time.Hour))
}

// DaysInMonth returns the length of the month containing d.
func (d Date) DaysInMonth() int {
	return DaysInMonth(d.year, d.month)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
