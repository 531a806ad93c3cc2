// Package rule models the recurrence pattern attached to a task, using a
// subset of the iCalendar RRULE grammar extended with an inline DTSTART
// anchor, e.g. "FREQ=WEEKLY;BYDAY=TU;DTSTART:20250101".
package rule

import (
	"slices"
	"time"

	"github.com/samber/mo"
	"github.com/teambition/rrule-go"

	"github.com/notetools/tasknote/dates"
)

// Frequency is the base period of a recurrence rule.
type Frequency int

const (
	// None means the task does not recur.
	None Frequency = iota
	Daily
	Weekly
	Monthly
	Yearly
)

// String returns the RRULE token for the frequency.
func (f Frequency) String() string {
	switch f {
	case Daily:
		return "DAILY"
	case Weekly:
		return "WEEKLY"
	case Monthly:
		return "MONTHLY"
	case Yearly:
		return "YEARLY"
	default:
		return "NONE"
	}
}

// WeekdaySpec is one BYDAY entry: a weekday with an optional ordinal
// position within the month ("2TU" = second Tuesday, "-1FR" = last Friday,
// ordinal 0 = every such weekday).
type WeekdaySpec struct {
	Day     time.Weekday
	Ordinal int
}

// Rule is a value type describing a recurrence pattern. The zero Rule means
// "no recurrence". Fields follow the RRULE grammar; Anchor is the DTSTART
// date that seeds phase for rules without explicit BY* clauses.
type Rule struct {
	Freq       Frequency
	Interval   int // every Nth period; 0 is treated as 1
	ByDay      []WeekdaySpec
	ByMonthDay []int // 1..31, negative counts from month end
	ByMonth    []time.Month
	BySetPos   []int // combined with ByDay, e.g. 1 = first matching day of month

	Anchor mo.Option[dates.Date]

	// Boundary: at most one of Until and Count is set.
	Until mo.Option[dates.Date]
	Count int
}

// IsRecurring reports whether the rule describes an actual recurrence.
func (r Rule) IsRecurring() bool {
	return r.Freq != None
}

// EffectiveInterval returns the interval with the default applied.
func (r Rule) EffectiveInterval() int {
	if r.Interval < 1 {
		return 1
	}
	return r.Interval
}

// Equal compares two rules field-wise, treating an unset interval as 1 and
// nil and empty BY* sets as the same.
func (r Rule) Equal(o Rule) bool {
	return r.Freq == o.Freq &&
		r.EffectiveInterval() == o.EffectiveInterval() &&
		slices.Equal(r.ByDay, o.ByDay) &&
		slices.Equal(r.ByMonthDay, o.ByMonthDay) &&
		slices.Equal(r.ByMonth, o.ByMonth) &&
		slices.Equal(r.BySetPos, o.BySetPos) &&
		r.Anchor.OrEmpty() == o.Anchor.OrEmpty() &&
		r.Until.OrEmpty() == o.Until.OrEmpty() &&
		r.Count == o.Count
}

// EnsureAnchor returns the rule with an anchor guaranteed to be present,
// synthesizing one from the task's current scheduled date when the rule
// text carried no DTSTART. Evaluation requires an anchor, because a bare
// frequency ("every week") binds its phase to the anchor's weekday.
func EnsureAnchor(r Rule, scheduled dates.Date) Rule {
	if r.Anchor.IsAbsent() {
		r.Anchor = mo.Some(scheduled)
	}
	return r
}

// RRule converts the rule into a teambition/rrule-go rule. Used to validate
// rules before handing them to iCalendar consumers and as a reference
// implementation in tests.
func (r Rule) RRule() (*rrule.RRule, error) {
	opt := rrule.ROption{
		Interval: r.EffectiveInterval(),
		Count:    r.Count,
		Bysetpos: slices.Clone(r.BySetPos),
	}
	switch r.Freq {
	case Daily:
		opt.Freq = rrule.DAILY
	case Weekly:
		opt.Freq = rrule.WEEKLY
	case Monthly:
		opt.Freq = rrule.MONTHLY
	case Yearly:
		opt.Freq = rrule.YEARLY
	}
	if anchor, ok := r.Anchor.Get(); ok {
		opt.Dtstart = anchor.Time()
	}
	if until, ok := r.Until.Get(); ok {
		opt.Until = until.Time()
	}
	for _, spec := range r.ByDay {
		wd := rruleWeekdays[spec.Day]
		if spec.Ordinal != 0 {
			wd = wd.Nth(spec.Ordinal)
		}
		opt.Byweekday = append(opt.Byweekday, wd)
	}
	opt.Bymonthday = slices.Clone(r.ByMonthDay)
	for _, m := range r.ByMonth {
		opt.Bymonth = append(opt.Bymonth, int(m))
	}
	return rrule.NewRRule(opt)
}

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}
