package schedule

import (
	"slices"
	"time"

	"github.com/notetools/tasknote/dates"
	"github.com/notetools/tasknote/rule"
)

// matchesPattern decides whether d matches the rule's recurrence pattern,
// ignoring COUNT/UNTIL boundaries. Callers guarantee d is on or after the
// anchor. Both the evaluator and the generator go through this predicate,
// which is what makes range expansion equivalent to filtering every day of
// the range.
func matchesPattern(r rule.Rule, anchor, d dates.Date) bool {
	interval := r.EffectiveInterval()
	switch r.Freq {
	case rule.Daily:
		return d.DaysSince(anchor)%interval == 0

	case rule.Weekly:
		// Phase is whole weeks elapsed since the anchor, not calendar weeks.
		if (d.DaysSince(anchor)/7)%interval != 0 {
			return false
		}
		if len(r.ByDay) == 0 {
			return d.Weekday() == anchor.Weekday()
		}
		for _, spec := range r.ByDay {
			if spec.Day == d.Weekday() {
				return true
			}
		}
		return false

	case rule.Monthly:
		if monthsSince(anchor, d)%interval != 0 {
			return false
		}
		if len(r.ByDay) > 0 {
			return matchesMonthlyWeekday(r, d)
		}
		if len(r.ByMonthDay) > 0 {
			return matchesMonthDay(r.ByMonthDay, d)
		}
		return d.Day() == anchor.Day()

	case rule.Yearly:
		if (d.Year()-anchor.Year())%interval != 0 {
			return false
		}
		if len(r.ByMonth) > 0 {
			if !slices.Contains(r.ByMonth, d.Month()) {
				return false
			}
		} else if d.Month() != anchor.Month() {
			return false
		}
		if len(r.ByMonthDay) > 0 {
			return matchesMonthDay(r.ByMonthDay, d)
		}
		return d.Day() == anchor.Day()
	}
	return false
}

// matchesMonthDay checks BYMONTHDAY values; negatives count from the month
// end (-1 = last day).
func matchesMonthDay(monthDays []int, d dates.Date) bool {
	for _, n := range monthDays {
		if n > 0 && d.Day() == n {
			return true
		}
		if n < 0 && d.Day() == d.DaysInMonth()+1+n {
			return true
		}
	}
	return false
}

// matchesMonthlyWeekday handles MONTHLY rules positioned by weekday, either
// through BYDAY ordinals ("2TU") or through BYSETPOS over the expanded
// BYDAY set ("first Monday or Wednesday").
func matchesMonthlyWeekday(r rule.Rule, d dates.Date) bool {
	for _, spec := range r.ByDay {
		if spec.Day != d.Weekday() {
			continue
		}
		if spec.Ordinal != 0 {
			if matchesOrdinal(spec.Ordinal, d) {
				return true
			}
			continue
		}
		if len(r.BySetPos) == 0 {
			return true
		}
		pos, total := setPosition(r.ByDay, d)
		for _, sp := range r.BySetPos {
			if sp == pos || sp == pos-total-1 {
				return true
			}
		}
	}
	return false
}

// matchesOrdinal reports whether d is the ord-th occurrence of its weekday
// in its month (negative ord counts from the month end).
func matchesOrdinal(ord int, d dates.Date) bool {
	if ord > 0 {
		return (d.Day()-1)/7+1 == ord
	}
	return (d.DaysInMonth()-d.Day())/7+1 == -ord
}

// setPosition returns d's 1-based position among the days of its month
// whose weekday appears in specs, plus the total count of such days.
func setPosition(specs []rule.WeekdaySpec, d dates.Date) (pos, total int) {
	for day := 1; day <= d.DaysInMonth(); day++ {
		c := dates.New(d.Year(), d.Month(), day)
		matched := false
		for _, spec := range specs {
			if spec.Day == c.Weekday() {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		total++
		if day == d.Day() {
			pos = total
		}
	}
	return pos, total
}

// walkOccurrences visits every pattern match of r between the anchor and
// stop in ascending order, invoking fn until it returns false. The walk
// steps at the rule's period size; `from` is a fast-forward hint and may
// cause up to one period of matches before it to be visited, so callers
// that index occurrences must pass from == anchor.
func walkOccurrences(r rule.Rule, anchor, from, stop dates.Date, fn func(dates.Date) bool) {
	if stop.Before(anchor) {
		return
	}
	if from.Before(anchor) {
		from = anchor
	}
	interval := r.EffectiveInterval()

	switch r.Freq {
	case rule.Daily:
		d := anchor
		if days := from.DaysSince(anchor); days > 0 {
			d = anchor.AddDays(days / interval * interval)
		}
		for !d.After(stop) {
			if !fn(d) {
				return
			}
			d = d.AddDays(interval)
		}

	case rule.Weekly:
		blockLen := 7 * interval
		k := 0
		if days := from.DaysSince(anchor); days > 0 {
			k = days / blockLen
		}
		for {
			blockStart := anchor.AddDays(k * blockLen)
			if blockStart.After(stop) {
				return
			}
			for i := 0; i < 7; i++ {
				d := blockStart.AddDays(i)
				if d.After(stop) {
					break
				}
				if matchesPattern(r, anchor, d) && !fn(d) {
					return
				}
			}
			k++
		}

	case rule.Monthly:
		k := 0
		if m := monthsSince(anchor, from); m > 0 {
			k = m / interval
		}
		for {
			first := dates.New(anchor.Year(), anchor.Month()+time.Month(k*interval), 1)
			if first.After(stop) {
				return
			}
			if !walkMonth(r, anchor, first, stop, fn) {
				return
			}
			k++
		}

	case rule.Yearly:
		months := yearlyMonths(r, anchor)
		k := 0
		if y := from.Year() - anchor.Year(); y > 0 {
			k = y / interval
		}
		for {
			year := anchor.Year() + k*interval
			if dates.New(year, time.January, 1).After(stop) {
				return
			}
			for _, m := range months {
				if !walkMonth(r, anchor, dates.New(year, m, 1), stop, fn) {
					return
				}
			}
			k++
		}
	}
}

// walkMonth visits pattern matches within the month starting at first,
// returning false when fn stopped the walk.
func walkMonth(r rule.Rule, anchor, first, stop dates.Date, fn func(dates.Date) bool) bool {
	for day := 1; day <= first.DaysInMonth(); day++ {
		d := dates.New(first.Year(), first.Month(), day)
		if d.Before(anchor) {
			continue
		}
		if d.After(stop) {
			return true
		}
		if matchesPattern(r, anchor, d) && !fn(d) {
			return false
		}
	}
	return true
}

// occurrenceIndex returns the 1-based position of candidate among the
// rule's pattern matches, counting forward from the anchor. candidate must
// itself be a pattern match.
func occurrenceIndex(r rule.Rule, anchor, candidate dates.Date) int {
	idx := 0
	walkOccurrences(r, anchor, anchor, candidate, func(dates.Date) bool {
		idx++
		return true
	})
	return idx
}

func monthsSince(a, b dates.Date) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

func yearlyMonths(r rule.Rule, anchor dates.Date) []time.Month {
	if len(r.ByMonth) == 0 {
		return []time.Month{anchor.Month()}
	}
	months := slices.Clone(r.ByMonth)
	slices.Sort(months)
	return slices.Compact(months)
}
