// Package ledger records which occurrences of a recurring task have been
// marked complete. The ledger is a historical record independent of the
// task's current rule: entries that stop matching after a rule edit are
// kept, never pruned.
package ledger

import (
	"slices"

	"github.com/notetools/tasknote/dates"
)

// Ledger is a set of completed occurrence dates. The zero value is an empty
// ledger ready for use. All mutating operations return a new Ledger and
// leave the receiver untouched, so concurrent toggles on different copies
// never interfere.
type Ledger struct {
	dates map[dates.Date]struct{}
}

// New returns an empty ledger.
func New() Ledger {
	return Ledger{}
}

// FromStrings builds a ledger from stored canonical date strings. A
// malformed entry aborts the whole load with *dates.DateFormatError.
func FromStrings(entries []string) (Ledger, error) {
	l := Ledger{dates: make(map[dates.Date]struct{}, len(entries))}
	for _, s := range entries {
		d, err := dates.Parse(s)
		if err != nil {
			return Ledger{}, err
		}
		l.dates[d] = struct{}{}
	}
	return l, nil
}

// Len returns the number of completed dates.
func (l Ledger) Len() int {
	return len(l.dates)
}

// Contains reports whether the occurrence on d has been completed.
func (l Ledger) Contains(d dates.Date) bool {
	_, ok := l.dates[d]
	return ok
}

// Add returns a ledger with d recorded. Adding a present date is a no-op.
func (l Ledger) Add(d dates.Date) Ledger {
	if l.Contains(d) {
		return l
	}
	next := l.clone(1)
	next.dates[d] = struct{}{}
	return next
}

// Remove returns a ledger without d. Removing an absent date is a no-op.
func (l Ledger) Remove(d dates.Date) Ledger {
	if !l.Contains(d) {
		return l
	}
	next := l.clone(0)
	delete(next.dates, d)
	return next
}

// Toggle flips the completion state of d and reports whether the date was
// added (true) or removed (false). Toggling twice restores the original
// set.
func (l Ledger) Toggle(d dates.Date) (Ledger, bool) {
	if l.Contains(d) {
		return l.Remove(d), false
	}
	return l.Add(d), true
}

// Dates returns the completed dates in ascending order.
func (l Ledger) Dates() []dates.Date {
	out := make([]dates.Date, 0, len(l.dates))
	for d := range l.dates {
		out = append(out, d)
	}
	slices.SortFunc(out, dates.Date.Compare)
	return out
}

// Strings returns the completed dates as sorted canonical strings, the form
// persisted in frontmatter.
func (l Ledger) Strings() []string {
	ds := l.Dates()
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.String()
	}
	return out
}

// Clone returns an independent copy of the ledger.
func (l Ledger) Clone() Ledger {
	return l.clone(0)
}

func (l Ledger) clone(extra int) Ledger {
	next := Ledger{dates: make(map[dates.Date]struct{}, len(l.dates)+extra)}
	for d := range l.dates {
		next.dates[d] = struct{}{}
	}
	return next
}
