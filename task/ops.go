package task

import (
	"errors"

	"github.com/samber/mo"

	"github.com/notetools/tasknote/dates"
	"github.com/notetools/tasknote/rule"
	"github.com/notetools/tasknote/schedule"
)

// ErrRecurringSchedule is returned when a caller tries to set the scheduled
// date of a recurring task directly; that pointer belongs to the engine.
var ErrRecurringSchedule = errors.New("scheduled date of a recurring task is computed from its rule")

// Complete toggles the completion of the occurrence on `on` and reports
// whether it was marked (true) or unmarked (false).
//
// For a recurring task the completion ledger is updated and the scheduled
// pointer re-resolved to the next uncompleted occurrence on or after `on`.
// When the rule is exhausted the pointer is left where it was. For a
// non-recurring task this simply flips the status.
func Complete(t Task, eng *schedule.Engine, on dates.Date) (Task, bool) {
	if !t.IsRecurring() {
		if t.Status == StatusDone {
			t.Status = StatusOpen
			return t, false
		}
		t.Status = StatusDone
		return t, true
	}

	led, added := t.Completed.Toggle(on)
	t.Completed = led
	if next, ok := eng.NextOccurrence(t.Recurrence, led, on).Get(); ok {
		t.Scheduled = mo.Some(next)
	}
	return t, added
}

// SetRecurrence replaces the task's rule from its text form. An anchor is
// synthesized from the current scheduled date (or `today`) when the text
// carries no DTSTART, and the scheduled pointer is re-resolved. This also
// covers the transition from non-recurring to recurring. Empty or
// unparseable text clears the rule and leaves the schedule alone.
func SetRecurrence(t Task, eng *schedule.Engine, text string, today dates.Date) Task {
	r := rule.Parse(text)
	if !r.IsRecurring() {
		t.Recurrence = rule.Rule{}
		return t
	}

	seed := t.Scheduled.OrElse(today)
	t.Recurrence = rule.EnsureAnchor(r, seed)
	if next, ok := eng.NextOccurrence(t.Recurrence, t.Completed, today).Get(); ok {
		t.Scheduled = mo.Some(next)
	}
	return t
}

// Reschedule sets the scheduled date of a non-recurring task. Recurring
// tasks refuse: their pointer is owned by the resolver.
func Reschedule(t Task, d dates.Date) (Task, error) {
	if t.IsRecurring() {
		return t, ErrRecurringSchedule
	}
	t.Scheduled = mo.Some(d)
	return t, nil
}

// Archive marks the task archived and closed.
func Archive(t Task) Task {
	t.Archived = true
	t.Status = StatusArchived
	return t
}
