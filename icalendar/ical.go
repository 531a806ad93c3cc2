// Package icalendar bridges tasks to iCalendar, so recurring tasks can be
// exchanged with calendar clients: each task becomes a VTODO whose RRULE,
// DTSTART and EXDATE properties carry the recurrence rule and the
// completion ledger.
package icalendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/notetools/tasknote/dates"
	"github.com/notetools/tasknote/ledger"
	"github.com/notetools/tasknote/rule"
	"github.com/notetools/tasknote/task"
)

const prodID = "-//tasknote//Task Export//EN"

const icalDateLayout = "20060102"

// Export renders tasks as a VCALENDAR of VTODO components. stamp becomes
// each component's DTSTAMP; the caller supplies it from its canonical "now"
// resolution point. Tasks whose rule cannot be expressed as a valid RRULE
// are exported without one.
func Export(tasks []task.Task, stamp time.Time) (*ical.Calendar, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, prodID)
	cal.Props.SetText(ical.PropVersion, "2.0")

	for _, t := range tasks {
		comp, err := exportTask(t, stamp)
		if err != nil {
			return nil, fmt.Errorf("exporting task %s: %w", t.UID, err)
		}
		cal.Children = append(cal.Children, comp)
	}
	return cal, nil
}

func exportTask(t task.Task, stamp time.Time) (*ical.Component, error) {
	if t.UID == "" {
		return nil, fmt.Errorf("task has no UID")
	}

	comp := &ical.Component{
		Name:  ical.CompToDo,
		Props: make(ical.Props),
	}
	comp.Props.SetText(ical.PropUID, t.UID)
	comp.Props.SetText(ical.PropSummary, t.Title)
	comp.Props.SetText(ical.PropStatus, statusToken(t.Status))
	comp.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())

	if anchor, ok := t.Recurrence.Anchor.Get(); ok {
		setDateProp(comp, ical.PropDateTimeStart, anchor)
	} else if scheduled, ok := t.Scheduled.Get(); ok {
		setDateProp(comp, ical.PropDateTimeStart, scheduled)
	}

	if t.IsRecurring() {
		// Validate through the reference RRULE implementation before
		// emitting; calendar clients are strict about what they accept.
		if _, err := t.Recurrence.RRule(); err != nil {
			return nil, fmt.Errorf("rule %q: %w", t.Recurrence.String(), err)
		}
		comp.Props.SetText(ical.PropRecurrenceRule, t.Recurrence.BodyString())
	}

	if completed := t.Completed.Dates(); len(completed) > 0 {
		values := make([]string, len(completed))
		for i, d := range completed {
			values[i] = d.Time().Format(icalDateLayout)
		}
		prop := ical.NewProp(ical.PropExceptionDates)
		prop.Params.Set(ical.ParamValue, "DATE")
		prop.Value = strings.Join(values, ",")
		comp.Props.Add(prop)
	}

	return comp, nil
}

// ImportTask reads a VTODO component back into a task: RRULE plus DTSTART
// become the recurrence rule, EXDATE entries become the completion ledger.
func ImportTask(comp *ical.Component) (task.Task, error) {
	if comp.Name != ical.CompToDo {
		return task.Task{}, fmt.Errorf("unexpected component %s", comp.Name)
	}

	t := task.Task{Status: task.StatusOpen}
	if prop := comp.Props.Get(ical.PropUID); prop != nil {
		t.UID = prop.Value
	}
	if prop := comp.Props.Get(ical.PropSummary); prop != nil {
		t.Title = prop.Value
	}
	if prop := comp.Props.Get(ical.PropStatus); prop != nil {
		t.Status = statusFromToken(prop.Value)
	}

	ruleText := ""
	if prop := comp.Props.Get(ical.PropRecurrenceRule); prop != nil {
		ruleText = prop.Value
	}
	if prop := comp.Props.Get(ical.PropDateTimeStart); prop != nil && prop.Value != "" {
		if ruleText != "" {
			ruleText = fmt.Sprintf("%s;DTSTART:%s", ruleText, prop.Value)
		}
	}
	if ruleText != "" {
		t.Recurrence = rule.Parse(ruleText)
	}

	if prop := comp.Props.Get(ical.PropExceptionDates); prop != nil && prop.Value != "" {
		led, err := exdatesToLedger(prop.Value)
		if err != nil {
			return task.Task{}, fmt.Errorf("EXDATE: %w", err)
		}
		t.Completed = led
	}

	return t, nil
}

func exdatesToLedger(value string) (ledger.Ledger, error) {
	var entries []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			entries = append(entries, part)
		}
	}
	return ledger.FromStrings(entries)
}

func setDateProp(comp *ical.Component, name string, d dates.Date) {
	prop := ical.NewProp(name)
	prop.Params.Set(ical.ParamValue, "DATE")
	prop.Value = d.Time().Format(icalDateLayout)
	comp.Props.Add(prop)
}

func statusToken(s task.Status) string {
	switch s {
	case task.StatusDone:
		return "COMPLETED"
	case task.StatusArchived:
		return "CANCELLED"
	default:
		return "NEEDS-ACTION"
	}
}

func statusFromToken(token string) task.Status {
	switch strings.ToUpper(token) {
	case "COMPLETED":
		return task.StatusDone
	case "CANCELLED":
		return task.StatusArchived
	default:
		return task.StatusOpen
	}
}
