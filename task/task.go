package task

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/mo"

	"github.com/notetools/tasknote/dates"
	"github.com/notetools/tasknote/ledger"
	"github.com/notetools/tasknote/rule"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusOpen     Status = "open"
	StatusDone     Status = "done"
	StatusArchived Status = "archived"
)

// Task is the scheduling-relevant state of one task note.
//
// For a recurring task, Scheduled is a denormalized pointer to the next
// actionable occurrence and is owned by the scheduling engine: it is only
// written through Complete and SetRecurrence. For a non-recurring task it
// is set directly by the user and never touched here.
type Task struct {
	UID        string
	Title      string
	Status     Status
	Recurrence rule.Rule // zero Rule = non-recurring
	Scheduled  mo.Option[dates.Date]
	Due        mo.Option[dates.Date]
	Completed  ledger.Ledger
	Archived   bool
}

// New creates an open task with a fresh UID.
func New(title string) Task {
	return Task{
		UID:    uuid.NewString(),
		Title:  title,
		Status: StatusOpen,
	}
}

// IsRecurring reports whether the task carries a recurrence rule.
func (t Task) IsRecurring() bool {
	return t.Recurrence.IsRecurring()
}

// FromNote reads the mapped fields of a note's frontmatter into a Task.
// A missing field leaves the zero value; a malformed date is an error
// (*dates.DateFormatError underneath) so callers can surface it instead of
// silently scheduling on the wrong day.
func FromNote(n Note, m FieldMapping) (Task, error) {
	t := Task{Status: StatusOpen}

	if v, ok := n.Frontmatter[m.Key(FieldTitle)].(string); ok {
		t.Title = v
	}
	if v, ok := n.Frontmatter[m.Key(FieldStatus)].(string); ok && v != "" {
		t.Status = Status(v)
	}
	if v, ok := n.Frontmatter[m.Key(FieldArchived)].(bool); ok {
		t.Archived = v
	}
	if v, ok := n.Frontmatter[m.Key(FieldRecurrence)].(string); ok {
		t.Recurrence = rule.Parse(v)
	}

	if d, err := optionalDate(n.Frontmatter, m.Key(FieldScheduled)); err != nil {
		return Task{}, err
	} else {
		t.Scheduled = d
	}
	if d, err := optionalDate(n.Frontmatter, m.Key(FieldDue)); err != nil {
		return Task{}, err
	} else {
		t.Due = d
	}

	if raw, ok := n.Frontmatter[m.Key(FieldCompletedDates)]; ok {
		entries, err := stringList(raw)
		if err != nil {
			return Task{}, fmt.Errorf("field %s: %w", m.Key(FieldCompletedDates), err)
		}
		led, err := ledger.FromStrings(entries)
		if err != nil {
			return Task{}, fmt.Errorf("field %s: %w", m.Key(FieldCompletedDates), err)
		}
		t.Completed = led
	}

	return t, nil
}

// ApplyToNote writes the task's mapped fields back into the note's
// frontmatter, leaving unmapped keys alone. Absent optional fields are
// removed so stale dates cannot linger after a field is cleared.
func (t Task) ApplyToNote(n *Note, m FieldMapping) {
	if n.Frontmatter == nil {
		n.Frontmatter = map[string]any{}
	}

	n.Frontmatter[m.Key(FieldTitle)] = t.Title
	n.Frontmatter[m.Key(FieldStatus)] = string(t.Status)

	setOrDelete(n.Frontmatter, m.Key(FieldArchived), t.Archived, t.Archived)
	setOrDelete(n.Frontmatter, m.Key(FieldRecurrence), t.Recurrence.String(), t.IsRecurring())

	if d, ok := t.Scheduled.Get(); ok {
		n.Frontmatter[m.Key(FieldScheduled)] = d.String()
	} else {
		delete(n.Frontmatter, m.Key(FieldScheduled))
	}
	if d, ok := t.Due.Get(); ok {
		n.Frontmatter[m.Key(FieldDue)] = d.String()
	} else {
		delete(n.Frontmatter, m.Key(FieldDue))
	}

	if t.Completed.Len() > 0 {
		entries := t.Completed.Strings()
		values := make([]any, len(entries))
		for i, s := range entries {
			values[i] = s
		}
		n.Frontmatter[m.Key(FieldCompletedDates)] = values
	} else {
		delete(n.Frontmatter, m.Key(FieldCompletedDates))
	}
}

func optionalDate(fm map[string]any, key string) (mo.Option[dates.Date], error) {
	raw, ok := fm[key]
	if !ok || raw == nil {
		return mo.None[dates.Date](), nil
	}
	s, ok := raw.(string)
	if !ok {
		return mo.None[dates.Date](), fmt.Errorf("field %s: unexpected type %T", key, raw)
	}
	if s == "" {
		return mo.None[dates.Date](), nil
	}
	d, err := dates.Parse(s)
	if err != nil {
		return mo.None[dates.Date](), fmt.Errorf("field %s: %w", key, err)
	}
	return mo.Some(d), nil
}

func stringList(raw any) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected entry type %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unexpected type %T", raw)
	}
}

func setOrDelete(fm map[string]any, key string, value any, keep bool) {
	if keep {
		fm[key] = value
	} else {
		delete(fm, key)
	}
}
