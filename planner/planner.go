// Package planner is the service layer over the scheduling core: it reads
// tasks from the store, answers the calendar's "what is due / what is
// completed" queries, and applies completion toggles and rule edits with
// read-modify-write against the freshest stored copy.
package planner

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/samber/mo"

	"github.com/notetools/tasknote/dates"
	"github.com/notetools/tasknote/schedule"
	"github.com/notetools/tasknote/store"
	"github.com/notetools/tasknote/task"
)

// Planner coordinates the task store and the recurrence engine.
type Planner struct {
	store  store.Store
	engine *schedule.Engine
	logger *slog.Logger
}

// New creates a planner. A nil logger discards diagnostics.
func New(st store.Store, eng *schedule.Engine, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Planner{store: st, engine: eng, logger: logger}
}

// Agenda is what the calendar needs to highlight one task over a visible
// date range: the occurrences due in the range and the completions recorded
// in it.
type Agenda struct {
	Due       []dates.Date
	Completed []dates.Date
}

// DueOn returns the tasks actionable on the given day: recurring tasks with
// an occurrence that day, plus open non-recurring tasks scheduled for it.
func (p *Planner) DueOn(ctx context.Context, day dates.Date) ([]task.Task, error) {
	tasks, err := p.store.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}

	var due []task.Task
	for _, t := range tasks {
		if t.Archived {
			continue
		}
		if t.IsRecurring() {
			if p.engine.IsDue(t.Recurrence, day) {
				due = append(due, t)
			}
			continue
		}
		if scheduled, ok := t.Scheduled.Get(); ok && scheduled.Equal(day) && t.Status == task.StatusOpen {
			due = append(due, t)
		}
	}
	return due, nil
}

// AgendaFor computes the agenda of one task over [start, end].
func (p *Planner) AgendaFor(ctx context.Context, uid string, start, end dates.Date) (Agenda, error) {
	t, err := p.store.GetTask(ctx, uid)
	if err != nil {
		return Agenda{}, fmt.Errorf("loading task %s: %w", uid, err)
	}

	var agenda Agenda
	if t.IsRecurring() {
		agenda.Due = p.engine.Generate(t.Recurrence, start, end)
	} else if scheduled, ok := t.Scheduled.Get(); ok {
		if !scheduled.Before(start) && !scheduled.After(end) {
			agenda.Due = []dates.Date{scheduled}
		}
	}
	for _, d := range t.Completed.Dates() {
		if !d.Before(start) && !d.After(end) {
			agenda.Completed = append(agenda.Completed, d)
		}
	}
	return agenda, nil
}

// Complete toggles the completion of one occurrence and persists the
// result. The task is re-read first so the toggle applies to the freshest
// stored state. Returns the updated task and whether the occurrence was
// marked complete.
func (p *Planner) Complete(ctx context.Context, uid string, on dates.Date) (task.Task, bool, error) {
	t, err := p.store.GetTask(ctx, uid)
	if err != nil {
		return task.Task{}, false, fmt.Errorf("loading task %s: %w", uid, err)
	}

	updated, added := task.Complete(*t, p.engine, on)
	if err := p.store.SaveTask(ctx, &updated); err != nil {
		return task.Task{}, false, fmt.Errorf("saving task %s: %w", uid, err)
	}

	p.logger.Info("toggled completion",
		"uid", uid,
		"date", on.String(),
		"completed", added,
		"scheduled", updated.Scheduled.OrEmpty().String())
	return updated, added, nil
}

// SetRecurrence replaces a task's recurrence rule from text and persists
// the result, dropping any cached expansions of the old rule.
func (p *Planner) SetRecurrence(ctx context.Context, uid, text string, today dates.Date) (task.Task, error) {
	t, err := p.store.GetTask(ctx, uid)
	if err != nil {
		return task.Task{}, fmt.Errorf("loading task %s: %w", uid, err)
	}

	old := t.Recurrence
	updated := task.SetRecurrence(*t, p.engine, text, today)
	if err := p.store.SaveTask(ctx, &updated); err != nil {
		return task.Task{}, fmt.Errorf("saving task %s: %w", uid, err)
	}

	if old.IsRecurring() && !old.Equal(updated.Recurrence) {
		p.engine.InvalidateRule(old)
	}
	p.logger.Info("updated recurrence",
		"uid", uid,
		"rule", updated.Recurrence.String(),
		"scheduled", updated.Scheduled.OrEmpty().String())
	return updated, nil
}

// Upcoming returns the next uncompleted occurrence of a recurring task on
// or after `from`, or None for non-recurring or exhausted tasks.
func (p *Planner) Upcoming(ctx context.Context, uid string, from dates.Date) (mo.Option[dates.Date], error) {
	t, err := p.store.GetTask(ctx, uid)
	if err != nil {
		return mo.None[dates.Date](), fmt.Errorf("loading task %s: %w", uid, err)
	}
	if !t.IsRecurring() {
		return mo.None[dates.Date](), nil
	}
	return p.engine.NextOccurrence(t.Recurrence, t.Completed, from), nil
}
