package planner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/notetools/tasknote/dates"
	"github.com/notetools/tasknote/schedule"
	"github.com/notetools/tasknote/store"
	"github.com/notetools/tasknote/store/memory"
	"github.com/notetools/tasknote/task"
)

func d(s string) dates.Date { return dates.MustParse(s) }

func newTestPlanner(t *testing.T) (*Planner, *memory.Store) {
	t.Helper()
	eng := schedule.NewWithConfig(schedule.DisabledCacheConfig)
	t.Cleanup(eng.Close)
	st := memory.New()
	return New(st, eng, nil), st
}

func seedRecurring(t *testing.T, st *memory.Store, title, ruleText, today string) task.Task {
	t.Helper()
	eng := schedule.NewWithConfig(schedule.DisabledCacheConfig)
	t.Cleanup(eng.Close)

	tk := task.New(title)
	tk = task.SetRecurrence(tk, eng, ruleText, d(today))
	require.NoError(t, st.SaveTask(context.Background(), &tk))
	return tk
}

func TestDueOn(t *testing.T) {
	p, st := newTestPlanner(t)
	ctx := context.Background()

	seedRecurring(t, st, "weekly review", "FREQ=WEEKLY;BYDAY=FR;DTSTART:20250110", "2025-01-10")

	oneOff := task.New("one-off")
	var err error
	oneOff, err = task.Reschedule(oneOff, d("2025-01-10"))
	require.NoError(t, err)
	require.NoError(t, st.SaveTask(ctx, &oneOff))

	archived := task.Archive(task.New("archived"))
	require.NoError(t, st.SaveTask(ctx, &archived))

	due, err := p.DueOn(ctx, d("2025-01-10"))
	require.NoError(t, err)
	assert.Len(t, due, 2, "recurring occurrence plus scheduled one-off")

	due, err = p.DueOn(ctx, d("2025-01-11"))
	require.NoError(t, err)
	assert.Empty(t, due)

	due, err = p.DueOn(ctx, d("2025-01-17"))
	require.NoError(t, err)
	assert.Len(t, due, 1, "next friday only the recurring task")
}

func TestAgendaFor(t *testing.T) {
	p, st := newTestPlanner(t)
	ctx := context.Background()

	tk := seedRecurring(t, st, "weekly review", "FREQ=WEEKLY;BYDAY=FR;DTSTART:20250110", "2025-01-10")

	_, _, err := p.Complete(ctx, tk.UID, d("2025-01-10"))
	require.NoError(t, err)

	agenda, err := p.AgendaFor(ctx, tk.UID, d("2025-01-01"), d("2025-01-31"))
	require.NoError(t, err)

	assert.Len(t, agenda.Due, 4, "fridays in january")
	require.Len(t, agenda.Completed, 1)
	assert.Equal(t, "2025-01-10", agenda.Completed[0].String())
}

func TestComplete_PersistsAndAdvances(t *testing.T) {
	p, st := newTestPlanner(t)
	ctx := context.Background()

	tk := seedRecurring(t, st, "weekly review", "FREQ=WEEKLY;BYDAY=FR;DTSTART:20250110", "2025-01-10")

	updated, added, err := p.Complete(ctx, tk.UID, d("2025-01-10"))
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, "2025-01-17", updated.Scheduled.OrEmpty().String())

	// The store holds the new state, not just the returned copy.
	stored, err := st.GetTask(ctx, tk.UID)
	require.NoError(t, err)
	assert.True(t, stored.Completed.Contains(d("2025-01-10")))
	assert.Equal(t, "2025-01-17", stored.Scheduled.OrEmpty().String())
}

func TestComplete_UnknownTask(t *testing.T) {
	eng := schedule.NewWithConfig(schedule.DisabledCacheConfig)
	t.Cleanup(eng.Close)

	mockStore := new(store.MockStore)
	mockStore.On("GetTask", mock.Anything, "missing").Return(nil, store.ErrTaskNotFound)

	p := New(mockStore, eng, nil)
	_, _, err := p.Complete(context.Background(), "missing", d("2025-01-10"))
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	mockStore.AssertExpectations(t)
}

func TestSetRecurrence_TransitionsTask(t *testing.T) {
	p, st := newTestPlanner(t)
	ctx := context.Background()

	tk := task.New("standup notes")
	var err error
	tk, err = task.Reschedule(tk, d("2025-01-07"))
	require.NoError(t, err)
	require.NoError(t, st.SaveTask(ctx, &tk))

	updated, err := p.SetRecurrence(ctx, tk.UID, "FREQ=WEEKLY", d("2025-01-02"))
	require.NoError(t, err)
	assert.True(t, updated.IsRecurring())
	assert.Equal(t, "2025-01-07", updated.Recurrence.Anchor.OrEmpty().String())

	stored, err := st.GetTask(ctx, tk.UID)
	require.NoError(t, err)
	assert.True(t, stored.IsRecurring())
}

func TestUpcoming(t *testing.T) {
	p, st := newTestPlanner(t)
	ctx := context.Background()

	tk := seedRecurring(t, st, "monthly rent", "FREQ=MONTHLY;BYMONTHDAY=1;DTSTART:20250101", "2025-01-01")

	next, err := p.Upcoming(ctx, tk.UID, d("2025-03-15"))
	require.NoError(t, err)
	assert.Equal(t, "2025-04-01", next.OrEmpty().String())

	oneOff := task.New("one-off")
	require.NoError(t, st.SaveTask(ctx, &oneOff))
	next, err = p.Upcoming(ctx, oneOff.UID, d("2025-03-15"))
	require.NoError(t, err)
	assert.True(t, next.IsAbsent())
}
