package rule

import (
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notetools/tasknote/dates"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected Rule
	}{
		{
			name: "weekly with byday and anchor",
			text: "FREQ=WEEKLY;BYDAY=TU;DTSTART:20250101",
			expected: Rule{
				Freq:   Weekly,
				ByDay:  []WeekdaySpec{{Day: time.Tuesday}},
				Anchor: mo.Some(dates.MustParse("2025-01-01")),
			},
		},
		{
			name:     "bare daily",
			text:     "FREQ=DAILY",
			expected: Rule{Freq: Daily},
		},
		{
			name: "interval and count",
			text: "FREQ=DAILY;INTERVAL=3;COUNT=10",
			expected: Rule{
				Freq:     Daily,
				Interval: 3,
				Count:    10,
			},
		},
		{
			name: "byday ordinals",
			text: "FREQ=MONTHLY;BYDAY=2TU,-1FR",
			expected: Rule{
				Freq: Monthly,
				ByDay: []WeekdaySpec{
					{Day: time.Tuesday, Ordinal: 2},
					{Day: time.Friday, Ordinal: -1},
				},
			},
		},
		{
			name: "negative monthdays",
			text: "FREQ=MONTHLY;BYMONTHDAY=1,15,-1",
			expected: Rule{
				Freq:       Monthly,
				ByMonthDay: []int{1, 15, -1},
			},
		},
		{
			name: "yearly with months and until",
			text: "FREQ=YEARLY;BYMONTH=3,12;BYMONTHDAY=15;UNTIL=20301231",
			expected: Rule{
				Freq:       Yearly,
				ByMonth:    []time.Month{time.March, time.December},
				ByMonthDay: []int{15},
				Until:      mo.Some(dates.MustParse("2030-12-31")),
			},
		},
		{
			name: "setpos",
			text: "FREQ=MONTHLY;BYDAY=MO;BYSETPOS=1",
			expected: Rule{
				Freq:     Monthly,
				ByDay:    []WeekdaySpec{{Day: time.Monday}},
				BySetPos: []int{1},
			},
		},
		{
			name: "two-line icalendar form",
			text: "DTSTART:20250101\nRRULE:FREQ=WEEKLY;BYDAY=FR",
			expected: Rule{
				Freq:   Weekly,
				ByDay:  []WeekdaySpec{{Day: time.Friday}},
				Anchor: mo.Some(dates.MustParse("2025-01-01")),
			},
		},
		{
			name: "dtstart with value param",
			text: "FREQ=DAILY;DTSTART;VALUE=DATE:20250601",
			expected: Rule{
				Freq:   Daily,
				Anchor: mo.Some(dates.MustParse("2025-06-01")),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text)
			assert.True(t, got.Equal(tt.expected), "got %s", got)
		})
	}
}

func TestParse_Lenient(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected Rule
	}{
		{
			name:     "unknown keys skipped",
			text:     "FREQ=DAILY;FOO=BAR;X-CUSTOM=1",
			expected: Rule{Freq: Daily},
		},
		{
			name:     "malformed interval skipped",
			text:     "FREQ=DAILY;INTERVAL=abc",
			expected: Rule{Freq: Daily},
		},
		{
			name:     "invalid byday entries skipped",
			text:     "FREQ=WEEKLY;BYDAY=XX,TU",
			expected: Rule{Freq: Weekly, ByDay: []WeekdaySpec{{Day: time.Tuesday}}},
		},
		{
			name:     "out of range bymonthday skipped",
			text:     "FREQ=MONTHLY;BYMONTHDAY=15,99",
			expected: Rule{Freq: Monthly, ByMonthDay: []int{15}},
		},
		{
			name:     "lowercase frequency accepted",
			text:     "FREQ=weekly",
			expected: Rule{Freq: Weekly},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text)
			assert.True(t, got.Equal(tt.expected), "got %s", got)
		})
	}
}

func TestParse_Unparseable(t *testing.T) {
	for _, text := range []string{"", "every other day", "FREQ=FORTNIGHTLY", "INTERVAL=2;BYDAY=TU"} {
		t.Run(text, func(t *testing.T) {
			got := Parse(text)
			assert.False(t, got.IsRecurring())
			assert.Equal(t, "", got.String())
		})
	}
}

func TestRoundTrip(t *testing.T) {
	rules := []string{
		"FREQ=DAILY;DTSTART:20250101",
		"FREQ=DAILY;INTERVAL=3;COUNT=10;DTSTART:20250101",
		"FREQ=WEEKLY;BYDAY=MO,WE,FR;DTSTART:20250106",
		"FREQ=WEEKLY;INTERVAL=2;BYDAY=TU;DTSTART:20250107",
		"FREQ=MONTHLY;BYMONTHDAY=1,15,-1;DTSTART:20250101",
		"FREQ=MONTHLY;BYDAY=2TU;DTSTART:20250114",
		"FREQ=MONTHLY;BYDAY=MO;BYSETPOS=1,-1;DTSTART:20250106",
		"FREQ=YEARLY;BYMONTHDAY=15;BYMONTH=3,12;DTSTART:20250315",
		"FREQ=YEARLY;INTERVAL=2;UNTIL=20351231;DTSTART:20250704",
	}

	for _, text := range rules {
		t.Run(text, func(t *testing.T) {
			parsed := Parse(text)
			require.True(t, parsed.IsRecurring())

			reparsed := Parse(parsed.String())
			assert.True(t, parsed.Equal(reparsed), "serialized as %s", parsed.String())
			assert.Equal(t, text, parsed.String())
		})
	}
}

func TestEnsureAnchor(t *testing.T) {
	scheduled := dates.MustParse("2025-02-03")

	r := EnsureAnchor(Parse("FREQ=WEEKLY"), scheduled)
	anchor, ok := r.Anchor.Get()
	require.True(t, ok)
	assert.Equal(t, scheduled, anchor)

	// An existing anchor is kept.
	r = EnsureAnchor(Parse("FREQ=WEEKLY;DTSTART:20250101"), scheduled)
	anchor, ok = r.Anchor.Get()
	require.True(t, ok)
	assert.Equal(t, dates.MustParse("2025-01-01"), anchor)
}

func TestRRuleConversion(t *testing.T) {
	texts := []string{
		"FREQ=DAILY;INTERVAL=2;DTSTART:20250101",
		"FREQ=WEEKLY;BYDAY=TU,TH;DTSTART:20250107",
		"FREQ=MONTHLY;BYMONTHDAY=15,-1;DTSTART:20250115",
		"FREQ=MONTHLY;BYDAY=2TU;DTSTART:20250114",
		"FREQ=YEARLY;BYMONTH=6;BYMONTHDAY=21;COUNT=5;DTSTART:20250621",
	}
	for _, text := range texts {
		t.Run(text, func(t *testing.T) {
			rr, err := Parse(text).RRule()
			require.NoError(t, err)
			require.NotNil(t, rr)
		})
	}
}

func TestBodyString(t *testing.T) {
	r := Parse("FREQ=WEEKLY;BYDAY=FR;DTSTART:20250110")
	assert.Equal(t, "FREQ=WEEKLY;BYDAY=FR", r.BodyString())
	assert.Equal(t, "FREQ=WEEKLY;BYDAY=FR;DTSTART:20250110", r.String())
}

func TestEqual(t *testing.T) {
	a := Parse("FREQ=DAILY;DTSTART:20250101")
	b := Parse("FREQ=DAILY;INTERVAL=1;DTSTART:20250101")
	assert.True(t, a.Equal(b), "interval 1 equals default")

	c := Parse("FREQ=DAILY;INTERVAL=2;DTSTART:20250101")
	assert.False(t, a.Equal(c))
}
