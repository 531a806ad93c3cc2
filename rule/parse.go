package rule

import (
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/samber/mo"

	"github.com/notetools/tasknote/dates"
)

var weekdayCodes = map[string]time.Weekday{
	"SU": time.Sunday,
	"MO": time.Monday,
	"TU": time.Tuesday,
	"WE": time.Wednesday,
	"TH": time.Thursday,
	"FR": time.Friday,
	"SA": time.Saturday,
}

var weekdayTokens = map[time.Weekday]string{
	time.Sunday:    "SU",
	time.Monday:    "MO",
	time.Tuesday:   "TU",
	time.Wednesday: "WE",
	time.Thursday:  "TH",
	time.Friday:    "FR",
	time.Saturday:  "SA",
}

// Parse interprets RRULE-style text. Parsing is lenient: unknown or
// malformed tokens are skipped with a warning, because a corrupt rule
// string stored in a note must not break task rendering. Text with no
// usable FREQ yields the zero Rule ("no recurrence").
func Parse(text string) Rule {
	return ParseWithLogger(text, nil)
}

// ParseWithLogger is Parse with warnings routed to the given logger. A nil
// logger discards them.
func ParseWithLogger(text string, logger *slog.Logger) Rule {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var r Rule
	text = strings.TrimSpace(text)
	if text == "" {
		return r
	}

	// Accept both the inline form "FREQ=...;DTSTART:..." and the two-line
	// iCalendar form with separate DTSTART and RRULE lines.
	text = strings.ReplaceAll(text, "\n", ";")
	// Normalize the parameterized DTSTART form before splitting on ";".
	text = strings.ReplaceAll(text, "DTSTART;VALUE=DATE:", "DTSTART:")

	for _, token := range strings.Split(text, ";") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		token = strings.TrimPrefix(token, "RRULE:")

		key, value, ok := splitToken(token)
		if !ok {
			logger.Warn("skipping malformed rule token", "token", token)
			continue
		}

		switch key {
		case "FREQ":
			switch strings.ToUpper(value) {
			case "DAILY":
				r.Freq = Daily
			case "WEEKLY":
				r.Freq = Weekly
			case "MONTHLY":
				r.Freq = Monthly
			case "YEARLY":
				r.Freq = Yearly
			default:
				logger.Warn("skipping unsupported frequency", "freq", value)
			}
		case "INTERVAL":
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				r.Interval = n
			} else {
				logger.Warn("skipping invalid interval", "interval", value)
			}
		case "BYDAY":
			r.ByDay = parseByDay(value, logger)
		case "BYMONTHDAY":
			r.ByMonthDay = parseIntList(value, func(n int) bool {
				return n >= -31 && n <= 31 && n != 0
			}, logger, "BYMONTHDAY")
		case "BYMONTH":
			for _, n := range parseIntList(value, func(n int) bool {
				return n >= 1 && n <= 12
			}, logger, "BYMONTH") {
				r.ByMonth = append(r.ByMonth, time.Month(n))
			}
		case "BYSETPOS":
			r.BySetPos = parseIntList(value, func(n int) bool {
				return n != 0
			}, logger, "BYSETPOS")
		case "COUNT":
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				r.Count = n
			} else {
				logger.Warn("skipping invalid count", "count", value)
			}
		case "UNTIL":
			if d, err := dates.Parse(value); err == nil {
				r.Until = mo.Some(d)
			} else {
				logger.Warn("skipping invalid until date", "until", value)
			}
		case "DTSTART":
			if d, err := dates.Parse(value); err == nil {
				r.Anchor = mo.Some(d)
			} else {
				logger.Warn("skipping invalid start anchor", "dtstart", value)
			}
		case "WKST":
			// Week-start has no effect on anchor-phased intervals; accepted
			// for compatibility with rules written by other tools.
			logger.Debug("ignoring WKST", "wkst", value)
		default:
			logger.Warn("skipping unknown rule key", "key", key)
		}
	}

	if r.Freq == None {
		// Without a usable frequency the rest of the tokens are meaningless.
		return Rule{}
	}
	return r
}

// splitToken splits "KEY=VALUE"; DTSTART also accepts the iCalendar colon
// form "DTSTART:20250101" and a VALUE=DATE parameter.
func splitToken(token string) (key, value string, ok bool) {
	upper := strings.ToUpper(token)
	if strings.HasPrefix(upper, "DTSTART") {
		rest := token[len("DTSTART"):]
		rest = strings.TrimPrefix(rest, ";VALUE=DATE")
		if len(rest) > 0 && (rest[0] == ':' || rest[0] == '=') {
			return "DTSTART", strings.TrimSpace(rest[1:]), true
		}
		return "", "", false
	}
	key, value, found := strings.Cut(token, "=")
	if !found || key == "" || value == "" {
		return "", "", false
	}
	return strings.ToUpper(strings.TrimSpace(key)), strings.TrimSpace(value), true
}

func parseByDay(value string, logger *slog.Logger) []WeekdaySpec {
	var specs []WeekdaySpec
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(strings.ToUpper(part))
		if len(part) < 2 {
			logger.Warn("skipping invalid BYDAY entry", "entry", part)
			continue
		}
		code := part[len(part)-2:]
		day, ok := weekdayCodes[code]
		if !ok {
			logger.Warn("skipping invalid BYDAY entry", "entry", part)
			continue
		}
		spec := WeekdaySpec{Day: day}
		if prefix := part[:len(part)-2]; prefix != "" {
			n, err := strconv.Atoi(prefix)
			if err != nil || n == 0 || n > 53 || n < -53 {
				logger.Warn("skipping invalid BYDAY ordinal", "entry", part)
				continue
			}
			spec.Ordinal = n
		}
		specs = append(specs, spec)
	}
	return specs
}

func parseIntList(value string, valid func(int) bool, logger *slog.Logger, key string) []int {
	var out []int
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		n, err := strconv.Atoi(part)
		if err != nil || !valid(n) {
			logger.Warn("skipping invalid value", "key", key, "value", part)
			continue
		}
		out = append(out, n)
	}
	return out
}

// String serializes the rule back to its text form; Parse(r.String())
// yields a rule equal to r. The zero Rule serializes to "".
func (r Rule) String() string {
	if r.Freq == None {
		return ""
	}

	var b strings.Builder
	b.WriteString("FREQ=")
	b.WriteString(r.Freq.String())

	if r.Interval > 1 {
		b.WriteString(";INTERVAL=")
		b.WriteString(strconv.Itoa(r.Interval))
	}
	if len(r.ByDay) > 0 {
		b.WriteString(";BYDAY=")
		for i, spec := range r.ByDay {
			if i > 0 {
				b.WriteByte(',')
			}
			if spec.Ordinal != 0 {
				b.WriteString(strconv.Itoa(spec.Ordinal))
			}
			b.WriteString(weekdayTokens[spec.Day])
		}
	}
	writeIntList(&b, "BYMONTHDAY", r.ByMonthDay)
	if len(r.ByMonth) > 0 {
		b.WriteString(";BYMONTH=")
		for i, m := range r.ByMonth {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Itoa(int(m)))
		}
	}
	writeIntList(&b, "BYSETPOS", r.BySetPos)
	if r.Count > 0 {
		b.WriteString(";COUNT=")
		b.WriteString(strconv.Itoa(r.Count))
	}
	if until, ok := r.Until.Get(); ok {
		b.WriteString(";UNTIL=")
		b.WriteString(until.Time().Format("20060102"))
	}
	if anchor, ok := r.Anchor.Get(); ok {
		b.WriteString(";DTSTART:")
		b.WriteString(anchor.Time().Format("20060102"))
	}
	return b.String()
}

// BodyString serializes the rule without its DTSTART component, which is
// what belongs in an iCalendar RRULE property (DTSTART travels as its own
// property there).
func (r Rule) BodyString() string {
	s := r.String()
	if i := strings.Index(s, ";DTSTART:"); i >= 0 {
		return s[:i]
	}
	return s
}

func writeIntList(b *strings.Builder, key string, values []int) {
	if len(values) == 0 {
		return
	}
	b.WriteString(";")
	b.WriteString(key)
	b.WriteString("=")
	for i, n := range values {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(n))
	}
}
