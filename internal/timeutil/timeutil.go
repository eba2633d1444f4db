package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var defaultLocation = time.UTC

// ResolveLocation returns the configured home location with UTC fallback.
func ResolveLocation(timezone string) (*time.Location, bool) {
	if timezone == "" {
		return defaultLocation, true
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return defaultLocation, true
	}
	return loc, false
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ResolveWeekday returns the next occurrence of the named weekday strictly after
// the reference date. Asking for "friday" on a Friday yields the Friday seven
// days out, never the reference day itself. The second return is false when the
// name is not a weekday; the reference date is returned unchanged in that case
// and callers must treat it as a soft default, not a confirmed match.
func ResolveWeekday(name string, ref time.Time, loc *time.Location) (time.Time, bool) {
	day, ok := weekdays[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return ref.In(loc), false
	}

	offset := (int(day) - int(ref.In(loc).Weekday()) + 7) % 7
	if offset == 0 {
		offset = 7
	}
	return ref.In(loc).AddDate(0, 0, offset), true
}

// ResolveNextWeekday resolves a "next <weekday>" expression: the following
// week's occurrence, i.e. seven days past the already-resolved one.
func ResolveNextWeekday(name string, ref time.Time, loc *time.Location) (time.Time, bool) {
	t, ok := ResolveWeekday(name, ref, loc)
	if !ok {
		return t, false
	}
	return t.AddDate(0, 0, 7), true
}

// ResolveDay resolves a relative day token ("today", "tomorrow", a weekday
// name, or a "next "-prefixed weekday) against the reference instant in the
// home zone. Unrecognized tokens fall back to the reference date with ok=false.
func ResolveDay(token string, ref time.Time, loc *time.Location) (time.Time, bool) {
	token = strings.ToLower(strings.TrimSpace(token))
	local := ref.In(loc)

	switch token {
	case "today":
		return local, true
	case "tomorrow":
		return local.AddDate(0, 0, 1), true
	}

	if rest, found := strings.CutPrefix(token, "next "); found {
		return ResolveNextWeekday(rest, ref, loc)
	}

	return ResolveWeekday(token, ref, loc)
}

// ParseClock parses a bare time-of-day expression: "2pm", "14:00", "3:30pm".
// A pm suffix adds 12 to hours below 12; 12am maps to hour 0.
func ParseClock(expr string) (hour, minute int, ok bool) {
	expr = strings.ToLower(strings.TrimSpace(expr))
	if expr == "" {
		return 0, 0, false
	}

	meridiem := ""
	for _, suffix := range []string{"am", "pm"} {
		if strings.HasSuffix(expr, suffix) {
			meridiem = suffix
			expr = strings.TrimSpace(strings.TrimSuffix(expr, suffix))
			break
		}
	}

	hourPart, minutePart := expr, ""
	if h, m, found := strings.Cut(expr, ":"); found {
		hourPart, minutePart = h, m
	}

	h, err := strconv.Atoi(hourPart)
	if err != nil || h < 0 || h > 23 {
		return 0, 0, false
	}

	m := 0
	if minutePart != "" {
		m, err = strconv.Atoi(minutePart)
		if err != nil || m < 0 || m > 59 {
			return 0, 0, false
		}
	}

	switch meridiem {
	case "pm":
		if h > 12 {
			return 0, 0, false
		}
		if h < 12 {
			h += 12
		}
	case "am":
		if h > 12 {
			return 0, 0, false
		}
		if h == 12 {
			h = 0
		}
	}

	return h, m, true
}

// Resolve resolves a free-form relative expression ("tomorrow at 2pm",
// "next friday", "14:00") to an absolute instant in the home zone. Day and
// clock parts are both optional; missing parts keep the reference's values.
// The second return is false when neither part was recognized; the result is
// then the reference unchanged and callers must not treat it as a match.
func Resolve(expression string, ref time.Time, loc *time.Location) (time.Time, bool) {
	local := ref.In(loc)
	day := local
	matched := false

	expr := strings.ToLower(strings.TrimSpace(expression))
	dayPart, clockPart := expr, ""
	if d, c, found := strings.Cut(expr, " at "); found {
		dayPart, clockPart = strings.TrimSpace(d), strings.TrimSpace(c)
	}

	if resolved, ok := ResolveDay(dayPart, ref, loc); ok {
		day = resolved
		matched = true
	} else if clockPart == "" {
		// No " at " separator: the whole expression may be a bare clock.
		if h, m, ok := ParseClock(dayPart); ok {
			return time.Date(local.Year(), local.Month(), local.Day(), h, m, 0, 0, loc), true
		}
	}

	hour, minute := local.Hour(), local.Minute()
	if clockPart != "" {
		if h, m, ok := ParseClock(clockPart); ok {
			hour, minute = h, m
			matched = true
		}
	}

	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc), matched
}

// DayRange returns the inclusive [start, end] window covering the local day of
// t, midnight to 23:59:59.
func DayRange(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := start.Add(24*time.Hour - time.Second)
	return start, end
}

// LookaheadRange returns the [now, now+days] window used for week/month reads.
func LookaheadRange(now time.Time, days int, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	return local, local.AddDate(0, 0, days)
}

// ParseDateTime parses a datetime in either RFC3339 (with explicit offset) or
// local layouts in the home zone.
func ParseDateTime(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("time value is required")
	}

	// If timezone/offset exists, preserve it.
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}

	layouts := []string{
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse time: %s", value)
}

// ParseDate parses a date-only string ("2006-01-02") in the home zone.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("date value is required")
	}

	d, err := time.ParseInLocation("2006-01-02", value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse date: %s", value)
	}
	return d, nil
}
