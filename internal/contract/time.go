package contract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/hotspotter/schema"
)

// DateFormat is the calendar-day layout used by git --date=short.
const DateFormat = time.DateOnly

// Define the regular expression to capture "N [units] ago"
// e.g., "2 years ago", "3 months ago", "1 week ago".
var relativeTimeRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day|hour|minute)s?\s+ago$`)

// Define the regular expression to capture a trailing window like "30 days" or "3 months".
var windowRe = regexp.MustCompile(`^(\d+)\s*(day|month)s?$`)

// ParseRelativeTime converts strings like "2 years ago" into a time.Time in the past.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	matches := relativeTimeRe.FindStringSubmatch(s)

	if len(matches) == 0 {
		return time.Time{}, fmt.Errorf("invalid relative time format: %s", s)
	}

	value, _ := strconv.Atoi(matches[1])
	switch matches[2] {
	case "year":
		return now.AddDate(-value, 0, 0), nil
	case "month":
		return AddMonths(now, -value), nil
	case "week":
		return now.Add(time.Duration(-value) * 7 * 24 * time.Hour), nil
	case "day":
		return now.Add(time.Duration(-value) * 24 * time.Hour), nil
	case "hour":
		return now.Add(time.Duration(-value) * time.Hour), nil
	case "minute":
		return now.Add(time.Duration(-value) * time.Minute), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported time unit: %s", matches[2])
	}
}

// ParseWindow parses a trailing window such as "30 days" or "3 months".
func ParseWindow(s string) (int, schema.WindowUnit, error) {
	matches := windowRe.FindStringSubmatch(strings.TrimSpace(strings.ToLower(s)))
	if len(matches) == 0 {
		return 0, "", fmt.Errorf("invalid window format: %q (expected 'N days' or 'N months')", s)
	}
	value, _ := strconv.Atoi(matches[1])
	if value == 0 {
		return 0, "", errors.New("zero window is not useful")
	}
	if matches[2] == "day" {
		return value, schema.WindowDays, nil
	}
	return value, schema.WindowMonths, nil
}

// TruncateDay returns midnight UTC of the calendar day t falls on.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from start to end.
// It is negative when end is before start.
func DaysBetween(start, end time.Time) int {
	return int(TruncateDay(end).Sub(TruncateDay(start)).Hours() / 24)
}

// MonthsBetween returns the number of whole calendar months from start to end.
// A month only counts once its day of month has been reached, so Jan 31 to
// Feb 28 is 0 months and Jan 15 to Mar 15 is 2.
func MonthsBetween(start, end time.Time) int {
	start, end = TruncateDay(start), TruncateDay(end)
	sign := 1
	if end.Before(start) {
		start, end = end, start
		sign = -1
	}
	months := (end.Year()-start.Year())*12 + int(end.Month()-start.Month())
	if end.Day() < start.Day() {
		months--
	}
	return sign * months
}

// AddMonths adds n calendar months to t, clamping to the last day of the
// target month instead of overflowing into the next one.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := first.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return first.AddDate(0, 0, d-1)
}
