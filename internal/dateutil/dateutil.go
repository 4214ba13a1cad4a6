// Package dateutil parses the day arguments accepted by the CLI.
package dateutil

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidDay is returned for a day argument that is not recognized.
var ErrInvalidDay = errors.New("day must be YYYY-MM-DD, today, tomorrow, yesterday or a weekday name")

// Layout is the date format used on the command line and in storage.
const Layout = "2006-01-02"

var weekdayMap = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// TruncateToDay returns t with time set to midnight.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseDay resolves a day argument relative to now:
//   - "" or "today", "tomorrow", "yesterday"
//   - a weekday name: the next occurrence, never today
//   - "last-<weekday>": the previous occurrence, never today
//   - an absolute YYYY-MM-DD date, in now's location
//
// Input is case-insensitive. Past days are allowed so old days can be reviewed.
func ParseDay(s string, now time.Time) (time.Time, error) {
	today := TruncateToDay(now)
	input := strings.ToLower(strings.TrimSpace(s))

	switch input {
	case "", "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}

	if name, ok := strings.CutPrefix(input, "last-"); ok {
		target, ok := weekdayMap[name]
		if !ok {
			return time.Time{}, ErrInvalidDay
		}
		return previousWeekday(today, target), nil
	}
	if target, ok := weekdayMap[input]; ok {
		return nextWeekday(today, target), nil
	}

	t, err := time.ParseInLocation(Layout, input, now.Location())
	if err != nil {
		return time.Time{}, ErrInvalidDay
	}
	return t, nil
}

// nextWeekday returns the next occurrence of target after today.
func nextWeekday(today time.Time, target time.Weekday) time.Time {
	days := int(target) - int(today.Weekday())
	if days <= 0 {
		days += 7
	}
	return today.AddDate(0, 0, days)
}

// previousWeekday returns the last occurrence of target before today.
func previousWeekday(today time.Time, target time.Weekday) time.Time {
	days := int(today.Weekday()) - int(target)
	if days <= 0 {
		days += 7
	}
	return today.AddDate(0, 0, -days)
}
