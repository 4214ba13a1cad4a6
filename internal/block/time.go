package block

import (
	"fmt"
	"strconv"
)

// TimeToMinutes converts "HH:MM" to minutes since midnight.
// Returns 0 for invalid input.
func TimeToMinutes(t string) int {
	m, err := ParseClock(t)
	if err != nil {
		return 0
	}
	return m
}

// ParseClock parses "HH:MM" (24h, "24:00" allowed as end of day) to minutes since midnight.
func ParseClock(t string) (int, error) {
	if len(t) != 5 || t[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, t)
	}
	hours, err := strconv.Atoi(t[0:2])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, t)
	}
	mins, err := strconv.Atoi(t[3:5])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, t)
	}
	total := hours*60 + mins
	if hours < 0 || mins < 0 || mins > 59 || total > MinutesPerDay {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, t)
	}
	return total, nil
}

// MinutesToTime converts minutes since midnight to "HH:MM" format.
// Midnight at the end of the day renders as "24:00".
func MinutesToTime(m int) string {
	if m < 0 {
		m = 0
	}
	if m > MinutesPerDay {
		m = MinutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// IntervalsOverlap returns true if [s1,e1) and [s2,e2) intersect.
func IntervalsOverlap(s1, e1, s2, e2 int) bool {
	return s1 < e2 && e1 > s2
}
