package scheduler

import (
	"time"

	"github.com/javiermolinar/lvlup/internal/block"
)

// NextSlot returns the next quarter-hour start at or after now that lies
// inside the planning window. ok is false once the window has closed.
func NextSlot(now time.Time, w block.Window) (hour, minute int, ok bool) {
	t := roundUpTo15Min(now)
	if truncateToDay(t).After(truncateToDay(now)) {
		return 0, 0, false
	}
	hour, minute = t.Hour(), t.Minute()
	if hour < w.StartHour {
		return w.StartHour, 0, true
	}
	if hour > w.EndHour {
		return 0, 0, false
	}
	return hour, minute, true
}

// roundUpTo15Min rounds a time up to the next 15-minute boundary.
func roundUpTo15Min(t time.Time) time.Time {
	remainder := t.Minute() % 15
	if remainder == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t
	}
	return t.Add(time.Duration(15-remainder) * time.Minute).Truncate(time.Minute)
}
