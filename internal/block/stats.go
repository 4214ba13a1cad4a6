package block

import "time"

// StatsDays is the length of the stats window.
const StatsDays = 7

// DayTotal holds block counts for one day.
type DayTotal struct {
	Date      time.Time
	Total     int
	Completed int
}

// WeekStats aggregates the last seven days of blocks.
type WeekStats struct {
	Daily           []DayTotal // oldest first, today last
	WeeklyTotal     int
	WeeklyCompleted int
	CompletionRate  int // percent, rounded
	CurrentStreak   int // consecutive days with a completed block
}

// ComputeWeekStats builds the 7-day aggregate ending on today.
// Records outside the window are ignored.
func ComputeWeekStats(today time.Time, records []Record) WeekStats {
	today = truncateToDay(today)
	first := today.AddDate(0, 0, -(StatsDays - 1))

	index := make(map[string]int, StatsDays)
	stats := WeekStats{Daily: make([]DayTotal, StatsDays)}
	for i := range StatsDays {
		d := first.AddDate(0, 0, i)
		stats.Daily[i] = DayTotal{Date: d}
		index[d.Format(DateLayout)] = i
	}

	for _, r := range records {
		i, ok := index[r.Date.Format(DateLayout)]
		if !ok {
			continue
		}
		stats.Daily[i].Total++
		if r.Completed {
			stats.Daily[i].Completed++
		}
	}

	for _, d := range stats.Daily {
		stats.WeeklyTotal += d.Total
		stats.WeeklyCompleted += d.Completed
	}
	if stats.WeeklyTotal > 0 {
		stats.CompletionRate = (stats.WeeklyCompleted*100 + stats.WeeklyTotal/2) / stats.WeeklyTotal
	}

	stats.CurrentStreak = streak(stats.Daily)
	return stats
}

// streak counts back from the last day. Today without completions
// does not break the streak because the day is still open.
func streak(daily []DayTotal) int {
	i := len(daily) - 1
	if i >= 0 && daily[i].Completed == 0 {
		i--
	}
	n := 0
	for ; i >= 0; i-- {
		if daily[i].Completed == 0 {
			break
		}
		n++
	}
	return n
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
