package block

import (
	"testing"
	"time"
)

func TestComputeWeekStats(t *testing.T) {
	today := time.Date(2026, 2, 7, 15, 30, 0, 0, time.UTC)
	day := func(offset int) time.Time {
		return time.Date(2026, 2, 7+offset, 0, 0, 0, 0, time.UTC)
	}

	records := []Record{
		{ID: "1", Date: day(0), Completed: true},
		{ID: "2", Date: day(0), Completed: false},
		{ID: "3", Date: day(-1), Completed: true},
		{ID: "4", Date: day(-2), Completed: true},
		{ID: "5", Date: day(-3), Completed: false},
		{ID: "6", Date: day(-4), Completed: true},
		{ID: "7", Date: day(-7), Completed: true}, // outside window
	}

	stats := ComputeWeekStats(today, records)

	if len(stats.Daily) != 7 {
		t.Fatalf("len(Daily) = %d, want 7", len(stats.Daily))
	}
	if !stats.Daily[6].Date.Equal(day(0)) {
		t.Errorf("last day = %s, want today", stats.Daily[6].Date)
	}
	if stats.Daily[6].Total != 2 || stats.Daily[6].Completed != 1 {
		t.Errorf("today = %+v, want 2 total / 1 completed", stats.Daily[6])
	}
	if stats.WeeklyTotal != 6 {
		t.Errorf("WeeklyTotal = %d, want 6", stats.WeeklyTotal)
	}
	if stats.WeeklyCompleted != 4 {
		t.Errorf("WeeklyCompleted = %d, want 4", stats.WeeklyCompleted)
	}
	if stats.CompletionRate != 67 {
		t.Errorf("CompletionRate = %d, want 67", stats.CompletionRate)
	}
	if stats.CurrentStreak != 3 {
		t.Errorf("CurrentStreak = %d, want 3", stats.CurrentStreak)
	}
}

func TestComputeWeekStats_OpenTodayKeepsStreak(t *testing.T) {
	today := time.Date(2026, 2, 7, 9, 0, 0, 0, time.UTC)
	records := []Record{
		{ID: "1", Date: time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC), Completed: false},
		{ID: "2", Date: time.Date(2026, 2, 6, 0, 0, 0, 0, time.UTC), Completed: true},
		{ID: "3", Date: time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC), Completed: true},
	}

	stats := ComputeWeekStats(today, records)
	if stats.CurrentStreak != 2 {
		t.Errorf("CurrentStreak = %d, want 2", stats.CurrentStreak)
	}
}

func TestComputeWeekStats_Empty(t *testing.T) {
	stats := ComputeWeekStats(time.Now(), nil)
	if stats.WeeklyTotal != 0 || stats.CompletionRate != 0 || stats.CurrentStreak != 0 {
		t.Errorf("empty stats = %+v", stats)
	}
}
