package block

import (
	"fmt"
	"time"
)

// DateLayout is the persisted date format.
const DateLayout = "2006-01-02"

// fallbackDurationMin is used when a stored block has no positive span.
const fallbackDurationMin = 30

// Record is the persisted form of a block.
type Record struct {
	ID        string
	Title     string
	HabitID   string
	Date      time.Time
	StartTime string // "HH:MM"
	EndTime   string // "HH:MM"
	Completed bool
}

// ToRecord converts a block into its persisted form for the given day.
func (b TimeBlock) ToRecord(date time.Time, title string) Record {
	if title == "" {
		title = "Activity"
	}
	return Record{
		ID:        b.ID,
		Title:     title,
		HabitID:   b.HabitID,
		Date:      date,
		StartTime: b.Start(),
		EndTime:   b.End(),
		Completed: b.Completed,
	}
}

// FromRecord converts a persisted record into a validated block.
// A record whose end is not after its start gets a 30-minute span.
func FromRecord(r Record) (TimeBlock, error) {
	start, err := ParseClock(r.StartTime)
	if err != nil {
		return TimeBlock{}, fmt.Errorf("block %s start: %w", r.ID, err)
	}
	end, err := ParseClock(r.EndTime)
	if err != nil {
		return TimeBlock{}, fmt.Errorf("block %s end: %w", r.ID, err)
	}

	duration := end - start
	if duration <= 0 {
		duration = fallbackDurationMin
	}

	b, err := New(r.ID, r.HabitID, start/60, start%60, duration)
	if err != nil {
		return TimeBlock{}, fmt.Errorf("block %s: %w", r.ID, err)
	}
	b.Completed = r.Completed
	return b, nil
}
