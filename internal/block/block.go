// Package block defines the time-block domain types for lvlup.
package block

import (
	"errors"
	"fmt"
)

// MinutesPerDay bounds every block's end.
const MinutesPerDay = 24 * 60

// Validation errors.
var (
	ErrValidation        = errors.New("invalid time block")
	ErrInvalidTimeFormat = errors.New("time must be in HH:MM format")
)

// Domain errors.
var (
	ErrNotFound = errors.New("time block not found")
	ErrOverlap  = errors.New("time block overlaps with existing block")
)

// TimeBlock is one scheduled occurrence of a habit on a given day.
type TimeBlock struct {
	ID          string
	HabitID     string
	StartHour   int
	StartMin    int
	DurationMin int
	Completed   bool
	HasPrompted bool // completion prompt already fired today
}

// New creates a TimeBlock with validation.
func New(id, habitID string, hour, minute, duration int) (TimeBlock, error) {
	b := TimeBlock{
		ID:          id,
		HabitID:     habitID,
		StartHour:   hour,
		StartMin:    minute,
		DurationMin: duration,
	}
	if err := b.Validate(); err != nil {
		return TimeBlock{}, err
	}
	return b, nil
}

// Validate checks the block's range invariants.
func (b TimeBlock) Validate() error {
	if b.StartHour < 0 || b.StartHour > 23 {
		return fmt.Errorf("%w: start hour %d out of range 0-23", ErrValidation, b.StartHour)
	}
	if b.StartMin < 0 || b.StartMin > 59 {
		return fmt.Errorf("%w: start minute %d out of range 0-59", ErrValidation, b.StartMin)
	}
	if b.DurationMin < 1 {
		return fmt.Errorf("%w: duration must be positive, got %d", ErrValidation, b.DurationMin)
	}
	if b.EndTotalMin() > MinutesPerDay {
		return fmt.Errorf("%w: %s+%dm crosses midnight", ErrValidation, b.Start(), b.DurationMin)
	}
	return nil
}

// StartTotalMin returns the start in minutes since midnight.
func (b TimeBlock) StartTotalMin() int {
	return b.StartHour*60 + b.StartMin
}

// EndTotalMin returns the exclusive end in minutes since midnight.
func (b TimeBlock) EndTotalMin() int {
	return b.StartTotalMin() + b.DurationMin
}

// Start returns the start time in HH:MM format.
func (b TimeBlock) Start() string {
	return MinutesToTime(b.StartTotalMin())
}

// End returns the end time in HH:MM format.
func (b TimeBlock) End() string {
	return MinutesToTime(b.EndTotalMin())
}

// Overlaps reports whether two blocks share any minute.
// Touching intervals do not overlap.
func (b TimeBlock) Overlaps(other TimeBlock) bool {
	return IntervalsOverlap(b.StartTotalMin(), b.EndTotalMin(), other.StartTotalMin(), other.EndTotalMin())
}

// WithStart returns a copy of b starting at the given minute of the day.
func (b TimeBlock) WithStart(totalMin int) TimeBlock {
	b.StartHour = totalMin / 60
	b.StartMin = totalMin % 60
	return b
}

// ElapsedBy reports whether the block has ended at the given minute of the day.
func (b TimeBlock) ElapsedBy(nowMin int) bool {
	return nowMin >= b.EndTotalMin()
}
