package block

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidWindow is returned for a planning window that is out of range.
var ErrInvalidWindow = errors.New("invalid planning window")

// Window is the visible planning range of the day, in whole hours.
type Window struct {
	StartHour int
	EndHour   int
}

// DefaultWindow returns the 05-21 planning window.
func DefaultWindow() Window {
	return Window{StartHour: 5, EndHour: 21}
}

// Validate checks 0 <= start < end <= 23.
func (w Window) Validate() error {
	if w.StartHour < 0 || w.StartHour > 23 {
		return fmt.Errorf("%w: start_hour must be between 0 and 23", ErrInvalidWindow)
	}
	if w.EndHour < 0 || w.EndHour > 23 {
		return fmt.Errorf("%w: end_hour must be between 0 and 23", ErrInvalidWindow)
	}
	if w.StartHour >= w.EndHour {
		return fmt.Errorf("%w: start_hour must be before end_hour", ErrInvalidWindow)
	}
	return nil
}

// Hours returns every hour row of the window, inclusive.
func (w Window) Hours() []int {
	hours := make([]int, 0, w.EndHour-w.StartHour+1)
	for h := w.StartHour; h <= w.EndHour; h++ {
		hours = append(hours, h)
	}
	return hours
}

// Repository defines the storage interface for blocks, habits and settings.
type Repository interface {
	// ListBlocks returns every block scheduled on date, ordered by start time.
	ListBlocks(ctx context.Context, date time.Time) ([]Record, error)

	// CreateBlock stores a new block. An empty ID is generated by the store.
	// Returns the stored id.
	CreateBlock(ctx context.Context, rec Record) (string, error)

	// UpdateCompleted sets the completion status of a block.
	UpdateCompleted(ctx context.Context, id string, completed bool) error

	// UpdateTimes rewrites a block's start and end ("HH:MM").
	// Used by move, resize and the duration editor.
	UpdateTimes(ctx context.Context, id, start, end string) error

	// DeleteBlock removes a block.
	DeleteBlock(ctx context.Context, id string) error

	// WeekStats aggregates the seven days ending on today.
	WeekStats(ctx context.Context, today time.Time) (WeekStats, error)

	// Window returns the stored planning window, or the default.
	Window(ctx context.Context) (Window, error)

	// SaveWindow stores the planning window.
	SaveWindow(ctx context.Context, w Window) error

	// Habits returns the habit palette in display order.
	Habits(ctx context.Context) ([]Habit, error)

	// SaveHabit adds or replaces a habit.
	SaveHabit(ctx context.Context, h Habit) error

	// Close releases any resources held by the repository.
	Close() error
}
