// Package scheduler owns one day's time blocks and applies placements,
// resizes and completions while keeping every block free of overlaps.
package scheduler

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/javiermolinar/lvlup/internal/block"
	"github.com/javiermolinar/lvlup/internal/events"
)

// Control-flow errors.
var (
	ErrConflictPending = errors.New("a conflicting placement is awaiting confirmation")
	ErrNoPending       = errors.New("no placement is awaiting confirmation")
)

// Minimum block lengths.
const (
	DefaultNudgeMin  = 15 // +/- nudge and palette placement
	DefaultEditorMin = 5  // exact-duration editor
	HourMin          = 60
)

// Outcome is the result kind of a scheduler operation.
type Outcome int

// Outcomes.
const (
	Committed Outcome = iota
	PendingConfirmation
	NoChange
)

func (o Outcome) String() string {
	switch o {
	case Committed:
		return "committed"
	case PendingConfirmation:
		return "pending-confirmation"
	case NoChange:
		return "no-change"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result reports what an operation did.
type Result struct {
	Outcome   Outcome
	Block     block.TimeBlock // the affected block, or the pending candidate
	Removed   []string        // ids deleted by the operation
	Conflicts []string        // ids blocking a pending placement
}

// Scheduler holds the blocks of a single day. It is not safe for
// concurrent use; callers serialize operations.
type Scheduler struct {
	date    time.Time
	blocks  []block.TimeBlock // sorted by start
	pending *proposal

	newID     func() string
	catalog   block.Catalog
	publisher events.Publisher
	now       func() time.Time
	nudgeMin  int
	editorMin int
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithIDGenerator sets the provisional id source for new blocks.
func WithIDGenerator(fn func() string) Option {
	return func(s *Scheduler) { s.newID = fn }
}

// WithCatalog sets the habit lookup used to label events.
func WithCatalog(c block.Catalog) Option {
	return func(s *Scheduler) { s.catalog = c }
}

// WithPublisher sets where committed changes are announced.
func WithPublisher(p events.Publisher) Option {
	return func(s *Scheduler) { s.publisher = p }
}

// WithMinimums overrides the nudge and editor minimum lengths.
func WithMinimums(nudge, editor int) Option {
	return func(s *Scheduler) {
		if nudge > 0 {
			s.nudgeMin = nudge
		}
		if editor > 0 {
			s.editorMin = editor
		}
	}
}

// WithClock sets the time source used to stamp events.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// New creates an empty scheduler for date.
func New(date time.Time, opts ...Option) *Scheduler {
	s := &Scheduler{
		date:      truncateToDay(date),
		newID:     uuid.NewString,
		now:       time.Now,
		nudgeMin:  DefaultNudgeMin,
		editorMin: DefaultEditorMin,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the whole block set with the blocks of date.
// A pending confirmation is discarded.
func (s *Scheduler) Load(date time.Time, blocks []block.TimeBlock) error {
	for _, b := range blocks {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("loading block %s: %w", b.ID, err)
		}
	}
	if a, b, found := block.FirstOverlap(blocks); found {
		return fmt.Errorf("loading %s: %w: %s (%s-%s) and %s (%s-%s)",
			date.Format(block.DateLayout), block.ErrOverlap, a.ID, a.Start(), a.End(), b.ID, b.Start(), b.End())
	}

	s.date = truncateToDay(date)
	s.blocks = slices.Clone(blocks)
	sortBlocks(s.blocks)
	s.pending = nil
	return nil
}

// Date returns the day this scheduler holds.
func (s *Scheduler) Date() time.Time {
	return s.date
}

// Blocks returns a copy of the blocks ordered by start time.
func (s *Scheduler) Blocks() []block.TimeBlock {
	return slices.Clone(s.blocks)
}

// Block returns the block with the given id.
func (s *Scheduler) Block(id string) (block.TimeBlock, error) {
	i := s.indexOf(id)
	if i < 0 {
		return block.TimeBlock{}, fmt.Errorf("%w: %s", block.ErrNotFound, id)
	}
	return s.blocks[i], nil
}

// DefaultDuration returns the palette-placement length for a start minute:
// the rest of the hour, floored at 15 and capped at 60.
func DefaultDuration(minute int) int {
	return max(DefaultNudgeMin, min(HourMin, HourMin-minute))
}

// Add places a habit at hour:minute with the default duration.
func (s *Scheduler) Add(habitID string, hour, minute int) (Result, error) {
	return s.Place(habitID, hour, minute, DefaultDuration(minute))
}

// Place creates a block with an explicit duration. Overlaps leave the set
// untouched and return PendingConfirmation.
func (s *Scheduler) Place(habitID string, hour, minute, duration int) (Result, error) {
	if s.pending != nil {
		return Result{}, ErrConflictPending
	}

	candidate, err := block.New(s.newID(), habitID, hour, minute, duration)
	if err != nil {
		return Result{}, err
	}

	if conflicts := block.FindConflicts(candidate, s.blocks, ""); len(conflicts) > 0 {
		return s.propose(placeAdd, candidate, conflicts), nil
	}

	s.insert(candidate)
	s.publish(events.HabitAdded, candidate.HabitID, candidate.DurationMin, candidate.DurationMin)
	return Result{Outcome: Committed, Block: candidate}, nil
}

// Move relocates a block. The duration is cut to the rest of the target hour.
func (s *Scheduler) Move(id string, hour, minute int) (Result, error) {
	if s.pending != nil {
		return Result{}, ErrConflictPending
	}
	i := s.indexOf(id)
	if i < 0 {
		return Result{}, fmt.Errorf("%w: %s", block.ErrNotFound, id)
	}
	if minute < 0 || minute > 59 {
		return Result{}, fmt.Errorf("%w: start minute %d out of range 0-59", block.ErrValidation, minute)
	}

	candidate := s.blocks[i]
	candidate.StartHour = hour
	candidate.StartMin = minute
	candidate.DurationMin = min(candidate.DurationMin, HourMin-minute)
	if err := candidate.Validate(); err != nil {
		return Result{}, err
	}

	if conflicts := block.FindConflicts(candidate, s.blocks, id); len(conflicts) > 0 {
		return s.propose(placeMove, candidate, conflicts), nil
	}

	s.blocks[i] = candidate
	sortBlocks(s.blocks)
	return Result{Outcome: Committed, Block: candidate}, nil
}

// Remove deletes a block.
func (s *Scheduler) Remove(id string) (Result, error) {
	if s.pending != nil {
		return Result{}, ErrConflictPending
	}
	i := s.indexOf(id)
	if i < 0 {
		return Result{}, fmt.Errorf("%w: %s", block.ErrNotFound, id)
	}

	removed := s.blocks[i]
	s.blocks = slices.Delete(s.blocks, i, i+1)
	s.publish(events.HabitRemoved, removed.HabitID, -removed.DurationMin, 0)
	return Result{Outcome: Committed, Block: removed, Removed: []string{id}}, nil
}

// Complete marks a block done. Completing a completed block is a no-op.
func (s *Scheduler) Complete(id string) (Result, error) {
	if s.pending != nil {
		return Result{}, ErrConflictPending
	}
	i := s.indexOf(id)
	if i < 0 {
		return Result{}, fmt.Errorf("%w: %s", block.ErrNotFound, id)
	}

	if s.blocks[i].Completed {
		return Result{Outcome: Committed, Block: s.blocks[i]}, nil
	}
	s.blocks[i].Completed = true
	s.publish(events.HabitCompleted, s.blocks[i].HabitID, 0, s.blocks[i].DurationMin)
	return Result{Outcome: Committed, Block: s.blocks[i]}, nil
}

// DueForPrompt returns the blocks whose end has passed at now and that
// were neither completed nor prompted yet.
func (s *Scheduler) DueForPrompt(now time.Time) []block.TimeBlock {
	today := truncateToDay(now)
	var nowMin int
	switch {
	case today.Before(s.date):
		return nil
	case today.After(s.date):
		nowMin = block.MinutesPerDay
	default:
		nowMin = now.Hour()*60 + now.Minute()
	}

	var due []block.TimeBlock
	for _, b := range s.blocks {
		if !b.Completed && !b.HasPrompted && b.ElapsedBy(nowMin) {
			due = append(due, b)
		}
	}
	return due
}

// MarkPrompted records that the completion prompt fired for a block.
// It does not touch intervals and is allowed while a confirmation is pending.
func (s *Scheduler) MarkPrompted(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", block.ErrNotFound, id)
	}
	s.blocks[i].HasPrompted = true
	return nil
}

// Habit resolves a habit id through the catalog.
func (s *Scheduler) Habit(id string) (block.Habit, bool) {
	if s.catalog == nil {
		return block.Habit{}, false
	}
	return s.catalog.Habit(id)
}

func (s *Scheduler) indexOf(id string) int {
	return slices.IndexFunc(s.blocks, func(b block.TimeBlock) bool { return b.ID == id })
}

func (s *Scheduler) insert(b block.TimeBlock) {
	s.blocks = append(s.blocks, b)
	sortBlocks(s.blocks)
}

func (s *Scheduler) publish(kind events.Kind, habitID string, change, total int) {
	if s.publisher == nil {
		return
	}
	e := events.Event{
		Kind:           kind,
		HabitName:      habitID,
		DurationChange: change,
		TotalDuration:  total,
		At:             s.now(),
	}
	if h, ok := s.Habit(habitID); ok {
		e.HabitName = h.Title
		e.HabitIcon = h.Icon
	}
	s.publisher.Publish(e)
}

func sortBlocks(blocks []block.TimeBlock) {
	slices.SortStableFunc(blocks, func(a, b block.TimeBlock) int {
		return a.StartTotalMin() - b.StartTotalMin()
	})
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
