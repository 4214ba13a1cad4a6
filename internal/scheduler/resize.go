package scheduler

import (
	"fmt"

	"github.com/javiermolinar/lvlup/internal/block"
	"github.com/javiermolinar/lvlup/internal/events"
)

// bounds is the free interval around a block inside its hour row:
// floor is the previous block's end or the top of the hour, ceiling is
// the next block's start or the next hour boundary.
type bounds struct {
	floor   int
	ceiling int
}

func (s *Scheduler) boundsOf(b block.TimeBlock) bounds {
	rowStart := b.StartHour * HourMin
	bd := bounds{floor: rowStart, ceiling: rowStart + HourMin}

	start, end := b.StartTotalMin(), b.EndTotalMin()
	for _, o := range s.blocks {
		if o.ID == b.ID {
			continue
		}
		if next := o.StartTotalMin(); next >= end && next < bd.ceiling {
			bd.ceiling = next
		}
		if prev := o.EndTotalMin(); prev <= start && prev > bd.floor {
			bd.floor = prev
		}
	}
	return bd
}

// Resize grows or shrinks a block by delta minutes.
//
// Growing prefers the free space after the block, then the space before
// it, each only when it fits the whole delta; otherwise it takes whatever
// is left ahead, then behind. Shrinking keeps the start and never goes
// below the nudge minimum.
func (s *Scheduler) Resize(id string, delta int) (Result, error) {
	if s.pending != nil {
		return Result{}, ErrConflictPending
	}
	i := s.indexOf(id)
	if i < 0 {
		return Result{}, fmt.Errorf("%w: %s", block.ErrNotFound, id)
	}

	b := s.blocks[i]
	candidate := b

	switch {
	case delta > 0:
		bd := s.boundsOf(b)
		ahead := max(0, bd.ceiling-b.EndTotalMin())
		behind := max(0, b.StartTotalMin()-bd.floor)

		switch {
		case ahead >= delta:
			candidate.DurationMin += delta
		case behind >= delta:
			candidate = candidate.WithStart(b.StartTotalMin() - delta)
			candidate.DurationMin += delta
		case ahead > 0:
			candidate.DurationMin += ahead
		case behind > 0:
			candidate = candidate.WithStart(b.StartTotalMin() - behind)
			candidate.DurationMin += behind
		default:
			return Result{Outcome: NoChange, Block: b}, nil
		}
	case delta < 0:
		newDur := max(s.nudgeMin, b.DurationMin+delta)
		if newDur >= b.DurationMin {
			return Result{Outcome: NoChange, Block: b}, nil
		}
		candidate.DurationMin = newDur
	default:
		return Result{Outcome: NoChange, Block: b}, nil
	}

	if err := s.commitDuration(i, candidate); err != nil {
		return Result{}, err
	}
	return Result{Outcome: Committed, Block: candidate}, nil
}

// SetDuration sets an exact duration, clamped between the editor minimum
// and the free space up to the next block or hour boundary. The start
// never moves. When the minimum exceeds the free space the minimum wins.
func (s *Scheduler) SetDuration(id string, requested int) (Result, error) {
	if s.pending != nil {
		return Result{}, ErrConflictPending
	}
	i := s.indexOf(id)
	if i < 0 {
		return Result{}, fmt.Errorf("%w: %s", block.ErrNotFound, id)
	}

	b := s.blocks[i]
	maxAllowed := s.boundsOf(b).ceiling - b.StartTotalMin()

	candidate := b
	candidate.DurationMin = max(s.editorMin, min(requested, maxAllowed))

	if err := s.commitDuration(i, candidate); err != nil {
		return Result{}, err
	}
	return Result{Outcome: Committed, Block: candidate}, nil
}

// MaxDuration returns the longest duration SetDuration would accept for a block.
func (s *Scheduler) MaxDuration(id string) (int, error) {
	i := s.indexOf(id)
	if i < 0 {
		return 0, fmt.Errorf("%w: %s", block.ErrNotFound, id)
	}
	b := s.blocks[i]
	return max(s.editorMin, s.boundsOf(b).ceiling-b.StartTotalMin()), nil
}

// commitDuration re-validates a resized block against the rest of the day
// and stores it.
func (s *Scheduler) commitDuration(i int, candidate block.TimeBlock) error {
	if err := candidate.Validate(); err != nil {
		return err
	}
	if ids := block.FindConflicts(candidate, s.blocks, candidate.ID); len(ids) > 0 {
		return fmt.Errorf("resizing %s: %w: %v", candidate.ID, block.ErrOverlap, ids)
	}

	old := s.blocks[i]
	s.blocks[i] = candidate
	sortBlocks(s.blocks)

	change := candidate.DurationMin - old.DurationMin
	switch {
	case change > 0:
		s.publish(events.HabitExpanded, candidate.HabitID, change, candidate.DurationMin)
	case change < 0:
		s.publish(events.HabitReduced, candidate.HabitID, change, candidate.DurationMin)
	}
	return nil
}
