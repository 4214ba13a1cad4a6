package scheduler

import (
	"fmt"
	"slices"

	"github.com/javiermolinar/lvlup/internal/block"
	"github.com/javiermolinar/lvlup/internal/events"
)

// Decision answers a pending confirmation.
type Decision int

// Decisions.
const (
	Cancel Decision = iota
	Replace
)

type placeKind int

const (
	placeAdd placeKind = iota
	placeMove
)

type proposal struct {
	kind      placeKind
	candidate block.TimeBlock
	conflicts []string
}

// Proposal is a placement waiting for the caller to replace or cancel.
type Proposal struct {
	Candidate block.TimeBlock
	Conflicts []string
	IsMove    bool
}

// Pending returns the placement awaiting confirmation, if any.
func (s *Scheduler) Pending() (Proposal, bool) {
	if s.pending == nil {
		return Proposal{}, false
	}
	return Proposal{
		Candidate: s.pending.candidate,
		Conflicts: slices.Clone(s.pending.conflicts),
		IsMove:    s.pending.kind == placeMove,
	}, true
}

func (s *Scheduler) propose(kind placeKind, candidate block.TimeBlock, conflicts []string) Result {
	s.pending = &proposal{kind: kind, candidate: candidate, conflicts: conflicts}
	return Result{
		Outcome:   PendingConfirmation,
		Block:     candidate,
		Conflicts: slices.Clone(conflicts),
	}
}

// ResolveConflict settles the pending placement. Cancel discards it and
// leaves the set unchanged. Replace removes every conflicting block and
// commits the candidate in one step.
func (s *Scheduler) ResolveConflict(d Decision) (Result, error) {
	p := s.pending
	if p == nil {
		return Result{}, ErrNoPending
	}

	switch d {
	case Cancel:
		s.pending = nil
		return Result{Outcome: Committed}, nil
	case Replace:
	default:
		return Result{}, fmt.Errorf("unknown decision %d", d)
	}

	candidate := p.candidate
	next := make([]block.TimeBlock, 0, len(s.blocks)+1)
	var removed []block.TimeBlock
	for _, b := range s.blocks {
		switch {
		case slices.Contains(p.conflicts, b.ID):
			removed = append(removed, b)
		case p.kind == placeMove && b.ID == candidate.ID:
			// the live block may have been prompted while the move was pending
			candidate.Completed = b.Completed
			candidate.HasPrompted = b.HasPrompted
		default:
			next = append(next, b)
		}
	}

	if ids := block.FindConflicts(candidate, next, candidate.ID); len(ids) > 0 {
		return Result{}, fmt.Errorf("replacing %v: %w with %v", p.conflicts, block.ErrOverlap, ids)
	}

	next = append(next, candidate)
	sortBlocks(next)
	s.blocks = next
	s.pending = nil

	removedIDs := make([]string, 0, len(removed))
	for _, b := range removed {
		removedIDs = append(removedIDs, b.ID)
		s.publish(events.HabitRemoved, b.HabitID, -b.DurationMin, 0)
	}
	if p.kind == placeAdd {
		s.publish(events.HabitAdded, candidate.HabitID, candidate.DurationMin, candidate.DurationMin)
	}

	return Result{Outcome: Committed, Block: candidate, Removed: removedIDs}, nil
}
