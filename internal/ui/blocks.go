package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/lvlup/internal/block"
	"github.com/javiermolinar/lvlup/internal/dateutil"
	"github.com/javiermolinar/lvlup/internal/planner"
	"github.com/javiermolinar/lvlup/internal/scheduler"
)

// ErrAmbiguousID is returned when a block id prefix matches more than one block.
var ErrAmbiguousID = errors.New("block id prefix is ambiguous")

// withDay opens the given day, runs fn and closes the session.
func (a *App) withDay(ctx context.Context, day string, fn func(s *session) error) (err error) {
	date, err := dateutil.ParseDay(day, a.now())
	if err != nil {
		return err
	}
	s, err := a.openSession(ctx, date, termOutbox{w: a.out})
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, s.Close()) }()
	return fn(s)
}

// resolveID finds the block whose id starts with prefix.
func resolveID(p *planner.Planner, prefix string) (string, error) {
	var match string
	for _, b := range p.Blocks() {
		if b.ID == prefix {
			return b.ID, nil
		}
		if strings.HasPrefix(b.ID, prefix) {
			if match != "" {
				return "", fmt.Errorf("%w: %s", ErrAmbiguousID, prefix)
			}
			match = b.ID
		}
	}
	if match == "" || prefix == "" {
		return "", fmt.Errorf("%w: %s", block.ErrNotFound, prefix)
	}
	return match, nil
}

// resolveConflict settles a pending placement: --replace replaces, --no-input
// cancels, otherwise the user is asked.
func (a *App) resolveConflict(ctx context.Context, p *planner.Planner, r scheduler.Result, replace bool) (scheduler.Result, error) {
	if r.Outcome != scheduler.PendingConfirmation {
		return r, nil
	}

	decision := scheduler.Cancel
	switch {
	case replace:
		decision = scheduler.Replace
	case !a.noInput:
		yes, err := askConfirm(ctx,
			fmt.Sprintf("%s %s-%s overlaps %s", a.label(p, r.Block.HabitID), r.Block.Start(), r.Block.End(), a.describe(p, r.Conflicts)),
			"Replace the overlapping blocks?",
			0)
		if err != nil && !isAbort(err) {
			return r, err
		}
		if yes {
			decision = scheduler.Replace
		}
	}

	resolved, err := p.Resolve(decision)
	if err != nil {
		return resolved, err
	}
	if decision == scheduler.Cancel {
		return resolved, errors.New("placement cancelled: it overlaps another block (use --replace)")
	}
	return resolved, nil
}

func (a *App) label(p *planner.Planner, habitID string) string {
	if h, ok := p.Habit(habitID); ok {
		return h.Label()
	}
	return habitID
}

func (a *App) describe(p *planner.Planner, ids []string) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		b, err := p.Block(id)
		if err != nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s-%s", a.label(p, b.HabitID), b.Start(), b.End()))
	}
	return strings.Join(parts, ", ")
}

func (a *App) printResult(verb string, p *planner.Planner, r scheduler.Result) {
	if len(r.Removed) > 0 {
		fmt.Fprintf(a.out, "%s %d overlapping block(s)\n", formatWarning("Replaced"), len(r.Removed))
	}
	if r.Outcome == scheduler.NoChange {
		fmt.Fprintln(a.out, formatMuted("No change"))
		return
	}
	b := r.Block
	fmt.Fprintf(a.out, "%s %s %s-%s %s\n", verb, formatMuted(shortID(b.ID)), b.Start(), b.End(), formatBlock(a.label(p, b.HabitID)))
}

// parseClockArg parses HH:MM into an hour and minute inside a day.
func parseClockArg(s string) (hour, minute int, err error) {
	total, err := block.ParseClock(s)
	if err != nil {
		return 0, 0, err
	}
	if total >= block.MinutesPerDay {
		return 0, 0, fmt.Errorf("%w: %q is not a start time", block.ErrInvalidTimeFormat, s)
	}
	return total / 60, total % 60, nil
}

func (a *App) addCmd() *cobra.Command {
	var (
		day      string
		at       string
		duration int
		replace  bool
	)

	cmd := &cobra.Command{
		Use:   "add <habit>",
		Short: "Place a habit block on a day",
		Long: `Place a habit block on a day.

The habit is a palette id (see "lvlup habits"). Without --at the block goes
to the next free quarter hour of today. Without --duration it runs to the end
of its hour, at least 15 minutes.`,
		Example: `  lvlup add h2 --at 09:00
  lvlup add h1 --at 21:30 --duration 20 --date tomorrow
  lvlup add h3 --at 07:00 --replace`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withDay(ctx, day, func(s *session) error {
				hour, minute, err := a.startFor(ctx, s, at)
				if err != nil {
					return err
				}
				length := duration
				if length <= 0 {
					length = scheduler.DefaultDuration(minute)
				}

				r, err := s.planner.Place(args[0], hour, minute, length)
				if err != nil {
					return err
				}
				if r, err = a.resolveConflict(ctx, s.planner, r, replace); err != nil {
					return err
				}
				a.printResult("Added", s.planner, r)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&day, "date", "", "Day (YYYY-MM-DD, today, tomorrow, weekday)")
	cmd.Flags().StringVar(&at, "at", "", "Start time (HH:MM, default: next quarter hour)")
	cmd.Flags().IntVar(&duration, "duration", 0, "Length in minutes (default: rest of the hour)")
	cmd.Flags().BoolVar(&replace, "replace", false, "Replace overlapping blocks without asking")
	return cmd
}

// startFor parses --at, or picks the next quarter hour inside the window
// when the open day is today.
func (a *App) startFor(ctx context.Context, s *session, at string) (hour, minute int, err error) {
	if at != "" {
		return parseClockArg(at)
	}
	now := a.now()
	if !dateutil.TruncateToDay(now).Equal(dateutil.TruncateToDay(s.planner.Date())) {
		return 0, 0, errors.New("--at is required for days other than today")
	}
	w, err := s.planner.Window(ctx)
	if err != nil {
		return 0, 0, err
	}
	hour, minute, ok := scheduler.NextSlot(now, w)
	if !ok {
		return 0, 0, fmt.Errorf("the planning window %02d:00-%02d:59 is over for today", w.StartHour, w.EndHour)
	}
	return hour, minute, nil
}

func (a *App) moveCmd() *cobra.Command {
	var (
		day     string
		to      string
		replace bool
	)

	cmd := &cobra.Command{
		Use:   "move <id>",
		Short: "Move a block to another start time",
		Long: `Move a block to another start time on the same day.

The block keeps its length but never runs past the end of its new hour.`,
		Example: `  lvlup move 3f2a --to 10:15`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withDay(ctx, day, func(s *session) error {
				id, err := resolveID(s.planner, args[0])
				if err != nil {
					return err
				}
				hour, minute, err := parseClockArg(to)
				if err != nil {
					return err
				}
				r, err := s.planner.Move(id, hour, minute)
				if err != nil {
					return err
				}
				if r, err = a.resolveConflict(ctx, s.planner, r, replace); err != nil {
					return err
				}
				a.printResult("Moved", s.planner, r)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&day, "date", "", "Day of the block")
	cmd.Flags().StringVar(&to, "to", "", "New start time (HH:MM)")
	cmd.Flags().BoolVar(&replace, "replace", false, "Replace overlapping blocks without asking")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func (a *App) resizeCmd() *cobra.Command {
	var day string

	cmd := &cobra.Command{
		Use:   "resize <id> <minutes>",
		Short: "Grow or shrink a block",
		Long: `Grow or shrink a block by a signed number of minutes.

Growing stops at the next block or the end of the hour. Shrinking stops at the
minimum block length. Use -- before a negative amount.`,
		Example: `  lvlup resize 3f2a 15
  lvlup resize 3f2a -- -15`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid minutes %q: %w", args[1], err)
			}
			return a.withDay(cmd.Context(), day, func(s *session) error {
				id, err := resolveID(s.planner, args[0])
				if err != nil {
					return err
				}
				r, err := s.planner.Resize(id, delta)
				if err != nil {
					return err
				}
				a.printResult("Resized", s.planner, r)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&day, "date", "", "Day of the block")
	return cmd
}

func (a *App) durationCmd() *cobra.Command {
	var day string

	cmd := &cobra.Command{
		Use:   "duration <id> <minutes>",
		Short: "Set the exact length of a block",
		Long: `Set the exact length of a block in minutes.

The length is clamped between 5 minutes and the space before the next block
or the end of the hour.`,
		Example: `  lvlup duration 3f2a 25`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid minutes %q: %w", args[1], err)
			}
			return a.withDay(cmd.Context(), day, func(s *session) error {
				id, err := resolveID(s.planner, args[0])
				if err != nil {
					return err
				}
				r, err := s.planner.SetDuration(id, minutes)
				if err != nil {
					return err
				}
				a.printResult("Updated", s.planner, r)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&day, "date", "", "Day of the block")
	return cmd
}

func (a *App) removeCmd() *cobra.Command {
	var day string

	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove a block",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDay(cmd.Context(), day, func(s *session) error {
				id, err := resolveID(s.planner, args[0])
				if err != nil {
					return err
				}
				b, err := s.planner.Block(id)
				if err != nil {
					return err
				}
				if _, err := s.planner.Remove(id); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Removed %s %s-%s %s\n", formatMuted(shortID(id)), b.Start(), b.End(), a.label(s.planner, b.HabitID))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&day, "date", "", "Day of the block")
	return cmd
}

func (a *App) doneCmd() *cobra.Command {
	var day string

	cmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a block as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDay(cmd.Context(), day, func(s *session) error {
				id, err := resolveID(s.planner, args[0])
				if err != nil {
					return err
				}
				r, err := s.planner.Complete(id)
				if err != nil {
					return err
				}
				b := r.Block
				fmt.Fprintf(a.out, "%s %s %s-%s %s\n", formatDone("✓ Done"), formatMuted(shortID(b.ID)), b.Start(), b.End(), a.label(s.planner, b.HabitID))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&day, "date", "", "Day of the block")
	return cmd
}
