package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"github.com/javiermolinar/lvlup/internal/block"
	"github.com/javiermolinar/lvlup/internal/logger"
	"github.com/javiermolinar/lvlup/internal/scheduler"
)

// ErrPromptExpired is returned when a prompt is answered after its countdown.
var ErrPromptExpired = errors.New("completion prompt expired")

// Prompt asks whether an elapsed block was done. Unanswered prompts expire
// at Deadline with no side effect.
type Prompt struct {
	Block    block.TimeBlock
	Habit    block.Habit
	Deadline time.Time
}

// Expired reports whether the countdown has run out at now.
func (p Prompt) Expired(now time.Time) bool {
	return !now.Before(p.Deadline)
}

// Remaining returns the countdown left at now, never negative.
func (p Prompt) Remaining(now time.Time) time.Duration {
	return max(0, p.Deadline.Sub(now))
}

// WatcherConfig tunes the completion heartbeat.
type WatcherConfig struct {
	Interval  time.Duration // how often elapsed blocks are checked
	Countdown time.Duration // how long a prompt stays answerable
	Rollover  bool          // reload today at midnight
	Logger    *log.Logger
	Now       func() time.Time
}

// Watcher periodically looks for elapsed blocks and emits one Prompt per
// block per day on a channel.
type Watcher struct {
	planner   *Planner
	cron      *cron.Cron
	prompts   chan Prompt
	countdown time.Duration
	now       func() time.Time
	logger    *log.Logger
}

// NewWatcher registers the heartbeat on a cron scheduler. Call Start to run it.
func NewWatcher(p *Planner, cfg WatcherConfig) (*Watcher, error) {
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("watcher interval must be positive, got %s", cfg.Interval)
	}
	if cfg.Countdown <= 0 {
		return nil, fmt.Errorf("prompt countdown must be positive, got %s", cfg.Countdown)
	}

	w := &Watcher{
		planner:   p,
		cron:      cron.New(cron.WithSeconds()),
		prompts:   make(chan Prompt, 16),
		countdown: cfg.Countdown,
		now:       cfg.Now,
		logger:    logger.OrDiscard(cfg.Logger),
	}
	if w.now == nil {
		w.now = time.Now
	}

	if _, err := w.cron.AddFunc(fmt.Sprintf("@every %s", cfg.Interval), w.Check); err != nil {
		return nil, fmt.Errorf("scheduling heartbeat: %w", err)
	}
	if cfg.Rollover {
		// second minute hour dom month dow
		if _, err := w.cron.AddFunc("0 0 0 * * *", w.rollover); err != nil {
			return nil, fmt.Errorf("scheduling rollover: %w", err)
		}
	}
	return w, nil
}

// Start runs the heartbeat in the background.
func (w *Watcher) Start() {
	w.cron.Start()
}

// Stop stops the heartbeat and waits for a running check to finish.
func (w *Watcher) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
}

// Prompts delivers completion prompts.
func (w *Watcher) Prompts() <-chan Prompt {
	return w.prompts
}

// Check claims every newly elapsed block and emits its prompt.
// A prompt that cannot be delivered immediately is dropped; the block
// stays claimed so it is never asked twice.
func (w *Watcher) Check() {
	now := w.now()
	for _, b := range w.planner.ClaimDuePrompts(now) {
		habit, _ := w.planner.Habit(b.HabitID)
		prompt := Prompt{Block: b, Habit: habit, Deadline: now.Add(w.countdown)}

		select {
		case w.prompts <- prompt:
			w.logger.Debug("completion prompt", "id", b.ID, "habit", habit.Title)
		default:
			w.logger.Warn("prompt dropped, nobody listening", "id", b.ID)
		}
	}
}

// Answer settles a prompt. Yes before the deadline completes the block;
// no, or any answer after the deadline, changes nothing.
func (w *Watcher) Answer(p Prompt, yes bool) (scheduler.Result, error) {
	if p.Expired(w.now()) {
		return scheduler.Result{Outcome: scheduler.NoChange, Block: p.Block}, ErrPromptExpired
	}
	if !yes {
		return scheduler.Result{Outcome: scheduler.NoChange, Block: p.Block}, nil
	}
	return w.planner.Complete(p.Block.ID)
}

func (w *Watcher) rollover() {
	today := w.now()
	if sameDay(w.planner.Date(), today) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if err := w.planner.SwitchDay(ctx, today); err != nil {
		w.logger.Error("rolling over to today", "err", err)
		return
	}
	w.logger.Info("rolled over", "date", today.Format(block.DateLayout))
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
