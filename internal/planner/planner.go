// Package planner is the session around one open day: it applies scheduler
// operations in memory, mirrors committed changes to the repository in the
// background and announces them on the event bus.
package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/javiermolinar/lvlup/internal/block"
	"github.com/javiermolinar/lvlup/internal/events"
	"github.com/javiermolinar/lvlup/internal/logger"
	"github.com/javiermolinar/lvlup/internal/scheduler"
)

var (
	// ErrUnknownHabit is returned when placing a habit missing from the catalog.
	ErrUnknownHabit = errors.New("unknown habit")
	// ErrClosed is returned by operations on a closed planner.
	ErrClosed = errors.New("planner is closed")
)

// queueSize is the persistence backlog before submit blocks.
const queueSize = 256

// Deps are the collaborators of a Planner.
type Deps struct {
	Repo      block.Repository
	Publisher events.Publisher // optional
	Logger    *log.Logger      // optional
	NudgeMin  int              // 0 keeps the scheduler default
	EditorMin int              // 0 keeps the scheduler default
	NewID     func() string    // optional provisional id source
	Now       func() time.Time // optional clock
}

// Planner owns the scheduler for the open day. It is safe for concurrent
// use; operations are serialized.
type Planner struct {
	mu sync.Mutex

	repo      block.Repository
	publisher events.Publisher
	logger    *log.Logger
	now       func() time.Time

	catalog *block.StaticCatalog
	sched   *scheduler.Scheduler
	queue   *persistQueue
	closed  bool
}

// Open loads the habits and the blocks of date and starts the persistence worker.
func Open(ctx context.Context, deps Deps, date time.Time) (*Planner, error) {
	if deps.Repo == nil {
		return nil, errors.New("planner needs a repository")
	}

	p := &Planner{
		repo:      deps.Repo,
		publisher: deps.Publisher,
		logger:    logger.OrDiscard(deps.Logger),
		now:       deps.Now,
	}
	if p.now == nil {
		p.now = time.Now
	}

	habits, err := p.repo.Habits(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading habits: %w", err)
	}
	p.catalog = block.NewStaticCatalog(habits...)

	opts := []scheduler.Option{
		scheduler.WithCatalog(p.catalog),
		scheduler.WithMinimums(deps.NudgeMin, deps.EditorMin),
		scheduler.WithClock(p.now),
	}
	if deps.Publisher != nil {
		opts = append(opts, scheduler.WithPublisher(deps.Publisher))
	}
	if deps.NewID != nil {
		opts = append(opts, scheduler.WithIDGenerator(deps.NewID))
	}
	p.sched = scheduler.New(date, opts...)

	if err := p.load(ctx, date); err != nil {
		return nil, err
	}

	p.queue = newPersistQueue(p.logger, queueSize)
	return p, nil
}

func (p *Planner) load(ctx context.Context, date time.Time) error {
	records, err := p.repo.ListBlocks(ctx, date)
	if err != nil {
		return fmt.Errorf("loading blocks: %w", err)
	}

	blocks := make([]block.TimeBlock, 0, len(records))
	for _, r := range records {
		b, err := block.FromRecord(r)
		if err != nil {
			return fmt.Errorf("loading blocks: %w", err)
		}
		blocks = append(blocks, b)
	}
	return p.sched.Load(date, blocks)
}

// Date returns the open day.
func (p *Planner) Date() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sched.Date()
}

// Blocks returns the open day's blocks ordered by start.
func (p *Planner) Blocks() []block.TimeBlock {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sched.Blocks()
}

// Block returns one block of the open day.
func (p *Planner) Block(id string) (block.TimeBlock, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sched.Block(id)
}

// Pending returns the placement awaiting confirmation, if any.
func (p *Planner) Pending() (scheduler.Proposal, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sched.Pending()
}

// Habits returns the palette in display order.
func (p *Planner) Habits() []block.Habit {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.catalog.All()
}

// Habit looks up a habit by id.
func (p *Planner) Habit(id string) (block.Habit, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.catalog.Habit(id)
}

// Add places a habit with the default duration.
func (p *Planner) Add(habitID string, hour, minute int) (scheduler.Result, error) {
	return p.Place(habitID, hour, minute, scheduler.DefaultDuration(minute))
}

// Place places a habit with an explicit duration.
func (p *Planner) Place(habitID string, hour, minute, duration int) (scheduler.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return scheduler.Result{}, ErrClosed
	}

	if _, ok := p.catalog.Habit(habitID); !ok {
		return scheduler.Result{}, fmt.Errorf("%w: %s", ErrUnknownHabit, habitID)
	}

	r, err := p.sched.Place(habitID, hour, minute, duration)
	if err != nil || r.Outcome != scheduler.Committed {
		return r, err
	}
	p.persistCreate(r.Block)
	return r, nil
}

// Move relocates a block.
func (p *Planner) Move(id string, hour, minute int) (scheduler.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return scheduler.Result{}, ErrClosed
	}

	r, err := p.sched.Move(id, hour, minute)
	if err != nil || r.Outcome != scheduler.Committed {
		return r, err
	}
	p.persistTimes(r.Block)
	return r, nil
}

// Resize nudges a block's duration by delta minutes.
func (p *Planner) Resize(id string, delta int) (scheduler.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return scheduler.Result{}, ErrClosed
	}

	r, err := p.sched.Resize(id, delta)
	if err != nil || r.Outcome != scheduler.Committed {
		return r, err
	}
	p.persistTimes(r.Block)
	return r, nil
}

// SetDuration sets a block's exact duration.
func (p *Planner) SetDuration(id string, minutes int) (scheduler.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return scheduler.Result{}, ErrClosed
	}

	r, err := p.sched.SetDuration(id, minutes)
	if err != nil {
		return r, err
	}
	p.persistTimes(r.Block)
	return r, nil
}

// MaxDuration returns the longest duration SetDuration accepts for a block.
func (p *Planner) MaxDuration(id string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sched.MaxDuration(id)
}

// Remove deletes a block.
func (p *Planner) Remove(id string) (scheduler.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return scheduler.Result{}, ErrClosed
	}

	r, err := p.sched.Remove(id)
	if err != nil {
		return r, err
	}
	p.persistDelete(id)
	return r, nil
}

// Complete marks a block done. Repeated calls write nothing.
func (p *Planner) Complete(id string) (scheduler.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return scheduler.Result{}, ErrClosed
	}

	before, _ := p.sched.Block(id)
	r, err := p.sched.Complete(id)
	if err != nil {
		return r, err
	}
	if !before.Completed {
		p.queue.submit("complete", id, func(ctx context.Context) error {
			return p.repo.UpdateCompleted(ctx, id, true)
		})
	}
	return r, nil
}

// Resolve answers the pending confirmation.
func (p *Planner) Resolve(d scheduler.Decision) (scheduler.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return scheduler.Result{}, ErrClosed
	}

	proposal, _ := p.sched.Pending()
	r, err := p.sched.ResolveConflict(d)
	if err != nil || d != scheduler.Replace {
		return r, err
	}

	for _, id := range r.Removed {
		p.persistDelete(id)
	}
	if proposal.IsMove {
		p.persistTimes(r.Block)
	} else {
		p.persistCreate(r.Block)
	}
	return r, nil
}

// ClaimDuePrompts marks every elapsed block still waiting for a completion
// prompt as prompted and returns them. Each block is claimed at most once.
func (p *Planner) ClaimDuePrompts(now time.Time) []block.TimeBlock {
	p.mu.Lock()
	defer p.mu.Unlock()

	var claimed []block.TimeBlock
	for _, b := range p.sched.DueForPrompt(now) {
		if err := p.sched.MarkPrompted(b.ID); err != nil {
			p.logger.Warn("marking prompt", "id", b.ID, "err", err)
			continue
		}
		b.HasPrompted = true
		claimed = append(claimed, b)
	}
	return claimed
}

// SwitchDay waits for queued writes and loads another day.
func (p *Planner) SwitchDay(ctx context.Context, date time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}

	p.queue.flush()
	return p.load(ctx, date)
}

// Reload re-reads the open day from the repository.
func (p *Planner) Reload(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}

	p.queue.flush()
	return p.load(ctx, p.sched.Date())
}

// Window returns the stored planning window.
func (p *Planner) Window(ctx context.Context) (block.Window, error) {
	return p.repo.Window(ctx)
}

// SetWindow stores the planning window and announces the change.
func (p *Planner) SetWindow(ctx context.Context, w block.Window) error {
	if err := w.Validate(); err != nil {
		return err
	}
	if err := p.repo.SaveWindow(ctx, w); err != nil {
		return err
	}
	if p.publisher != nil {
		p.publisher.Publish(events.Event{
			Kind:      events.ConfigChanged,
			StartHour: w.StartHour,
			EndHour:   w.EndHour,
			At:        p.now(),
		})
	}
	return nil
}

// SaveHabit adds or updates a palette entry.
func (p *Planner) SaveHabit(ctx context.Context, h block.Habit) error {
	if err := p.repo.SaveHabit(ctx, h); err != nil {
		return err
	}
	p.mu.Lock()
	p.catalog.Put(h)
	p.mu.Unlock()
	return nil
}

// Stats returns the seven-day aggregate ending today, after queued writes land.
func (p *Planner) Stats(ctx context.Context) (block.WeekStats, error) {
	p.Flush()
	return p.repo.WeekStats(ctx, p.now())
}

// Flush waits for every queued write.
func (p *Planner) Flush() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue.flush()
}

// Failures returns how many background writes have failed.
func (p *Planner) Failures() int64 {
	return p.queue.failures.Load()
}

// Close flushes queued writes and stops the worker. Later operations
// return ErrClosed. The repository stays open.
func (p *Planner) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.queue.stop()
}

func (p *Planner) title(habitID string) string {
	if h, ok := p.catalog.Habit(habitID); ok {
		return h.Title
	}
	return ""
}

func (p *Planner) persistCreate(b block.TimeBlock) {
	rec := b.ToRecord(p.sched.Date(), p.title(b.HabitID))
	p.queue.submit("create", b.ID, func(ctx context.Context) error {
		_, err := p.repo.CreateBlock(ctx, rec)
		return err
	})
}

func (p *Planner) persistTimes(b block.TimeBlock) {
	id, start, end := b.ID, b.Start(), b.End()
	p.queue.submit("update-times", id, func(ctx context.Context) error {
		return p.repo.UpdateTimes(ctx, id, start, end)
	})
}

func (p *Planner) persistDelete(id string) {
	p.queue.submit("delete", id, func(ctx context.Context) error {
		return p.repo.DeleteBlock(ctx, id)
	})
}
