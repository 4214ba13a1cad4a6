package planner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/javiermolinar/lvlup/internal/block"
	"github.com/javiermolinar/lvlup/internal/db"
	"github.com/javiermolinar/lvlup/internal/events"
	"github.com/javiermolinar/lvlup/internal/scheduler"
)

var testDate = time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)

type eventLog struct {
	mu     sync.Mutex
	events []events.Event
}

func (l *eventLog) Publish(e events.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) last() events.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.events[len(l.events)-1]
}

func newTestStore(t *testing.T) *db.Store {
	t.Helper()
	store, err := db.New(filepath.Join(t.TempDir(), "planner.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func openTestPlanner(t *testing.T, repo block.Repository, pub events.Publisher) *Planner {
	t.Helper()
	n := 0
	p, err := Open(context.Background(), Deps{
		Repo:      repo,
		Publisher: pub,
		NewID:     func() string { n++; return fmt.Sprintf("b%d", n) },
		Now:       func() time.Time { return testDate.Add(12 * time.Hour) },
	}, testDate)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(p.Close)
	return p
}

func TestPlanner_PersistsCommittedChanges(t *testing.T) {
	store := newTestStore(t)
	p := openTestPlanner(t, store, nil)
	ctx := context.Background()

	r, err := p.Place("h1", 8, 0, 30)
	if err != nil || r.Outcome != scheduler.Committed {
		t.Fatalf("Place = %+v, %v", r, err)
	}
	b2, _ := p.Add("h2", 9, 0)
	if _, err := p.Resize(b2.Block.ID, -15); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Complete(r.Block.ID); err != nil {
		t.Fatal(err)
	}
	p.Flush()

	records, err := store.ListBlocks(ctx, testDate)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %+v, want 2", records)
	}
	if records[0].Title != "Lectura" || !records[0].Completed {
		t.Errorf("first record = %+v", records[0])
	}
	if records[1].StartTime != "09:00" || records[1].EndTime != "09:45" {
		t.Errorf("second record = %s-%s, want 09:00-09:45", records[1].StartTime, records[1].EndTime)
	}
	if p.Failures() != 0 {
		t.Errorf("Failures = %d", p.Failures())
	}

	if _, err := p.Remove(r.Block.ID); err != nil {
		t.Fatal(err)
	}
	p.Flush()
	records, _ = store.ListBlocks(ctx, testDate)
	if len(records) != 1 {
		t.Errorf("records after remove = %+v", records)
	}
}

func TestPlanner_ReopenLoadsDay(t *testing.T) {
	store := newTestStore(t)
	p := openTestPlanner(t, store, nil)
	if _, err := p.Place("h3", 6, 30, 30); err != nil {
		t.Fatal(err)
	}
	p.Close()

	again := openTestPlanner(t, store, nil)
	blocks := again.Blocks()
	if len(blocks) != 1 || blocks[0].Start() != "06:30" || blocks[0].DurationMin != 30 {
		t.Errorf("reloaded blocks = %+v", blocks)
	}
}

func TestPlanner_UnknownHabit(t *testing.T) {
	p := openTestPlanner(t, newTestStore(t), nil)
	if _, err := p.Add("h99", 8, 0); !errors.Is(err, ErrUnknownHabit) {
		t.Errorf("error = %v, want ErrUnknownHabit", err)
	}
}

func TestPlanner_ReplaceOnAdd(t *testing.T) {
	store := newTestStore(t)
	p := openTestPlanner(t, store, nil)

	first, _ := p.Place("h1", 10, 0, 60)
	r, err := p.Place("h2", 10, 15, 15)
	if err != nil || r.Outcome != scheduler.PendingConfirmation {
		t.Fatalf("Place = %+v, %v", r, err)
	}
	p.Flush()
	records, _ := store.ListBlocks(context.Background(), testDate)
	if len(records) != 1 {
		t.Fatalf("pending placement must not be persisted: %+v", records)
	}

	res, err := p.Resolve(scheduler.Replace)
	if err != nil {
		t.Fatal(err)
	}
	p.Flush()

	records, _ = store.ListBlocks(context.Background(), testDate)
	if len(records) != 1 || records[0].ID != res.Block.ID || records[0].ID == first.Block.ID {
		t.Errorf("records after replace = %+v", records)
	}
}

func TestPlanner_ReplaceOnMove(t *testing.T) {
	store := newTestStore(t)
	p := openTestPlanner(t, store, nil)

	a, _ := p.Place("h1", 8, 0, 30)
	b, _ := p.Place("h2", 9, 0, 30)
	if r, _ := p.Move(a.Block.ID, 9, 15); r.Outcome != scheduler.PendingConfirmation {
		t.Fatalf("Move outcome = %s", r.Outcome)
	}
	if _, err := p.Resolve(scheduler.Replace); err != nil {
		t.Fatal(err)
	}
	p.Flush()

	records, _ := store.ListBlocks(context.Background(), testDate)
	if len(records) != 1 || records[0].ID != a.Block.ID || records[0].StartTime != "09:15" {
		t.Errorf("records = %+v, want only %s at 09:15 (removed %s)", records, a.Block.ID, b.Block.ID)
	}
	if p.Failures() != 0 {
		t.Errorf("Failures = %d", p.Failures())
	}
}

func TestPlanner_CancelKeepsState(t *testing.T) {
	p := openTestPlanner(t, newTestStore(t), nil)
	first, _ := p.Place("h1", 10, 0, 60)
	if _, err := p.Place("h2", 10, 15, 15); err != nil {
		t.Fatal(err)
	}
	if _, ok := p.Pending(); !ok {
		t.Fatal("expected a pending placement")
	}
	if _, err := p.Resolve(scheduler.Cancel); err != nil {
		t.Fatal(err)
	}
	blocks := p.Blocks()
	if len(blocks) != 1 || blocks[0].ID != first.Block.ID {
		t.Errorf("blocks = %+v", blocks)
	}
}

type failingRepo struct {
	*db.Store
}

func (failingRepo) CreateBlock(context.Context, block.Record) (string, error) {
	return "", errors.New("disk full")
}

func TestPlanner_FailedWriteKeepsOptimisticState(t *testing.T) {
	p := openTestPlanner(t, failingRepo{newTestStore(t)}, nil)

	r, err := p.Place("h1", 8, 0, 30)
	if err != nil {
		t.Fatalf("Place should succeed in memory: %v", err)
	}
	p.Flush()

	if p.Failures() != 1 {
		t.Errorf("Failures = %d, want 1", p.Failures())
	}
	if _, err := p.Block(r.Block.ID); err != nil {
		t.Errorf("block should stay in memory after a failed write: %v", err)
	}
}

func TestPlanner_CompleteWritesOnce(t *testing.T) {
	store := newTestStore(t)
	log := &eventLog{}
	p := openTestPlanner(t, store, log)

	r, _ := p.Place("h4", 7, 0, 15)
	for range 3 {
		if _, err := p.Complete(r.Block.ID); err != nil {
			t.Fatal(err)
		}
	}
	p.Flush()

	completed := 0
	for _, e := range log.events {
		if e.Kind == events.HabitCompleted {
			completed++
		}
	}
	if completed != 1 {
		t.Errorf("completed events = %d, want 1", completed)
	}
}

func TestPlanner_SwitchDay(t *testing.T) {
	store := newTestStore(t)
	p := openTestPlanner(t, store, nil)
	if _, err := p.Place("h1", 8, 0, 30); err != nil {
		t.Fatal(err)
	}

	next := testDate.AddDate(0, 0, 1)
	if err := p.SwitchDay(context.Background(), next); err != nil {
		t.Fatal(err)
	}
	if !p.Date().Equal(next) || len(p.Blocks()) != 0 {
		t.Errorf("after switch: date %s, blocks %+v", p.Date(), p.Blocks())
	}

	if err := p.SwitchDay(context.Background(), testDate); err != nil {
		t.Fatal(err)
	}
	if len(p.Blocks()) != 1 {
		t.Errorf("switching back should reload the persisted block, got %+v", p.Blocks())
	}
}

func TestPlanner_SetWindowPublishes(t *testing.T) {
	store := newTestStore(t)
	log := &eventLog{}
	p := openTestPlanner(t, store, log)
	ctx := context.Background()

	if err := p.SetWindow(ctx, block.Window{StartHour: 6, EndHour: 22}); err != nil {
		t.Fatal(err)
	}
	w, _ := p.Window(ctx)
	if w.StartHour != 6 || w.EndHour != 22 {
		t.Errorf("Window = %+v", w)
	}
	e := log.last()
	if e.Kind != events.ConfigChanged || e.StartHour != 6 || e.EndHour != 22 {
		t.Errorf("event = %+v", e)
	}

	if err := p.SetWindow(ctx, block.Window{StartHour: 9, EndHour: 9}); !errors.Is(err, block.ErrInvalidWindow) {
		t.Errorf("error = %v, want ErrInvalidWindow", err)
	}
}

func TestPlanner_SaveHabit(t *testing.T) {
	p := openTestPlanner(t, newTestStore(t), nil)
	if err := p.SaveHabit(context.Background(), block.Habit{ID: "h6", Title: "Journaling", Icon: "📝"}); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Add("h6", 20, 0); err != nil {
		t.Errorf("new habit should be placeable: %v", err)
	}
	if len(p.Habits()) != 6 {
		t.Errorf("Habits = %+v", p.Habits())
	}
}

func TestPlanner_Stats(t *testing.T) {
	p := openTestPlanner(t, newTestStore(t), nil)
	a, _ := p.Place("h1", 8, 0, 30)
	if _, err := p.Place("h2", 9, 0, 30); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Complete(a.Block.ID); err != nil {
		t.Fatal(err)
	}

	stats, err := p.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.WeeklyTotal != 2 || stats.WeeklyCompleted != 1 || stats.CompletionRate != 50 || stats.CurrentStreak != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestPlanner_ClosedRejectsOperations(t *testing.T) {
	p := openTestPlanner(t, newTestStore(t), nil)
	r, err := p.Place("h1", 8, 0, 30)
	if err != nil {
		t.Fatal(err)
	}
	p.Close()

	ops := map[string]func() error{
		"place":    func() error { _, err := p.Place("h2", 9, 0, 30); return err },
		"move":     func() error { _, err := p.Move(r.Block.ID, 10, 0); return err },
		"resize":   func() error { _, err := p.Resize(r.Block.ID, 15); return err },
		"duration": func() error { _, err := p.SetDuration(r.Block.ID, 20); return err },
		"complete": func() error { _, err := p.Complete(r.Block.ID); return err },
		"remove":   func() error { _, err := p.Remove(r.Block.ID); return err },
		"resolve":  func() error { _, err := p.Resolve(scheduler.Cancel); return err },
		"switch":   func() error { return p.SwitchDay(context.Background(), testDate.AddDate(0, 0, 1)) },
		"reload":   func() error { return p.Reload(context.Background()) },
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			if err := op(); !errors.Is(err, ErrClosed) {
				t.Errorf("error = %v, want ErrClosed", err)
			}
		})
	}

	p.Close()
	if len(p.Blocks()) != 1 {
		t.Errorf("blocks = %+v, want the committed block", p.Blocks())
	}
}

func TestPlanner_ClaimDuePromptsOnce(t *testing.T) {
	p := openTestPlanner(t, newTestStore(t), nil)
	for _, hour := range []int{7, 8, 9} {
		if _, err := p.Place("h1", hour, 0, 30); err != nil {
			t.Fatal(err)
		}
	}

	now := testDate.Add(10 * time.Hour)
	var (
		mu      sync.Mutex
		claimed = map[string]int{}
		wg      sync.WaitGroup
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, b := range p.ClaimDuePrompts(now) {
				if !b.HasPrompted {
					t.Errorf("claimed block %s is not marked", b.ID)
				}
				mu.Lock()
				claimed[b.ID]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(claimed) != 3 {
		t.Errorf("claimed %d blocks, want 3", len(claimed))
	}
	for id, n := range claimed {
		if n != 1 {
			t.Errorf("block %s claimed %d times", id, n)
		}
	}
	if got := p.ClaimDuePrompts(now); len(got) != 0 {
		t.Errorf("second claim = %+v, want none", got)
	}
}
