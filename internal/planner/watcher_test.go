package planner

import (
	"errors"
	"testing"
	"time"

	"github.com/javiermolinar/lvlup/internal/scheduler"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestWatcher(t *testing.T, clock *fakeClock) (*Watcher, *Planner) {
	t.Helper()
	p := openTestPlanner(t, newTestStore(t), nil)
	w, err := NewWatcher(p, WatcherConfig{
		Interval:  time.Minute,
		Countdown: 5 * time.Minute,
		Now:       clock.Now,
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	return w, p
}

func TestNewWatcher_InvalidConfig(t *testing.T) {
	p := openTestPlanner(t, newTestStore(t), nil)
	tests := []struct {
		name string
		cfg  WatcherConfig
	}{
		{name: "zero interval", cfg: WatcherConfig{Countdown: time.Minute}},
		{name: "zero countdown", cfg: WatcherConfig{Interval: time.Minute}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewWatcher(p, tt.cfg); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestWatcher_PromptsOncePerBlock(t *testing.T) {
	clock := &fakeClock{t: testDate.Add(8*time.Hour + 10*time.Minute)}
	w, p := newTestWatcher(t, clock)

	r, _ := p.Place("h1", 8, 0, 30)
	if _, err := p.Place("h2", 9, 0, 30); err != nil {
		t.Fatal(err)
	}

	w.Check()
	if len(w.Prompts()) != 0 {
		t.Fatal("no block has elapsed yet")
	}

	clock.t = testDate.Add(8*time.Hour + 31*time.Minute)
	w.Check()
	w.Check()
	if len(w.Prompts()) != 1 {
		t.Fatalf("prompts = %d, want exactly 1", len(w.Prompts()))
	}

	prompt := <-w.Prompts()
	if prompt.Block.ID != r.Block.ID || prompt.Habit.ID != "h1" {
		t.Errorf("prompt = %+v", prompt)
	}
	if !prompt.Deadline.Equal(clock.t.Add(5 * time.Minute)) {
		t.Errorf("Deadline = %s", prompt.Deadline)
	}
	b, _ := p.Block(r.Block.ID)
	if !b.HasPrompted {
		t.Error("block should be marked prompted")
	}
}

func TestWatcher_Answer(t *testing.T) {
	clock := &fakeClock{t: testDate.Add(9 * time.Hour)}
	w, p := newTestWatcher(t, clock)
	r, _ := p.Place("h1", 8, 0, 30)

	w.Check()
	prompt := <-w.Prompts()

	res, err := w.Answer(prompt, false)
	if err != nil || res.Outcome != scheduler.NoChange {
		t.Fatalf("Answer(no) = %+v, %v", res, err)
	}
	if b, _ := p.Block(r.Block.ID); b.Completed {
		t.Fatal("declined prompt must not complete the block")
	}

	clock.t = clock.t.Add(2 * time.Minute)
	if prompt.Remaining(clock.t) != 3*time.Minute {
		t.Errorf("Remaining = %s, want 3m", prompt.Remaining(clock.t))
	}
	res, err = w.Answer(prompt, true)
	if err != nil || res.Outcome != scheduler.Committed || !res.Block.Completed {
		t.Fatalf("Answer(yes) = %+v, %v", res, err)
	}
}

func TestWatcher_AnswerAfterDeadline(t *testing.T) {
	clock := &fakeClock{t: testDate.Add(9 * time.Hour)}
	w, p := newTestWatcher(t, clock)
	r, _ := p.Place("h1", 8, 0, 30)

	w.Check()
	prompt := <-w.Prompts()

	clock.t = prompt.Deadline
	if prompt.Remaining(clock.t) != 0 {
		t.Errorf("Remaining = %s, want 0", prompt.Remaining(clock.t))
	}
	if _, err := w.Answer(prompt, true); !errors.Is(err, ErrPromptExpired) {
		t.Errorf("error = %v, want ErrPromptExpired", err)
	}
	if b, _ := p.Block(r.Block.ID); b.Completed {
		t.Error("expired prompt must not complete the block")
	}
}

func TestWatcher_Rollover(t *testing.T) {
	clock := &fakeClock{t: testDate.Add(10 * time.Hour)}
	w, p := newTestWatcher(t, clock)
	if _, err := p.Place("h1", 8, 0, 30); err != nil {
		t.Fatal(err)
	}

	w.rollover()
	if len(p.Blocks()) != 1 {
		t.Fatal("rollover on the same day must keep the open day")
	}

	clock.t = testDate.AddDate(0, 0, 1).Add(time.Second)
	w.rollover()
	if !sameDay(p.Date(), clock.t) {
		t.Errorf("Date = %s, want next day", p.Date())
	}
	if len(p.Blocks()) != 0 {
		t.Errorf("next day should be empty, got %+v", p.Blocks())
	}
}
