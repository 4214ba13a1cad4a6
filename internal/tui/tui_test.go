package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/javiermolinar/lvlup/internal/db"
	"github.com/javiermolinar/lvlup/internal/planner"
)

var testDate = time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func openPlanner(t *testing.T) *planner.Planner {
	t.Helper()
	store, err := db.New(filepath.Join(t.TempDir(), "tui.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	p, err := planner.Open(context.Background(), planner.Deps{Repo: store}, testDate)
	if err != nil {
		t.Fatalf("opening planner: %v", err)
	}
	t.Cleanup(func() {
		p.Close()
		_ = store.Close()
	})
	return p
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	return New(Options{
		Planner: openPlanner(t),
		Now:     func() time.Time { return testDate.Add(8*time.Hour + 5*time.Minute) },
	})
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m
}

func TestNew_CursorStartsAtCurrentQuarter(t *testing.T) {
	m := newTestModel(t)
	if m.cursor != 8*60 {
		t.Errorf("cursor = %d, want 480", m.cursor)
	}

	m = press(t, m, "up", "up", "up")
	if m.cursor != 7*60+15 {
		t.Errorf("cursor = %d, want 435", m.cursor)
	}
	for range 200 {
		m = press(t, m, "up")
	}
	if m.cursor != m.window.StartHour*60 {
		t.Errorf("cursor should stop at the first row, got %d", m.cursor)
	}
}

func TestPlaceAndResize(t *testing.T) {
	m := press(t, newTestModel(t), "enter")

	blocks := m.planner.Blocks()
	if len(blocks) != 1 || blocks[0].HabitID != "h1" || blocks[0].Start() != "08:00" || blocks[0].DurationMin != 60 {
		t.Fatalf("blocks = %+v", blocks)
	}
	if !strings.HasPrefix(m.status, "Added") {
		t.Errorf("status = %q", m.status)
	}

	m = press(t, m, "-")
	if b := m.planner.Blocks()[0]; b.DurationMin != 45 {
		t.Errorf("after shrink DurationMin = %d, want 45", b.DurationMin)
	}
	m = press(t, m, "+")
	if b := m.planner.Blocks()[0]; b.DurationMin != 60 {
		t.Errorf("after grow DurationMin = %d, want 60", b.DurationMin)
	}
}

func TestSelectHabitByNumber(t *testing.T) {
	m := press(t, newTestModel(t), "3", "enter")
	if b := m.planner.Blocks(); len(b) != 1 || b[0].HabitID != "h3" {
		t.Errorf("blocks = %+v, want h3", b)
	}
}

func TestConflict_Replace(t *testing.T) {
	m := press(t, newTestModel(t), "enter", "down", "tab", "enter")
	if m.mode != ModeConflict {
		t.Fatalf("mode = %v, want ModeConflict", m.mode)
	}
	if view := ansi.Strip(m.View()); !strings.Contains(view, "Replace?") {
		t.Errorf("conflict modal missing from view:\n%s", view)
	}

	m = press(t, m, "y")
	blocks := m.planner.Blocks()
	if m.mode != ModeNormal || len(blocks) != 1 || blocks[0].HabitID != "h2" || blocks[0].Start() != "08:15" {
		t.Errorf("after replace mode=%v blocks=%+v", m.mode, blocks)
	}
}

func TestConflict_Cancel(t *testing.T) {
	m := press(t, newTestModel(t), "enter", "down", "tab", "enter", "n")
	blocks := m.planner.Blocks()
	if m.mode != ModeNormal || len(blocks) != 1 || blocks[0].HabitID != "h1" {
		t.Errorf("after cancel mode=%v blocks=%+v", m.mode, blocks)
	}
	if _, pending := m.planner.Pending(); pending {
		t.Error("cancel should clear the pending placement")
	}
}

func TestEditDuration(t *testing.T) {
	m := press(t, newTestModel(t), "enter", "e")
	if m.mode != ModeEdit || m.editor.Value() != "60" {
		t.Fatalf("mode=%v editor=%q", m.mode, m.editor.Value())
	}
	m.editor.SetValue("20")
	m = press(t, m, "enter")
	if b := m.planner.Blocks()[0]; b.DurationMin != 20 {
		t.Errorf("DurationMin = %d, want 20", b.DurationMin)
	}

	m = press(t, m, "e")
	m.editor.SetValue("abc")
	m = press(t, m, "enter")
	if !m.statusErr {
		t.Error("non-numeric duration should report an error")
	}
}

func TestMoveMode(t *testing.T) {
	m := press(t, newTestModel(t), "enter", "m")
	if m.mode != ModeMove {
		t.Fatalf("mode = %v, want ModeMove", m.mode)
	}
	m = press(t, m, "J", "J", "enter")
	if b := m.planner.Blocks()[0]; b.Start() != "10:00" || b.DurationMin != 60 {
		t.Errorf("moved block = %s (%d min), want 10:00", b.Start(), b.DurationMin)
	}

	m = press(t, m, "m", "down", "esc")
	if b := m.planner.Blocks()[0]; b.Start() != "10:00" || m.mode != ModeNormal {
		t.Errorf("esc should cancel the move, block at %s", b.Start())
	}
}

func TestCompleteAndDelete(t *testing.T) {
	m := press(t, newTestModel(t), "enter", "c")
	if b := m.planner.Blocks()[0]; !b.Completed {
		t.Error("block should be completed")
	}
	m = press(t, m, "d")
	if len(m.planner.Blocks()) != 0 {
		t.Errorf("blocks = %+v, want none", m.planner.Blocks())
	}
}

func TestSwitchDay(t *testing.T) {
	m := press(t, newTestModel(t), "enter", "]")
	if !sameDay(m.planner.Date(), testDate.AddDate(0, 0, 1)) || len(m.planner.Blocks()) != 0 {
		t.Fatalf("after ] date=%s blocks=%d", m.planner.Date(), len(m.planner.Blocks()))
	}
	if m.cursor != m.window.StartHour*60 {
		t.Errorf("cursor on another day should start at the first row, got %d", m.cursor)
	}

	m = press(t, m, "[")
	if len(m.planner.Blocks()) != 1 {
		t.Errorf("switching back should show the persisted block")
	}
}

func TestCopyDay(t *testing.T) {
	var copied string
	orig := copyToClipboard
	copyToClipboard = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { copyToClipboard = orig })

	m := press(t, newTestModel(t), "enter", "Y")
	if !strings.Contains(copied, "08:00-09:00 📚 Lectura (1h)") {
		t.Errorf("clipboard = %q", copied)
	}
	if m.status != "day copied to clipboard" {
		t.Errorf("status = %q", m.status)
	}
}

func TestCompletionPrompt(t *testing.T) {
	now := testDate.Add(8*time.Hour + 20*time.Minute)
	clock := func() time.Time { return now }
	p := openPlanner(t)
	w, err := planner.NewWatcher(p, planner.WatcherConfig{Interval: time.Minute, Countdown: 5 * time.Second, Now: clock})
	if err != nil {
		t.Fatal(err)
	}
	m := New(Options{Planner: p, Watcher: w, Now: clock})

	r, _ := p.Place("h4", 8, 0, 15)
	w.Check()
	next, _ := m.Update(promptMsg(<-w.Prompts()))
	m = next.(Model)

	if view := ansi.Strip(m.View()); !strings.Contains(view, "Did you finish 🧘 Meditación") {
		t.Errorf("prompt missing from view:\n%s", view)
	}
	m = press(t, m, "y")
	if b, _ := p.Block(r.Block.ID); !b.Completed || len(m.prompts) != 0 {
		t.Errorf("prompt answer should complete the block: %+v", b)
	}
}

func TestCompletionPrompt_Expires(t *testing.T) {
	p := openPlanner(t)
	m := New(Options{Planner: p, Now: func() time.Time { return testDate.Add(9 * time.Hour) }})
	r, _ := p.Place("h1", 8, 0, 15)

	deadline := testDate.Add(9*time.Hour + 5*time.Second)
	next, cmd := m.Update(promptMsg(planner.Prompt{Block: r.Block, Deadline: deadline}))
	if cmd != nil {
		t.Error("without a watcher there is nothing to listen to")
	}
	m = next.(Model)
	next, _ = m.Update(tickMsg(deadline))
	m = next.(Model)

	if len(m.prompts) != 0 {
		t.Error("expired prompt should be dropped")
	}
	if b, _ := p.Block(r.Block.ID); b.Completed {
		t.Error("expired prompt must not complete the block")
	}
}

func TestView(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(coachMsg("Hey, listen!"))
	m = press(t, next.(Model), "enter")

	view := ansi.Strip(m.View())
	for _, want := range []string{"lvlup", "05:00", "21:00", "1 📚 Lectura", "08:00-09:00", "🧚 Hey, listen!", "Added"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestView_WrapsCoachToWidth(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 30, Height: 40})
	next, _ = next.(Model).Update(coachMsg("Hey listen you finished Deep Work today"))
	m = next.(Model)

	view := ansi.Strip(m.View())
	if !strings.Contains(view, "Deep Work today") {
		t.Errorf("coach line was cut instead of wrapped:\n%s", view)
	}
	for _, line := range strings.Split(view, "\n") {
		if w := ansi.StringWidth(line); w > 30 {
			t.Errorf("line %q is %d cells wide, want <= 30", line, w)
		}
	}
}

func TestPendingBlocksOtherKeys(t *testing.T) {
	m := press(t, newTestModel(t), "enter", "down", "tab", "enter", "d", "c")
	if m.mode != ModeConflict || len(m.planner.Blocks()) != 1 {
		t.Errorf("keys other than y/n/esc must be ignored during a conflict")
	}
}
