// Package tui provides the terminal day view for lvlup.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/javiermolinar/lvlup/internal/block"
	"github.com/javiermolinar/lvlup/internal/logger"
	"github.com/javiermolinar/lvlup/internal/planner"
	"github.com/javiermolinar/lvlup/internal/scheduler"
	"github.com/javiermolinar/lvlup/internal/tui/theme"
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal   Mode = iota
	ModeMove          // a block follows the cursor until enter
	ModeEdit          // exact duration editor
	ModeConflict      // waiting for replace or cancel
)

const slotMin = 15

// Options are the collaborators of the day view.
type Options struct {
	Planner  *planner.Planner
	Watcher  *planner.Watcher // optional completion prompts
	Messages <-chan string    // optional coach messages
	Theme    string
	NudgeMin int
	Logger   *log.Logger
	Now      func() time.Time
}

// Model is the day view.
type Model struct {
	planner  *planner.Planner
	watcher  *planner.Watcher
	messages <-chan string
	logger   *log.Logger
	now      func() time.Time
	nudge    int

	keys   keyMap
	help   help.Model
	editor textinput.Model
	styles *Styles

	window   block.Window
	habits   []block.Habit
	habit    int // selected palette entry
	cursor   int // minutes from midnight, on a quarter hour
	mode     Mode
	movingID string
	editID   string
	prompts  []planner.Prompt

	coach     string
	status    string
	statusErr bool
	width     int
	height    int
}

type tickMsg time.Time

type promptMsg planner.Prompt

type coachMsg string

// New builds the day view for the planner's open day.
func New(opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NudgeMin <= 0 {
		opts.NudgeMin = scheduler.DefaultNudgeMin
	}

	th, err := theme.Load(opts.Theme)
	if err != nil {
		th = nil
	}

	editor := textinput.New()
	editor.Placeholder = "minutes"
	editor.CharLimit = 3
	editor.Width = 6

	m := Model{
		planner:  opts.Planner,
		watcher:  opts.Watcher,
		messages: opts.Messages,
		logger:   logger.OrDiscard(opts.Logger),
		now:      opts.Now,
		nudge:    opts.NudgeMin,
		keys:     defaultKeyMap(),
		help:     help.New(),
		editor:   editor,
		styles:   NewStyles(theme.NewPalette(th)),
		habits:   opts.Planner.Habits(),
	}

	m.window, err = opts.Planner.Window(context.Background())
	if err != nil {
		m.logger.Warn("loading window, using default", "err", err)
		m.window = block.DefaultWindow()
	}
	m.cursor = m.initialCursor()
	return m
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	if opts.Watcher != nil {
		opts.Watcher.Start()
		defer opts.Watcher.Stop()
	}

	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init starts the clock and the prompt and coach listeners.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tick()}
	if m.watcher != nil {
		cmds = append(cmds, waitForPrompt(m.watcher.Prompts()))
	}
	if m.messages != nil {
		cmds = append(cmds, waitForCoach(m.messages))
	}
	return tea.Batch(cmds...)
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func waitForPrompt(ch <-chan planner.Prompt) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return promptMsg(p)
	}
}

func waitForCoach(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return coachMsg(s)
	}
}

// initialCursor is the current quarter hour when today is open and inside
// the window, else the first row.
func (m Model) initialCursor() int {
	first := m.window.StartHour * 60
	now := m.now()
	if !sameDay(now, m.planner.Date()) {
		return first
	}
	cur := now.Hour()*60 + now.Minute()/slotMin*slotMin
	return m.clampCursor(cur)
}

func (m Model) clampCursor(c int) int {
	first := m.window.StartHour * 60
	last := m.window.EndHour*60 + 60 - slotMin
	return min(last, max(first, c))
}

// blockAtCursor returns the block covering the cursor slot.
func (m Model) blockAtCursor() (block.TimeBlock, bool) {
	for _, b := range m.planner.Blocks() {
		if b.StartTotalMin() <= m.cursor && m.cursor < b.EndTotalMin() {
			return b, true
		}
	}
	return block.TimeBlock{}, false
}

func (m Model) selectedHabit() (block.Habit, bool) {
	if len(m.habits) == 0 {
		return block.Habit{}, false
	}
	return m.habits[m.habit], true
}

func (m Model) label(habitID string) string {
	if h, ok := m.planner.Habit(habitID); ok {
		return h.Label()
	}
	return habitID
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
