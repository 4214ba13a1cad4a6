package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/lvlup/internal/block"
	"github.com/javiermolinar/lvlup/internal/planner"
	"github.com/javiermolinar/lvlup/internal/scheduler"
)

// copyToClipboard is swapped in tests.
var copyToClipboard = clipboard.WriteAll

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.expirePrompts(time.Time(msg))
		return m, tick()

	case promptMsg:
		m.prompts = append(m.prompts, planner.Prompt(msg))
		if m.watcher == nil {
			return m, nil
		}
		return m, waitForPrompt(m.watcher.Prompts())

	case coachMsg:
		m.coach = string(msg)
		return m, waitForCoach(m.messages)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case ModeConflict:
		return m.handleConflictKeys(msg)
	case ModeEdit:
		return m.handleEditKeys(msg)
	case ModeMove:
		return m.handleMoveKeys(msg)
	default:
		return m.handleNormalKeys(msg)
	}
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.prompts) > 0 {
		switch {
		case key.Matches(msg, m.keys.Yes):
			return m.answerPrompt(true), nil
		case key.Matches(msg, m.keys.No):
			return m.answerPrompt(false), nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case m.moveCursor(msg):
	case key.Matches(msg, m.keys.NextHab):
		if len(m.habits) > 0 {
			m.habit = (m.habit + 1) % len(m.habits)
		}
	case key.Matches(msg, m.keys.PrevHab):
		if len(m.habits) > 0 {
			m.habit = (m.habit + len(m.habits) - 1) % len(m.habits)
		}
	case key.Matches(msg, m.keys.Place):
		return m.place(), nil
	case key.Matches(msg, m.keys.Grow):
		return m.resize(m.nudge), nil
	case key.Matches(msg, m.keys.Shrink):
		return m.resize(-m.nudge), nil
	case key.Matches(msg, m.keys.Edit):
		return m.startEdit()
	case key.Matches(msg, m.keys.Move):
		return m.startMove(), nil
	case key.Matches(msg, m.keys.Delete):
		return m.remove(), nil
	case key.Matches(msg, m.keys.Complete):
		return m.complete(), nil
	case key.Matches(msg, m.keys.PrevDay):
		return m.switchDay(m.planner.Date().AddDate(0, 0, -1)), nil
	case key.Matches(msg, m.keys.NextDay):
		return m.switchDay(m.planner.Date().AddDate(0, 0, 1)), nil
	case key.Matches(msg, m.keys.Today):
		return m.switchDay(m.now()), nil
	case key.Matches(msg, m.keys.Copy):
		return m.copyDay(), nil
	default:
		if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 && n <= len(m.habits) {
			m.habit = n - 1
		}
	}
	return m, nil
}

// moveCursor handles cursor keys and reports whether msg was one.
func (m *Model) moveCursor(msg tea.KeyMsg) bool {
	delta := 0
	switch {
	case key.Matches(msg, m.keys.Up):
		delta = -slotMin
	case key.Matches(msg, m.keys.Down):
		delta = slotMin
	case key.Matches(msg, m.keys.HourUp):
		delta = -60
	case key.Matches(msg, m.keys.HourDown):
		delta = 60
	default:
		return false
	}
	m.cursor = m.clampCursor(m.cursor + delta)
	return true
}

func (m Model) handleMoveKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case m.moveCursor(msg):
	case key.Matches(msg, m.keys.Cancel):
		m.mode = ModeNormal
		m.movingID = ""
		m.setStatus("move cancelled")
	case key.Matches(msg, m.keys.Confirm):
		id := m.movingID
		m.mode = ModeNormal
		m.movingID = ""
		r, err := m.planner.Move(id, m.cursor/60, m.cursor%60)
		return m.apply("Moved", r, err), nil
	}
	return m, nil
}

func (m Model) handleEditKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = ModeNormal
		m.editor.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		m.mode = ModeNormal
		m.editor.Blur()
		minutes, err := strconv.Atoi(strings.TrimSpace(m.editor.Value()))
		if err != nil {
			m.setError(fmt.Errorf("duration must be a number of minutes"))
			return m, nil
		}
		r, err := m.planner.SetDuration(m.editID, minutes)
		return m.apply("Set", r, err), nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m Model) handleConflictKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var d scheduler.Decision
	switch {
	case key.Matches(msg, m.keys.Yes):
		d = scheduler.Replace
	case key.Matches(msg, m.keys.No), key.Matches(msg, m.keys.Cancel):
		d = scheduler.Cancel
	default:
		return m, nil
	}

	m.mode = ModeNormal
	r, err := m.planner.Resolve(d)
	if err != nil {
		m.setError(err)
		return m, nil
	}
	if d == scheduler.Cancel {
		m.setStatus("kept the existing blocks")
		return m, nil
	}
	m.setStatus(fmt.Sprintf("Replaced %d block(s) with %s %s-%s",
		len(r.Removed), m.label(r.Block.HabitID), r.Block.Start(), r.Block.End()))
	return m, nil
}

func (m Model) place() Model {
	h, ok := m.selectedHabit()
	if !ok {
		m.setError(errors.New("no habits in the palette"))
		return m
	}
	r, err := m.planner.Add(h.ID, m.cursor/60, m.cursor%60)
	return m.apply("Added", r, err)
}

func (m Model) resize(delta int) Model {
	b, ok := m.blockAtCursor()
	if !ok {
		return m
	}
	r, err := m.planner.Resize(b.ID, delta)
	if err == nil && r.Outcome == scheduler.NoChange {
		m.setStatus("no room to change " + m.label(b.HabitID))
		return m
	}
	return m.apply("Resized", r, err)
}

func (m Model) startEdit() (tea.Model, tea.Cmd) {
	b, ok := m.blockAtCursor()
	if !ok {
		return m, nil
	}
	m.mode = ModeEdit
	m.editID = b.ID
	m.editor.SetValue(strconv.Itoa(b.DurationMin))
	m.editor.CursorEnd()
	return m, m.editor.Focus()
}

func (m Model) startMove() Model {
	b, ok := m.blockAtCursor()
	if !ok {
		return m
	}
	m.mode = ModeMove
	m.movingID = b.ID
	m.setStatus("moving " + m.label(b.HabitID) + ": pick a slot and press enter")
	return m
}

func (m Model) remove() Model {
	b, ok := m.blockAtCursor()
	if !ok {
		return m
	}
	_, err := m.planner.Remove(b.ID)
	if err != nil {
		m.setError(err)
		return m
	}
	m.setStatus("Removed " + m.label(b.HabitID))
	return m
}

func (m Model) complete() Model {
	b, ok := m.blockAtCursor()
	if !ok {
		return m
	}
	r, err := m.planner.Complete(b.ID)
	return m.apply("Completed", r, err)
}

func (m Model) switchDay(date time.Time) Model {
	if err := m.planner.SwitchDay(context.Background(), date); err != nil {
		m.setError(err)
		return m
	}
	m.prompts = nil
	m.cursor = m.initialCursor()
	m.setStatus(m.planner.Date().Format("Monday 2 January"))
	return m
}

func (m Model) copyDay() Model {
	text := FormatDay(m.planner.Date(), m.planner.Blocks(), m.planner.Habit)
	if err := copyToClipboard(text); err != nil {
		m.setError(fmt.Errorf("copying to clipboard: %w", err))
		return m
	}
	m.setStatus("day copied to clipboard")
	return m
}

func (m Model) answerPrompt(yes bool) Model {
	p := m.prompts[0]
	m.prompts = m.prompts[1:]

	r, err := m.watcher.Answer(p, yes)
	switch {
	case errors.Is(err, planner.ErrPromptExpired):
		m.setStatus("too late, that prompt expired")
	case err != nil:
		m.setError(err)
	case r.Outcome == scheduler.Committed:
		m.setStatus("Completed " + p.Habit.Label())
	default:
		m.setStatus("maybe next time")
	}
	return m
}

func (m *Model) expirePrompts(now time.Time) {
	kept := m.prompts[:0]
	for _, p := range m.prompts {
		if p.Expired(now) {
			m.logger.Debug("completion prompt expired", "id", p.Block.ID)
			continue
		}
		kept = append(kept, p)
	}
	m.prompts = kept
}

// apply reports an operation result and enters the conflict modal when
// the scheduler asks for confirmation.
func (m Model) apply(verb string, r scheduler.Result, err error) Model {
	if err != nil {
		m.setError(err)
		return m
	}
	switch r.Outcome {
	case scheduler.PendingConfirmation:
		m.mode = ModeConflict
		m.status = ""
	case scheduler.NoChange:
		m.setStatus("nothing changed")
	default:
		m.setStatus(fmt.Sprintf("%s %s %s-%s", verb, m.label(r.Block.HabitID), r.Block.Start(), r.Block.End()))
		m.cursor = m.clampCursor(r.Block.StartTotalMin())
	}
	return m
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(err error) {
	switch {
	case errors.Is(err, scheduler.ErrConflictPending):
		m.status = "answer the pending conflict first"
	case errors.Is(err, block.ErrOverlap):
		m.status = "that would overlap another block"
	default:
		m.status = err.Error()
	}
	m.statusErr = true
}
