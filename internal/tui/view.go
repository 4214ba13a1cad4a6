package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/lvlup/internal/block"
)

// View renders the day.
func (m Model) View() string {
	var sections []string
	sections = append(sections, m.renderHeader())
	sections = append(sections, m.renderRows()...)
	sections = append(sections, "", m.renderPalette())

	if m.coach != "" {
		text := "🧚 " + m.coach
		if m.width > 0 {
			text = strings.Join(WrapText(text, m.width), "\n")
		}
		sections = append(sections, m.styles.Coach.Render(text))
	}
	if modal := m.renderModal(); modal != "" {
		sections = append(sections, modal)
	}
	if m.status != "" {
		style := m.styles.Status
		if m.statusErr {
			style = m.styles.StatusErr
		}
		sections = append(sections, style.Render(m.status))
	}
	sections = append(sections, m.help.View(m.keys))

	out := lipgloss.JoinVertical(lipgloss.Left, sections...)
	if m.width <= 0 {
		return out
	}
	lines := strings.Split(out, "\n")
	for i, l := range lines {
		lines[i] = ansi.Truncate(l, m.width, "…")
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderHeader() string {
	date := m.planner.Date()
	title := m.styles.Title.Render("lvlup")
	day := m.styles.Subtitle.Render(fmt.Sprintf("%s · %02d:00-%02d:59", date.Format("Mon 2 Jan 2006"),
		m.window.StartHour, m.window.EndHour))
	header := title + "  " + day
	width := max(40, m.width)
	return header + "\n" + m.styles.Rule.Render(strings.Repeat("─", min(width, 72)))
}

func (m Model) renderRows() []string {
	blocks := m.planner.Blocks()
	now := m.now()
	today := sameDay(now, m.planner.Date())
	nowMin := -1
	if today {
		nowMin = now.Hour()*60 + now.Minute()
	}

	rows := make([]string, 0, m.window.EndHour-m.window.StartHour+1)
	for _, hour := range m.window.Hours() {
		rows = append(rows, m.renderHour(hour, blocks, today && now.Hour() == hour, nowMin))
	}
	return rows
}

func (m Model) renderHour(hour int, blocks []block.TimeBlock, current bool, nowMin int) string {
	var label string
	switch {
	case m.cursor/60 == hour:
		label = m.styles.HourCursor.Render(fmt.Sprintf("%02d:%02d", hour, m.cursor%60))
	case current:
		label = m.styles.HourNow.Render(fmt.Sprintf("%02d:00", hour))
	default:
		label = m.styles.HourLabel.Render(fmt.Sprintf("%02d:00", hour))
	}

	var chips []string
	alt := false
	for _, b := range blocks {
		if b.StartHour != hour {
			continue
		}
		chips = append(chips, m.renderBlock(b, alt, nowMin))
		alt = !alt
	}
	if len(chips) == 0 {
		chips = append(chips, m.styles.EmptySlot.Render("·"))
	}

	if m.mode == ModeMove && m.cursor/60 == hour {
		if b, err := m.planner.Block(m.movingID); err == nil {
			chips = append(chips, m.styles.BlockMoving.Render(fmt.Sprintf("→ %s %02d:%02d", m.label(b.HabitID), hour, m.cursor%60)))
		}
	}
	return label + " " + strings.Join(chips, "")
}

func (m Model) renderBlock(b block.TimeBlock, alt bool, nowMin int) string {
	text := fmt.Sprintf("%s %s-%s", m.label(b.HabitID), b.Start(), b.End())
	if b.Completed {
		text += " ✓"
	}

	style := m.styles.Block
	switch {
	case b.ID == m.movingID:
		style = m.styles.BlockMoving
	case b.StartTotalMin() <= m.cursor && m.cursor < b.EndTotalMin():
		style = m.styles.BlockSelected
	case b.Completed:
		style = m.styles.BlockDone
	case nowMin >= 0 && b.ElapsedBy(nowMin):
		style = m.styles.BlockElapsed
	case alt:
		style = m.styles.BlockAlt
	}
	return style.Render(text)
}

func (m Model) renderPalette() string {
	parts := make([]string, 0, len(m.habits))
	for i, h := range m.habits {
		style := m.styles.Habit
		if i == m.habit {
			style = m.styles.HabitSelected
		}
		parts = append(parts, style.Render(fmt.Sprintf("%d %s", i+1, h.Label())))
	}
	return strings.Join(parts, " ")
}

func (m Model) renderModal() string {
	switch m.mode {
	case ModeConflict:
		return m.styles.Modal.Render(m.conflictText())
	case ModeEdit:
		hint := ""
		if maxDur, err := m.planner.MaxDuration(m.editID); err == nil {
			hint = m.styles.Muted.Render(fmt.Sprintf("  (max %d, enter to save, esc to cancel)", maxDur))
		}
		return m.styles.Modal.Render("Duration: " + m.editor.View() + hint)
	}

	if len(m.prompts) > 0 {
		p := m.prompts[0]
		left := p.Remaining(m.now()).Round(time.Second)
		return m.styles.Modal.Render(fmt.Sprintf("Did you finish %s (%s-%s)?  %s  %s",
			p.Habit.Label(), p.Block.Start(), p.Block.End(),
			m.styles.Muted.Render("y/n"), m.styles.Warning.Render(left.String())))
	}
	return ""
}

func (m Model) conflictText() string {
	proposal, ok := m.planner.Pending()
	if !ok {
		return ""
	}
	names := make([]string, 0, len(proposal.Conflicts))
	for _, id := range proposal.Conflicts {
		if b, err := m.planner.Block(id); err == nil {
			names = append(names, fmt.Sprintf("%s %s-%s", m.label(b.HabitID), b.Start(), b.End()))
		}
	}
	c := proposal.Candidate
	return fmt.Sprintf("%s %s %s-%s overlaps %s.\nReplace? %s",
		m.styles.Warning.Render("⚠"), m.label(c.HabitID), c.Start(), c.End(),
		strings.Join(names, ", "), m.styles.Muted.Render("y replace · n cancel"))
}
