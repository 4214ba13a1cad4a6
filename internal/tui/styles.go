package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/lvlup/internal/tui/theme"
)

// Styles holds the lipgloss styles of the day view, derived from a theme.
type Styles struct {
	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Rule       lipgloss.Style
	HourLabel  lipgloss.Style
	HourNow    lipgloss.Style
	HourCursor lipgloss.Style
	EmptySlot  lipgloss.Style

	Block         lipgloss.Style
	BlockAlt      lipgloss.Style
	BlockDone     lipgloss.Style
	BlockElapsed  lipgloss.Style
	BlockSelected lipgloss.Style
	BlockMoving   lipgloss.Style

	Habit         lipgloss.Style
	HabitSelected lipgloss.Style

	Coach     lipgloss.Style
	Status    lipgloss.Style
	StatusErr lipgloss.Style
	Modal     lipgloss.Style
	Warning   lipgloss.Style
	Muted     lipgloss.Style
}

// NewStyles builds the styles for palette p.
func NewStyles(p *theme.Palette) *Styles {
	chip := lipgloss.NewStyle().Padding(0, 1).MarginRight(1)

	return &Styles{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		Subtitle:   lipgloss.NewStyle().Foreground(p.FgMuted),
		Rule:       lipgloss.NewStyle().Foreground(p.BgSelection),
		HourLabel:  lipgloss.NewStyle().Foreground(p.FgMuted).Width(7),
		HourNow:    lipgloss.NewStyle().Foreground(p.Current).Bold(true).Width(7),
		HourCursor: lipgloss.NewStyle().Foreground(p.TextOnAccent).Background(p.Accent).Bold(true).Width(7),
		EmptySlot:  lipgloss.NewStyle().Foreground(p.BgSelection),

		Block:         chip.Foreground(p.TextOnBlock).Background(p.BlockBg),
		BlockAlt:      chip.Foreground(p.TextOnBlock).Background(p.BlockBgAlt),
		BlockDone:     chip.Foreground(p.TextOnDone).Background(p.DoneBg),
		BlockElapsed:  chip.Foreground(p.FgMuted).Background(p.ElapsedBg),
		BlockSelected: chip.Foreground(p.TextOnAccent).Background(p.Accent).Bold(true),
		BlockMoving:   chip.Foreground(p.TextOnWarning).Background(p.Warning).Bold(true),

		Habit:         lipgloss.NewStyle().Foreground(p.FgMuted).Padding(0, 1),
		HabitSelected: lipgloss.NewStyle().Foreground(p.TextOnAccent).Background(p.Accent).Padding(0, 1),

		Coach:     lipgloss.NewStyle().Foreground(p.Coach).Italic(true),
		Status:    lipgloss.NewStyle().Foreground(p.Fg),
		StatusErr: lipgloss.NewStyle().Foreground(p.Warning).Bold(true),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Warning).
			Padding(0, 1),
		Warning: lipgloss.NewStyle().Foreground(p.Warning).Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(p.FgMuted),
	}
}
