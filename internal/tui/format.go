package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/javiermolinar/lvlup/internal/block"
)

// FormatDay renders a plain text summary of a day, one block per line.
func FormatDay(date time.Time, blocks []block.TimeBlock, habit func(id string) (block.Habit, bool)) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", date.Format("Monday 2 January 2006"))
	if len(blocks) == 0 {
		sb.WriteString("(nothing planned)\n")
		return sb.String()
	}

	done, minutes := 0, 0
	for _, b := range blocks {
		mark := "○"
		if b.Completed {
			mark = "✓"
			done++
		}
		minutes += b.DurationMin
		name := b.HabitID
		if h, ok := habit(b.HabitID); ok {
			name = h.Label()
		}
		fmt.Fprintf(&sb, "%s %s-%s %s (%s)\n", mark, b.Start(), b.End(), name, FormatDuration(b.DurationMin))
	}
	fmt.Fprintf(&sb, "%d/%d done, %s planned\n", done, len(blocks), FormatDuration(minutes))
	return sb.String()
}

// FormatDuration formats minutes as 45m, 1h or 1h30m.
func FormatDuration(minutes int) string {
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh%dm", h, m)
	}
}

// WrapText breaks s into lines of at most width terminal cells, on spaces
// when possible. Wide runes such as emoji count as two cells.
func WrapText(s string, width int) []string {
	runes := []rune(s)
	if width <= 0 || len(runes) == 0 {
		return []string{s}
	}

	var lines []string
	lineStart, lastSpace, lineWidth := 0, -1, 0
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == ' ' {
			lastSpace = i
		}
		w := runewidth.RuneWidth(r)
		if lineWidth+w <= width {
			lineWidth += w
			continue
		}
		if lastSpace > lineStart {
			lines = append(lines, string(runes[lineStart:lastSpace]))
			i = lastSpace
			lineStart = lastSpace + 1
		} else {
			lines = append(lines, string(runes[lineStart:i]))
			lineStart = i
			i--
		}
		lastSpace, lineWidth = -1, 0
	}
	return append(lines, string(runes[lineStart:]))
}
