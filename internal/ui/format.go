package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/lvlup/internal/block"
	"github.com/javiermolinar/lvlup/internal/tui"
)

// shortIDLen is how much of a block id the CLI prints and accepts as a prefix.
const shortIDLen = 8

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

// printDay prints one line per block of a day, then a completion summary.
func printDay(w io.Writer, date time.Time, blocks []block.TimeBlock, label func(string) string, width int) {
	fmt.Fprintln(w, formatHeader(date.Format("Monday 2 January 2006")))
	if len(blocks) == 0 {
		fmt.Fprintln(w, formatMuted("  nothing planned"))
		return
	}

	done, minutes := 0, 0
	for _, b := range blocks {
		mark, name := "○", formatBlock(label(b.HabitID))
		if b.Completed {
			mark, name = formatDone("✓"), formatDone(label(b.HabitID))
			done++
		}
		minutes += b.DurationMin
		line := fmt.Sprintf("  %s %s %s-%s %s %s",
			mark,
			formatMuted(shortID(b.ID)),
			b.Start(),
			b.End(),
			name,
			formatMuted("("+tui.FormatDuration(b.DurationMin)+")"),
		)
		fmt.Fprintln(w, ansi.Truncate(line, width, "…"))
	}
	fmt.Fprintf(w, "  %s %d/%d %s\n",
		completionBar(done, len(blocks), 20),
		done,
		len(blocks),
		formatMuted(tui.FormatDuration(minutes)+" planned"))
}

// completionBar draws the share of completed blocks.
func completionBar(completed, total, width int) string {
	if total == 0 {
		return "[" + strings.Repeat("░", width) + "] (0% done)"
	}

	pct := (completed*100 + total/2) / total
	filled := (completed * width) / total

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %s", formatStats(bar), formatStats(fmt.Sprintf("(%d%% done)", pct)))
}

// printStats prints the seven-day aggregate as a table, one row per day.
func printStats(w io.Writer, stats block.WeekStats) {
	rows := make([][]string, 0, len(stats.Daily))
	for _, d := range stats.Daily {
		rows = append(rows, []string{
			d.Date.Format("Mon 02"),
			fmt.Sprintf("%d/%d", d.Completed, d.Total),
			completionBar(d.Completed, d.Total, 14),
		})
	}

	t := table.New().
		Headers("Day", "Done", "Progress").
		Border(lipgloss.RoundedBorder()).
		BorderRow(false).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	fmt.Fprintln(w, formatHeader("Last 7 days"))
	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "  Completed: %s\n", formatStats(fmt.Sprintf("%d/%d (%d%%)", stats.WeeklyCompleted, stats.WeeklyTotal, stats.CompletionRate)))
	fmt.Fprintf(w, "  Streak:    %s\n", formatStats(pluralDays(stats.CurrentStreak)))
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
