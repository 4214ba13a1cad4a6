package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Color definitions for consistent styling across the CLI.
var (
	// Blocks still to do: bold cyan
	colorBlock = color.New(color.FgCyan, color.Bold)

	// Completed blocks: green
	colorDone = color.New(color.FgGreen)

	// Coach lines: magenta, the fairy's color
	colorCoach = color.New(color.FgMagenta)

	// Headers: bold
	colorHeader = color.New(color.Bold)

	// Stats bars: green for positive metrics
	colorStats = color.New(color.FgGreen)

	// Warnings: yellow for pending confirmations
	colorWarning = color.New(color.FgYellow)

	// Muted: for secondary information
	colorMuted = color.New(color.FgWhite, color.Faint)
)

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}

func formatBlock(s string) string   { return colorBlock.Sprint(s) }
func formatDone(s string) string    { return colorDone.Sprint(s) }
func formatCoach(s string) string   { return colorCoach.Sprint(s) }
func formatHeader(s string) string  { return colorHeader.Sprint(s) }
func formatStats(s string) string   { return colorStats.Sprint(s) }
func formatWarning(s string) string { return colorWarning.Sprint(s) }
func formatMuted(s string) string   { return colorMuted.Sprint(s) }

// termOutbox prints coach messages to the terminal.
type termOutbox struct {
	w io.Writer
}

func (o termOutbox) Deliver(_ context.Context, text string) error {
	_, err := fmt.Fprintf(o.w, "%s %s\n", formatCoach("🧚 Navi:"), text)
	return err
}

// syncWriter serializes writes from commands and the coach goroutine.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
