// Package ui wires the lvlup command line.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/lvlup/internal/coach"
	"github.com/javiermolinar/lvlup/internal/config"
	"github.com/javiermolinar/lvlup/internal/logger"
	"github.com/javiermolinar/lvlup/internal/tui"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	config *config.Config
	root   *cobra.Command
	logger *log.Logger
	out    io.Writer
	now    func() time.Time

	debug   bool // log to stderr as well
	noInput bool // never prompt; conflicts are cancelled
	noColor bool
}

// NewApp creates the CLI application for cfg.
func NewApp(cfg *config.Config) *App {
	a := &App{config: cfg, out: &syncWriter{w: os.Stdout}, now: time.Now, logger: logger.Discard()}

	a.root = &cobra.Command{
		Use:   "lvlup",
		Short: "Plan your day in habit blocks",
		Long: `lvlup plans one day at a time in quarter-hour habit blocks.

Place habits on the day, nudge their length, mark them done, and let the
coach cheer you on. Run without a command to open the day view.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if a.noColor {
				DisableColor()
			}
			l, err := logger.New(logger.Config{Level: a.config.Log.Level, Dir: a.config.Log.Dir, Debug: a.debug})
			if err != nil {
				return err
			}
			a.logger = l
			a.logger.Debug("command", "name", cmd.Name())
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runTUI(cmd.Context())
		},
	}

	flags := a.root.PersistentFlags()
	flags.BoolVar(&a.debug, "debug", false, "Log debug output to stderr")
	flags.BoolVar(&a.noInput, "no-input", false, "Never prompt; overlapping placements are cancelled")
	flags.BoolVar(&a.noColor, "no-color", false, "Disable color output")

	a.root.AddCommand(
		a.versionCmd(),
		a.configCmd(),
		a.addCmd(),
		a.moveCmd(),
		a.resizeCmd(),
		a.durationCmd(),
		a.removeCmd(),
		a.doneCmd(),
		a.listCmd(),
		a.statsCmd(),
		a.windowCmd(),
		a.habitsCmd(),
		a.watchCmd(),
		a.secretCmd(),
	)
	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(a.out, "lvlup %s (commit: %s)\n", Version, Commit)
		},
	}
}

// SetOutput redirects command output, e.g. to a buffer in tests.
func (a *App) SetOutput(w io.Writer) {
	a.out = &syncWriter{w: w}
	a.root.SetOut(w)
	a.root.SetErr(w)
}

// Execute runs the CLI application.
func (a *App) Execute(ctx context.Context) error {
	return a.root.ExecuteContext(ctx)
}

func (a *App) runTUI(ctx context.Context) error {
	outbox := coach.NewChanOutbox(8)
	s, err := a.openSession(ctx, a.now(), outbox)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	w, err := a.newWatcher(s, true)
	if err != nil {
		return err
	}

	return tui.Run(ctx, tui.Options{
		Planner:  s.planner,
		Watcher:  w,
		Messages: outbox.Messages(),
		Theme:    a.config.UI.Theme,
		NudgeMin: a.config.Planner.NudgeMinutes,
		Logger:   a.logger,
		Now:      a.now,
	})
}
