package ui

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/lvlup/internal/planner"
)

func (a *App) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Ask about each block as it ends",
		Long: `Stay in the foreground and ask whether each of today's blocks was done
once it ends. Unanswered questions expire after the prompt countdown. The
coach's messages are printed as they arrive. Stop with Ctrl+C.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return a.withDay(ctx, "", func(s *session) error {
				w, err := a.newWatcher(s, true)
				if err != nil {
					return err
				}
				w.Start()
				defer w.Stop()

				fmt.Fprintln(a.out, formatMuted("Watching today's blocks, Ctrl+C to stop"))
				return a.watchLoop(ctx, w)
			})
		},
	}
}

// watchLoop answers prompts until ctx ends.
func (a *App) watchLoop(ctx context.Context, w *planner.Watcher) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case p, ok := <-w.Prompts():
			if !ok {
				return nil
			}
			if err := a.answer(ctx, w, p); err != nil {
				return err
			}
		}
	}
}

func (a *App) answer(ctx context.Context, w *planner.Watcher, p planner.Prompt) error {
	b := p.Block
	remaining := p.Remaining(a.now())

	yes := false
	if !a.noInput && remaining > 0 {
		var err error
		yes, err = askConfirm(ctx,
			fmt.Sprintf("Did you finish %s?", p.Habit.Label()),
			fmt.Sprintf("%s-%s", b.Start(), b.End()),
			remaining)
		if err != nil && !isAbort(err) {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}

	_, err := w.Answer(p, yes)
	switch {
	case errors.Is(err, planner.ErrPromptExpired):
		fmt.Fprintln(a.out, formatMuted(fmt.Sprintf("%s: no answer, left open", p.Habit.Label())))
		return nil
	case err != nil:
		return err
	case yes:
		fmt.Fprintf(a.out, "%s %s\n", formatDone("✓"), p.Habit.Label())
	}
	return nil
}
