package ui

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/lvlup/internal/block"
)

func (a *App) windowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "window [start-hour end-hour]",
		Short: "Show or set the planning window",
		Long: `Show or set the hours of the day the planner covers.

The end hour is the last visible hour row, so "window 6 22" plans 06:00-22:59.`,
		Example: `  lvlup window
  lvlup window 7 21`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("accepts 0 or 2 arg(s), received %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withDay(ctx, "", func(s *session) error {
				if len(args) == 0 {
					w, err := s.planner.Window(ctx)
					if err != nil {
						return err
					}
					fmt.Fprintf(a.out, "Planning window: %02d:00-%02d:59\n", w.StartHour, w.EndHour)
					return nil
				}

				start, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("%w: start hour %q", block.ErrInvalidWindow, args[0])
				}
				end, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("%w: end hour %q", block.ErrInvalidWindow, args[1])
				}
				if err := s.planner.SetWindow(ctx, block.Window{StartHour: start, EndHour: end}); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Planning window set to %02d:00-%02d:59\n", start, end)
				return nil
			})
		},
	}
}
