package ui

import (
	"github.com/spf13/cobra"
)

func (a *App) listCmd() *cobra.Command {
	var day string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls", "show"},
		Short:   "List the blocks of a day",
		Long: `List the blocks of a day in start order.

Ids are shortened; any unique prefix works in other commands.`,
		Example: `  lvlup list
  lvlup list --date yesterday
  lvlup list --date 2026-03-02`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDay(cmd.Context(), day, func(s *session) error {
				printDay(a.out, s.planner.Date(), s.planner.Blocks(), func(id string) string {
					return a.label(s.planner, id)
				}, termWidth())
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&day, "date", "", "Day (YYYY-MM-DD, today, tomorrow, yesterday, weekday)")
	return cmd
}

func (a *App) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show completion over the last seven days",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDay(cmd.Context(), "", func(s *session) error {
				stats, err := s.planner.Stats(cmd.Context())
				if err != nil {
					return err
				}
				printStats(a.out, stats)
				return nil
			})
		},
	}
}
