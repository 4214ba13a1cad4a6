package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/lvlup/internal/block"
)

func (a *App) habitsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "habits",
		Short: "List the habit palette",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDay(cmd.Context(), "", func(s *session) error {
				for i, h := range s.planner.Habits() {
					fmt.Fprintf(a.out, "%d %s %s\n", i+1, formatMuted(fmt.Sprintf("%-4s", h.ID)), h.Label())
				}
				return nil
			})
		},
	}
	cmd.AddCommand(a.habitsSaveCmd())
	return cmd
}

func (a *App) habitsSaveCmd() *cobra.Command {
	var icon string

	cmd := &cobra.Command{
		Use:     "save <id> <title>",
		Aliases: []string{"add"},
		Short:   "Add a habit or rename an existing one",
		Example: `  lvlup habits save h6 "Journaling" --icon 📓`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withDay(ctx, "", func(s *session) error {
				h := block.Habit{ID: args[0], Title: args[1], Icon: icon}
				if existing, ok := s.planner.Habit(h.ID); ok && !cmd.Flags().Changed("icon") {
					h.Icon = existing.Icon
				}
				if err := s.planner.SaveHabit(ctx, h); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Saved habit %s: %s\n", h.ID, h.Label())
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&icon, "icon", "", "Emoji shown before the title")
	return cmd
}
