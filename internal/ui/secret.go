package ui

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/lvlup/internal/keyring"
)

func (a *App) secretCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage secrets in the system keyring",
		Long: `Manage the secrets lvlup reads from the system keyring.

Names: ` + strings.Join(keyring.Names(), ", ") + `.
Environment variables override the keyring, e.g. LVLUP_COACH_API_KEY.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			for _, name := range keyring.Names() {
				state := formatMuted("not set")
				if keyring.Lookup(name) != "" {
					state = formatDone("set")
				}
				fmt.Fprintf(a.out, "%-16s %s\n", name, state)
			}
			return nil
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <name>",
			Short: "Store a secret; the value is read without echo or from stdin",
			Example: `  lvlup secret set telegram-token
  echo "$KEY" | lvlup secret set coach-api-key`,
			Args:      cobra.ExactArgs(1),
			ValidArgs: keyring.Names(),
			RunE: func(_ *cobra.Command, args []string) error {
				name := args[0]
				if !slices.Contains(keyring.Names(), name) {
					return fmt.Errorf("%w: %q", keyring.ErrUnknownSecret, name)
				}
				value, err := askSecret(name)
				if err != nil {
					return err
				}
				if err := keyring.Set(name, value); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Stored %s\n", name)
				return nil
			},
		},
		&cobra.Command{
			Use:       "delete <name>",
			Aliases:   []string{"rm"},
			Short:     "Remove a secret",
			Args:      cobra.ExactArgs(1),
			ValidArgs: keyring.Names(),
			RunE: func(_ *cobra.Command, args []string) error {
				if err := keyring.Delete(args[0]); err != nil {
					if errors.Is(err, keyring.ErrNotFound) {
						fmt.Fprintf(a.out, "%s was not set\n", args[0])
						return nil
					}
					return err
				}
				fmt.Fprintf(a.out, "Deleted %s\n", args[0])
				return nil
			},
		},
	)
	return cmd
}
