package ui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/lvlup/internal/config"
	"github.com/javiermolinar/lvlup/internal/tui/theme"
)

func (a *App) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Interactive configuration management.

If no config file exists, creates one with default values.
Otherwise, displays current config and allows editing.
Secrets such as API keys live in the keyring, see "lvlup secret".`,
		Example: `  lvlup config`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runConfigInteractive(config.DefaultConfigPath())
		},
	}
}

func (a *App) runConfigInteractive(path string) error {
	fmt.Fprintf(a.out, "Config file: %s\n\n", path)

	cfg, err := config.LoadFrom(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		fmt.Fprintln(a.out, "No config file found. Creating with default values...")
		if err := cfg.SaveTo(path); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(a.out, "Created %s\n\n", path)
	}

	printConfig(a.out, cfg)
	if a.noInput {
		return nil
	}

	var edit bool
	if err := huh.NewConfirm().Title("Edit the configuration?").Value(&edit).Run(); err != nil {
		if isAbort(err) {
			return nil
		}
		return err
	}
	if !edit {
		return nil
	}

	if err := newConfigForm(cfg).Run(); err != nil {
		if isAbort(err) {
			return nil
		}
		return err
	}
	if err := validateConfig(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.SaveTo(path); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintln(a.out, "\nConfiguration saved!")
	return nil
}

// validateConfig checks the file settings plus the theme name, which only
// the TUI knows about.
func validateConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !theme.IsAvailable(cfg.UI.Theme) {
		return fmt.Errorf("unknown theme %q", cfg.UI.Theme)
	}
	return nil
}

// intField binds a huh input to an int setting.
type intField struct {
	text   string
	target *int
}

func newIntField(target *int) *intField {
	return &intField{text: strconv.Itoa(*target), target: target}
}

func (f *intField) validate(lo, hi int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(s)
		if err != nil {
			return errors.New("enter a whole number")
		}
		if n < lo || n > hi {
			return fmt.Errorf("must be between %d and %d", lo, hi)
		}
		*f.target = n
		return nil
	}
}

func newConfigForm(cfg *config.Config) *huh.Form {
	start := newIntField(&cfg.Planner.StartHour)
	end := newIntField(&cfg.Planner.EndHour)
	nudge := newIntField(&cfg.Planner.NudgeMinutes)
	chat := strconv.FormatInt(cfg.Telegram.ChatID, 10)

	themes := make([]huh.Option[string], 0, len(theme.Available()))
	for _, name := range theme.Available() {
		themes = append(themes, huh.NewOption(name, name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("First hour of the day").Value(&start.text).Validate(start.validate(0, 23)),
			huh.NewInput().Title("Last hour of the day").Value(&end.text).Validate(end.validate(0, 23)),
			huh.NewInput().Title("Nudge step (min)").Value(&nudge.text).Validate(nudge.validate(5, 60)),
			huh.NewInput().Title("Prompt interval").Description("How often ended blocks are checked, e.g. 10s").Value(&cfg.Planner.PromptInterval),
			huh.NewInput().Title("Prompt countdown").Description("How long a completion question stays open").Value(&cfg.Planner.PromptCountdown),
		).Title("Planner"),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Provider").
				Options(
					huh.NewOption("None (canned lines)", "none"),
					huh.NewOption("OpenAI", "openai"),
					huh.NewOption("LM Studio", "lmstudio"),
					huh.NewOption("Ollama", "ollama"),
				).
				Value(&cfg.Coach.Provider),
			huh.NewInput().Title("Model").Value(&cfg.Coach.Model),
			huh.NewInput().Title("Base URL").Description("Empty for the provider default").Value(&cfg.Coach.BaseURL),
			huh.NewInput().Title("Language").Value(&cfg.Coach.Language),
			huh.NewInput().Title("Telegram chat id").Description("0 disables Telegram").Value(&chat).
				Validate(func(s string) error {
					id, err := strconv.ParseInt(s, 10, 64)
					if err != nil {
						return errors.New("enter a numeric chat id")
					}
					cfg.Telegram.ChatID = id
					return nil
				}),
		).Title("Coach"),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Driver").
				Options(huh.NewOption("SQLite", "sqlite"), huh.NewOption("PostgreSQL", "postgres")).
				Value(&cfg.Storage.Driver),
			huh.NewInput().Title("SQLite path").Value(&cfg.Storage.DBPath),
			huh.NewInput().Title("Postgres DSN").Description("Without password; keep it in the keyring").Value(&cfg.Storage.DSN),
		).Title("Storage"),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Theme").Options(themes...).Value(&cfg.UI.Theme),
			huh.NewSelect[string]().Title("Log level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&cfg.Log.Level),
		).Title("Interface"),
	)
}

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, formatHeader("Current configuration:"))
	fmt.Fprintln(w, "──────────────────────")
	fmt.Fprintln(w, "[planner]")
	fmt.Fprintf(w, "  start_hour       = %d\n", cfg.Planner.StartHour)
	fmt.Fprintf(w, "  end_hour         = %d\n", cfg.Planner.EndHour)
	fmt.Fprintf(w, "  nudge_minutes    = %d\n", cfg.Planner.NudgeMinutes)
	fmt.Fprintf(w, "  prompt_interval  = %s\n", cfg.Planner.PromptInterval)
	fmt.Fprintf(w, "  prompt_countdown = %s\n", cfg.Planner.PromptCountdown)
	fmt.Fprintln(w, "\n[coach]")
	fmt.Fprintf(w, "  provider         = %s\n", cfg.Coach.Provider)
	fmt.Fprintf(w, "  model            = %s\n", cfg.Coach.Model)
	fmt.Fprintf(w, "  base_url         = %s\n", cfg.Coach.BaseURL)
	fmt.Fprintf(w, "  language         = %s\n", cfg.Coach.Language)
	fmt.Fprintln(w, "\n[telegram]")
	fmt.Fprintf(w, "  chat_id          = %d\n", cfg.Telegram.ChatID)
	fmt.Fprintln(w, "\n[storage]")
	fmt.Fprintf(w, "  driver           = %s\n", cfg.Storage.Driver)
	fmt.Fprintf(w, "  db_path          = %s\n", cfg.Storage.DBPath)
	if cfg.Storage.DSN != "" {
		fmt.Fprintf(w, "  dsn              = %s\n", cfg.Storage.DSN)
	}
	fmt.Fprintln(w, "\n[log]")
	fmt.Fprintf(w, "  level            = %s\n", cfg.Log.Level)
	fmt.Fprintf(w, "  dir              = %s\n", cfg.Log.Dir)
	fmt.Fprintln(w, "\n[ui]")
	fmt.Fprintf(w, "  theme            = %s\n", cfg.UI.Theme)
}
