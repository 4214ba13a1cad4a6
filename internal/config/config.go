// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/javiermolinar/lvlup/internal/block"
	"github.com/javiermolinar/lvlup/internal/db"
	"github.com/javiermolinar/lvlup/internal/keyring"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LVLUP_"

// Config holds the application configuration.
type Config struct {
	Planner  PlannerConfig  `toml:"planner"`
	Storage  StorageConfig  `toml:"storage"`
	Coach    CoachConfig    `toml:"coach"`
	Telegram TelegramConfig `toml:"telegram"`
	Log      LogConfig      `toml:"log"`
	UI       UIConfig       `toml:"ui"`

	// dotenv holds values read from .env files; the process environment wins.
	dotenv map[string]string
}

// PlannerConfig holds day-planning settings.
type PlannerConfig struct {
	StartHour       int    `toml:"start_hour"`       // seeds the planning window
	EndHour         int    `toml:"end_hour"`         // inclusive last hour row
	NudgeMinutes    int    `toml:"nudge_minutes"`    // +/- step and minimum block length
	PromptInterval  string `toml:"prompt_interval"`  // e.g. "10s"
	PromptCountdown string `toml:"prompt_countdown"` // e.g. "5s"
}

// StorageConfig holds database settings.
type StorageConfig struct {
	Driver string `toml:"driver"`  // "sqlite" or "postgres"
	DBPath string `toml:"db_path"` // sqlite file
	DSN    string `toml:"dsn"`     // postgres, without password
}

// CoachConfig holds LLM provider settings for event messages.
type CoachConfig struct {
	Provider string `toml:"provider"` // "none", "openai", "lmstudio", "ollama"
	Model    string `toml:"model"`
	BaseURL  string `toml:"base_url"`
	Language string `toml:"language"` // reply language, e.g. "English"
}

// TelegramConfig holds the Telegram outbox settings.
type TelegramConfig struct {
	ChatID int64 `toml:"chat_id"` // 0 disables Telegram
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `toml:"level"` // "debug", "info", "warn", "error"
	Dir   string `toml:"dir"`
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme string `toml:"theme"` // "frappe", "latte"
}

var validProviders = map[string]bool{"none": true, "openai": true, "lmstudio": true, "ollama": true}

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Default returns the default configuration.
func Default() *Config {
	w := block.DefaultWindow()
	return &Config{
		Planner: PlannerConfig{
			StartHour:       w.StartHour,
			EndHour:         w.EndHour,
			NudgeMinutes:    15,
			PromptInterval:  "10s",
			PromptCountdown: "5s",
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			DBPath: defaultDBPath(),
		},
		Coach: CoachConfig{
			Provider: "none",
			Model:    "gpt-4o-mini",
			BaseURL:  "",
			Language: "English",
		},
		Log: LogConfig{
			Level: "warn",
			Dir:   defaultLogDir(),
		},
		UI: UIConfig{
			Theme: "frappe",
		},
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "lvlup.db"
	}
	return filepath.Join(home, ".local", "share", "lvlup", "lvlup.db")
}

func defaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "logs"
	}
	return filepath.Join(home, ".config", "lvlup", "logs")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "lvlup", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays the file if it exists, reads .env files
// next to the config and in the working directory, then applies LVLUP_*
// environment overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	dotenv, err := readDotEnv(filepath.Join(filepath.Dir(path), ".env"), ".env")
	if err != nil {
		return nil, err
	}
	cfg.dotenv = dotenv

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)
	cfg.Log.Dir = expandPath(cfg.Log.Dir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// readDotEnv merges the given .env files; earlier files win. Missing files
// are skipped.
func readDotEnv(paths ...string) (map[string]string, error) {
	merged := make(map[string]string)
	for _, p := range paths {
		values, err := godotenv.Read(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		for k, v := range values {
			if _, ok := merged[k]; !ok {
				merged[k] = v
			}
		}
	}
	return merged, nil
}

// Getenv returns LVLUP_<key> from the process environment or, failing
// that, from the loaded .env files.
func (c *Config) Getenv(key string) string {
	name := EnvPrefix + key
	if v := os.Getenv(name); v != "" {
		return v
	}
	return c.dotenv[name]
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func (c *Config) applyEnvOverrides() error {
	ints := []struct {
		key string
		dst *int
	}{
		{"START_HOUR", &c.Planner.StartHour},
		{"END_HOUR", &c.Planner.EndHour},
		{"NUDGE_MINUTES", &c.Planner.NudgeMinutes},
	}
	for _, o := range ints {
		if v := c.Getenv(o.key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s must be an integer, got %q", EnvPrefix, o.key, v)
			}
			*o.dst = n
		}
	}

	strs := []struct {
		key string
		dst *string
	}{
		{"PROMPT_INTERVAL", &c.Planner.PromptInterval},
		{"PROMPT_COUNTDOWN", &c.Planner.PromptCountdown},
		{"DB_DRIVER", &c.Storage.Driver},
		{"DB_PATH", &c.Storage.DBPath},
		{"DB_DSN", &c.Storage.DSN},
		{"COACH_PROVIDER", &c.Coach.Provider},
		{"COACH_MODEL", &c.Coach.Model},
		{"COACH_BASE_URL", &c.Coach.BaseURL},
		{"COACH_LANGUAGE", &c.Coach.Language},
		{"LOG_LEVEL", &c.Log.Level},
		{"LOG_DIR", &c.Log.Dir},
		{"UI_THEME", &c.UI.Theme},
	}
	for _, o := range strs {
		if v := c.Getenv(o.key); v != "" {
			*o.dst = v
		}
	}

	if v := c.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sTELEGRAM_CHAT_ID must be an integer, got %q", EnvPrefix, v)
		}
		c.Telegram.ChatID = id
	}
	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := c.Window().Validate(); err != nil {
		return err
	}
	if c.Planner.NudgeMinutes < 1 || c.Planner.NudgeMinutes > 60 {
		return fmt.Errorf("nudge_minutes must be between 1 and 60, got %d", c.Planner.NudgeMinutes)
	}
	if err := validateDuration(c.Planner.PromptInterval, "prompt_interval"); err != nil {
		return err
	}
	if err := validateDuration(c.Planner.PromptCountdown, "prompt_countdown"); err != nil {
		return err
	}

	driver, err := db.ParseDriver(c.Storage.Driver)
	if err != nil {
		return err
	}
	switch driver {
	case db.DriverSQLite:
		if c.Storage.DBPath == "" {
			return errors.New("db_path must be set")
		}
	case db.DriverPostgres:
		if c.Storage.DSN != "" {
			if err := db.ValidateDSN(c.Storage.DSN); err != nil {
				return err
			}
		}
	}

	if !validProviders[strings.ToLower(c.Coach.Provider)] {
		return fmt.Errorf("invalid coach provider: %s", c.Coach.Provider)
	}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	return nil
}

func validateDuration(s, field string) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("%s must be a duration like \"10s\", got %q", field, s)
	}
	if d <= 0 {
		return fmt.Errorf("%s must be positive, got %q", field, s)
	}
	return nil
}

// Window returns the configured planning window.
func (c *Config) Window() block.Window {
	return block.Window{StartHour: c.Planner.StartHour, EndHour: c.Planner.EndHour}
}

// PromptInterval returns how often elapsed blocks are checked.
func (c *Config) PromptInterval() time.Duration {
	d, _ := time.ParseDuration(c.Planner.PromptInterval)
	return d
}

// PromptCountdown returns how long a completion prompt stays open.
func (c *Config) PromptCountdown() time.Duration {
	d, _ := time.ParseDuration(c.Planner.PromptCountdown)
	return d
}

// StorageDSN returns the driver and data source to open. For postgres the
// keyring entry wins over the config file, so a password-bearing DSN can
// live outside the file.
func (c *Config) StorageDSN() (db.Driver, string, error) {
	driver, err := db.ParseDriver(c.Storage.Driver)
	if err != nil {
		return "", "", err
	}
	if driver == db.DriverSQLite {
		return driver, c.Storage.DBPath, nil
	}
	if v := c.Secret(keyring.PostgresDSN); v != "" {
		return driver, v, nil
	}
	if c.Storage.DSN == "" {
		return "", "", errors.New("postgres storage needs a dsn in config or the keyring")
	}
	return driver, c.Storage.DSN, nil
}

// Secret resolves a named secret from LVLUP_<NAME> (dashes become
// underscores) or the OS keyring.
func (c *Config) Secret(name string) string {
	key := strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	if v := c.Getenv(key); v != "" {
		return v
	}
	return keyring.Lookup(name)
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
