// Package config loads user settings and resolves where habits are stored.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/microhabit/internal/constants"
	"github.com/julianstephens/microhabit/internal/keyring"
	"github.com/julianstephens/microhabit/internal/storage/postgres"
	"github.com/julianstephens/microhabit/internal/utils"
)

const (
	EnvTimezone     = "MICROHABIT_TIMEZONE"
	EnvStrategy     = "MICROHABIT_STRATEGY"
	EnvDBConnection = "MICROHABIT_DB_CONNECTION"

	// KeyringDB selects the connection string stored in the OS keyring
	KeyringDB = "keyring"
)

var (
	ErrInvalidStrategy = errors.New("invalid reminder strategy")
	ErrInvalidTimezone = errors.New("invalid timezone")
	ErrInvalidSetting  = errors.New("invalid setting")
)

type Settings struct {
	Timezone             string                 `yaml:"timezone"`
	Strategy             constants.StrategyName `yaml:"strategy"`
	NotificationsEnabled bool                   `yaml:"notifications_enabled"`
	ReloadInterval       time.Duration          `yaml:"reload_interval"`
	HistoryDays          int                    `yaml:"history_days"`
	DryRun               bool                   `yaml:"dry_run"`
}

func Default() Settings {
	return Settings{
		Timezone:             "Local",
		Strategy:             constants.StrategyCalendar,
		NotificationsEnabled: true,
		ReloadInterval:       constants.DefaultReloadInterval,
		HistoryDays:          constants.DefaultHistoryDays,
	}
}

// Load reads the settings file at path over the defaults. A missing file
// yields the defaults. Environment overrides are applied and the result is
// validated.
func Load(path string) (Settings, error) {
	s := Default()

	if path != "" {
		expanded, err := utils.ExpandHome(path)
		if err != nil {
			return s, err
		}
		data, err := os.ReadFile(expanded)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return s, fmt.Errorf("failed to read settings: %w", err)
		default:
			if err := yaml.Unmarshal(data, &s); err != nil {
				return s, fmt.Errorf("failed to parse settings %s: %w", expanded, err)
			}
		}
	}

	s.ApplyEnv()
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// ApplyEnv overrides fields from MICROHABIT_* environment variables.
func (s *Settings) ApplyEnv() {
	if tz := strings.TrimSpace(os.Getenv(EnvTimezone)); tz != "" {
		s.Timezone = tz
	}
	if st := strings.TrimSpace(os.Getenv(EnvStrategy)); st != "" {
		s.Strategy = constants.StrategyName(st)
	}
}

func (s Settings) Validate() error {
	switch s.Strategy {
	case "", constants.StrategyCalendar, constants.StrategyOneShot:
	default:
		return fmt.Errorf("%w: %q (expected %q or %q)", ErrInvalidStrategy, s.Strategy,
			constants.StrategyCalendar, constants.StrategyOneShot)
	}
	if !utils.ValidateTimezone(s.Timezone) {
		return fmt.Errorf("%w: %q", ErrInvalidTimezone, s.Timezone)
	}
	if s.ReloadInterval < 0 {
		return fmt.Errorf("%w: reload_interval must not be negative", ErrInvalidSetting)
	}
	if s.HistoryDays < 1 {
		return fmt.Errorf("%w: history_days must be at least 1", ErrInvalidSetting)
	}
	return nil
}

// Location returns the calendar the habit days are computed in.
func (s Settings) Location() (*time.Location, error) {
	return utils.LoadLocation(s.Timezone)
}

// Save writes the settings as YAML, creating the parent directory.
func (s Settings) Save(path string) error {
	expanded, err := utils.ExpandHome(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.WriteFile(expanded, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// ResolveDB turns the --db flag into a storage location. The environment
// connection string wins over everything. Postgres URLs given on the
// command line must not carry a password; "keyring" reads the full
// connection string from the OS keyring. Anything else is a file path.
func ResolveDB(db string) (string, error) {
	if env := strings.TrimSpace(os.Getenv(EnvDBConnection)); env != "" {
		return env, nil
	}

	switch {
	case db == KeyringDB:
		connStr, err := keyring.GetConnectionString()
		if err != nil {
			return "", fmt.Errorf("failed to read connection string from keyring: %w", err)
		}
		return connStr, nil
	case postgres.IsConnString(db):
		if err := postgres.ValidateConnString(db); err != nil {
			return "", err
		}
		return db, nil
	}

	if db == "" {
		db = constants.DefaultDBPath
	}
	return utils.ExpandHome(db)
}
