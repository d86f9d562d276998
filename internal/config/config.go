package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/theirongolddev/debtburn/internal/money"
)

// Config holds all debtburn configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Store      StoreConfig      `toml:"store"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// GeneralConfig holds planning preferences.
type GeneralConfig struct {
	User             string       `toml:"user"`
	Currency         string       `toml:"currency"`
	CurrencySymbol   string       `toml:"currency_symbol"`
	CurrencyDecimals int32        `toml:"currency_decimals"`
	DefaultExtra     money.Amount `toml:"default_extra"`
	MaxMonths        int          `toml:"max_months"`
}

// StoreConfig selects the debt database. An empty DSN uses a SQLite file
// under the data directory; a postgres:// URL selects PostgreSQL.
type StoreConfig struct {
	DSN string `toml:"dsn,omitempty"`
}

// DaemonConfig holds HTTP daemon settings.
type DaemonConfig struct {
	Addr         string `toml:"addr"`
	EventsBuffer int    `toml:"events_buffer"`
	CacheTTLSec  int    `toml:"cache_ttl_sec"`
	RedisAddr    string `toml:"redis_addr,omitempty"`
	RedisDB      int    `toml:"redis_db,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			User:           "default",
			Currency:       "INR",
			CurrencySymbol: "₹",
			DefaultExtra:   money.Zero,
			MaxMonths:      1200,
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8787",
			EventsBuffer: 200,
			CacheTTLSec:  300,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// Validate rejects settings the planner cannot honour.
func (c Config) Validate() error {
	if c.General.CurrencyDecimals < 0 || c.General.CurrencyDecimals > 4 {
		return fmt.Errorf("general.currency_decimals must be between 0 and 4, got %d", c.General.CurrencyDecimals)
	}
	if c.General.MaxMonths <= 0 {
		return fmt.Errorf("general.max_months must be positive, got %d", c.General.MaxMonths)
	}
	if c.General.DefaultExtra.Sign() < 0 {
		return fmt.Errorf("general.default_extra must not be negative")
	}
	return nil
}

// Rounder returns the currency rounding rule.
func (c Config) Rounder() money.Rounder {
	return money.Rounder{Places: c.General.CurrencyDecimals}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "debtburn")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "debtburn")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory holding the debt database.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "debtburn")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "debtburn")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFile(Path())
}

// LoadFile reads the config at path, returning defaults if it doesn't exist.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // user-selected config path
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveFile(Path(), cfg)
}

// SaveFile writes the config to path.
func SaveFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // user-selected config path
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// DSN returns the store DSN from env var or config, falling back to the
// SQLite file in DataDir.
func DSN(cfg Config) string {
	if dsn := os.Getenv("DEBTBURN_DB"); dsn != "" {
		return dsn
	}
	if cfg.Store.DSN != "" {
		return cfg.Store.DSN
	}
	return filepath.Join(DataDir(), "debts.db")
}

// User returns the active user from env var or config, in that order.
func User(cfg Config) string {
	if u := os.Getenv("DEBTBURN_USER"); u != "" {
		return u
	}
	return cfg.General.User
}

// RedisAddr returns the analysis cache address from env var or config.
// Empty means the in-process cache.
func RedisAddr(cfg Config) string {
	if addr := os.Getenv("DEBTBURN_REDIS_ADDR"); addr != "" {
		return addr
	}
	return cfg.Daemon.RedisAddr
}
