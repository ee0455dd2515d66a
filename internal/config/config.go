package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	duerr "github.com/gongahkia/dueday/internal/errors"
	"github.com/gongahkia/dueday/internal/log"
)

type Config struct {
	DefaultTimezone string `toml:"default_timezone" json:"default_timezone"`
	DefaultDueHour  int    `toml:"default_due_hour" json:"default_due_hour"`
	DateLocale      string `toml:"date_locale" json:"date_locale"`
	MaxOccurrences  int    `toml:"max_occurrences" json:"max_occurrences"`
	DBPath          string `toml:"db_path" json:"db_path"`
	Listen          string `toml:"listen" json:"listen"`
	LogLevel        string `toml:"log_level" json:"log_level"`
	Color           string `toml:"color" json:"color"`
}

func DefaultConfig() *Config {
	return &Config{
		DefaultTimezone: "UTC",
		DefaultDueHour:  9,
		DateLocale:      "MDY",
		MaxOccurrences:  5000,
		DBPath:          filepath.Join(DataDir(), "dueday.db"),
		Listen:          ":8080",
		LogLevel:        "info",
		Color:           "auto",
	}
}

var (
	overrideMu   sync.RWMutex
	overridePath string
)

// SetOverridePath makes Load read path instead of the XDG location.
func SetOverridePath(path string) {
	overrideMu.Lock()
	defer overrideMu.Unlock()
	overridePath = path
}

func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, &duerr.ConfigError{Key: path, Message: "failed to parse", Err: err}
	}

	for _, key := range md.Undecoded() {
		fmt.Fprintf(os.Stderr, "Warning: unknown config key '%s'\n", key)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DefaultTimezone != "" {
		if _, err := time.LoadLocation(cfg.DefaultTimezone); err != nil {
			return &duerr.ConfigError{Key: "default_timezone", Message: fmt.Sprintf("invalid zone '%s'", cfg.DefaultTimezone), Err: err}
		}
	}

	if cfg.DefaultDueHour < 0 || cfg.DefaultDueHour > 23 {
		return &duerr.ConfigError{Key: "default_due_hour", Message: fmt.Sprintf("%d is not an hour of the day", cfg.DefaultDueHour)}
	}

	validLocales := map[string]bool{"mdy": true, "dmy": true, "ymd": true}
	locale := strings.ToLower(cfg.DateLocale)
	if !validLocales[locale] && !strings.Contains(locale, "_") && !strings.Contains(locale, "-") && len(locale) != 2 {
		return &duerr.ConfigError{Key: "date_locale", Message: fmt.Sprintf("invalid locale '%s': use MDY, DMY, YMD or a locale such as en_GB", cfg.DateLocale)}
	}

	if cfg.MaxOccurrences < 1 {
		return &duerr.ConfigError{Key: "max_occurrences", Message: "must be at least 1"}
	}

	if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
		return &duerr.ConfigError{Key: "log_level", Message: "must be debug, info, warn or error", Err: err}
	}

	validColor := map[string]bool{"auto": true, "always": true, "never": true}
	if !validColor[cfg.Color] {
		return &duerr.ConfigError{Key: "color", Message: fmt.Sprintf("invalid color mode '%s': must be 'auto', 'always', or 'never'", cfg.Color)}
	}

	return nil
}

// Location returns the default zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DefaultTimezone)
	if err != nil || c.DefaultTimezone == "" {
		return time.UTC
	}
	return loc
}

// Encode renders cfg as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes cfg to path through a temporary file and a rename.
func Save(path string, cfg *Config) error {
	if err := validate(cfg); err != nil {
		return err
	}
	data, err := cfg.Encode()
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append([]byte("# dueday configuration\n"), data...), 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Init writes the default configuration to path. It refuses to overwrite.
func Init(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	}
	return Save(path, DefaultConfig())
}

func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "dueday")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "dueday")
}

func ConfigPath() string {
	overrideMu.RLock()
	defer overrideMu.RUnlock()
	if overridePath != "" {
		return overridePath
	}
	return filepath.Join(ConfigDir(), "config.toml")
}

func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "dueday")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "dueday")
}
