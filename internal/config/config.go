package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Dataset  DatasetConfig  `mapstructure:"dataset"`
	UI       UIConfig       `mapstructure:"ui"`
	Log      LogConfig      `mapstructure:"log"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// DatasetConfig picks which slice of the data the dashboard opens on.
type DatasetConfig struct {
	Year int `mapstructure:"year"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	DimmedOpacity float64 `mapstructure:"dimmed_opacity"`
	Background    string  `mapstructure:"background"`
	BarWidth      int     `mapstructure:"bar_width"`
	ScatterHeight int     `mapstructure:"scatter_height"`
}

// LogConfig controls where slog output goes while the TUI owns the terminal.
type LogConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"`
}

// EnvPath names the env var that points at an explicit config file.
const EnvPath = "GAPVIEW_CONFIG"

func setDefaults(v *viper.Viper) {
	home := os.Getenv("HOME")
	v.SetDefault("database.path", filepath.Join(home, ".local", "share", "gapview", "gapview.db"))
	v.SetDefault("dataset.year", 2000)
	v.SetDefault("ui.dimmed_opacity", 0.3)
	v.SetDefault("ui.background", "#1e1e2e")
	v.SetDefault("ui.bar_width", 48)
	v.SetDefault("ui.scatter_height", 14)
	v.SetDefault("log.path", filepath.Join(home, ".local", "state", "gapview", "gapview.log"))
	v.SetDefault("log.level", "info")
}

// Path resolves the config file location: explicit argument, then GAPVIEW_CONFIG,
// then $HOME/.config/gapview/config.toml.
func Path(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "gapview", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix GAPVIEW_.
// A missing config file is not an error.
func Load(explicit string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	v.SetConfigFile(Path(explicit))

	v.SetEnvPrefix("GAPVIEW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects values the dashboard cannot render with.
func (c Config) Validate() error {
	if c.UI.DimmedOpacity < 0 || c.UI.DimmedOpacity > 1 {
		return fmt.Errorf("ui.dimmed_opacity must be within [0,1], got %v", c.UI.DimmedOpacity)
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database.path is required")
	}
	if _, err := colorful.Hex(c.UI.Background); err != nil {
		return fmt.Errorf("ui.background must be a hex colour, got %q", c.UI.Background)
	}
	return nil
}

// Save writes the provided config to path (resolved like Load), creating the directory if needed.
func Save(cfg Config, explicit string) (string, error) {
	path := Path(explicit)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("dataset.year", cfg.Dataset.Year)
	v.Set("ui.dimmed_opacity", cfg.UI.DimmedOpacity)
	v.Set("ui.background", cfg.UI.Background)
	v.Set("ui.bar_width", cfg.UI.BarWidth)
	v.Set("ui.scatter_height", cfg.UI.ScatterHeight)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}
