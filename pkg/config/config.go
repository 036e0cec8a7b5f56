// Package config loads dynlink settings from .dynlink.yaml and DYNLINK_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"tableflip.dev/dynlink/pkg/link"
)

// Config holds all application configuration.
type Config struct {
	Domain     string        `mapstructure:"domain"`
	BundleID   string        `mapstructure:"bundle_id"`
	APIKey     string        `mapstructure:"api_key"`
	Endpoint   string        `mapstructure:"endpoint"`
	PathLength string        `mapstructure:"path_length"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RetryMax   int           `mapstructure:"retry_max"`
	History    HistoryConfig `mapstructure:"history"`
	Log        LogConfig     `mapstructure:"log"`

	file string
}

// HistoryConfig controls the generated-link log.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// Load reads configuration. An explicit path must exist; otherwise
// .dynlink.yaml is searched in $DYNLINK_CONFIG_PATH, ./ and $HOME and a
// missing file is fine.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("domain", "test3p.app.goo.gl")
	v.SetDefault("bundle_id", "")
	v.SetDefault("api_key", "")
	v.SetDefault("endpoint", "https://firebasedynamiclinks.googleapis.com/v1/shortLinks")
	v.SetDefault("path_length", "unguessable")
	v.SetDefault("timeout", "10s")
	v.SetDefault("retry_max", 2)
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "~/.dynlink")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".dynlink")
		if override := os.Getenv("DYNLINK_CONFIG_PATH"); override != "" {
			v.AddConfigPath(override)
		}
		v.AddConfigPath("./")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	v.SetEnvPrefix("DYNLINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	cfg := &Config{file: v.ConfigFileUsed()}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if _, ok := link.ParsePathLength(c.PathLength); !ok {
		return fmt.Errorf("config: path_length must be unguessable or short, got %q", c.PathLength)
	}
	if c.RetryMax < 0 {
		return fmt.Errorf("config: retry_max must not be negative")
	}
	return nil
}

// File is the config file that was read, if any.
func (c *Config) File() string { return c.file }

// LinkOptions converts the path length setting.
func (c *Config) LinkOptions() link.Options {
	p, _ := link.ParsePathLength(c.PathLength)
	return link.Options{PathLength: p}
}

// HistoryPath returns the history directory with ~ expanded.
func (c *Config) HistoryPath() (string, error) {
	return homedir.Expand(c.History.Path)
}

// NewLogger creates a logger with the configured level and format writing
// to w.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(c.Log.Format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// OpenLogFile opens log.file for appending. With no file configured the
// returned writer discards everything; the terminal belongs to the UI.
func (c *Config) OpenLogFile() (io.WriteCloser, error) {
	if c.Log.File == "" {
		return nopCloser{io.Discard}, nil
	}
	p, err := homedir.Expand(c.Log.File)
	if err != nil {
		return nil, err
	}
	return os.OpenFile(p, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
