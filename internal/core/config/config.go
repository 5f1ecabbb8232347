// Package config handles configuration loading and validation for deskbell.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Source kinds.
const (
	SourceHTTP = "http"
	SourceFile = "file"
)

// Config holds the application configuration.
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	Push     PushConfig     `yaml:"push"`
	Audio    AudioConfig    `yaml:"audio"`
	TUI      TUIConfig      `yaml:"tui"`
	Database DatabaseConfig `yaml:"database"`
	History  HistoryConfig  `yaml:"history"`
	DataDir  string         `yaml:"-"` // set by caller, not from config file
}

// SourceConfig selects where snapshots come from.
type SourceConfig struct {
	Kind          string        `yaml:"kind"` // http | file
	URL           string        `yaml:"url"`
	SessionCookie string        `yaml:"session_cookie"` // sent verbatim as the Cookie header
	Token         string        `yaml:"token"`          // sent as a Bearer token
	Timeout       time.Duration `yaml:"timeout"`
	File          string        `yaml:"file"` // snapshot JSON for kind=file
}

// PushConfig configures desktop notifications.
type PushConfig struct {
	AppName     string `yaml:"app_name"`
	BaseURL     string `yaml:"base_url"` // relative notification urls resolve against it
	OpenCommand string `yaml:"open_command"`
}

// AudioConfig configures the tone output. Player receives raw mono s16le
// PCM on stdin.
type AudioConfig struct {
	Player     []string `yaml:"player"`
	SampleRate int      `yaml:"sample_rate"`
}

// TUIConfig holds terminal UI options.
type TUIConfig struct {
	Theme string `yaml:"theme"`
}

// DatabaseConfig holds SQLite connection options.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"` // milliseconds
}

// HistoryConfig controls alert history retention.
type HistoryConfig struct {
	Retention     time.Duration `yaml:"retention"` // 0 keeps everything
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Source: SourceConfig{
			Kind:    SourceHTTP,
			URL:     "http://localhost:5000/api/dashboard/notificaciones",
			Timeout: 10 * time.Second,
		},
		Push: PushConfig{
			AppName:     "deskbell",
			BaseURL:     "http://localhost:5000",
			OpenCommand: "xdg-open",
		},
		Audio: AudioConfig{
			Player:     []string{"paplay", "--raw", "--format=s16le", "--rate=44100", "--channels=1"},
			SampleRate: 44100,
		},
		TUI: TUIConfig{
			Theme: "tokyo-night",
		},
		Database: DatabaseConfig{
			MaxOpenConns: 2,
			MaxIdleConns: 2,
			BusyTimeout:  5000,
		},
		History: HistoryConfig{
			Retention:     7 * 24 * time.Hour,
			SweepInterval: time.Hour,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Source.Kind == "" {
		c.Source.Kind = defaults.Source.Kind
	}
	if c.Source.Timeout == 0 {
		c.Source.Timeout = defaults.Source.Timeout
	}
	if c.Push.AppName == "" {
		c.Push.AppName = defaults.Push.AppName
	}
	if c.Push.OpenCommand == "" {
		c.Push.OpenCommand = defaults.Push.OpenCommand
	}
	if len(c.Audio.Player) == 0 {
		c.Audio.Player = defaults.Audio.Player
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = defaults.Audio.SampleRate
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
	if c.History.SweepInterval == 0 {
		c.History.SweepInterval = defaults.History.SweepInterval
	}
}

// LogFile returns the default log file path inside the data directory.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "deskbell.log")
}
