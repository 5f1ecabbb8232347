package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"time"

	"github.com/colonyops/deskbell/internal/core/styles"
	"github.com/hay-kot/criterio"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// Validate checks the structural validity of the configuration. It performs
// no I/O.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("data_dir", c.DataDir, func(dir string) error {
			if dir == "" {
				return errors.New("data directory cannot be empty")
			}
			return nil
		}),
		c.validateSource(),
		criterio.Run("push.base_url", c.Push.BaseURL, validBaseURL),
		criterio.Run("audio.player", c.Audio.Player, func(argv []string) error {
			if len(argv) == 0 || argv[0] == "" {
				return errors.New("player command cannot be empty")
			}
			return nil
		}),
		criterio.Run("audio.sample_rate", c.Audio.SampleRate, func(rate int) error {
			if rate < 8000 || rate > 192000 {
				return fmt.Errorf("must be between 8000 and 192000, got %d", rate)
			}
			return nil
		}),
		criterio.Run("tui.theme", c.TUI.Theme, func(theme string) error {
			if _, ok := styles.GetPalette(theme); !ok {
				return fmt.Errorf("unknown theme %q (available: %v)", theme, styles.ThemeNames())
			}
			return nil
		}),
		c.validateDatabase(),
		criterio.Run("history.retention", c.History.Retention, nonNegative),
		criterio.Run("history.sweep_interval", c.History.SweepInterval, func(d time.Duration) error {
			if d < time.Minute {
				return errors.New("must be at least 1m")
			}
			return nil
		}),
	)
}

func (c *Config) validateSource() error {
	var errs criterio.FieldErrorsBuilder

	switch c.Source.Kind {
	case SourceHTTP:
		if err := validHTTPURL(c.Source.URL); err != nil {
			errs = errs.Append("source.url", err)
		}
		if c.Source.Timeout < 0 {
			errs = errs.Append("source.timeout", errors.New("cannot be negative"))
		}
	case SourceFile:
		if c.Source.File == "" {
			errs = errs.Append("source.file", errors.New("required when kind is file"))
		}
	default:
		errs = errs.Append("source.kind", fmt.Errorf("must be %q or %q, got %q", SourceHTTP, SourceFile, c.Source.Kind))
	}

	return errs.ToError()
}

func (c *Config) validateDatabase() error {
	var errs criterio.FieldErrorsBuilder
	if c.Database.MaxOpenConns < 1 {
		errs = errs.Append("database.max_open_conns", errors.New("must be at least 1"))
	}
	if c.Database.MaxIdleConns < 0 {
		errs = errs.Append("database.max_idle_conns", errors.New("cannot be negative"))
	}
	if c.Database.BusyTimeout < 0 {
		errs = errs.Append("database.busy_timeout", errors.New("cannot be negative"))
	}
	return errs.ToError()
}

// ValidateDeep performs Validate and then checks file and executable
// accessibility. The configPath argument specifies the config file location
// to validate (empty string skips the config file check).
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	checks := []error{
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	}
	if c.Source.Kind == SourceFile {
		checks = append(checks, criterio.Run("source.file", c.Source.File, fileExists))
	}

	return criterio.ValidateStruct(checks...)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if _, err := exec.LookPath(c.Audio.Player[0]); err != nil {
		warnings = append(warnings, ValidationWarning{
			Category: "Audio",
			Item:     c.Audio.Player[0],
			Message:  "player not found in PATH; tones will be silent",
		})
	}
	if _, err := exec.LookPath(c.Push.OpenCommand); err != nil {
		warnings = append(warnings, ValidationWarning{
			Category: "Push",
			Item:     c.Push.OpenCommand,
			Message:  "open command not found in PATH; clicking a notification will not open its link",
		})
	}
	if c.Source.Kind == SourceHTTP && c.Source.SessionCookie == "" && c.Source.Token == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "Source",
			Message:  "no session_cookie or token set; the dashboard requires an authenticated technician",
		})
	}
	if c.Push.BaseURL == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "Push",
			Message:  "base_url is empty; relative notification links cannot be opened",
		})
	}
	return warnings
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

func fileExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	return nil
}

func validHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must be an http(s) url, got %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}

func validBaseURL(raw string) error {
	if raw == "" {
		return nil
	}
	return validHTTPURL(raw)
}

func nonNegative(d time.Duration) error {
	if d < 0 {
		return errors.New("cannot be negative")
	}
	return nil
}
