package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a Config with all required fields set for testing.
func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	return &cfg
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig(t).Validate())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"unknown source kind", func(c *Config) { c.Source.Kind = "ftp" }, "source.kind"},
		{"bad url scheme", func(c *Config) { c.Source.URL = "ftp://desk" }, "source.url"},
		{"missing host", func(c *Config) { c.Source.URL = "http://" }, "source.url"},
		{"file kind without file", func(c *Config) { c.Source.Kind = SourceFile }, "source.file"},
		{"bad base url", func(c *Config) { c.Push.BaseURL = "desk.example.com" }, "push.base_url"},
		{"empty player", func(c *Config) { c.Audio.Player = []string{""} }, "audio.player"},
		{"sample rate too low", func(c *Config) { c.Audio.SampleRate = 100 }, "audio.sample_rate"},
		{"unknown theme", func(c *Config) { c.TUI.Theme = "neon" }, "tui.theme"},
		{"no connections", func(c *Config) { c.Database.MaxOpenConns = 0 }, "database.max_open_conns"},
		{"negative retention", func(c *Config) { c.History.Retention = -time.Hour }, "history.retention"},
		{"sweep too often", func(c *Config) { c.History.SweepInterval = time.Second }, "history.sweep_interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := cfg.Validate()

			var fieldErrs criterio.FieldErrors
			require.ErrorAs(t, err, &fieldErrs)
			require.Len(t, fieldErrs, 1)
			assert.Equal(t, tt.field, fieldErrs[0].Field)
		})
	}
}

func TestValidate_empty_base_url_is_allowed(t *testing.T) {
	cfg := validConfig(t)
	cfg.Push.BaseURL = ""
	assert.NoError(t, cfg.Validate())
}

func TestValidateDeep_ConfigFileIsDirectory(t *testing.T) {
	cfg := validConfig(t)

	err := cfg.ValidateDeep(t.TempDir())

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "config_file", fieldErrs[0].Field)
}

func TestValidateDeep_DataDirIsFile(t *testing.T) {
	cfg := validConfig(t)
	file := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	cfg.DataDir = file

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "data_dir", fieldErrs[0].Field)
}

func TestValidateDeep_SourceFileMissing(t *testing.T) {
	cfg := validConfig(t)
	cfg.Source.Kind = SourceFile
	cfg.Source.File = filepath.Join(t.TempDir(), "snapshot.json")

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "source.file", fieldErrs[0].Field)

	require.NoError(t, os.WriteFile(cfg.Source.File, []byte(`{}`), 0o644))
	assert.NoError(t, cfg.ValidateDeep(""))
}

func TestWarnings(t *testing.T) {
	cfg := validConfig(t)
	cfg.Audio.Player = []string{"definitely-not-a-player-binary"}
	cfg.Push.OpenCommand = "definitely-not-an-opener"
	cfg.Push.BaseURL = ""

	warnings := cfg.Warnings()

	categories := make([]string, 0, len(warnings))
	for _, w := range warnings {
		categories = append(categories, w.Category)
	}
	assert.Contains(t, categories, "Audio")
	assert.Contains(t, categories, "Push")
	assert.Contains(t, categories, "Source")
	assert.Len(t, warnings, 4)
}
