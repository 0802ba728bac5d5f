package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowdeck-io/flowdeck/internal/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flowdeck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  format: json
merge:
  default_timeout_ms: 5000
  max_live_instances: 64
lint:
  warnings_as_errors: true
`)

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, int64(5000), cfg.Merge.DefaultTimeoutMillis)
	assert.Equal(t, 64, cfg.Merge.MaxLiveInstances)
	assert.True(t, cfg.Lint.WarningsAsErrors)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: warn
`)

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)

	defaults := DefaultConfig()
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, defaults.Logging.Format, cfg.Logging.Format)
	assert.Equal(t, defaults.Merge.DefaultTimeoutMillis, cfg.Merge.DefaultTimeoutMillis)
	assert.Equal(t, defaults.Merge.MaxLiveInstances, cfg.Merge.MaxLiveInstances)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := NewLoader().Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.NewError(types.CONFIG_LOAD_FAILED, "")))
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: info
  colour: always
`)

	_, err := NewLoader().Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.NewError(types.CONFIG_PARSE_FAILED, "")))
}

func TestLoad_ValidationFailure(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad log level", "logging:\n  level: loud"},
		{"bad log format", "logging:\n  format: xml"},
		{"zero max instances", "merge:\n  max_live_instances: 0"},
		{"negative timeout", "merge:\n  default_timeout_ms: -1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader().Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, types.NewError(types.CONFIG_VALIDATION_FAILED, "")))
		})
	}
}

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := NewLoader().LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	path := writeConfig(t, "logging:\n  level: error")
	cfg, err = NewLoader().LoadWithDefaults(path)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.NotNil(t, cfg.Logger())
}
