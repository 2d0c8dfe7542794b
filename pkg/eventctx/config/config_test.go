package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/eventctx/pkg/eventctx/config"
)

func TestConfig_String(t *testing.T) {
	c := config.New(map[string]any{
		"name":  "orders",
		"count": 3,
	})

	assert.Equal(t, "orders", c.String("name", "fallback"))
	assert.Equal(t, "fallback", c.String("missing", "fallback"))
	assert.Equal(t, "fallback", c.String("count", "fallback"))
}

func TestConfig_Bool(t *testing.T) {
	c := config.New(map[string]any{
		"enabled": true,
		"name":    "orders",
	})

	assert.True(t, c.Bool("enabled", false))
	assert.True(t, c.Bool("missing", true))
	assert.False(t, c.Bool("name", false))
}

func TestConfig_NilMap(t *testing.T) {
	c := config.New(nil)

	assert.Equal(t, "d", c.String("anything", "d"))
	assert.False(t, c.Bool("anything", false))
}

func TestFromYAML(t *testing.T) {
	c, err := config.FromYAML([]byte("trace_enabled: true\ndiagnostics_db: /tmp/trace.db\n"))
	require.NoError(t, err)

	assert.True(t, c.Bool("trace_enabled", false))
	assert.Equal(t, "/tmp/trace.db", c.String("diagnostics_db", ""))
}

func TestFromYAML_Invalid(t *testing.T) {
	_, err := config.FromYAML([]byte("{not yaml"))
	assert.Error(t, err)
}

func TestFromJSON(t *testing.T) {
	c, err := config.FromJSON([]byte(`{"processing_time_enabled": true}`))
	require.NoError(t, err)

	assert.True(t, c.Bool("processing_time_enabled", false))
}

func TestFromJSON_Invalid(t *testing.T) {
	_, err := config.FromJSON([]byte(`{"broken"`))
	assert.Error(t, err)
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("trace_enabled: true\n"), 0o644))

	jsonPath := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"trace_enabled": true}`), 0o644))

	for _, path := range []string{yamlPath, jsonPath} {
		c, err := config.FromFile(path)
		require.NoError(t, err)
		assert.True(t, c.Bool("trace_enabled", false))
	}
}

func TestFromFile_Errors(t *testing.T) {
	_, err := config.FromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte("a = 1"), 0o644))
	_, err = config.FromFile(path)
	assert.ErrorContains(t, err, "unsupported extension")
}

func TestSettingsFrom(t *testing.T) {
	c, err := config.FromYAML([]byte(
		"trace_enabled: true\nprocessing_time_enabled: true\ndiagnostics_db: trace.db\n"))
	require.NoError(t, err)

	s := config.SettingsFrom(c)
	assert.True(t, s.TraceEnabled)
	assert.True(t, s.ProcessingTimeEnabled)
	assert.Equal(t, "trace.db", s.DiagnosticsDB)
}

func TestSettingsFrom_Defaults(t *testing.T) {
	s := config.SettingsFrom(config.New(nil))

	assert.False(t, s.TraceEnabled)
	assert.False(t, s.ProcessingTimeEnabled)
	assert.Empty(t, s.DiagnosticsDB)
}
