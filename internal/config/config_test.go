package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/atmo/internal/core"
	"github.com/roach88/atmo/internal/dispatch"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10, cfg.AbilityCapacity)
	assert.Equal(t, 10, cfg.CallbackCapacity)
	assert.Equal(t, 8, cfg.TickCapacity)
	assert.Equal(t, dispatch.DefaultMaxDepth, cfg.MaxDispatchDepth)
	assert.Equal(t, core.DefaultTickInterval, cfg.TickInterval)
	assert.False(t, cfg.AsyncTick)
}

func TestParse_YAMLOverridesDefaults(t *testing.T) {
	in := `
ability_capacity: 32
async_tick: true
tick_interval: 250ms
log_level: debug
`
	cfg, err := Parse(strings.NewReader(in), map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, 32, cfg.AbilityCapacity)
	assert.Equal(t, 10, cfg.CallbackCapacity, "unset keys keep defaults")
	assert.True(t, cfg.AsyncTick)
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestParse_EnvOverridesYAML(t *testing.T) {
	in := "ability_capacity: 32\n"
	environ := map[string]string{
		"ATMO_ABILITY_CAPACITY":   "4",
		"ATMO_MAX_DISPATCH_DEPTH": "0",
		"ATMO_JOURNAL_PATH":       "/tmp/trace.db",
	}

	cfg, err := Parse(strings.NewReader(in), environ)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.AbilityCapacity)
	assert.Equal(t, 0, cfg.MaxDispatchDepth)
	assert.Equal(t, "/tmp/trace.db", cfg.JournalPath)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""), map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	_, err := Parse(strings.NewReader("abilty_capacity: 3\n"), map[string]string{})
	assert.ErrorContains(t, err, "abilty_capacity")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.TickCapacity = 0
	cfg.MaxDispatchDepth = -1
	cfg.LogLevel = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "tick_capacity")
	assert.ErrorContains(t, err, "max_dispatch_depth")
	assert.ErrorContains(t, err, "log_level")
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atmo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("callback_capacity: 3\n"), 0o644))
	t.Setenv("ATMO_TICK_CAPACITY", "2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.CallbackCapacity)
	assert.Equal(t, 2, cfg.TickCapacity)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestOptions(t *testing.T) {
	cfg := Default()
	assert.Len(t, cfg.RuntimeOptions(), 5)
	assert.Len(t, cfg.RegistryOptions(), 1)
}
