package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPreset(t *testing.T) {
	p := DefaultPreset()
	assert.Equal(t, 0.03, p.SmoothingTimeSeconds)
	assert.Equal(t, 0.0, p.GateLevel)
	assert.Equal(t, 20000.0, p.PreemphasisHz)
}

func TestLoadPresetOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "preset.yaml")
	contents := "smoothing_time_seconds: 0.05\ngate_level: 0.02\npreemphasis_hz: 15000\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	p, err := LoadPreset(path)
	require.NoError(t, err)
	assert.Equal(t, 0.05, p.SmoothingTimeSeconds)
	assert.Equal(t, 0.02, p.GateLevel)
	assert.Equal(t, 15000.0, p.PreemphasisHz)
}

func TestLoadPresetPartialUsesDefaultsForMissingFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "preset.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gate_level: 0.1\n"), 0o644))

	p, err := LoadPreset(path)
	require.NoError(t, err)
	assert.Equal(t, 0.03, p.SmoothingTimeSeconds)
	assert.Equal(t, 0.1, p.GateLevel)
	assert.Equal(t, 20000.0, p.PreemphasisHz)
}

func TestLoadPresetMissingFile(t *testing.T) {
	_, err := LoadPreset(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
