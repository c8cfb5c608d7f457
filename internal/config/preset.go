// Package config loads the engine's user-facing parameters from YAML preset
// files, leaving all fixed-point conversion to the engine's own setters.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Preset bundles the three parameters an operator is expected to tune,
// matching the constructor/setter surface of spec.md 4.6.3.
type Preset struct {
	SmoothingTimeSeconds float64 `yaml:"smoothing_time_seconds"`
	GateLevel            float64 `yaml:"gate_level"`
	PreemphasisHz        float64 `yaml:"preemphasis_hz"`
}

// DefaultPreset returns the values the original constructor applies before
// any caller tuning: 30ms smoothing, the gate off, and a 20kHz pre-emphasis
// corner.
func DefaultPreset() Preset {
	return Preset{
		SmoothingTimeSeconds: 0.03,
		GateLevel:            0,
		PreemphasisHz:        20000,
	}
}

// LoadPreset reads and parses a YAML preset file at path.
func LoadPreset(path string) (Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, fmt.Errorf("config: reading preset %q: %w", path, err)
	}
	p := DefaultPreset()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Preset{}, fmt.Errorf("config: parsing preset %q: %w", path, err)
	}
	return p, nil
}
