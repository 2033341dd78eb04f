// Package config loads engine settings from YAML files, merging partial
// files over the built-in defaults.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/DaisyQuest/Transcriberator/internal/signal"
	"github.com/DaisyQuest/Transcriberator/internal/symbolic"
)

// Settings bundles the tuning knobs for both engine layers.
type Settings struct {
	Tuning   TuningFile                           `yaml:"tuning"`
	Pipeline symbolic.TranscriptionPipelineConfig `yaml:"pipeline"`
}

// TuningFile mirrors signal.TuningSettings for YAML files.
type TuningFile struct {
	RMSGate              float64 `yaml:"rms_gate"`
	MinFrequencyHz       float64 `yaml:"min_frequency_hz"`
	MaxFrequencyHz       float64 `yaml:"max_frequency_hz"`
	ClusterToleranceHz   float64 `yaml:"cluster_tolerance_hz"`
	PitchFloor           int     `yaml:"pitch_floor"`
	PitchCeiling         int     `yaml:"pitch_ceiling"`
	NoiseSuppression     float64 `yaml:"noise_suppression"`
	TransientSensitivity float64 `yaml:"transient_sensitivity"`
	WeightZeroCrossing   float64 `yaml:"weight_zero_crossing"`
	WeightAutocorr       float64 `yaml:"weight_autocorrelation"`
	WeightSpectral       float64 `yaml:"weight_spectral"`
}

// Default returns the built-in settings.
func Default() Settings {
	t := signal.DefaultTuning()
	return Settings{
		Tuning: TuningFile{
			RMSGate:              t.RMSGate,
			MinFrequencyHz:       t.MinFrequencyHz,
			MaxFrequencyHz:       t.MaxFrequencyHz,
			ClusterToleranceHz:   t.ClusterToleranceHz,
			PitchFloor:           t.PitchFloor,
			PitchCeiling:         t.PitchCeiling,
			NoiseSuppression:     t.NoiseSuppression,
			TransientSensitivity: t.TransientSensitivity,
			WeightZeroCrossing:   t.WeightZeroCrossing,
			WeightAutocorr:       t.WeightAutocorr,
			WeightSpectral:       t.WeightSpectral,
		},
		Pipeline: symbolic.DefaultPipelineConfig(),
	}
}

// Load reads a YAML settings file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Settings, error) {
	settings := Default()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return settings, fmt.Errorf("read settings file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("parse settings file %s: %w", path, err)
	}
	return settings, nil
}

// TuningSettings converts the file form into the normalized engine form.
func (s Settings) TuningSettings() signal.TuningSettings {
	return signal.NewTuningSettings(signal.TuningSettings{
		RMSGate:              s.Tuning.RMSGate,
		MinFrequencyHz:       s.Tuning.MinFrequencyHz,
		MaxFrequencyHz:       s.Tuning.MaxFrequencyHz,
		ClusterToleranceHz:   s.Tuning.ClusterToleranceHz,
		PitchFloor:           s.Tuning.PitchFloor,
		PitchCeiling:         s.Tuning.PitchCeiling,
		NoiseSuppression:     s.Tuning.NoiseSuppression,
		TransientSensitivity: s.Tuning.TransientSensitivity,
		WeightZeroCrossing:   s.Tuning.WeightZeroCrossing,
		WeightAutocorr:       s.Tuning.WeightAutocorr,
		WeightSpectral:       s.Tuning.WeightSpectral,
	})
}
