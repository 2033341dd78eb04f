package signal

import (
	"math"
	"testing"
)

func TestNewTuningSettings(t *testing.T) {
	t.Run("InvertedBoundsSwapped", func(t *testing.T) {
		s := NewTuningSettings(TuningSettings{
			MinFrequencyHz: 2000,
			MaxFrequencyHz: 55,
			PitchFloor:     100,
			PitchCeiling:   20,
		})
		if s.MinFrequencyHz != 55 || s.MaxFrequencyHz != 2000 {
			t.Errorf("frequency bounds = [%v, %v], want [55, 2000]", s.MinFrequencyHz, s.MaxFrequencyHz)
		}
		if s.PitchFloor != 20 || s.PitchCeiling != 100 {
			t.Errorf("pitch bounds = [%d, %d], want [20, 100]", s.PitchFloor, s.PitchCeiling)
		}
	})

	t.Run("RangesClamped", func(t *testing.T) {
		s := NewTuningSettings(TuningSettings{
			RMSGate:              -5,
			MinFrequencyHz:       1,
			MaxFrequencyHz:       1,
			NoiseSuppression:     3,
			TransientSensitivity: -1,
			PitchFloor:           -10,
			PitchCeiling:         300,
		})
		if s.RMSGate != 0 {
			t.Errorf("RMSGate = %v, want 0", s.RMSGate)
		}
		if s.NoiseSuppression != 1 {
			t.Errorf("NoiseSuppression = %v, want 1", s.NoiseSuppression)
		}
		if s.TransientSensitivity != 0 {
			t.Errorf("TransientSensitivity = %v, want 0", s.TransientSensitivity)
		}
		if s.PitchFloor != 0 || s.PitchCeiling != 127 {
			t.Errorf("pitch bounds = [%d, %d], want [0, 127]", s.PitchFloor, s.PitchCeiling)
		}
	})

	t.Run("WeightsNormalized", func(t *testing.T) {
		s := NewTuningSettings(TuningSettings{
			MinFrequencyHz:     55,
			MaxFrequencyHz:     1760,
			WeightZeroCrossing: 0.5,
			WeightAutocorr:     0.5,
			WeightSpectral:     1,
		})
		sum := s.WeightZeroCrossing + s.WeightAutocorr + s.WeightSpectral
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("weights sum to %v, want 1", sum)
		}
		if math.Abs(s.WeightSpectral-0.5) > 1e-9 {
			t.Errorf("WeightSpectral = %v, want 0.5", s.WeightSpectral)
		}
	})

	t.Run("ZeroWeightsEvenSplit", func(t *testing.T) {
		s := NewTuningSettings(TuningSettings{MinFrequencyHz: 55, MaxFrequencyHz: 1760})
		third := 1.0 / 3
		if s.WeightZeroCrossing != third || s.WeightAutocorr != third || s.WeightSpectral != third {
			t.Errorf("weights = (%v, %v, %v), want even thirds",
				s.WeightZeroCrossing, s.WeightAutocorr, s.WeightSpectral)
		}
	})
}

func TestDefaultTuningIsNormalized(t *testing.T) {
	s := DefaultTuning()
	sum := s.WeightZeroCrossing + s.WeightAutocorr + s.WeightSpectral
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("default weights sum to %v, want 1", sum)
	}
	if s.MinFrequencyHz >= s.MaxFrequencyHz {
		t.Errorf("default frequency bounds inverted: [%v, %v]", s.MinFrequencyHz, s.MaxFrequencyHz)
	}
	if s.PitchFloor >= s.PitchCeiling {
		t.Errorf("default pitch bounds inverted: [%d, %d]", s.PitchFloor, s.PitchCeiling)
	}
}
