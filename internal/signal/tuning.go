package signal

// TuningSettings bundles the knobs that shape pitch estimation. Values are
// clamped to their documented ranges at construction and never rejected;
// inverted min/max pairs are swapped.
type TuningSettings struct {
	RMSGate              float64 // minimum window RMS before a segment qualifies
	MinFrequencyHz       float64
	MaxFrequencyHz       float64
	ClusterToleranceHz   float64
	PitchFloor           int     // MIDI
	PitchCeiling         int     // MIDI
	NoiseSuppression     float64 // [0,1]
	TransientSensitivity float64 // [0,1], raw-value weight when blending transients
	WeightZeroCrossing   float64
	WeightAutocorr       float64
	WeightSpectral       float64
}

// DefaultTuning returns the engine defaults.
func DefaultTuning() TuningSettings {
	return NewTuningSettings(TuningSettings{
		RMSGate:              18,
		MinFrequencyHz:       55,
		MaxFrequencyHz:       1760,
		ClusterToleranceHz:   25,
		PitchFloor:           28,
		PitchCeiling:         103,
		NoiseSuppression:     0.35,
		TransientSensitivity: 0.6,
		WeightZeroCrossing:   0.25,
		WeightAutocorr:       0.45,
		WeightSpectral:       0.3,
	})
}

// NewTuningSettings normalizes raw settings: each field is clamped to its
// range, inverted bounds are swapped, and the three fusion weights are
// normalized to sum to 1 (falling back to an even split when all are zero).
func NewTuningSettings(s TuningSettings) TuningSettings {
	s.RMSGate = clampFloat(s.RMSGate, 0, 1<<15)
	s.MinFrequencyHz = clampFloat(s.MinFrequencyHz, 1, 20000)
	s.MaxFrequencyHz = clampFloat(s.MaxFrequencyHz, 1, 20000)
	if s.MinFrequencyHz > s.MaxFrequencyHz {
		s.MinFrequencyHz, s.MaxFrequencyHz = s.MaxFrequencyHz, s.MinFrequencyHz
	}
	s.ClusterToleranceHz = clampFloat(s.ClusterToleranceHz, 0.1, 1000)
	s.PitchFloor = clampInt(s.PitchFloor, 0, 127)
	s.PitchCeiling = clampInt(s.PitchCeiling, 0, 127)
	if s.PitchFloor > s.PitchCeiling {
		s.PitchFloor, s.PitchCeiling = s.PitchCeiling, s.PitchFloor
	}
	s.NoiseSuppression = clampFloat(s.NoiseSuppression, 0, 1)
	s.TransientSensitivity = clampFloat(s.TransientSensitivity, 0, 1)

	s.WeightZeroCrossing = clampFloat(s.WeightZeroCrossing, 0, 1)
	s.WeightAutocorr = clampFloat(s.WeightAutocorr, 0, 1)
	s.WeightSpectral = clampFloat(s.WeightSpectral, 0, 1)
	total := s.WeightZeroCrossing + s.WeightAutocorr + s.WeightSpectral
	if total == 0 {
		s.WeightZeroCrossing, s.WeightAutocorr, s.WeightSpectral = 1.0/3, 1.0/3, 1.0/3
	} else {
		s.WeightZeroCrossing /= total
		s.WeightAutocorr /= total
		s.WeightSpectral /= total
	}
	return s
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
