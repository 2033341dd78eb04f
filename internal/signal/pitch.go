package signal

import (
	"math"

	"github.com/DaisyQuest/Transcriberator/internal/dsp"
)

const (
	attackSkipRatio  = 0.35 // leading samples below this fraction of peak are silence
	minWindowSamples = 32
	minSegmentPeak   = 40 // absolute amplitude units
	minAutocorrScore = 0.25
	lagScoreKeep     = 0.9  // lags within this fraction of the best score stay in play
	minSpectralShare = 0.05 // peak bin power vs. windowed energy
	referenceFreqHz  = 440
	referenceMIDI    = 69
)

// EstimateSegmentPitch fuses three independent frequency estimators over one
// onset-bounded segment and converts the result to a MIDI pitch. The second
// return is false when the segment fails gating (too short after the attack
// skip, peak too low, RMS below the gate) or no estimator yields a candidate
// inside the configured frequency range.
func EstimateSegmentPitch(segment []int, sampleRate int, tuning TuningSettings) (int, bool) {
	if len(segment) == 0 || sampleRate <= 0 {
		return 0, false
	}

	peak := 0.0
	for _, s := range segment {
		if a := math.Abs(float64(s)); a > peak {
			peak = a
		}
	}
	if peak < minSegmentPeak {
		return 0, false
	}

	start := 0
	for start < len(segment) && math.Abs(float64(segment[start])) <= attackSkipRatio*peak {
		start++
	}
	end := start + sampleRate/6
	if end > len(segment) {
		end = len(segment)
	}
	if end-start < minWindowSamples {
		return 0, false
	}

	win := make([]float64, end-start)
	for i, s := range segment[start:end] {
		win[i] = float64(s)
	}
	suppressNoise(win, tuning.NoiseSuppression, tuning.TransientSensitivity)

	if dsp.RMS(win) < tuning.RMSGate {
		return 0, false
	}

	type candidate struct {
		freq   float64
		weight float64
	}
	var candidates []candidate

	if f, ok := zeroCrossingFreq(win, sampleRate); ok && inRange(f, tuning) {
		candidates = append(candidates, candidate{f, tuning.WeightZeroCrossing})
	}
	if f, ok := autocorrFreq(win, sampleRate, tuning); ok && inRange(f, tuning) {
		candidates = append(candidates, candidate{f, tuning.WeightAutocorr})
	}
	if f, ok := spectralFreq(win, sampleRate, tuning); ok && inRange(f, tuning) {
		candidates = append(candidates, candidate{f, tuning.WeightSpectral})
	}
	if len(candidates) == 0 {
		return 0, false
	}

	freqs := make([]float64, len(candidates))
	for i, c := range candidates {
		freqs[i] = c.freq
	}
	cluster := dsp.LargestCluster(freqs, tuning.ClusterToleranceHz, referenceFreqHz)

	// Weighted fusion; candidates outside the winning cluster keep half
	// their configured weight.
	var weighted, total float64
	for _, c := range candidates {
		w := c.weight
		if !dsp.Contains(cluster, c.freq, 1e-9) {
			w /= 2
		}
		weighted += c.freq * w
		total += w
	}
	if total == 0 {
		return 0, false
	}

	return FrequencyToMIDI(weighted/total, tuning), true
}

// suppressNoise blends interior samples toward their 3-neighbor mean when
// they deviate by more than the level-scaled gate. The transient sensitivity
// is the raw-value weight, so a sensitivity of 1 keeps attacks untouched.
func suppressNoise(win []float64, level, transientSensitivity float64) {
	gate := math.Round(level * 12)
	if gate <= 0 {
		return
	}
	prev := win[0]
	for i := 1; i < len(win)-1; i++ {
		mean := (prev + win[i] + win[i+1]) / 3
		raw := win[i]
		if math.Abs(raw-mean) > gate {
			win[i] = transientSensitivity*raw + (1-transientSensitivity)*mean
		}
		prev = raw
	}
}

func zeroCrossingFreq(win []float64, sampleRate int) (float64, bool) {
	crossings := 0
	for i := 1; i < len(win); i++ {
		if (win[i-1] < 0 && win[i] >= 0) || (win[i-1] >= 0 && win[i] < 0) {
			crossings++
		}
	}
	if crossings == 0 {
		return 0, false
	}
	return float64(crossings) * float64(sampleRate) / (2 * float64(len(win))), true
}

// autocorrFreq searches lags spanning the configured frequency range. Among
// correlation peaks scoring at least 90% of the best, the smallest lag wins
// so the fundamental beats its subharmonics.
func autocorrFreq(win []float64, sampleRate int, tuning TuningSettings) (float64, bool) {
	lagMin := int(float64(sampleRate) / tuning.MaxFrequencyHz)
	lagMax := int(float64(sampleRate) / tuning.MinFrequencyHz)
	if lagMin < 1 {
		lagMin = 1
	}
	if lagMax >= len(win) {
		lagMax = len(win) - 1
	}
	if lagMin > lagMax {
		return 0, false
	}

	scores := make([]float64, lagMax-lagMin+1)
	best := 0.0
	for lag := lagMin; lag <= lagMax; lag++ {
		score := dsp.Autocorrelate(win, lag)
		scores[lag-lagMin] = score
		if score > best {
			best = score
		}
	}
	if best < minAutocorrScore {
		return 0, false
	}

	// Boundary lags never count as peaks; the correlation near lagMin is
	// high for any low-frequency content without marking a period.
	for i := 1; i < len(scores)-1; i++ {
		if scores[i] < lagScoreKeep*best {
			continue
		}
		if scores[i-1] > scores[i] || scores[i+1] > scores[i] {
			continue
		}
		return float64(sampleRate) / float64(lagMin+i), true
	}
	return 0, false
}

func spectralFreq(win []float64, sampleRate int, tuning TuningSettings) (float64, bool) {
	freq, power, energy := dsp.SpectralPeak(win, float64(sampleRate), tuning.MinFrequencyHz, tuning.MaxFrequencyHz)
	if freq == 0 || energy == 0 {
		return 0, false
	}
	// The scan covers only positive frequencies; double the bin power to
	// account for the conjugate half before comparing against total energy.
	if 2*power <= minSpectralShare*energy*float64(len(win)) {
		return 0, false
	}
	return freq, true
}

func inRange(f float64, tuning TuningSettings) bool {
	return f >= tuning.MinFrequencyHz && f <= tuning.MaxFrequencyHz
}

// FrequencyToMIDI converts a frequency to the nearest MIDI pitch, clamped to
// the configured floor and ceiling.
func FrequencyToMIDI(freq float64, tuning TuningSettings) int {
	if freq <= 0 {
		return tuning.PitchFloor
	}
	pitch := int(math.Round(referenceMIDI + 12*math.Log2(freq/referenceFreqHz)))
	return clampInt(pitch, tuning.PitchFloor, tuning.PitchCeiling)
}
