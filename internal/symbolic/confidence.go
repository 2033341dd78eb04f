package symbolic

import (
	"math"

	"github.com/DaisyQuest/Transcriberator/internal/dsp"
)

// ScoreConfidence combines chord, stability and density signals into one
// score in [0, 0.99], rounded to three decimals. Zero frames score zero.
func ScoreConfidence(polyphonic bool, frameCount, chordCount, isolatedPitchCount int, harmonicDensity float64) float64 {
	if frameCount <= 0 {
		return 0
	}

	base := 0.75
	if polyphonic {
		base = 0.6
	}
	chordBonus := math.Min(0.2, float64(chordCount)*0.05)
	stabilityBonus := math.Min(0.15, float64(isolatedPitchCount)/float64(frameCount*2))
	densityBonus := math.Min(0.08, math.Max(0, harmonicDensity-1)*0.04)

	confidence := math.Min(0.99, base+chordBonus+stabilityBonus+densityBonus)
	return math.Round(confidence*1000) / 1000
}

// HarmonicDensity is the median simultaneous-pitch count across frames.
func HarmonicDensity(frames []Frame) float64 {
	if len(frames) == 0 {
		return 0
	}
	sizes := make([]float64, len(frames))
	for i, frame := range frames {
		sizes[i] = float64(len(frame))
	}
	return dsp.Median(sizes)
}
