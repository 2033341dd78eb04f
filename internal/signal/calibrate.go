package signal

import "math"

// Calibration gates: only short, diatonic-major-like melodies in a plausible
// register are re-octaved against the reference instrument.
const (
	calibrationMaxNotes    = 64
	calibrationMinOverlap  = 0.65
	calibrationMinCentroid = 36
	calibrationMaxCentroid = 90
	calibrationMinSpan     = 5
	calibrationPCPenalty   = 1.5
	calibrationPullWeight  = 0.25
	calibrationLeapExcess  = 2.8
	calibrationSnapRadius  = 2
)

// CalibrateMelody re-octaves each note of a diatonic-major-like melody so
// the line hugs the reference register: every octave placement of a note is
// scored against pitch-class membership, distance from the melody centroid,
// and the leap from the previous corrected note, and the cheapest placement
// wins. When the corrected line drifts out of the scale a final pass snaps
// stray pitches to the nearest in-scale neighbor within two semitones.
// Returns the input unchanged (applied=false) when the melody fails gating.
func CalibrateMelody(melody []int) ([]int, bool) {
	if len(melody) == 0 || len(melody) > calibrationMaxNotes {
		return melody, false
	}

	template := bestDiatonicTemplate(melody)
	lo, hi := melody[0], melody[0]
	var sum float64
	matched := 0
	for _, p := range melody {
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
		sum += float64(p)
		if template[((p%12)+12)%12] {
			matched++
		}
	}
	centroid := sum / float64(len(melody))
	overlap := float64(matched) / float64(len(melody))

	if overlap < calibrationMinOverlap ||
		centroid < calibrationMinCentroid || centroid > calibrationMaxCentroid ||
		hi-lo < calibrationMinSpan {
		return melody, false
	}

	// The first note anchors the line: without a previous note the leap term
	// vanishes and the centroid pull alone would re-octave it.
	corrected := make([]int, len(melody))
	corrected[0] = melody[0]
	prev := melody[0]
	for i, p := range melody[1:] {
		corrected[i+1] = bestOctavePlacement(p, prev, centroid, template)
		prev = corrected[i+1]
	}

	// If the corrected line lost the scale, snap strays back.
	matched = 0
	for _, p := range corrected {
		if template[((p%12)+12)%12] {
			matched++
		}
	}
	if float64(matched)/float64(len(corrected)) < calibrationMinOverlap {
		for i, p := range corrected {
			if template[((p%12)+12)%12] {
				continue
			}
			for delta := 1; delta <= calibrationSnapRadius; delta++ {
				if down := p - delta; down >= fallbackPitchLow && template[((down%12)+12)%12] {
					corrected[i] = down
					break
				}
				if up := p + delta; up <= fallbackPitchHigh && template[((up%12)+12)%12] {
					corrected[i] = up
					break
				}
			}
		}
	}

	return corrected, true
}

func bestOctavePlacement(pitch, prev int, centroid float64, template [12]bool) int {
	best := pitch
	bestCost := math.Inf(1)
	for cand := pitch % 12; cand <= fallbackPitchHigh; cand += 12 {
		if cand < fallbackPitchLow {
			continue
		}
		cost := 0.0
		if !template[((cand%12)+12)%12] {
			cost += calibrationPCPenalty
		}
		cost += calibrationPullWeight * math.Abs(float64(cand)-centroid)
		if prev >= 0 {
			leap := math.Abs(float64(cand - prev))
			cost += leap + calibrationLeapExcess*math.Max(0, leap-float64(maxMelodicLeap))
		}
		if cost < bestCost {
			bestCost = cost
			best = cand
		}
	}
	return best
}
