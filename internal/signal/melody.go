package signal

import (
	"math"
)

// Fallback-path pitches stay inside this register.
const (
	fallbackPitchLow  = 36
	fallbackPitchHigh = 96
)

const (
	smoothingLeapSemitones = 8
	maxMelodicLeap         = 12
	minMelodyLength        = 8
	maxMelodyLength        = 1024
)

// TargetNoteCount derives the melody length from duration and tempo,
// clamped to [8, 1024].
func TargetNoteCount(durationSec float64, bpm int) int {
	beatsPerSec := math.Max(1, float64(bpm)/60)
	return clampInt(int(math.Round(durationSec*beatsPerSec)), minMelodyLength, maxMelodyLength)
}

// AssembleFromSegments builds the PCM-path melody: one pitch per qualifying
// segment, interior outliers smoothed toward their neighbor average, then
// cyclic padding or truncation to the target length.
func AssembleFromSegments(pitches []int, target int) []int {
	if len(pitches) == 0 {
		return nil
	}

	smoothed := make([]int, len(pitches))
	copy(smoothed, pitches)
	for i := 1; i < len(smoothed)-1; i++ {
		avg := float64(pitches[i-1]+pitches[i+1]) / 2
		if math.Abs(float64(pitches[i])-avg) >= smoothingLeapSemitones {
			smoothed[i] = int(math.Round(avg))
		}
	}

	return cycleToLength(smoothed, target)
}

func cycleToLength(pitches []int, target int) []int {
	if target <= 0 || len(pitches) == 0 {
		return nil
	}
	out := make([]int, target)
	for i := range out {
		out[i] = pitches[i%len(pitches)]
	}
	return out
}

// candidateStrategy is one pure byte→melody heuristic. The strategy set is
// closed, so it lives in a fixed array rather than behind an interface.
type candidateStrategy struct {
	name     string
	generate func(raw []byte, target int) []int
}

var fallbackStrategies = [3]candidateStrategy{
	{"byte-window", byteWindowCandidate},
	{"byte-delta", byteDeltaCandidate},
	{"frame-sync", frameSyncCandidate},
}

// FallbackMelody derives a melody purely from raw bytes: each strategy
// produces a diatonically quantized candidate, the closed-form score picks
// the winner, leaps are folded to the nearest octave, and a perturbation
// pass restores pitch diversity when a candidate collapses onto too few
// notes. Returns the melody and the winning strategy name.
func FallbackMelody(raw []byte, target int) ([]int, string) {
	if len(raw) == 0 || target <= 0 {
		return nil, ""
	}

	best := -math.MaxFloat64
	var winner []int
	var winnerName string
	for _, strat := range fallbackStrategies {
		cand := strat.generate(raw, target)
		if len(cand) == 0 {
			continue
		}
		if s := scoreCandidate(cand); s > best {
			best = s
			winner = cand
			winnerName = strat.name
		}
	}
	if winner == nil {
		return nil, ""
	}

	clampLeaps(winner)
	ensureDiversity(winner, raw)
	return winner, winnerName
}

// scoreCandidate implements the fixed candidate-selection polynomial:
// 1.4·unique + min(12, 0.35·span) + 0.65·repeats + 9·tonal − |avgStep−2.8|.
func scoreCandidate(p []int) float64 {
	if len(p) == 0 {
		return -math.MaxFloat64
	}

	seen := make(map[int]bool, len(p))
	lo, hi := p[0], p[0]
	repeats := 0
	var stepSum float64
	for i, v := range p {
		seen[v] = true
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
		if i > 0 {
			if v == p[i-1] {
				repeats++
			}
			stepSum += math.Abs(float64(v - p[i-1]))
		}
	}
	avgStep := 0.0
	if len(p) > 1 {
		avgStep = stepSum / float64(len(p)-1)
	}

	return 1.4*float64(len(seen)) +
		math.Min(12, 0.35*float64(hi-lo)) +
		0.65*float64(repeats) +
		9*tonalOverlap(p) -
		math.Abs(avgStep-2.8)
}

// tonalOverlap is the fraction of notes landing in the best-scoring diatonic
// major template.
func tonalOverlap(p []int) float64 {
	if len(p) == 0 {
		return 0
	}
	template := bestDiatonicTemplate(p)
	matched := 0
	for _, v := range p {
		if template[((v%12)+12)%12] {
			matched++
		}
	}
	return float64(matched) / float64(len(p))
}

// bestDiatonicTemplate returns membership of the major-scale pitch-class set
// that covers the most notes, ties toward the lowest tonic.
func bestDiatonicTemplate(p []int) [12]bool {
	var hist [12]int
	for _, v := range p {
		hist[((v%12)+12)%12]++
	}
	bestTonic, bestScore := 0, -1
	for tonic := 0; tonic < 12; tonic++ {
		score := 0
		for _, off := range diatonicOffsets {
			score += hist[(tonic+off)%12]
		}
		if score > bestScore {
			bestTonic, bestScore = tonic, score
		}
	}
	var member [12]bool
	for _, off := range diatonicOffsets {
		member[(bestTonic+off)%12] = true
	}
	return member
}

// clampLeaps folds any melodic leap wider than an octave back toward the
// previous note, an octave at a time.
func clampLeaps(p []int) {
	for i := 1; i < len(p); i++ {
		for p[i]-p[i-1] > maxMelodicLeap {
			p[i] -= 12
		}
		for p[i-1]-p[i] > maxMelodicLeap {
			p[i] += 12
		}
		p[i] = clampInt(p[i], fallbackPitchLow, fallbackPitchHigh)
	}
}

// ensureDiversity perturbs every third note with byte-derived offsets until
// the melody carries at least max(4, n/4) unique pitches. The floor is
// additionally capped by the size of the fallback register.
func ensureDiversity(p []int, raw []byte) {
	floor := len(p) / 4
	if floor < 4 {
		floor = 4
	}
	if floor > len(p) {
		floor = len(p)
	}
	if reg := fallbackPitchHigh - fallbackPitchLow + 1; floor > reg {
		floor = reg
	}

	for round := 0; round < 8 && uniqueCount(p) < floor; round++ {
		for i := 0; i < len(p); i += 3 {
			b := int(raw[(i*7+round*13)%len(raw)])
			p[i] = fallbackPitchLow + (p[i]+b+i+round)%(fallbackPitchHigh-fallbackPitchLow+1)
		}
	}
}

func uniqueCount(p []int) int {
	seen := make(map[int]bool, len(p))
	for _, v := range p {
		seen[v] = true
	}
	return len(seen)
}

// byteWindowCandidate maps sliding-window intensity and zero-crossing
// activity to pitch.
func byteWindowCandidate(raw []byte, target int) []int {
	stride := len(raw) / target
	if stride < 1 {
		stride = 1
	}
	win := stride
	if win < 4 {
		win = 4
	}

	out := make([]int, target)
	for i := 0; i < target; i++ {
		start := (i * stride) % len(raw)
		var intensity float64
		transitions := 0
		prev := int(raw[start]) - 128
		for j := 0; j < win; j++ {
			b := int(raw[(start+j)%len(raw)])
			intensity += math.Abs(float64(b - 128))
			cur := b - 128
			if (prev < 0 && cur >= 0) || (prev >= 0 && cur < 0) {
				transitions++
			}
			prev = cur
		}
		intensity /= float64(win)

		pitch := 48 + int(math.Round(intensity/127*24)) + transitions%12
		out[i] = clampInt(pitch, fallbackPitchLow, fallbackPitchHigh)
	}
	return quantizeDiatonic(out)
}

// byteDeltaCandidate walks a pitch line driven by the local byte gradient.
func byteDeltaCandidate(raw []byte, target int) []int {
	stride := len(raw) / target
	if stride < 1 {
		stride = 1
	}

	out := make([]int, target)
	pitch := 60
	for i := 0; i < target; i++ {
		start := (i * stride) % len(raw)
		grad := 0
		for j := 0; j < stride; j++ {
			a := int(raw[(start+j)%len(raw)])
			b := int(raw[(start+j+1)%len(raw)])
			grad += b - a
		}
		pitch += clampInt(grad/8, -7, 7)
		pitch = clampInt(pitch, fallbackPitchLow, fallbackPitchHigh)
		out[i] = pitch
	}
	return quantizeDiatonic(out)
}

// frameSyncCandidate keys pitch curvature off MPEG frame-sync byte
// checksums. Without sync markers the checksums fall back to fixed-stride
// chunks so the strategy still yields a candidate.
func frameSyncCandidate(raw []byte, target int) []int {
	var checksums []int
	for i := 0; i+1 < len(raw); i++ {
		if raw[i] == 0xFF && raw[i+1]&0xE0 == 0xE0 {
			sum := 0
			for j := 0; j < 4 && i+j < len(raw); j++ {
				sum += int(raw[i+j])
			}
			checksums = append(checksums, sum)
		}
	}
	if len(checksums) == 0 {
		stride := len(raw)/target + 1
		for i := 0; i < len(raw); i += stride {
			sum := 0
			for j := 0; j < stride && i+j < len(raw); j++ {
				sum += int(raw[i+j])
			}
			checksums = append(checksums, sum)
		}
	}

	out := make([]int, target)
	pitch := 60
	curve := 1
	for i := 0; i < target; i++ {
		chk := checksums[i%len(checksums)]
		step := chk % 5
		if chk%7 == 0 {
			curve = -curve
		}
		pitch += curve * step
		pitch = clampInt(pitch, fallbackPitchLow, fallbackPitchHigh)
		out[i] = pitch
	}
	return quantizeDiatonic(out)
}

// quantizeDiatonic snaps every pitch to the candidate's own best diatonic
// template, preferring the nearer in-scale neighbor.
func quantizeDiatonic(p []int) []int {
	template := bestDiatonicTemplate(p)
	for i, v := range p {
		p[i] = snapToTemplate(v, template, fallbackPitchLow, fallbackPitchHigh)
	}
	return p
}

func snapToTemplate(pitch int, template [12]bool, lo, hi int) int {
	for delta := 0; delta <= 6; delta++ {
		if down := pitch - delta; down >= lo && template[((down%12)+12)%12] {
			return down
		}
		if up := pitch + delta; up <= hi && template[((up%12)+12)%12] {
			return up
		}
	}
	return pitch
}
