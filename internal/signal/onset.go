package signal

import (
	"math"

	"github.com/DaisyQuest/Transcriberator/internal/dsp"
)

// Tempo bounds in BPM. Every estimate, structured or heuristic, lands here.
const (
	MinBPM = 72
	MaxBPM = 160
)

// Inter-onset intervals outside this range are treated as spurious.
const (
	minBeatIntervalSec = 0.24
	maxBeatIntervalSec = 1.2
)

// SampleBuffer is caller-owned decoded PCM. The engine only reads it.
type SampleBuffer struct {
	Samples    []int
	SampleRate int
	Channels   int
}

// OnsetResult carries the detected onsets (sample offsets) and the tempo
// estimate derived from them.
type OnsetResult struct {
	Onsets []int
	BPM    int
	// OK is false when fewer than two onsets or no valid inter-onset
	// interval survived filtering.
	OK bool
}

// DetectOnsets segments the buffer into fixed-width energy frames, marks
// local-maximum frames above an adaptive threshold as onsets, and derives a
// tempo from the surviving inter-onset intervals.
func DetectOnsets(buf SampleBuffer) OnsetResult {
	if len(buf.Samples) == 0 || buf.SampleRate <= 0 {
		return OnsetResult{}
	}

	frameWidth := buf.SampleRate / 40
	if frameWidth < 1 {
		frameWidth = 1
	}

	// Per-frame energy = mean absolute amplitude.
	var energies []float64
	for start := 0; start < len(buf.Samples); start += frameWidth {
		end := start + frameWidth
		if end > len(buf.Samples) {
			end = len(buf.Samples)
		}
		var sum float64
		for _, s := range buf.Samples[start:end] {
			sum += math.Abs(float64(s))
		}
		energies = append(energies, sum/float64(end-start))
	}

	threshold := dsp.Mean(energies) + 0.5*dsp.StdDev(energies)

	var onsets []int
	for i := 1; i < len(energies)-1; i++ {
		if energies[i] >= threshold && energies[i] > energies[i-1] && energies[i] > energies[i+1] {
			onsets = append(onsets, i*frameWidth)
		}
	}

	// Drop onsets crowding a previous one.
	minGap := buf.SampleRate / 4
	deduped := onsets[:0]
	last := -minGap
	for _, o := range onsets {
		if o-last >= minGap {
			deduped = append(deduped, o)
			last = o
		}
	}
	onsets = deduped

	bpm, ok := tempoFromOnsets(onsets, buf.SampleRate)
	return OnsetResult{Onsets: onsets, BPM: bpm, OK: ok}
}

// tempoFromOnsets buckets valid inter-onset intervals to centiseconds and
// converts the dominant bucket into BPM. Ties break toward the larger bucket
// so slower candidate tempi win deterministically.
func tempoFromOnsets(onsets []int, sampleRate int) (int, bool) {
	if len(onsets) < 2 {
		return 0, false
	}

	buckets := make(map[int]int)
	for i := 1; i < len(onsets); i++ {
		interval := float64(onsets[i]-onsets[i-1]) / float64(sampleRate)
		if interval < minBeatIntervalSec || interval > maxBeatIntervalSec {
			continue
		}
		buckets[int(math.Round(interval*100))]++
	}
	if len(buckets) == 0 {
		return 0, false
	}

	bestBucket, bestCount := 0, 0
	for bucket, count := range buckets {
		if count > bestCount || (count == bestCount && bucket > bestBucket) {
			bestBucket, bestCount = bucket, count
		}
	}

	beat := float64(bestBucket) / 100
	return ClampBPM(int(math.Round(60 / beat))), true
}

// FallbackTempo maps raw-byte activity into the tempo range when no
// structured PCM estimate exists. Activity blends the zero-crossing
// transition ratio around the 128 midline with the mean absolute deviation
// of the bytes. Low-variance input maps near MinBPM, alternating extremes
// near MaxBPM.
func FallbackTempo(raw []byte) int {
	if len(raw) == 0 {
		return MinBPM
	}

	transitions := 0
	for i := 1; i < len(raw); i++ {
		prev := int(raw[i-1]) - 128
		cur := int(raw[i]) - 128
		if (prev < 0 && cur >= 0) || (prev >= 0 && cur < 0) {
			transitions++
		}
	}
	ratio := 0.0
	if len(raw) > 1 {
		ratio = float64(transitions) / float64(len(raw)-1)
	}

	var mad float64
	for _, b := range raw {
		mad += math.Abs(float64(int(b) - 128))
	}
	mad /= float64(len(raw))

	activity := 0.5*ratio + 0.5*math.Min(1, mad/64)
	return ClampBPM(MinBPM + int(math.Round(activity*float64(MaxBPM-MinBPM))))
}

// ClampBPM bounds a tempo estimate to [MinBPM, MaxBPM].
func ClampBPM(bpm int) int {
	if bpm < MinBPM {
		return MinBPM
	}
	if bpm > MaxBPM {
		return MaxBPM
	}
	return bpm
}
