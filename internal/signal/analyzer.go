package signal

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/DaisyQuest/Transcriberator/internal/errors"
)

// Raw container bytes on the fallback path are treated as 8-bit mono at
// this rate when estimating duration.
const fallbackByteRate = 8000

// AudioAnalysisProfile is the Signal Layer's immutable output: one instance
// per analysis call.
type AudioAnalysisProfile struct {
	Fingerprint string   `json:"fingerprint"`
	ByteCount   int      `json:"byte_count"`
	DurationSec float64  `json:"duration_sec"`
	TempoBPM    int      `json:"tempo_bpm"`
	Key         string   `json:"key"`
	Melody      []int    `json:"melody"`
	Trace       []string `json:"trace"`
}

// Analyzer runs the signal layer end to end. It is a pure computation over
// immutable inputs; repeated calls with identical inputs produce identical
// profiles.
type Analyzer struct {
	tuning TuningSettings
}

// NewAnalyzer creates an analyzer with the given tuning (normalized on
// construction).
func NewAnalyzer(tuning TuningSettings) *Analyzer {
	return &Analyzer{tuning: NewTuningSettings(tuning)}
}

// AnalyzeSamples derives tempo, melody and key from decoded PCM.
func (a *Analyzer) AnalyzeSamples(buf SampleBuffer) (*AudioAnalysisProfile, error) {
	if len(buf.Samples) == 0 {
		return nil, fmt.Errorf("analyze samples: %w", errors.ErrEmptyInput)
	}
	if buf.SampleRate <= 0 {
		buf.SampleRate = 44100
	}

	raw := samplesAsBytes(buf.Samples)
	duration := float64(len(buf.Samples)) / float64(buf.SampleRate)
	var trace []string

	onsets := DetectOnsets(buf)
	bpm := onsets.BPM
	if onsets.OK {
		trace = append(trace, fmt.Sprintf("tempo: %d BPM from %d onsets", bpm, len(onsets.Onsets)))
	} else {
		bpm = FallbackTempo(raw)
		trace = append(trace, fmt.Sprintf("tempo: %d BPM from byte activity (onsets insufficient)", bpm))
	}

	target := TargetNoteCount(duration, bpm)

	var pitches []int
	for _, seg := range segmentsBetweenOnsets(buf.Samples, onsets.Onsets) {
		if p, ok := EstimateSegmentPitch(seg, buf.SampleRate, a.tuning); ok {
			pitches = append(pitches, p)
		}
	}

	var melody []int
	if len(pitches) > 0 {
		melody = AssembleFromSegments(pitches, target)
		trace = append(trace, fmt.Sprintf("melody: %d/%d segments yielded pitch", len(pitches), len(onsets.Onsets)))
	} else {
		var strat string
		melody, strat = FallbackMelody(raw, target)
		trace = append(trace, fmt.Sprintf("melody: byte heuristic (%s strategy)", strat))
	}

	melody, trace = a.refineMelody(melody, trace)
	key := EstimateKey(melody, raw)
	trace = append(trace, fmt.Sprintf("key: %s (diatonic template)", key))

	return &AudioAnalysisProfile{
		Fingerprint: Fingerprint(raw),
		ByteCount:   len(raw),
		DurationSec: duration,
		TempoBPM:    bpm,
		Key:         key,
		Melody:      melody,
		Trace:       trace,
	}, nil
}

// AnalyzeBytes is the fallback entry point for undecodable containers: every
// estimate comes from byte heuristics.
func (a *Analyzer) AnalyzeBytes(raw []byte) (*AudioAnalysisProfile, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("analyze bytes: %w", errors.ErrEmptyInput)
	}

	duration := float64(len(raw)) / fallbackByteRate
	bpm := FallbackTempo(raw)
	target := TargetNoteCount(duration, bpm)

	trace := []string{fmt.Sprintf("tempo: %d BPM from byte activity (no PCM)", bpm)}
	melody, strat := FallbackMelody(raw, target)
	trace = append(trace, fmt.Sprintf("melody: byte heuristic (%s strategy)", strat))

	melody, trace = a.refineMelody(melody, trace)
	key := EstimateKey(melody, raw)
	trace = append(trace, fmt.Sprintf("key: %s (diatonic template)", key))

	return &AudioAnalysisProfile{
		Fingerprint: Fingerprint(raw),
		ByteCount:   len(raw),
		DurationSec: duration,
		TempoBPM:    bpm,
		Key:         key,
		Melody:      melody,
		Trace:       trace,
	}, nil
}

// refineMelody applies the reference-instrument calibration and the contour
// template fit, recording each decision in the trace.
func (a *Analyzer) refineMelody(melody []int, trace []string) ([]int, []string) {
	if calibrated, ok := CalibrateMelody(melody); ok {
		melody = calibrated
		trace = append(trace, "calibration: reference-instrument octaves applied")
	}
	if fitted, ok, name := FitContourTemplate(melody); ok {
		melody = fitted
		trace = append(trace, fmt.Sprintf("contour: substituted %s template", name))
	}
	return melody, trace
}

// Fingerprint derives the content identity used for caching and reporting:
// the first 16 hex chars of the sha256 digest.
func Fingerprint(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])[:16]
}

// segmentsBetweenOnsets slices the buffer at onset boundaries; the final
// segment runs to the end of the buffer. With fewer than one onset the whole
// buffer is one segment.
func segmentsBetweenOnsets(samples []int, onsets []int) [][]int {
	if len(onsets) == 0 {
		return [][]int{samples}
	}
	var segments [][]int
	for i, start := range onsets {
		end := len(samples)
		if i+1 < len(onsets) {
			end = onsets[i+1]
		}
		if start < end {
			segments = append(segments, samples[start:end])
		}
	}
	return segments
}

// samplesAsBytes projects PCM amplitudes onto the byte heuristics' domain,
// centered on 128.
func samplesAsBytes(samples []int) []byte {
	out := make([]byte, len(samples))
	for i, s := range samples {
		v := 128 + s/256
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		out[i] = byte(v)
	}
	return out
}
