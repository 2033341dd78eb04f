package signal

import (
	"errors"
	"math"
	"reflect"
	"testing"

	enginerrors "github.com/DaisyQuest/Transcriberator/internal/errors"
)

// renderMelody synthesizes decaying sine tones at a fixed beat spacing,
// preceded by a stretch of silence so the first attack lands mid-buffer.
func renderMelody(pitches []int, sampleRate int, leadSec, beatSec, noteSec float64, totalSamples int) []int {
	samples := make([]int, totalSamples)
	for k, pitch := range pitches {
		freq := 440 * math.Pow(2, float64(pitch-69)/12)
		start := int((leadSec + float64(k)*beatSec) * float64(sampleRate))
		n := int(noteSec * float64(sampleRate))
		for i := 0; i < n && start+i < totalSamples; i++ {
			tau := float64(i) / float64(sampleRate)
			env := 9000 * math.Exp(-4*tau)
			samples[start+i] = int(math.Round(env * math.Sin(2*math.Pi*freq*tau)))
		}
	}
	return samples
}

func TestAnalyzeSamplesStructuredSignal(t *testing.T) {
	// Eight scale tones at 100 BPM: 0.6s beats, 0.4s sustain, 0.2s lead-in.
	pitches := []int{60, 62, 64, 65, 67, 69, 71, 72}
	sr := 44100
	samples := renderMelody(pitches, sr, 0.2, 0.6, 0.4, 5*sr)

	analyzer := NewAnalyzer(DefaultTuning())
	profile, err := analyzer.AnalyzeSamples(SampleBuffer{Samples: samples, SampleRate: sr, Channels: 1})
	if err != nil {
		t.Fatalf("AnalyzeSamples: %v", err)
	}

	if profile.TempoBPM < 95 || profile.TempoBPM > 105 {
		t.Errorf("tempo = %d BPM, want 100 +/- 5", profile.TempoBPM)
	}
	if len(profile.Melody) < len(pitches) {
		t.Fatalf("melody too short: %v", profile.Melody)
	}
	if !reflect.DeepEqual(profile.Melody[:len(pitches)], pitches) {
		t.Errorf("melody = %v, want prefix %v", profile.Melody[:len(pitches)], pitches)
	}
	if profile.Key != "C" {
		t.Errorf("key = %q, want C", profile.Key)
	}
	if profile.DurationSec != 5 {
		t.Errorf("duration = %v, want 5", profile.DurationSec)
	}
	t.Logf("trace: %v", profile.Trace)
}

func TestAnalyzeSamples(t *testing.T) {
	analyzer := NewAnalyzer(DefaultTuning())

	t.Run("EmptyBuffer", func(t *testing.T) {
		_, err := analyzer.AnalyzeSamples(SampleBuffer{})
		if !errors.Is(err, enginerrors.ErrEmptyInput) {
			t.Errorf("err = %v, want ErrEmptyInput", err)
		}
	})

	t.Run("SilenceFallsBack", func(t *testing.T) {
		samples := make([]int, 22050)
		profile, err := analyzer.AnalyzeSamples(SampleBuffer{Samples: samples, SampleRate: 44100, Channels: 1})
		if err != nil {
			t.Fatalf("AnalyzeSamples: %v", err)
		}
		if profile.TempoBPM != MinBPM {
			t.Errorf("silent buffer tempo = %d, want %d", profile.TempoBPM, MinBPM)
		}
		if len(profile.Melody) != 8 {
			t.Errorf("melody length = %d, want the 8-note floor", len(profile.Melody))
		}
	})
}

func TestAnalyzeBytes(t *testing.T) {
	analyzer := NewAnalyzer(DefaultTuning())
	raw := pseudoBytes(16000)

	t.Run("EmptyInput", func(t *testing.T) {
		_, err := analyzer.AnalyzeBytes(nil)
		if !errors.Is(err, enginerrors.ErrEmptyInput) {
			t.Errorf("err = %v, want ErrEmptyInput", err)
		}
	})

	t.Run("ProfileShape", func(t *testing.T) {
		profile, err := analyzer.AnalyzeBytes(raw)
		if err != nil {
			t.Fatalf("AnalyzeBytes: %v", err)
		}

		if profile.ByteCount != len(raw) {
			t.Errorf("byte count = %d, want %d", profile.ByteCount, len(raw))
		}
		if profile.DurationSec != 2 {
			t.Errorf("duration = %v, want 2 (8000 bytes/sec)", profile.DurationSec)
		}
		if profile.TempoBPM < MinBPM || profile.TempoBPM > MaxBPM {
			t.Errorf("tempo = %d, outside [%d, %d]", profile.TempoBPM, MinBPM, MaxBPM)
		}
		if want := TargetNoteCount(profile.DurationSec, profile.TempoBPM); len(profile.Melody) != want {
			t.Errorf("melody length = %d, want %d", len(profile.Melody), want)
		}
		for i, p := range profile.Melody {
			if p < fallbackPitchLow || p > fallbackPitchHigh {
				t.Errorf("melody[%d] = %d, outside [%d, %d]", i, p, fallbackPitchLow, fallbackPitchHigh)
			}
		}
		if len(profile.Fingerprint) != 16 {
			t.Errorf("fingerprint = %q, want 16 hex chars", profile.Fingerprint)
		}
		if profile.Key == "" {
			t.Error("expected a key estimate")
		}
		if len(profile.Trace) < 3 {
			t.Errorf("trace = %v, want tempo, melody and key entries", profile.Trace)
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		a, err := analyzer.AnalyzeBytes(raw)
		if err != nil {
			t.Fatalf("AnalyzeBytes: %v", err)
		}
		b, err := analyzer.AnalyzeBytes(raw)
		if err != nil {
			t.Fatalf("AnalyzeBytes: %v", err)
		}
		if !reflect.DeepEqual(a, b) {
			t.Error("identical bytes must produce identical profiles")
		}
	})
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte("abc"))
	b := Fingerprint([]byte("abd"))
	if len(a) != 16 {
		t.Errorf("fingerprint length = %d, want 16", len(a))
	}
	if a == b {
		t.Error("different content should not collide on the short fingerprint")
	}
	if a != Fingerprint([]byte("abc")) {
		t.Error("fingerprint must be stable")
	}
}

func TestSegmentsBetweenOnsets(t *testing.T) {
	samples := []int{1, 2, 3, 4, 5, 6}

	t.Run("NoOnsets_WholeBuffer", func(t *testing.T) {
		segments := segmentsBetweenOnsets(samples, nil)
		if len(segments) != 1 || len(segments[0]) != 6 {
			t.Errorf("segments = %v, want the whole buffer", segments)
		}
	})

	t.Run("SplitsAtOnsets", func(t *testing.T) {
		segments := segmentsBetweenOnsets(samples, []int{2, 4})
		if len(segments) != 2 {
			t.Fatalf("segments = %v, want 2", segments)
		}
		if !reflect.DeepEqual(segments[0], []int{3, 4}) || !reflect.DeepEqual(segments[1], []int{5, 6}) {
			t.Errorf("segments = %v, want [[3 4] [5 6]]", segments)
		}
	})
}
