package signal

import (
	"reflect"
	"testing"
)

func TestTargetNoteCount(t *testing.T) {
	cases := []struct {
		durationSec float64
		bpm         int
		want        int
	}{
		{10, 120, 20},
		{30, 72, 36},
		{1, 60, 8},        // floor
		{2000, 120, 1024}, // ceiling
	}
	for _, c := range cases {
		if got := TargetNoteCount(c.durationSec, c.bpm); got != c.want {
			t.Errorf("TargetNoteCount(%v, %d) = %d, want %d", c.durationSec, c.bpm, got, c.want)
		}
	}
}

func TestAssembleFromSegments(t *testing.T) {
	t.Run("OutlierSmoothed", func(t *testing.T) {
		got := AssembleFromSegments([]int{60, 75, 62}, 3)
		want := []int{60, 61, 62}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("smoothed = %v, want %v", got, want)
		}
	})

	t.Run("SmallLeapKept", func(t *testing.T) {
		got := AssembleFromSegments([]int{60, 66, 62}, 3)
		want := []int{60, 66, 62}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("melody = %v, want %v unchanged", got, want)
		}
	})

	t.Run("CyclicPadding", func(t *testing.T) {
		got := AssembleFromSegments([]int{60, 62}, 5)
		want := []int{60, 62, 60, 62, 60}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("padded = %v, want %v", got, want)
		}
	})

	t.Run("Truncation", func(t *testing.T) {
		got := AssembleFromSegments([]int{60, 62, 64, 65}, 2)
		want := []int{60, 62}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("truncated = %v, want %v", got, want)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		if got := AssembleFromSegments(nil, 8); got != nil {
			t.Errorf("empty input = %v, want nil", got)
		}
	})
}

func pseudoBytes(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte((i*i*31 + i*7 + 13) % 256)
	}
	return out
}

func TestFallbackMelody(t *testing.T) {
	raw := pseudoBytes(2048)

	t.Run("LengthAndRegister", func(t *testing.T) {
		melody, strategy := FallbackMelody(raw, 40)
		if len(melody) != 40 {
			t.Fatalf("length = %d, want 40", len(melody))
		}
		if strategy == "" {
			t.Error("expected a winning strategy name")
		}
		for i, p := range melody {
			if p < fallbackPitchLow || p > fallbackPitchHigh {
				t.Errorf("melody[%d] = %d, outside [%d, %d]", i, p, fallbackPitchLow, fallbackPitchHigh)
			}
		}
		if uniqueCount(melody) < 4 {
			t.Errorf("unique pitches = %d, want >= 4", uniqueCount(melody))
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		a, _ := FallbackMelody(raw, 40)
		b, _ := FallbackMelody(raw, 40)
		if !reflect.DeepEqual(a, b) {
			t.Error("same bytes should produce the same melody")
		}
	})

	t.Run("EmptyInput", func(t *testing.T) {
		if melody, _ := FallbackMelody(nil, 8); melody != nil {
			t.Errorf("empty bytes = %v, want nil", melody)
		}
		if melody, _ := FallbackMelody(raw, 0); melody != nil {
			t.Errorf("zero target = %v, want nil", melody)
		}
	})
}

func TestScoreCandidate(t *testing.T) {
	monotone := []int{60, 60, 60, 60, 60, 60, 60, 60}
	scale := []int{60, 62, 64, 65, 67, 69, 71, 72}

	if scoreCandidate(scale) <= scoreCandidate(monotone) {
		t.Errorf("a scale run (%v) should outscore a monotone line (%v)",
			scoreCandidate(scale), scoreCandidate(monotone))
	}
}

func TestClampLeaps(t *testing.T) {
	p := []int{60, 80, 40}
	clampLeaps(p)
	want := []int{60, 68, 64}
	if !reflect.DeepEqual(p, want) {
		t.Errorf("clamped = %v, want %v", p, want)
	}
	for i := 1; i < len(p); i++ {
		if d := p[i] - p[i-1]; d > maxMelodicLeap || d < -maxMelodicLeap {
			t.Errorf("leap %d -> %d exceeds an octave", p[i-1], p[i])
		}
	}
}

func TestSnapToTemplate(t *testing.T) {
	var cMajor [12]bool
	for _, off := range diatonicOffsets {
		cMajor[off] = true
	}

	// C# snaps down to C, the nearer in-scale neighbor.
	if got := snapToTemplate(61, cMajor, fallbackPitchLow, fallbackPitchHigh); got != 60 {
		t.Errorf("snap(61) = %d, want 60", got)
	}
	// In-scale pitches stay put.
	if got := snapToTemplate(64, cMajor, fallbackPitchLow, fallbackPitchHigh); got != 64 {
		t.Errorf("snap(64) = %d, want 64", got)
	}
}
