package signal

import (
	"math"
	"testing"
)

// sineSegment renders a decaying sine at the given frequency.
func sineSegment(freqHz float64, sampleRate int, durSec, amp float64) []int {
	n := int(durSec * float64(sampleRate))
	out := make([]int, n)
	for i := range out {
		tau := float64(i) / float64(sampleRate)
		out[i] = int(math.Round(amp * math.Exp(-2*tau) * math.Sin(2*math.Pi*freqHz*tau)))
	}
	return out
}

func TestEstimateSegmentPitch(t *testing.T) {
	tuning := DefaultTuning()

	t.Run("ConcertA", func(t *testing.T) {
		segment := sineSegment(440, 44100, 0.3, 8000)
		pitch, ok := EstimateSegmentPitch(segment, 44100, tuning)
		if !ok {
			t.Fatal("expected a pitch from a clean 440 Hz tone")
		}
		if pitch != 69 {
			t.Errorf("pitch = %d, want 69", pitch)
		}
	})

	t.Run("MiddleC", func(t *testing.T) {
		segment := sineSegment(261.63, 44100, 0.3, 8000)
		pitch, ok := EstimateSegmentPitch(segment, 44100, tuning)
		if !ok {
			t.Fatal("expected a pitch from a clean 261.63 Hz tone")
		}
		if pitch != 60 {
			t.Errorf("pitch = %d, want 60", pitch)
		}
	})

	t.Run("QuietSegmentRejected", func(t *testing.T) {
		segment := sineSegment(440, 44100, 0.3, 30)
		if _, ok := EstimateSegmentPitch(segment, 44100, tuning); ok {
			t.Error("peak below the gate should yield no pitch")
		}
	})

	t.Run("TooShortAfterAttackSkip", func(t *testing.T) {
		segment := sineSegment(440, 44100, 0.0005, 8000)
		if _, ok := EstimateSegmentPitch(segment, 44100, tuning); ok {
			t.Error("a 22-sample segment should yield no pitch")
		}
	})

	t.Run("EmptySegment", func(t *testing.T) {
		if _, ok := EstimateSegmentPitch(nil, 44100, tuning); ok {
			t.Error("empty segment should yield no pitch")
		}
	})

	t.Run("CeilingClamped", func(t *testing.T) {
		clamped := DefaultTuning()
		clamped.PitchCeiling = 60
		clamped = NewTuningSettings(clamped)

		segment := sineSegment(880, 44100, 0.3, 8000)
		pitch, ok := EstimateSegmentPitch(segment, 44100, clamped)
		if !ok {
			t.Fatal("expected a pitch from a clean 880 Hz tone")
		}
		if pitch != 60 {
			t.Errorf("pitch = %d, want ceiling 60", pitch)
		}
	})
}

func TestFrequencyToMIDI(t *testing.T) {
	tuning := DefaultTuning()

	cases := []struct {
		freq float64
		want int
	}{
		{440, 69},
		{261.63, 60},
		{27.5, tuning.PitchFloor}, // A0 is MIDI 21, below the floor
		{0, tuning.PitchFloor},
	}
	for _, c := range cases {
		if got := FrequencyToMIDI(c.freq, tuning); got != c.want {
			t.Errorf("FrequencyToMIDI(%v) = %d, want %d", c.freq, got, c.want)
		}
	}
}

func TestZeroCrossingFreq(t *testing.T) {
	n := 4410
	win := make([]float64, n)
	for i := range win {
		win[i] = math.Sin(2 * math.Pi * 100 * float64(i) / 44100)
	}
	freq, ok := zeroCrossingFreq(win, 44100)
	if !ok {
		t.Fatal("expected an estimate")
	}
	if math.Abs(freq-100) > 10 {
		t.Errorf("freq = %v, want 100 +/- 10", freq)
	}

	if _, ok := zeroCrossingFreq(make([]float64, 100), 44100); ok {
		t.Error("silence has no crossings and no estimate")
	}
}

func TestAutocorrFreqPrefersFundamental(t *testing.T) {
	// Period 441 samples (100 Hz): the smallest qualifying peak must be the
	// fundamental period, not the 2x lag.
	tuning := DefaultTuning()
	n := 44100 / 6
	win := make([]float64, n)
	for i := range win {
		win[i] = math.Sin(2 * math.Pi * float64(i) / 441)
	}
	freq, ok := autocorrFreq(win, 44100, tuning)
	if !ok {
		t.Fatal("expected an estimate")
	}
	if math.Abs(freq-100) > 2 {
		t.Errorf("freq = %v, want 100 +/- 2", freq)
	}
}
