package symbolic

import "sort"

// InstrumentPreset declares a playable MIDI range and how strongly the
// instrument favors chordal and polyphonic material.
type InstrumentPreset struct {
	MinPitch          int
	MaxPitch          int
	ChordAffinity     float64
	PolyphonyAffinity float64
}

// PresetAuto asks the classifier to score every concrete preset.
const PresetAuto = "auto"

var instrumentPresets = map[string]InstrumentPreset{
	PresetAuto:        {MinPitch: 0, MaxPitch: 127},
	"acoustic_guitar": {MinPitch: 40, MaxPitch: 88, ChordAffinity: 0.28, PolyphonyAffinity: 0.2},
	"electric_guitar": {MinPitch: 36, MaxPitch: 96, ChordAffinity: 0.24, PolyphonyAffinity: 0.16},
	"piano":           {MinPitch: 21, MaxPitch: 108, ChordAffinity: 0.18, PolyphonyAffinity: 0.24},
	"flute":           {MinPitch: 60, MaxPitch: 96, ChordAffinity: -0.3, PolyphonyAffinity: -0.4},
	"violin":          {MinPitch: 55, MaxPitch: 103, ChordAffinity: -0.12, PolyphonyAffinity: -0.2},
}

// PresetNames returns the supported preset names sorted alphabetically.
func PresetNames() []string {
	names := make([]string, 0, len(instrumentPresets))
	for name := range instrumentPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func presetExists(name string) bool {
	_, ok := instrumentPresets[name]
	return ok
}

// ClassifyInstrument scores every concrete preset against the observed
// pitches and returns (instrument, appliedPreset). A manual preset
// short-circuits scoring; empty frames classify as unknown. Ties break
// toward the preset with the smaller pitch range.
func ClassifyInstrument(frames []Frame, presetName string, chordCount int, polyphonic bool) (string, string) {
	var pitches []int
	for _, frame := range frames {
		pitches = append(pitches, frame...)
	}
	if len(pitches) == 0 {
		return "unknown", presetName
	}
	if presetName != PresetAuto {
		return presetName, presetName
	}

	names := PresetNames()
	bestName := ""
	bestScore := 0.0
	bestSpan := 0
	for _, name := range names {
		if name == PresetAuto {
			continue
		}
		preset := instrumentPresets[name]
		score := scorePreset(pitches, preset, chordCount, polyphonic)
		span := preset.MaxPitch - preset.MinPitch
		if bestName == "" || score > bestScore || (score == bestScore && span < bestSpan) {
			bestName, bestScore, bestSpan = name, score, span
		}
	}
	return bestName, PresetAuto
}

func scorePreset(pitches []int, preset InstrumentPreset, chordCount int, polyphonic bool) float64 {
	inRange := 0
	for _, p := range pitches {
		if p >= preset.MinPitch && p <= preset.MaxPitch {
			inRange++
		}
	}
	score := float64(inRange) / float64(len(pitches))

	ratio := float64(chordCount) / 4
	if ratio > 1 {
		ratio = 1
	}
	score += preset.ChordAffinity * ratio

	if polyphonic {
		score += preset.PolyphonyAffinity
	} else {
		score -= preset.PolyphonyAffinity
	}
	return score
}
