package symbolic

import "sort"

// ChordQuality names one entry of the supported chord vocabulary.
type ChordQuality string

const (
	ChordMajor      ChordQuality = "major"
	ChordMinor      ChordQuality = "minor"
	ChordDiminished ChordQuality = "diminished"
	ChordAugmented  ChordQuality = "augmented"
	ChordSus2       ChordQuality = "suspended2"
	ChordSus4       ChordQuality = "suspended4"
)

// chordIntervals maps each quality to its interval set from the root, in
// priority order: a frame matches the first quality whose intervals are a
// subset of its intervals-from-root.
var chordIntervals = []struct {
	quality   ChordQuality
	intervals []int
}{
	{ChordMajor, []int{0, 4, 7}},
	{ChordMinor, []int{0, 3, 7}},
	{ChordDiminished, []int{0, 3, 6}},
	{ChordAugmented, []int{0, 4, 8}},
	{ChordSus2, []int{0, 2, 7}},
	{ChordSus4, []int{0, 5, 7}},
}

// pitchClassNames uses sharp spellings, index = pitch class.
var pitchClassNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// SupportedQualities returns the full chord vocabulary in priority order.
func SupportedQualities() []ChordQuality {
	out := make([]ChordQuality, len(chordIntervals))
	for i, entry := range chordIntervals {
		out[i] = entry.quality
	}
	return out
}

func isSupportedQuality(q ChordQuality) bool {
	for _, entry := range chordIntervals {
		if entry.quality == q {
			return true
		}
	}
	return false
}

// IdentifyChords matches each frame against the vocabulary and returns the
// de-duplicated, order-preserving "Root:quality" labels. Frames with fewer
// than three distinct pitch classes never yield a chord.
func IdentifyChords(frames []Frame, vocabulary []ChordQuality) []string {
	allowed := make(map[ChordQuality]bool, len(vocabulary))
	for _, q := range vocabulary {
		allowed[q] = true
	}

	var detected []string
	seen := make(map[string]bool)
	for _, frame := range frames {
		label, ok := matchChord(frame, allowed)
		if ok && !seen[label] {
			seen[label] = true
			detected = append(detected, label)
		}
	}
	return detected
}

// matchChord tries each pitch class as the root, lowest sounding pitch
// first then the remaining classes ascending; the first quality whose
// interval set is contained in the frame's intervals-from-root wins.
func matchChord(frame Frame, allowed map[ChordQuality]bool) (string, bool) {
	if len(frame) == 0 {
		return "", false
	}

	classSet := make(map[int]bool, len(frame))
	lowest := frame[0]
	for _, p := range frame {
		classSet[p%12] = true
		if p < lowest {
			lowest = p
		}
	}
	if len(classSet) < 3 {
		return "", false
	}

	classes := make([]int, 0, len(classSet))
	for pc := range classSet {
		classes = append(classes, pc)
	}
	sort.Ints(classes)

	preferred := lowest % 12
	roots := []int{preferred}
	for _, pc := range classes {
		if pc != preferred {
			roots = append(roots, pc)
		}
	}

	for _, root := range roots {
		intervals := make(map[int]bool, len(classes))
		for _, pc := range classes {
			intervals[(pc-root+12)%12] = true
		}
		for _, entry := range chordIntervals {
			if !allowed[entry.quality] {
				continue
			}
			if containsAll(intervals, entry.intervals) {
				return pitchClassNames[root] + ":" + string(entry.quality), true
			}
		}
	}
	return "", false
}

func containsAll(set map[int]bool, required []int) bool {
	for _, v := range required {
		if !set[v] {
			return false
		}
	}
	return true
}

// IsolatePitches keeps pitches whose frame-occurrence count reaches
// max(2, peak/2), sorted ascending. This is a display-side noise filter,
// independent of chord matching.
func IsolatePitches(frames []Frame) []int {
	if len(frames) == 0 {
		return nil
	}

	counts := make(map[int]int)
	peak := 0
	for _, frame := range frames {
		for _, p := range frame {
			counts[p]++
			if counts[p] > peak {
				peak = counts[p]
			}
		}
	}

	threshold := peak / 2
	if threshold < 2 {
		threshold = 2
	}

	var isolated []int
	for p, count := range counts {
		if count >= threshold {
			isolated = append(isolated, p)
		}
	}
	sort.Ints(isolated)
	return isolated
}
