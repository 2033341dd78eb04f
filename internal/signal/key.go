package signal

// diatonicOffsets is the major-scale template: semitone offsets of the seven
// scale degrees from the tonic.
var diatonicOffsets = [7]int{0, 2, 4, 5, 7, 9, 11}

// keyNames are the 12 canonical tonic names, index = pitch class.
var keyNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// EstimateKey scores all 12 major-scale tonics against the melody's
// pitch-class histogram and returns the winner; ties break toward the lowest
// tonic index. An empty melody falls back to a byte-seeded deterministic
// pick from the same 12-key list.
func EstimateKey(melody []int, seed []byte) string {
	if len(melody) == 0 {
		sum := 0
		for _, b := range seed {
			sum += int(b)
		}
		return keyNames[sum%12]
	}

	var hist [12]int
	for _, p := range melody {
		hist[((p%12)+12)%12]++
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
	return keyNames[bestTonic]
}
