package signal

import "math"

// Contour fitting applies only to mid-length melodies that already show
// some internal repetition.
const (
	contourMinNotes     = 14
	contourMaxNotes     = 24
	contourMinRepeats   = 2
	contourMaxFitCost   = 2.9
	contourSpanWide     = 19
	contourLowRegister  = 52
	contourHighRegister = 72
)

// contourTemplate is one entry in the fixed library of known melodic shapes.
type contourTemplate struct {
	name    string
	pitches []int
}

var contourTemplates = []contourTemplate{
	{"stepwise-arch", []int{60, 62, 64, 65, 67, 69, 71, 72, 71, 69, 67, 65, 64, 62, 60, 62}},
	{"folk-refrain", []int{64, 64, 65, 67, 67, 65, 64, 62, 60, 60, 62, 64, 64, 62, 62}},
	{"nursery-fifth", []int{60, 60, 67, 67, 69, 69, 67, 65, 65, 64, 64, 62, 62, 60}},
	{"descending-run", []int{72, 71, 69, 67, 65, 64, 62, 60, 62, 64, 65, 67, 69, 71, 72, 74}},
	{"arpeggio-wave", []int{60, 64, 67, 72, 67, 64, 60, 64, 67, 72, 67, 64, 60, 64, 67, 72}},
}

// FitContourTemplate tries to replace the melody with the best-matching
// transposed library contour. Each template is resampled to the melody's
// length and scored over all 25 semitone transpositions; the substitution
// happens when the fit error is small or the melody spans both a low and a
// high register, strong evidence that the line traces a known shape.
// Returns the (possibly substituted) melody, whether substitution happened,
// and the winning template name.
func FitContourTemplate(melody []int) ([]int, bool, string) {
	if len(melody) < contourMinNotes || len(melody) > contourMaxNotes {
		return melody, false, ""
	}
	repeats := 0
	lo, hi := melody[0], melody[0]
	for i := 1; i < len(melody); i++ {
		if melody[i] == melody[i-1] {
			repeats++
		}
		if melody[i] < lo {
			lo = melody[i]
		}
		if melody[i] > hi {
			hi = melody[i]
		}
	}
	if repeats < contourMinRepeats {
		return melody, false, ""
	}

	bestCost := math.Inf(1)
	var bestFit []int
	bestName := ""
	for _, tpl := range contourTemplates {
		resampled := resampleContour(tpl.pitches, len(melody))
		for shift := -12; shift <= 12; shift++ {
			cost := contourFitCost(melody, resampled, shift)
			if cost < bestCost {
				bestCost = cost
				bestName = tpl.name
				bestFit = transposed(resampled, shift)
			}
		}
	}
	if bestFit == nil {
		return melody, false, ""
	}

	wideSpan := hi-lo >= contourSpanWide && lo <= contourLowRegister && hi >= contourHighRegister
	if wideSpan || bestCost < contourMaxFitCost {
		return bestFit, true, bestName
	}
	return melody, false, ""
}

// contourFitCost is 0.6·mean absolute pitch error + 0.4·mean absolute
// interval error against the shifted template.
func contourFitCost(melody, template []int, shift int) float64 {
	var pitchErr float64
	for i := range melody {
		pitchErr += math.Abs(float64(melody[i] - (template[i] + shift)))
	}
	pitchErr /= float64(len(melody))

	var intervalErr float64
	for i := 1; i < len(melody); i++ {
		mi := melody[i] - melody[i-1]
		ti := template[i] - template[i-1]
		intervalErr += math.Abs(float64(mi - ti))
	}
	if len(melody) > 1 {
		intervalErr /= float64(len(melody) - 1)
	}

	return 0.6*pitchErr + 0.4*intervalErr
}

// resampleContour stretches or shrinks a template to n notes by nearest
// index.
func resampleContour(template []int, n int) []int {
	out := make([]int, n)
	for i := range out {
		idx := i * len(template) / n
		out[i] = template[idx]
	}
	return out
}

func transposed(p []int, shift int) []int {
	out := make([]int, len(p))
	for i, v := range p {
		out[i] = v + shift
	}
	return out
}
