// Package dsp holds the shared numeric helpers used by the signal layer:
// descriptive statistics, a windowed brute-force DFT restricted to a
// frequency band, normalized autocorrelation, and tolerance clustering.
package dsp

import (
	"math"

	"github.com/mjibson/go-dsp/window"
)

// Mean returns the arithmetic mean of xs, 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdDev returns the population standard deviation of xs.
func StdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := Mean(xs)
	var sum float64
	for _, x := range xs {
		d := x - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}

// Median returns the median of xs without mutating the input.
func Median(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, xs)
	for i := 1; i < n; i++ {
		for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// RMS returns the root mean square of xs.
func RMS(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x * x
	}
	return math.Sqrt(sum / float64(len(xs)))
}

// SpectralPeak locates the strongest DFT bin whose frequency falls inside
// [minFreq, maxFreq]. The signal is Hann-windowed first. Returns the bin
// frequency, the bin power, and the total energy of the windowed signal.
// The DFT is evaluated directly and only over the requested band; the
// estimator never needs the rest of the spectrum.
func SpectralPeak(samples []float64, sampleRate float64, minFreq, maxFreq float64) (freq, power, energy float64) {
	n := len(samples)
	if n == 0 || sampleRate <= 0 {
		return 0, 0, 0
	}

	windowed := make([]float64, n)
	copy(windowed, samples)
	window.Apply(windowed, window.Hann)

	for _, w := range windowed {
		energy += w * w
	}

	binHz := sampleRate / float64(n)
	kMin := int(math.Ceil(minFreq / binHz))
	kMax := int(math.Floor(maxFreq / binHz))
	if kMin < 1 {
		kMin = 1
	}
	if kMax > n/2 {
		kMax = n / 2
	}

	bestPower := 0.0
	bestBin := -1
	for k := kMin; k <= kMax; k++ {
		var re, im float64
		omega := 2 * math.Pi * float64(k) / float64(n)
		for i, w := range windowed {
			angle := omega * float64(i)
			re += w * math.Cos(angle)
			im -= w * math.Sin(angle)
		}
		p := re*re + im*im
		if p > bestPower {
			bestPower = p
			bestBin = k
		}
	}

	if bestBin < 0 {
		return 0, 0, energy
	}
	return float64(bestBin) * binHz, bestPower, energy
}

// Autocorrelate computes the normalized autocorrelation of samples at the
// given lag: sum(x[i]*x[i+lag]) / sum(x[i]^2). Returns 0 when the lag leaves
// no overlap or the signal has no energy.
func Autocorrelate(samples []float64, lag int) float64 {
	n := len(samples)
	if lag <= 0 || lag >= n {
		return 0
	}
	var corr, energy float64
	for i := 0; i < n; i++ {
		energy += samples[i] * samples[i]
	}
	if energy == 0 {
		return 0
	}
	for i := 0; i+lag < n; i++ {
		corr += samples[i] * samples[i+lag]
	}
	return corr / energy
}

// LargestCluster groups values by tolerance and returns the members of the
// largest group. Each value anchors a candidate cluster containing every
// value within tolerance of it; the densest cluster wins and ties break
// toward the anchor closest to preferred.
func LargestCluster(values []float64, tolerance, preferred float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	if tolerance <= 0 {
		tolerance = math.SmallestNonzeroFloat64
	}

	var best []float64
	bestDist := math.Inf(1)
	for _, anchor := range values {
		var members []float64
		for _, v := range values {
			if math.Abs(v-anchor) <= tolerance {
				members = append(members, v)
			}
		}
		dist := math.Abs(anchor - preferred)
		if len(members) > len(best) || (len(members) == len(best) && dist < bestDist) {
			best = members
			bestDist = dist
		}
	}
	return best
}

// Contains reports whether target is within tolerance of any member.
func Contains(members []float64, target, tolerance float64) bool {
	for _, m := range members {
		if math.Abs(m-target) <= tolerance {
			return true
		}
	}
	return false
}
