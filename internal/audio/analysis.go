package audio

import "math"

// RMS returns the root-mean-square amplitude of the samples, the loudness
// proxy used for blend gain decisions.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// Peak returns the maximum absolute sample value.
func Peak(samples []float64) float64 {
	var peak float64
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	return peak
}

// ApplyGain scales all samples in place.
func ApplyGain(samples []float64, gain float64) {
	for i := range samples {
		samples[i] *= gain
	}
}

// FadeOut applies a linear fade over the final duration seconds, in place.
// Fades longer than the buffer cover the whole buffer.
func FadeOut(samples []float64, rate int, duration float64) {
	n := int(duration * float64(rate))
	if n <= 0 {
		return
	}
	if n > len(samples) {
		n = len(samples)
	}
	start := len(samples) - n
	for i := 0; i < n; i++ {
		samples[start+i] *= 1 - float64(i+1)/float64(n)
	}
}
