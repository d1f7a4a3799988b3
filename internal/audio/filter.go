package audio

import "math"

// biquad is a direct-form-I second-order IIR section.
type biquad struct {
	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
}

func (f *biquad) process(x float64) float64 {
	y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2, f.x1 = f.x1, x
	f.y2, f.y1 = f.y1, y
	return y
}

// newLowPassBiquad builds a low-pass section at the given cutoff and Q
// (RBJ audio EQ cookbook form).
func newLowPassBiquad(rate int, cutoff, q float64) *biquad {
	w0 := 2 * math.Pi * cutoff / float64(rate)
	cosW0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	b0 := (1 - cosW0) / 2
	b1 := 1 - cosW0
	b2 := (1 - cosW0) / 2
	a0 := 1 + alpha
	a1 := -2 * cosW0
	a2 := 1 - alpha

	return &biquad{
		b0: b0 / a0,
		b1: b1 / a0,
		b2: b2 / a0,
		a1: a1 / a0,
		a2: a2 / a0,
	}
}

// Butterworth Q values for a 4th-order cascade of two sections.
var butterworth4Q = [2]float64{0.54119610, 1.30656296}

// LowPass4 applies a 4th-order Butterworth low-pass filter in place, used to
// tame time-stretch artifacts. The cutoff is clamped below Nyquist.
func LowPass4(samples []float64, rate int, cutoff float64) {
	nyquist := float64(rate) / 2
	if cutoff >= nyquist {
		cutoff = nyquist * 0.95
	}
	for _, q := range butterworth4Q {
		section := newLowPassBiquad(rate, cutoff, q)
		for i, s := range samples {
			samples[i] = section.process(s)
		}
	}
}
