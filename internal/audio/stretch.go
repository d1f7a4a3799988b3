package audio

import (
	"fmt"
	"math"
)

// TimeStretch speeds a clip up by ratio (>1 shortens it) without changing
// pitch, using windowed overlap-add. The output length is the input length
// divided by ratio, within one window of rounding.
func TimeStretch(clip *Clip, ratio float64) (*Clip, error) {
	if ratio <= 0 {
		return nil, fmt.Errorf("time stretch: invalid ratio %.3f", ratio)
	}
	if math.Abs(ratio-1) < 1e-6 || len(clip.Samples) == 0 {
		return clip, nil
	}

	window := int(0.050 * float64(clip.Rate)) // 50ms analysis window
	if window < 32 {
		window = 32
	}
	if window > len(clip.Samples) {
		// Clip shorter than one window: fall back to resampling in time.
		return &Clip{Samples: stretchLinear(clip.Samples, ratio), Rate: clip.Rate}, nil
	}
	synthesisHop := window / 2
	analysisHop := float64(synthesisHop) * ratio

	outLen := int(float64(len(clip.Samples))/ratio) + window
	out := make([]float64, outLen)
	weight := make([]float64, outLen)
	hann := hannWindow(window)

	outPos := 0
	for srcPos := 0.0; int(srcPos)+window <= len(clip.Samples); srcPos += analysisHop {
		src := int(srcPos)
		for i := 0; i < window; i++ {
			if outPos+i >= outLen {
				break
			}
			out[outPos+i] += clip.Samples[src+i] * hann[i]
			weight[outPos+i] += hann[i]
		}
		outPos += synthesisHop
	}

	// Normalize by accumulated window weight and trim to the target length.
	target := int(float64(len(clip.Samples)) / ratio)
	if target > outPos+synthesisHop {
		target = outPos + synthesisHop
	}
	if target > outLen {
		target = outLen
	}
	result := make([]float64, target)
	for i := range result {
		if weight[i] > 1e-9 {
			result[i] = out[i] / weight[i]
		}
	}

	return &Clip{Samples: result, Rate: clip.Rate}, nil
}

// stretchLinear compresses samples in time by plain linear interpolation.
// Pitch shifts, but for sub-window clips the artifact is inaudible.
func stretchLinear(samples []float64, ratio float64) []float64 {
	outLen := int(float64(len(samples)) / ratio)
	if outLen < 1 {
		outLen = 1
	}
	out := make([]float64, outLen)
	for i := range out {
		srcPos := float64(i) * ratio
		srcIdx := int(srcPos)
		frac := srcPos - float64(srcIdx)
		out[i] = sampleAt(samples, srcIdx) + frac*(sampleAt(samples, srcIdx+1)-sampleAt(samples, srcIdx))
	}
	return out
}

func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}
