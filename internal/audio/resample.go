package audio

// Resample converts a clip to the target rate using linear interpolation.
// Returns the input unchanged when the rates already match.
func Resample(clip *Clip, rate int) *Clip {
	if clip.Rate == rate || len(clip.Samples) == 0 {
		return clip
	}

	ratio := float64(clip.Rate) / float64(rate)
	outLen := int(float64(len(clip.Samples)) / ratio)
	if outLen < 1 {
		outLen = 1
	}
	out := make([]float64, outLen)

	for i := range out {
		srcPos := float64(i) * ratio
		srcIdx := int(srcPos)
		frac := srcPos - float64(srcIdx)

		s0 := sampleAt(clip.Samples, srcIdx)
		s1 := sampleAt(clip.Samples, srcIdx+1)
		out[i] = s0 + frac*(s1-s0)
	}

	return &Clip{Samples: out, Rate: rate}
}

// sampleAt clamps out-of-range reads to the last sample.
func sampleAt(samples []float64, idx int) float64 {
	if idx < 0 {
		return 0
	}
	if idx >= len(samples) {
		idx = len(samples) - 1
	}
	return samples[idx]
}
