package timeline

import "fmt"

// Config exposes the engine's tunable heuristics so they can be adjusted
// without touching placement logic.
type Config struct {
	// StretchSafetyMargin is multiplied into every computed stretch ratio so
	// a stretched clip lands slightly short of its window.
	StretchSafetyMargin float64
	// MaxStretchRatio clamps time-stretching. Clips needing more speed-up are
	// truncated to their window and flagged as degraded.
	MaxStretchRatio float64
	// ChainedStretchThreshold is the ratio above which the stretch runs as
	// two chained passes (a fixed pass at this ratio, then the remainder).
	// Chained moderate stretches introduce fewer artifacts than one
	// aggressive pass at the same total ratio.
	ChainedStretchThreshold float64
	// MaxShiftSeconds is the deviation budget for overlap resolution: the
	// largest time shift from a placement's original start before the engine
	// falls back to additive mixing.
	MaxShiftSeconds float64
	// TailFadeSeconds is the fade-out applied to every placed clip's tail to
	// suppress truncation clicks.
	TailFadeSeconds float64
	// ArtifactTailSeconds and ArtifactPeakFraction define the stretch
	// artifact check: when the final ArtifactTailSeconds of a stretched clip
	// peak above ArtifactPeakFraction of the clip's global peak, the whole
	// clip is low-pass filtered.
	ArtifactTailSeconds  float64
	ArtifactPeakFraction float64
	// LowPassCutoffHz is the artifact filter's cutoff.
	LowPassCutoffHz float64
	// MaxVoiceBoost bounds how far a too-quiet synthesized voice is boosted
	// toward the original voice level.
	MaxVoiceBoost float64
	// MaxBackgroundGain bounds the background bed's gain relative to its
	// recorded level.
	MaxBackgroundGain float64
	// DefaultVoiceBackgroundRatio is the voice/background RMS ratio used when
	// no original stems are available to measure the real one.
	DefaultVoiceBackgroundRatio float64
	// SilenceThreshold is the absolute sample value below which buffer
	// content counts as silence during overlap detection.
	SilenceThreshold float64
	// FallbackSampleRate is used when neither a clip nor a background track
	// could be probed.
	FallbackSampleRate int
}

// DefaultConfig returns the tuning the engine ships with.
func DefaultConfig() Config {
	return Config{
		StretchSafetyMargin:         1.1,
		MaxStretchRatio:             2.0,
		ChainedStretchThreshold:     1.2,
		MaxShiftSeconds:             0.5,
		TailFadeSeconds:             0.020,
		ArtifactTailSeconds:         0.050,
		ArtifactPeakFraction:        0.8,
		LowPassCutoffHz:             8000,
		MaxVoiceBoost:               1.2,
		MaxBackgroundGain:           1.2,
		DefaultVoiceBackgroundRatio: 2.0,
		SilenceThreshold:            1e-6,
		FallbackSampleRate:          44100,
	}
}

// Validate rejects tunings the placement logic cannot honor.
func (c Config) Validate() error {
	if c.StretchSafetyMargin < 1 {
		return fmt.Errorf("timeline: stretch_safety_margin %.3f must be >= 1", c.StretchSafetyMargin)
	}
	if c.MaxStretchRatio < 1 {
		return fmt.Errorf("timeline: max_stretch_ratio %.3f must be >= 1", c.MaxStretchRatio)
	}
	if c.ChainedStretchThreshold <= 1 {
		return fmt.Errorf("timeline: chained_stretch_threshold %.3f must be > 1", c.ChainedStretchThreshold)
	}
	if c.MaxShiftSeconds < 0 {
		return fmt.Errorf("timeline: max_shift_seconds %.3f must not be negative", c.MaxShiftSeconds)
	}
	if c.DefaultVoiceBackgroundRatio <= 0 {
		return fmt.Errorf("timeline: default_voice_background_ratio %.3f must be positive", c.DefaultVoiceBackgroundRatio)
	}
	if c.FallbackSampleRate <= 0 {
		return fmt.Errorf("timeline: fallback_sample_rate %d must be positive", c.FallbackSampleRate)
	}
	return nil
}
