package config

import "dubforge/internal/timeline"

// TimelineConfig maps the [timeline] table onto the placement engine's
// tuning struct, falling back to engine defaults for unset values.
func (c *Config) TimelineConfig() timeline.Config {
	out := timeline.DefaultConfig()
	t := c.Timeline
	if t.StretchSafetyMargin > 0 {
		out.StretchSafetyMargin = t.StretchSafetyMargin
	}
	if t.MaxStretchRatio > 0 {
		out.MaxStretchRatio = t.MaxStretchRatio
	}
	if t.ChainedStretchThreshold > 0 {
		out.ChainedStretchThreshold = t.ChainedStretchThreshold
	}
	if t.MaxShiftSeconds > 0 {
		out.MaxShiftSeconds = t.MaxShiftSeconds
	}
	if t.TailFadeSeconds > 0 {
		out.TailFadeSeconds = t.TailFadeSeconds
	}
	if t.LowPassCutoffHz > 0 {
		out.LowPassCutoffHz = t.LowPassCutoffHz
	}
	if t.MaxVoiceBoost > 0 {
		out.MaxVoiceBoost = t.MaxVoiceBoost
	}
	if t.DefaultVoiceBackgroundRatio > 0 {
		out.DefaultVoiceBackgroundRatio = t.DefaultVoiceBackgroundRatio
	}
	return out
}
