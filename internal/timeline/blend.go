package timeline

import (
	"fmt"

	"dubforge/internal/audio"
)

// blend remixes the background bed under the voice track in place. The target
// voice/background RMS ratio is measured from the original isolated stems
// when available; otherwise the configured default applies. An unreadable
// background bed is fatal, unreadable stems only downgrade to the default
// ratio.
func (e *Engine) blend(req Request, track []float64, rate int, result *Result) error {
	bed, err := audio.DecodeWAVFile(req.BackgroundPath)
	if err != nil {
		return fmt.Errorf("blend: background bed: %w", err)
	}
	bed = audio.Resample(bed, rate)
	background := fitLength(bed.Samples, len(track))

	targetRatio := e.cfg.DefaultVoiceBackgroundRatio
	originalVoiceRMS := 0.0
	measured := false
	if req.VoiceStemPath != "" && req.BackgroundStemPath != "" {
		voiceStem, verr := audio.DecodeWAVFile(req.VoiceStemPath)
		backgroundStem, berr := audio.DecodeWAVFile(req.BackgroundStemPath)
		if verr != nil || berr != nil {
			result.Warnings = append(result.Warnings, Warning{Index: -1, Kind: WarnStemUnreadable,
				Detail: "original stems unreadable; using default voice/background ratio"})
		} else if vr, br := audio.RMS(voiceStem.Samples), audio.RMS(backgroundStem.Samples); vr > 0 && br > 0 {
			targetRatio = vr / br
			originalVoiceRMS = vr
			measured = true
		}
	}

	voiceRMS := audio.RMS(track)
	backgroundRMS := audio.RMS(background)
	if backgroundRMS <= 0 {
		return nil
	}

	// Voice gain: pull a hot synthesized voice down to the original level;
	// boost a quiet one toward it, bounded by MaxVoiceBoost.
	voiceGain := 1.0
	if measured && voiceRMS > 0 {
		voiceGain = originalVoiceRMS / voiceRMS
		if voiceGain > e.cfg.MaxVoiceBoost {
			voiceGain = e.cfg.MaxVoiceBoost
		}
	}
	targetVoiceRMS := voiceRMS * voiceGain

	backgroundGain := targetVoiceRMS / targetRatio / backgroundRMS
	if backgroundGain > e.cfg.MaxBackgroundGain {
		backgroundGain = e.cfg.MaxBackgroundGain
	}
	if backgroundGain < 0 {
		backgroundGain = 0
	}
	// Without a measured ratio the bed must not end up relatively louder
	// than before when the voice was turned down.
	if !measured && voiceGain < 1.0 && backgroundGain > voiceGain {
		backgroundGain = voiceGain
	}

	// Pre-normalize if the combined peak would clip.
	voicePeak := audio.Peak(track)
	backgroundPeak := audio.Peak(background)
	if voicePeak*voiceGain+backgroundPeak*backgroundGain > 1.0 {
		if voicePeak*voiceGain > 0.7 {
			voiceGain = 0.7 / voicePeak
		}
		if backgroundPeak*backgroundGain > 0.3 {
			backgroundGain = 0.3 / backgroundPeak
		}
	}

	for i := range track {
		track[i] = track[i]*voiceGain + background[i]*backgroundGain
	}
	if peak := audio.Peak(track); peak > 1.0 {
		audio.ApplyGain(track, 0.99/peak)
	}
	return nil
}

// fitLength pads with silence or truncates so the bed matches the voice
// track exactly.
func fitLength(samples []float64, length int) []float64 {
	if len(samples) == length {
		return samples
	}
	out := make([]float64, length)
	copy(out, samples)
	return out
}
