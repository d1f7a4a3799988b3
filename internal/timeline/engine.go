package timeline

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"dubforge/internal/audio"
	"dubforge/internal/logging"
)

// Engine places synthesized clips onto a fixed-length track.
type Engine struct {
	cfg    Config
	logger *slog.Logger
}

// NewEngine constructs an engine with the given tuning. A nil logger is
// replaced with a no-op logger.
func NewEngine(cfg Config, logger *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{cfg: cfg, logger: logger.With("component", "timeline")}, nil
}

// Render runs Probe, Place, Blend, and Normalize, then writes the output
// track. Per-placement problems surface as warnings on the result; a non-nil
// error means the run aborted (unreadable background bed or output I/O).
func (e *Engine) Render(req Request) (*Result, error) {
	if req.TotalDuration <= 0 {
		return nil, fmt.Errorf("render: total duration %.3f must be positive", req.TotalDuration)
	}
	if req.OutputPath == "" {
		return nil, errors.New("render: output path is required")
	}

	result := &Result{
		OutputPath:    req.OutputPath,
		TotalDuration: req.TotalDuration,
		Method:        "voice_only",
	}

	rate := e.probe(req, result)
	result.SampleRate = rate

	track := make([]float64, int(math.Round(req.TotalDuration*float64(rate))))
	e.place(req, track, rate, result)

	if req.BackgroundPath != "" {
		if err := e.blend(req, track, rate, result); err != nil {
			return nil, err
		}
		result.Method = "voice_with_background"
	}

	e.normalize(track)

	if err := audio.EncodeWAVFile(req.OutputPath, &audio.Clip{Samples: track, Rate: rate}); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	e.logger.Info("render complete",
		"output", req.OutputPath,
		"segments", result.SegmentsProcessed,
		"warnings", len(result.Warnings),
		"rate", rate,
		"method", result.Method)
	return result, nil
}

// probe determines the working sample rate: the higher of the first decodable
// clip's native rate and the background's. Neither source is ever
// downsampled; the lower-rate one gets upsampled during placement or blend.
func (e *Engine) probe(req Request, result *Result) int {
	clipRate := 0
	for _, p := range req.Placements {
		if p.AudioPath == "" {
			continue
		}
		clip, err := audio.DecodeWAVFile(p.AudioPath)
		if err != nil {
			continue
		}
		clipRate = clip.Rate
		break
	}

	backgroundRate := 0
	if req.BackgroundPath != "" {
		if bg, err := audio.DecodeWAVFile(req.BackgroundPath); err == nil {
			backgroundRate = bg.Rate
		}
	}

	rate := clipRate
	if backgroundRate > rate {
		rate = backgroundRate
	}
	if rate <= 0 {
		rate = e.cfg.FallbackSampleRate
		e.logger.Warn("no probeable source, using fallback rate", "rate", rate)
	}
	return rate
}

// place decodes, stretches, and writes every clip in ascending start order.
func (e *Engine) place(req Request, track []float64, rate int, result *Result) {
	for i, p := range req.Placements {
		if p.AudioPath == "" {
			result.Warnings = append(result.Warnings, Warning{Index: i, Kind: WarnMissingClip, Detail: "no clip synthesized; window left silent"})
			continue
		}
		clip, err := audio.DecodeWAVFile(p.AudioPath)
		if err != nil {
			result.Warnings = append(result.Warnings, Warning{Index: i, Kind: WarnUndecodableClip, Detail: err.Error()})
			e.logger.Warn("skipping undecodable clip", "index", i, "path", p.AudioPath, "error", err)
			continue
		}
		clip = audio.Resample(clip, rate)

		samples, degraded, err := e.fitToWindow(clip, p.End-p.Start)
		if err != nil {
			result.Warnings = append(result.Warnings, Warning{Index: i, Kind: WarnUndecodableClip, Detail: err.Error()})
			continue
		}
		if degraded {
			result.Warnings = append(result.Warnings, Warning{Index: i, Kind: WarnDegradedStretch,
				Detail: fmt.Sprintf("needed more than %.1fx speed-up; truncated to window", e.cfg.MaxStretchRatio)})
		}

		audio.FadeOut(samples, rate, e.cfg.TailFadeSeconds)

		start := int(math.Round(p.Start * float64(rate)))
		mixed := e.write(track, samples, start, rate)
		if mixed {
			result.Warnings = append(result.Warnings, Warning{Index: i, Kind: WarnOverlapMixed,
				Detail: fmt.Sprintf("overlap exceeded the %.1fs shift budget; mixed additively", e.cfg.MaxShiftSeconds)})
		}
		result.SegmentsProcessed++
	}
}

// fitToWindow time-stretches a clip that overruns its window. The returned
// flag reports whether the required ratio was clamped, in which case the clip
// was truncated to the window length. Clips within their window pass through
// untouched; the engine never force-stretches a clip to exactly fill a
// window.
func (e *Engine) fitToWindow(clip *audio.Clip, window float64) ([]float64, bool, error) {
	if window <= 0 {
		return nil, false, fmt.Errorf("window length %.3f must be positive", window)
	}
	actual := clip.Duration()
	if actual <= window {
		out := make([]float64, len(clip.Samples))
		copy(out, clip.Samples)
		return out, false, nil
	}

	ratio := actual / window * e.cfg.StretchSafetyMargin
	degraded := false
	if ratio > e.cfg.MaxStretchRatio {
		ratio = e.cfg.MaxStretchRatio
		degraded = true
	}

	var stretched *audio.Clip
	var err error
	if ratio > e.cfg.ChainedStretchThreshold {
		// Two chained passes: a fixed moderate pass, then the remainder.
		stretched, err = audio.TimeStretch(clip, e.cfg.ChainedStretchThreshold)
		if err == nil {
			stretched, err = audio.TimeStretch(stretched, ratio/e.cfg.ChainedStretchThreshold)
		}
	} else {
		stretched, err = audio.TimeStretch(clip, ratio)
	}
	if err != nil {
		return nil, false, fmt.Errorf("time stretch: %w", err)
	}

	samples := stretched.Samples
	if e.hasStretchArtifact(samples, clip.Rate) {
		audio.LowPass4(samples, clip.Rate, e.cfg.LowPassCutoffHz)
	}

	if degraded {
		limit := int(window * float64(clip.Rate))
		if limit < len(samples) {
			samples = samples[:limit]
		}
	}
	return samples, degraded, nil
}

// hasStretchArtifact checks the clip tail for the energy spike aggressive
// stretching tends to leave behind.
func (e *Engine) hasStretchArtifact(samples []float64, rate int) bool {
	tail := int(e.cfg.ArtifactTailSeconds * float64(rate))
	if tail <= 0 || tail >= len(samples) {
		return false
	}
	global := audio.Peak(samples)
	if global <= 0 {
		return false
	}
	return audio.Peak(samples[len(samples)-tail:]) > e.cfg.ArtifactPeakFraction*global
}

// write places samples at start, resolving collisions with already-written
// content. Shifting within the deviation budget is preferred because it is
// lossless; additive mixing is the last resort. Reports whether mixing
// happened. Content running past the end of the track is truncated.
func (e *Engine) write(track, samples []float64, start, rate int) bool {
	if start < 0 {
		if -start >= len(samples) {
			return false
		}
		samples = samples[-start:]
		start = 0
	}

	first, last := e.occupiedRange(track, start, len(samples))
	if first < 0 {
		copyInto(track, samples, start)
		return false
	}

	budget := int(e.cfg.MaxShiftSeconds * float64(rate))

	// Shift earlier by the minimal distance that clears the overlap.
	if earlier := first - len(samples); earlier >= 0 && start-earlier <= budget {
		if f, _ := e.occupiedRange(track, earlier, len(samples)); f < 0 {
			copyInto(track, samples, earlier)
			return false
		}
	}

	// Then try later under the same budget.
	if later := last + 1; later-start <= budget && later < len(track) {
		if f, _ := e.occupiedRange(track, later, len(samples)); f < 0 {
			copyInto(track, samples, later)
			return false
		}
	}

	// Mix 50/50 where occupied rather than drop either signal.
	for i, s := range samples {
		pos := start + i
		if pos >= len(track) {
			break
		}
		if math.Abs(track[pos]) > e.cfg.SilenceThreshold {
			track[pos] = (track[pos] + s) * 0.5
		} else {
			track[pos] = s
		}
	}
	return true
}

// occupiedRange returns the first and last non-silent indices inside the
// region, or (-1, -1) when the region is clear.
func (e *Engine) occupiedRange(track []float64, start, length int) (int, int) {
	first, last := -1, -1
	for i := start; i < start+length && i < len(track); i++ {
		if i < 0 {
			continue
		}
		if math.Abs(track[i]) > e.cfg.SilenceThreshold {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	return first, last
}

func copyInto(track, samples []float64, start int) {
	for i, s := range samples {
		pos := start + i
		if pos >= len(track) {
			return
		}
		track[pos] = s
	}
}

// normalize applies the final headroom pass: near-clipping tracks get pulled
// to 0.95 peak, quiet ones are lifted toward 0.9 peak with a bounded gain.
func (e *Engine) normalize(track []float64) {
	peak := audio.Peak(track)
	if peak <= 0 {
		return
	}

	var gain float64
	if peak >= 0.95 {
		gain = 0.95 / peak
	} else {
		gain = 0.9 / peak
		limit := 1.5
		if peak > 0.8 {
			limit = 1.2
		}
		if gain > limit {
			gain = limit
		}
	}
	audio.ApplyGain(track, gain)

	if peak = audio.Peak(track); peak > 1.0 {
		audio.ApplyGain(track, 0.99/peak)
	}
}
