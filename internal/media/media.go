// Package media wraps the ffmpeg tool family for audio extraction, clip
// cutting, duration probing, and final muxing.
package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Command names for the ffmpeg tool family.
const (
	FFmpegCommand  = "ffmpeg"
	FFprobeCommand = "ffprobe"
)

// Toolset runs ffmpeg and ffprobe. The zero value uses the PATH binaries.
type Toolset struct {
	FFmpeg  string
	FFprobe string

	commandOutput func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewToolset returns a toolset bound to explicit binaries; empty strings fall
// back to the PATH defaults.
func NewToolset(ffmpeg, ffprobe string) *Toolset {
	if ffmpeg == "" {
		ffmpeg = FFmpegCommand
	}
	if ffprobe == "" {
		ffprobe = FFprobeCommand
	}
	return &Toolset{FFmpeg: ffmpeg, FFprobe: ffprobe}
}

// WithCommandOutput sets a custom command runner (for testing).
func (t *Toolset) WithCommandOutput(runner func(ctx context.Context, name string, args ...string) ([]byte, error)) {
	t.commandOutput = runner
}

func (t *Toolset) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if t.commandOutput != nil {
		return t.commandOutput(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return output, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return output, nil
}

// ExtractAudio extracts the full audio track as mono WAV at the given sample
// rate, which is what both transcription and separation expect.
func (t *Toolset) ExtractAudio(ctx context.Context, source, dest string, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("extract audio: invalid sample rate %d", sampleRate)
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"-c:a", "pcm_s16le",
		dest,
	}
	if _, err := t.run(ctx, t.FFmpeg, args...); err != nil {
		return fmt.Errorf("ffmpeg extract: %w", err)
	}
	return nil
}

// ExtractClip cuts a time range out of an audio file as mono WAV, preserving
// the source sample rate. Used to build per-segment reference clips.
func (t *Toolset) ExtractClip(ctx context.Context, source string, startSec, durationSec float64, dest string) error {
	if durationSec <= 0 {
		return fmt.Errorf("extract clip: invalid duration %g", durationSec)
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", formatSeconds(startSec),
		"-t", formatSeconds(durationSec),
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		dest,
	}
	if _, err := t.run(ctx, t.FFmpeg, args...); err != nil {
		return fmt.Errorf("ffmpeg extract clip: %w", err)
	}
	return nil
}

// Duration returns the container duration in seconds.
func (t *Toolset) Duration(ctx context.Context, source string) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		source,
	}
	output, err := t.run(ctx, t.FFprobe, args...)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w", err)
	}

	var probe struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(output, &probe); err != nil {
		return 0, fmt.Errorf("ffprobe duration: parse output: %w", err)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(probe.Format.Duration), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: parse value %q: %w", probe.Format.Duration, err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("ffprobe duration: non-positive duration %g", duration)
	}
	return duration, nil
}

// Mux replaces the audio of the source video with the dubbed track, copying
// the video stream untouched.
func (t *Toolset) Mux(ctx context.Context, video, dubbedAudio, dest string) error {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", video,
		"-i", dubbedAudio,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		dest,
	}
	if _, err := t.run(ctx, t.FFmpeg, args...); err != nil {
		return fmt.Errorf("ffmpeg mux: %w", err)
	}
	return nil
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
