// Package demucs separates audio into voice and background stems by running
// the Demucs source separation tool.
package demucs

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// DefaultModel is the Demucs model used when none is configured.
const DefaultModel = "htdemucs"

// DefaultCommand launches Demucs from the PATH.
const DefaultCommand = "demucs"

// Config captures runtime settings for stem separation.
type Config struct {
	// Command is the demucs executable (default "demucs").
	Command string
	// Model selects the separation model (default "htdemucs").
	Model string
}

// Stems holds the paths of a completed two-stem separation.
type Stems struct {
	// VocalsPath contains the isolated voice track.
	VocalsPath string
	// BackgroundPath contains everything except the voice.
	BackgroundPath string
}

// Service runs Demucs separations.
type Service struct {
	cfg           Config
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a separation service.
func NewService(cfg Config) *Service {
	if cfg.Command == "" {
		cfg.Command = DefaultCommand
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &Service{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Command returns the configured executable name for preflight checks.
func (s *Service) Command() string {
	return s.cfg.Command
}

func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Separate splits source into vocals and background stems under workDir and
// returns the resulting stem paths. Demucs lays output out as
// <workDir>/<model>/<source base>/{vocals,no_vocals}.wav.
func (s *Service) Separate(ctx context.Context, source, workDir string) (Stems, error) {
	var stems Stems
	if source == "" {
		return stems, fmt.Errorf("separate: source path required")
	}
	if workDir == "" {
		return stems, fmt.Errorf("separate: workDir required")
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return stems, fmt.Errorf("separate: ensure workDir: %w", err)
	}

	args := []string{
		"--two-stems", "vocals",
		"-n", s.cfg.Model,
		"-o", workDir,
		source,
	}
	if err := s.run(ctx, s.cfg.Command, args...); err != nil {
		return stems, fmt.Errorf("demucs: %w", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	stemDir := filepath.Join(workDir, s.cfg.Model, baseName)
	stems.VocalsPath = filepath.Join(stemDir, "vocals.wav")
	stems.BackgroundPath = filepath.Join(stemDir, "no_vocals.wav")

	for _, path := range []string{stems.VocalsPath, stems.BackgroundPath} {
		if _, err := os.Stat(path); err != nil {
			return Stems{}, fmt.Errorf("demucs: expected stem missing: %w", err)
		}
	}
	return stems, nil
}
