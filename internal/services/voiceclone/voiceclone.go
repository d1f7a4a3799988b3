// Package voiceclone synthesizes translated speech in the original speaker's
// voice by running an external zero-shot TTS command.
//
// The command is a template with placeholders so operators can swap TTS
// engines without code changes: {text} is the line to speak, {ref_audio} the
// reference clip of the original speaker, {output} the destination WAV, and
// {language} the target language code.
package voiceclone

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// DefaultCommand runs F5-TTS through uvx.
const DefaultCommand = "uvx f5-tts_infer-cli --ref_audio {ref_audio} --gen_text {text} --output_file {output}"

// Config captures runtime settings for voice cloning.
type Config struct {
	// Command is the synthesis command template.
	Command string
}

// Request describes one clip to synthesize.
type Request struct {
	// Text is the translated line to speak.
	Text string
	// ReferenceAudioPath points at the original speaker's voice sample.
	ReferenceAudioPath string
	// OutputPath is where the synthesized WAV lands.
	OutputPath string
	// LanguageCode is the target language (engine-dependent whether used).
	LanguageCode string
}

// Service synthesizes cloned voice clips.
type Service struct {
	cfg           Config
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a voice cloning service.
func NewService(cfg Config) *Service {
	if strings.TrimSpace(cfg.Command) == "" {
		cfg.Command = DefaultCommand
	}
	return &Service{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Command returns the first word of the template for preflight checks.
func (s *Service) Command() string {
	fields := strings.Fields(s.cfg.Command)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
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

// Synthesize renders one cloned clip. The output directory is created if
// needed and the command must leave a non-empty file at OutputPath.
func (s *Service) Synthesize(ctx context.Context, req Request) error {
	if strings.TrimSpace(req.Text) == "" {
		return fmt.Errorf("synthesize: text required")
	}
	if req.ReferenceAudioPath == "" {
		return fmt.Errorf("synthesize: reference audio required")
	}
	if req.OutputPath == "" {
		return fmt.Errorf("synthesize: output path required")
	}
	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return fmt.Errorf("synthesize: ensure output dir: %w", err)
	}

	name, args, err := s.expandCommand(req)
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}
	if err := s.run(ctx, name, args...); err != nil {
		return fmt.Errorf("voice clone: %w", err)
	}

	info, err := os.Stat(req.OutputPath)
	if err != nil {
		return fmt.Errorf("voice clone: output missing: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("voice clone: output empty: %s", req.OutputPath)
	}
	return nil
}

// expandCommand substitutes placeholders field by field. Substitution after
// splitting keeps paths and text with spaces intact as single arguments.
func (s *Service) expandCommand(req Request) (string, []string, error) {
	fields := strings.Fields(s.cfg.Command)
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("empty command template")
	}

	replacer := strings.NewReplacer(
		"{text}", req.Text,
		"{ref_audio}", req.ReferenceAudioPath,
		"{output}", req.OutputPath,
		"{language}", req.LanguageCode,
	)
	expanded := make([]string, len(fields))
	for i, field := range fields {
		expanded[i] = replacer.Replace(field)
	}
	return expanded[0], expanded[1:], nil
}
