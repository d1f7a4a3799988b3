package whisperx

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"dubforge/internal/segment"
)

// Service provides WhisperX transcription capabilities.
type Service struct {
	cfg           Config
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a WhisperX service with the given configuration.
func NewService(cfg Config) *Service {
	return &Service{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// SetVADMethod updates the VAD method at runtime (used when HF token validation fails).
func (s *Service) SetVADMethod(method string) {
	s.cfg.VADMethod = method
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	if s.cfg.Model != "" {
		return s.cfg.Model
	}
	return DefaultModel
}

// CUDAEnabled returns whether CUDA is enabled.
func (s *Service) CUDAEnabled() bool {
	return s.cfg.CUDAEnabled
}

func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec

	// Torch 2.6 changed torch.load default to weights_only=true, breaking
	// WhisperX/pyannote. Force legacy behavior so checkpoints still load.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Transcribe transcribes an audio file and returns the parsed segment
// document. The source should be a mono 16kHz WAV; outputDir is where
// WhisperX writes its JSON output.
func (s *Service) Transcribe(ctx context.Context, source, outputDir, languageCode string) (*segment.Document, error) {
	if source == "" {
		return nil, fmt.Errorf("transcribe: source path required")
	}
	if outputDir == "" {
		outputDir = filepath.Dir(source)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("transcribe: ensure output dir: %w", err)
	}

	args := s.buildArgs(source, outputDir, languageCode)
	if err := s.run(ctx, UVXCommand, args...); err != nil {
		return nil, fmt.Errorf("whisperx: %w", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	jsonPath := filepath.Join(outputDir, baseName+".json")
	doc, err := LoadDocument(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("whisperx: load output: %w", err)
	}
	doc.Language = languageCode
	return doc, nil
}

// buildArgs constructs the uvx command arguments for WhisperX.
func (s *Service) buildArgs(source, outputDir, languageCode string) []string {
	args := make([]string, 0, 32)

	if s.cfg.CUDAEnabled {
		args = append(args,
			"--index-url", CUDAIndexURL,
			"--extra-index-url", PypiIndexURL,
		)
	} else {
		args = append(args, "--index-url", PypiIndexURL)
	}

	model := s.cfg.Model
	if model == "" {
		model = DefaultModel
	}

	args = append(args,
		"whisperx",
		source,
		"--model", model,
		"--batch_size", BatchSize,
		"--output_dir", outputDir,
		"--output_format", OutputFormat,
		"--segment_resolution", SegmentResolution,
		"--chunk_size", ChunkSize,
		"--vad_onset", VADOnset,
		"--vad_offset", VADOffset,
		"--beam_size", BeamSize,
		"--best_of", BestOf,
		"--temperature", Temperature,
		"--patience", Patience,
	)

	vadMethod := s.cfg.VADMethod
	if vadMethod == "" {
		vadMethod = VADMethodSilero
	}
	args = append(args, "--vad_method", vadMethod)
	if vadMethod == VADMethodPyannote && s.cfg.HFToken != "" {
		args = append(args, "--hf_token", s.cfg.HFToken)
	}
	if s.cfg.Diarize && s.cfg.HFToken != "" {
		args = append(args, "--diarize")
	}

	if languageCode != "" {
		args = append(args, "--language", languageCode)
	}

	if s.cfg.CUDAEnabled {
		args = append(args, "--device", CUDADevice)
	} else {
		args = append(args, "--device", CPUDevice, "--compute_type", CPUComputeType)
	}

	return args
}

type payloadWord struct {
	Word    string  `json:"word"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Score   float64 `json:"score"`
	Speaker string  `json:"speaker"`
}

type payloadSegment struct {
	Text    string        `json:"text"`
	Start   float64       `json:"start"`
	End     float64       `json:"end"`
	Speaker string        `json:"speaker"`
	Words   []payloadWord `json:"words"`
}

type payload struct {
	Segments []payloadSegment `json:"segments"`
	Language string           `json:"language"`
}

// LoadDocument parses a WhisperX JSON output file into a segment document
// with dense sequential ids and a flat word pool.
func LoadDocument(jsonPath string) (*segment.Document, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	return ParseDocument(data)
}

// ParseDocument converts raw WhisperX JSON into a segment document.
func ParseDocument(data []byte) (*segment.Document, error) {
	var parsed payload
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse whisperx json: %w", err)
	}

	doc := &segment.Document{Language: parsed.Language}
	for i, ps := range parsed.Segments {
		seg := segment.Segment{
			ID:        uint32(i),
			Start:     ps.Start,
			End:       ps.End,
			Text:      strings.TrimSpace(ps.Text),
			SpeakerID: ps.Speaker,
		}
		for _, pw := range ps.Words {
			word := segment.Word{
				Text:       pw.Word,
				Start:      pw.Start,
				End:        pw.End,
				Confidence: pw.Score,
			}
			seg.Words = append(seg.Words, word)
			doc.Words = append(doc.Words, word)
		}
		doc.Segments = append(doc.Segments, seg)
	}
	return doc, nil
}
