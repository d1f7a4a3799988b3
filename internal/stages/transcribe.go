package stages

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"

	"dubforge/internal/config"
	"dubforge/internal/language"
	"dubforge/internal/logging"
	"dubforge/internal/media"
	"dubforge/internal/queue"
	"dubforge/internal/segment"
	"dubforge/internal/services"
	"dubforge/internal/services/whisperx"
	"dubforge/internal/stage"
)

// Transcriber produces the word-timed segment document via WhisperX.
type Transcriber struct {
	cfg      *config.Config
	logger   *slog.Logger
	tools    *media.Toolset
	whisperx *whisperx.Service
}

// NewTranscriber constructs the transcription stage.
func NewTranscriber(cfg *config.Config, logger *slog.Logger, tools *media.Toolset, svc *whisperx.Service) *Transcriber {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Transcriber{
		cfg:      cfg,
		logger:   logger.With("component", "transcribe"),
		tools:    tools,
		whisperx: svc,
	}
}

// Prepare checks that the separation stage produced an audio mix.
func (t *Transcriber) Prepare(ctx context.Context, task *queue.Task) error {
	if task.AudioPath == "" {
		return services.Wrap(services.ErrValidation, "transcribe", "prepare",
			"Task has no extracted audio; rerun separation", nil)
	}
	return nil
}

// Execute transcribes the voice track and persists the segment document.
func (t *Transcriber) Execute(ctx context.Context, task *queue.Task) error {
	logger := logging.FromContext(ctx)
	stagingDir := TaskStagingDir(t.cfg, task)

	lang, err := language.Normalize(task.SourceLanguage)
	if err != nil {
		return services.Wrap(services.ErrValidation, "transcribe", "resolve language", "", err)
	}

	// Transcribe the isolated voice when stems exist; music and effects in
	// the full mix degrade word timing.
	input := task.AudioPath
	if task.VocalStemPath != "" {
		input = task.VocalStemPath
	}
	whisperInput := filepath.Join(stagingDir, whisperInputFileName)
	if err := t.tools.ExtractAudio(ctx, input, whisperInput, transcriptionSampleRate); err != nil {
		return services.Wrap(services.ErrExternalTool, "transcribe", "downsample audio", "", err)
	}

	doc, err := t.whisperx.Transcribe(ctx, whisperInput, stagingDir, lang.Code)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "transcribe", "run whisperx", "", err)
	}
	if len(doc.Segments) == 0 {
		return services.Wrap(services.ErrValidation, "transcribe", "inspect output",
			"WhisperX produced no segments; source may have no speech", nil)
	}

	for i := range doc.Segments {
		doc.Segments[i] = segment.Normalize(doc.Segments[i], doc.Words)
	}

	issues := segment.Validate(doc.Segments, doc.Words)
	for _, issue := range issues {
		logger.Warn("segment issue", "detail", issue.String())
	}
	if segment.HasErrors(issues) {
		return services.Wrap(services.ErrValidation, "transcribe", "validate segments",
			fmt.Sprintf("Transcription produced %d validation issue(s); edit segments and resume", len(issues)), nil)
	}

	segmentsPath := filepath.Join(stagingDir, segmentsFileName)
	if err := segment.SaveDocument(segmentsPath, doc); err != nil {
		return services.Wrap(services.ErrTransient, "transcribe", "save segments", "", err)
	}
	task.SegmentsPath = segmentsPath

	logger.Info("transcription complete",
		"segments", len(doc.Segments),
		"words", len(doc.Words),
		"language", lang.Code,
	)
	return nil
}

// HealthCheck reports readiness for the transcription stage.
func (t *Transcriber) HealthCheck(ctx context.Context) stage.Health {
	const name = "transcribe"
	if t == nil || t.cfg == nil || t.tools == nil || t.whisperx == nil {
		return stage.Unhealthy(name, "stage not configured")
	}
	if _, err := exec.LookPath(whisperx.UVXCommand); err != nil {
		return stage.Unhealthy(name, "uvx not found")
	}
	return stage.Healthy(name)
}
