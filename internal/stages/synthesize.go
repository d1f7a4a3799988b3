package stages

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"dubforge/internal/config"
	"dubforge/internal/language"
	"dubforge/internal/logging"
	"dubforge/internal/media"
	"dubforge/internal/queue"
	"dubforge/internal/segment"
	"dubforge/internal/services"
	"dubforge/internal/services/voiceclone"
	"dubforge/internal/stage"
)

// Synthesizer cuts a reference clip per segment and synthesizes the
// translated line in the original speaker's voice.
type Synthesizer struct {
	cfg    *config.Config
	logger *slog.Logger
	tools  *media.Toolset
	voice  *voiceclone.Service
}

// NewSynthesizer constructs the synthesis stage.
func NewSynthesizer(cfg *config.Config, logger *slog.Logger, tools *media.Toolset, svc *voiceclone.Service) *Synthesizer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Synthesizer{
		cfg:    cfg,
		logger: logger.With("component", "synthesize"),
		tools:  tools,
		voice:  svc,
	}
}

// Prepare checks the translated segment document exists and creates the
// clips directory.
func (s *Synthesizer) Prepare(ctx context.Context, task *queue.Task) error {
	if task.SegmentsPath == "" {
		return services.Wrap(services.ErrValidation, "synthesize", "prepare",
			"Task has no segment document; rerun transcription", nil)
	}
	if err := os.MkdirAll(ClipsDir(s.cfg, task), 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "synthesize", "create clips dir", "", err)
	}
	return nil
}

// Execute synthesizes one cloned clip per segment.
func (s *Synthesizer) Execute(ctx context.Context, task *queue.Task) error {
	logger := logging.FromContext(ctx)
	clipsDir := ClipsDir(s.cfg, task)

	target, err := language.Normalize(task.TargetLanguage)
	if err != nil {
		return services.Wrap(services.ErrValidation, "synthesize", "resolve target language", "", err)
	}

	doc, err := segment.LoadDocument(task.SegmentsPath)
	if err != nil {
		return services.Wrap(services.ErrValidation, "synthesize", "load segments", "", err)
	}

	// Reference clips come from the isolated voice when stems exist so the
	// cloner does not imitate music or effects.
	voiceSource := task.AudioPath
	if task.VocalStemPath != "" {
		voiceSource = task.VocalStemPath
	}

	for i := range doc.Segments {
		seg := &doc.Segments[i]
		if seg.TranslatedText == "" {
			return services.Wrap(services.ErrValidation, "synthesize", "inspect segments",
				fmt.Sprintf("Segment %d has no translation; rerun translation", seg.ID), nil)
		}

		refPath := ReferenceClipPath(clipsDir, seg.ID)
		if err := s.tools.ExtractClip(ctx, voiceSource, seg.Start, seg.Duration(), refPath); err != nil {
			return services.Wrap(services.ErrExternalTool, "synthesize", "extract reference clip",
				fmt.Sprintf("segment %d", seg.ID), err)
		}
		seg.ReferenceAudioPath = refPath

		clonedPath := ClonedClipPath(clipsDir, seg.ID)
		err := s.voice.Synthesize(ctx, voiceclone.Request{
			Text:               seg.TranslatedText,
			ReferenceAudioPath: refPath,
			OutputPath:         clonedPath,
			LanguageCode:       target.Code,
		})
		if err != nil {
			return services.Wrap(services.ErrExternalTool, "synthesize", "clone voice",
				fmt.Sprintf("segment %d", seg.ID), err)
		}
		seg.ClonedAudioPath = clonedPath

		task.ProgressPercent = float64(i+1) / float64(len(doc.Segments)) * 100
		task.ProgressMessage = fmt.Sprintf("synthesized %d/%d segments", i+1, len(doc.Segments))
	}

	if err := segment.SaveDocument(task.SegmentsPath, doc); err != nil {
		return services.Wrap(services.ErrTransient, "synthesize", "save segments", "", err)
	}

	logger.Info("synthesis complete", "segments", len(doc.Segments))
	return nil
}

// HealthCheck reports readiness for the synthesis stage.
func (s *Synthesizer) HealthCheck(ctx context.Context) stage.Health {
	const name = "synthesize"
	if s == nil || s.cfg == nil || s.tools == nil || s.voice == nil {
		return stage.Unhealthy(name, "stage not configured")
	}
	if cmd := s.voice.Command(); cmd != "" {
		if _, err := exec.LookPath(cmd); err != nil {
			return stage.Unhealthy(name, fmt.Sprintf("synthesis command %q not found", cmd))
		}
	}
	return stage.Healthy(name)
}
