package stages

import (
	"context"
	"log/slog"

	"dubforge/internal/config"
	"dubforge/internal/language"
	"dubforge/internal/logging"
	"dubforge/internal/queue"
	"dubforge/internal/segment"
	"dubforge/internal/services"
	"dubforge/internal/services/translator"
	"dubforge/internal/stage"
)

// Translator fills in translated text for every segment.
type Translator struct {
	cfg    *config.Config
	logger *slog.Logger
	client *translator.Client
}

// NewTranslator constructs the translation stage.
func NewTranslator(cfg *config.Config, logger *slog.Logger, client *translator.Client) *Translator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Translator{
		cfg:    cfg,
		logger: logger.With("component", "translate"),
		client: client,
	}
}

// Prepare checks the transcription output exists.
func (t *Translator) Prepare(ctx context.Context, task *queue.Task) error {
	if task.SegmentsPath == "" {
		return services.Wrap(services.ErrValidation, "translate", "prepare",
			"Task has no segment document; rerun transcription", nil)
	}
	return nil
}

// Execute translates all segments and rewrites the segment document.
func (t *Translator) Execute(ctx context.Context, task *queue.Task) error {
	logger := logging.FromContext(ctx)

	source, err := language.Normalize(task.SourceLanguage)
	if err != nil {
		return services.Wrap(services.ErrValidation, "translate", "resolve source language", "", err)
	}
	target, err := language.Normalize(task.TargetLanguage)
	if err != nil {
		return services.Wrap(services.ErrValidation, "translate", "resolve target language", "", err)
	}

	doc, err := segment.LoadDocument(task.SegmentsPath)
	if err != nil {
		return services.Wrap(services.ErrValidation, "translate", "load segments", "", err)
	}
	if len(doc.Segments) == 0 {
		return services.Wrap(services.ErrValidation, "translate", "load segments",
			"Segment document is empty", nil)
	}

	if err := t.client.TranslateSegments(ctx, doc.Segments, source.Name, target.Name); err != nil {
		return services.Wrap(services.ErrExternalTool, "translate", "call translation api", "", err)
	}

	if err := segment.SaveDocument(task.SegmentsPath, doc); err != nil {
		return services.Wrap(services.ErrTransient, "translate", "save segments", "", err)
	}

	logger.Info("translation complete",
		"segments", len(doc.Segments),
		"source", source.Code,
		"target", target.Code,
	)
	return nil
}

// HealthCheck reports readiness for the translation stage.
func (t *Translator) HealthCheck(ctx context.Context) stage.Health {
	const name = "translate"
	if t == nil || t.cfg == nil || t.client == nil {
		return stage.Unhealthy(name, "stage not configured")
	}
	if t.cfg.Translation.APIKey == "" {
		return stage.Unhealthy(name, "translation api key missing")
	}
	return stage.Healthy(name)
}
