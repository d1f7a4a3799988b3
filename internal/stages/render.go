package stages

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"dubforge/internal/config"
	"dubforge/internal/logging"
	"dubforge/internal/media"
	"dubforge/internal/queue"
	"dubforge/internal/segment"
	"dubforge/internal/services"
	"dubforge/internal/stage"
	"dubforge/internal/textutil"
	"dubforge/internal/timeline"
)

// Renderer assembles the cloned clips into the dubbed track and muxes it back
// into the source container.
type Renderer struct {
	cfg    *config.Config
	logger *slog.Logger
	tools  *media.Toolset
	engine *timeline.Engine
}

// NewRenderer constructs the render stage.
func NewRenderer(cfg *config.Config, logger *slog.Logger, tools *media.Toolset, engine *timeline.Engine) *Renderer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Renderer{
		cfg:    cfg,
		logger: logger.With("component", "render"),
		tools:  tools,
		engine: engine,
	}
}

// Prepare checks the synthesis output and the output directory.
func (r *Renderer) Prepare(ctx context.Context, task *queue.Task) error {
	if task.SegmentsPath == "" {
		return services.Wrap(services.ErrValidation, "render", "prepare",
			"Task has no segment document; rerun transcription", nil)
	}
	if task.AudioPath == "" {
		return services.Wrap(services.ErrValidation, "render", "prepare",
			"Task has no extracted audio; rerun separation", nil)
	}
	if err := os.MkdirAll(r.cfg.Paths.OutputDir, 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "render", "create output dir", "", err)
	}
	return nil
}

// Execute renders the dub track and muxes it into the final container.
func (r *Renderer) Execute(ctx context.Context, task *queue.Task) error {
	logger := logging.FromContext(ctx)
	stagingDir := TaskStagingDir(r.cfg, task)

	doc, err := segment.LoadDocument(task.SegmentsPath)
	if err != nil {
		return services.Wrap(services.ErrValidation, "render", "load segments", "", err)
	}

	totalDuration, err := r.tools.Duration(ctx, task.AudioPath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "render", "probe duration", "", err)
	}

	placements := make([]timeline.Placement, 0, len(doc.Segments))
	for _, seg := range doc.Segments {
		placements = append(placements, timeline.Placement{
			Start:        seg.Start,
			End:          seg.End,
			AudioPath:    seg.ClonedAudioPath,
			Text:         seg.TranslatedText,
			OriginalText: seg.Text,
		})
	}

	// The background bed is the full mix unless separation isolated one.
	backgroundPath := task.AudioPath
	if task.BackgroundStemPath != "" {
		backgroundPath = task.BackgroundStemPath
	}

	renderedPath := filepath.Join(stagingDir, dubbedFileName)
	result, err := r.engine.Render(timeline.Request{
		TotalDuration:      totalDuration,
		Placements:         placements,
		BackgroundPath:     backgroundPath,
		VoiceStemPath:      task.VocalStemPath,
		BackgroundStemPath: task.BackgroundStemPath,
		OutputPath:         renderedPath,
	})
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "render", "assemble timeline", "", err)
	}
	task.RenderedPath = result.OutputPath

	for _, warning := range result.Warnings {
		logger.Warn("render warning", "detail", warning.String())
	}

	finalPath := filepath.Join(r.cfg.Paths.OutputDir,
		textutil.SanitizeFilename(task.Title)+"_dubbed"+filepath.Ext(task.SourcePath))
	if err := r.tools.Mux(ctx, task.SourcePath, result.OutputPath, finalPath); err != nil {
		return services.Wrap(services.ErrExternalTool, "render", "mux output", "", err)
	}
	task.FinalPath = finalPath
	task.ProgressMessage = fmt.Sprintf("rendered %d/%d segments", result.SegmentsProcessed, len(placements))

	logger.Info("render complete",
		"output", finalPath,
		"segments_processed", result.SegmentsProcessed,
		"warnings", len(result.Warnings),
		"sample_rate", result.SampleRate,
	)
	return nil
}

// HealthCheck reports readiness for the render stage.
func (r *Renderer) HealthCheck(ctx context.Context) stage.Health {
	const name = "render"
	if r == nil || r.cfg == nil || r.tools == nil || r.engine == nil {
		return stage.Unhealthy(name, "stage not configured")
	}
	if _, err := exec.LookPath(r.tools.FFmpeg); err != nil {
		return stage.Unhealthy(name, "ffmpeg not found")
	}
	return stage.Healthy(name)
}
