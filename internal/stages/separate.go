package stages

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"dubforge/internal/config"
	"dubforge/internal/logging"
	"dubforge/internal/media"
	"dubforge/internal/queue"
	"dubforge/internal/services"
	"dubforge/internal/services/demucs"
	"dubforge/internal/stage"
)

// Separator extracts the full audio mix and, when enabled, splits it into
// voice and background stems.
type Separator struct {
	cfg     *config.Config
	logger  *slog.Logger
	tools   *media.Toolset
	demucs  *demucs.Service
	enabled bool
}

// NewSeparator constructs the separation stage.
func NewSeparator(cfg *config.Config, logger *slog.Logger, tools *media.Toolset, svc *demucs.Service) *Separator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Separator{
		cfg:     cfg,
		logger:  logger.With("component", "separate"),
		tools:   tools,
		demucs:  svc,
		enabled: cfg.Separation.Enabled,
	}
}

// Prepare validates the source file and lays out the staging directory.
func (s *Separator) Prepare(ctx context.Context, task *queue.Task) error {
	info, err := os.Stat(task.SourcePath)
	if err != nil {
		return services.Wrap(services.ErrValidation, "separate", "stat source",
			"Source media file is missing or unreadable", err)
	}
	if info.IsDir() {
		return services.Wrap(services.ErrValidation, "separate", "stat source",
			"Source path is a directory", nil)
	}
	if task.Title == "" {
		base := filepath.Base(task.SourcePath)
		task.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if err := os.MkdirAll(TaskStagingDir(s.cfg, task), 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "separate", "create staging dir", "", err)
	}
	return nil
}

// Execute extracts the mono mix and optionally the demucs stems.
func (s *Separator) Execute(ctx context.Context, task *queue.Task) error {
	logger := logging.FromContext(ctx)
	stagingDir := TaskStagingDir(s.cfg, task)

	audioPath := filepath.Join(stagingDir, audioFileName)
	if err := s.tools.ExtractAudio(ctx, task.SourcePath, audioPath, workingSampleRate); err != nil {
		return services.Wrap(services.ErrExternalTool, "separate", "extract audio",
			"Failed to extract the audio track with ffmpeg", err)
	}
	task.AudioPath = audioPath

	if !s.enabled {
		logger.Info("stem separation disabled, using full mix as bed")
		return nil
	}

	stems, err := s.demucs.Separate(ctx, audioPath, stagingDir)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "separate", "run demucs",
			"Stem separation failed", err)
	}
	task.VocalStemPath = stems.VocalsPath
	task.BackgroundStemPath = stems.BackgroundPath
	logger.Info("stems separated",
		"vocals", stems.VocalsPath,
		"background", stems.BackgroundPath,
	)
	return nil
}

// HealthCheck reports readiness for the separation stage.
func (s *Separator) HealthCheck(ctx context.Context) stage.Health {
	const name = "separate"
	if s == nil || s.cfg == nil || s.tools == nil {
		return stage.Unhealthy(name, "stage not configured")
	}
	if _, err := exec.LookPath(s.tools.FFmpeg); err != nil {
		return stage.Unhealthy(name, "ffmpeg not found")
	}
	if s.enabled {
		if _, err := exec.LookPath(s.demucs.Command()); err != nil {
			return stage.Unhealthy(name, "demucs not found")
		}
	}
	return stage.Healthy(name)
}
