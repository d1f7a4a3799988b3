package preflight

import (
	"context"

	"dubforge/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// MinFreeDiskBytes is the working-space floor for the staging directory.
// Stem separation and per-segment clips can multiply the source size several
// times over.
const MinFreeDiskBytes = 2 << 30

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir))
	results = append(results, CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir))
	results = append(results, CheckDiskSpace("Staging disk space", cfg.Paths.StagingDir, MinFreeDiskBytes))

	results = append(results, CheckTranslator(ctx, cfg.Translation))

	return results
}

// SystemRequirements lists the external binaries this config needs.
func SystemRequirements(cfg *config.Config) []Requirement {
	requirements := []Requirement{
		{
			Name:        "FFmpeg",
			Command:     "ffmpeg",
			Description: "Required for audio extraction and muxing",
		},
		{
			Name:        "FFprobe",
			Command:     "ffprobe",
			Description: "Required for media inspection",
		},
		{
			Name:        "uvx",
			Command:     "uvx",
			Description: "Required for WhisperX-driven transcription",
		},
	}
	if cmd := firstField(cfg.Synthesis.Command); cmd != "" && cmd != "uvx" {
		requirements = append(requirements, Requirement{
			Name:        "Voice synthesis",
			Command:     cmd,
			Description: "Required for voice cloning",
		})
	}
	if cfg.Separation.Enabled {
		cmd := cfg.Separation.Command
		if cmd == "" {
			cmd = "demucs"
		}
		requirements = append(requirements, Requirement{
			Name:        "Demucs",
			Command:     cmd,
			Description: "Required for voice/background stem separation",
		})
	}
	return requirements
}

// CheckSystemDeps evaluates all system-level binary dependencies. Both the
// daemon and the CLI status command use this to avoid duplicating the
// requirements list.
func CheckSystemDeps(cfg *config.Config) []BinaryStatus {
	return CheckBinaries(SystemRequirements(cfg))
}
