package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	OutputDir  string `toml:"output_dir"`
	LogDir     string `toml:"log_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Workflow contains daemon timing configuration.
type Workflow struct {
	QueuePollInterval  int `toml:"queue_poll_interval"`
	ErrorRetryInterval int `toml:"error_retry_interval"`
}

// Transcription configures the WhisperX collaborator.
type Transcription struct {
	Model       string `toml:"model"`
	CUDAEnabled bool   `toml:"cuda_enabled"`
	VADMethod   string `toml:"vad_method"`
	HFToken     string `toml:"hf_token"`
}

// Translation configures the chat-completions translation collaborator.
type Translation struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	BatchSize      int    `toml:"batch_size"`
}

// Synthesis configures the external voice-clone service.
type Synthesis struct {
	Command        string `toml:"command"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Separation configures the source separation collaborator.
type Separation struct {
	Enabled        bool   `toml:"enabled"`
	Command        string `toml:"command"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeline contains the placement engine tunables.
type Timeline struct {
	StretchSafetyMargin         float64 `toml:"stretch_safety_margin"`
	MaxStretchRatio             float64 `toml:"max_stretch_ratio"`
	ChainedStretchThreshold     float64 `toml:"chained_stretch_threshold"`
	MaxShiftSeconds             float64 `toml:"max_shift_seconds"`
	TailFadeSeconds             float64 `toml:"tail_fade_seconds"`
	LowPassCutoffHz             float64 `toml:"low_pass_cutoff_hz"`
	MaxVoiceBoost               float64 `toml:"max_voice_boost"`
	DefaultVoiceBackgroundRatio float64 `toml:"default_voice_background_ratio"`
}

// Languages holds default source/target language settings.
type Languages struct {
	Source string `toml:"source"`
	Target string `toml:"target"`
}

// Config is the root configuration document.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Logging       Logging       `toml:"logging"`
	Workflow      Workflow      `toml:"workflow"`
	Transcription Transcription `toml:"transcription"`
	Translation   Translation   `toml:"translation"`
	Synthesis     Synthesis     `toml:"synthesis"`
	Separation    Separation    `toml:"separation"`
	Timeline      Timeline      `toml:"timeline"`
	Languages     Languages     `toml:"languages"`
}

// DefaultConfigPath returns the canonical config file location.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "dubforge", "config.toml"), nil
}

// Load reads the config file at path (or the default location when path is
// empty), layered over defaults. A missing file yields pure defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	resolved := path
	if resolved == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		resolved = defaultPath
	}
	resolved = ExpandPath(resolved)

	data, err := os.ReadFile(resolved)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if path != "" {
			return nil, fmt.Errorf("config file %s does not exist", resolved)
		}
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.expandPaths()
	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("DUBFORGE_TRANSLATION_API_KEY"); key != "" {
		c.Translation.APIKey = key
	}
	if token := os.Getenv("DUBFORGE_HF_TOKEN"); token != "" {
		c.Transcription.HFToken = token
	}
}

func (c *Config) expandPaths() {
	c.Paths.StagingDir = ExpandPath(c.Paths.StagingDir)
	c.Paths.OutputDir = ExpandPath(c.Paths.OutputDir)
	c.Paths.LogDir = ExpandPath(c.Paths.LogDir)
}

// ExpandPath resolves a leading ~ against the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(path, "~"), "/"))
	}
	return path
}

// EnsureDirectories creates the staging, output, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.OutputDir, c.Paths.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// WriteSample writes the annotated sample config to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	resolved := ExpandPath(path)
	if _, err := os.Stat(resolved); err == nil {
		return fmt.Errorf("config file %s already exists", resolved)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(resolved, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
