package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := Default()
	cfg.Translation.APIKey = "test-key"
	return &cfg
}

func TestDefaultValidatesWithAPIKey(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("default config with api key must validate: %v", err)
	}
}

func TestValidateRequiresAPIKey(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing api key")
	}
	if !strings.Contains(err.Error(), "translation.api_key") {
		t.Errorf("error %q does not name the offending setting", err)
	}
}

func TestValidateRejectsBadTimeline(t *testing.T) {
	cfg := validConfig()
	cfg.Timeline.MaxStretchRatio = 0.5
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for max_stretch_ratio below 1")
	}
}

func TestValidateRejectsUnknownLanguage(t *testing.T) {
	cfg := validConfig()
	cfg.Languages.Target = "klingon???"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unparseable language")
	}
}

func TestLoadLayersFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[logging]
level = "debug"

[timeline]
max_stretch_ratio = 1.8
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Timeline.MaxStretchRatio != 1.8 {
		t.Errorf("max_stretch_ratio = %v, want 1.8", cfg.Timeline.MaxStretchRatio)
	}
	// Untouched settings keep their defaults.
	if cfg.Translation.Model != defaultTranslationModel {
		t.Errorf("translation model = %q, want default", cfg.Translation.Model)
	}
}

func TestLoadMissingExplicitPathFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("explicitly named missing config must fail")
	}
}

func TestEnvOverridesAPIKey(t *testing.T) {
	t.Setenv("DUBFORGE_TRANSLATION_API_KEY", "env-key")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Translation.APIKey != "env-key" {
		t.Errorf("api key = %q, want env override", cfg.Translation.APIKey)
	}
}

func TestTimelineConfigMapping(t *testing.T) {
	cfg := validConfig()
	cfg.Timeline.MaxStretchRatio = 1.7
	cfg.Timeline.MaxShiftSeconds = 0.25

	tc := cfg.TimelineConfig()
	if tc.MaxStretchRatio != 1.7 {
		t.Errorf("MaxStretchRatio = %v", tc.MaxStretchRatio)
	}
	if tc.MaxShiftSeconds != 0.25 {
		t.Errorf("MaxShiftSeconds = %v", tc.MaxShiftSeconds)
	}
	// Settings with no TOML knob keep engine defaults.
	if tc.ArtifactPeakFraction != 0.8 {
		t.Errorf("ArtifactPeakFraction = %v, want engine default", tc.ArtifactPeakFraction)
	}
	if err := tc.Validate(); err != nil {
		t.Errorf("mapped config must validate: %v", err)
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	if err := WriteSample(path); err == nil {
		t.Error("second WriteSample must refuse to overwrite")
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("sample config must parse: %v", err)
	}
	if cfg.Transcription.Model != defaultWhisperXModel {
		t.Errorf("sample config changed defaults unexpectedly")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandPath("~/x"); got != filepath.Join(home, "x") {
		t.Errorf("ExpandPath(~/x) = %q", got)
	}
	if got := ExpandPath("/abs/path"); got != "/abs/path" {
		t.Errorf("ExpandPath(/abs/path) = %q", got)
	}
}
