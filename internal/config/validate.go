package config

import (
	"errors"
	"fmt"

	"dubforge/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateTranslation(); err != nil {
		return err
	}
	if err := c.validateTimeline(); err != nil {
		return err
	}
	return c.validateLanguages()
}

func (c *Config) validatePaths() error {
	if c.Paths.StagingDir == "" {
		return errors.New("paths.staging_dir must be set")
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.QueuePollInterval <= 0 {
		return errors.New("workflow.queue_poll_interval must be positive")
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		return errors.New("workflow.error_retry_interval must be positive")
	}
	return nil
}

func (c *Config) validateTranslation() error {
	if c.Translation.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/dubforge/config.toml"
		}
		return fmt.Errorf("translation.api_key is required. Set DUBFORGE_TRANSLATION_API_KEY or edit %s (create with 'dubforge config init')", defaultPath)
	}
	if c.Translation.BatchSize <= 0 {
		return errors.New("translation.batch_size must be positive")
	}
	if c.Translation.TimeoutSeconds <= 0 {
		return errors.New("translation.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateTimeline() error {
	if c.Timeline.MaxStretchRatio < 1 {
		return errors.New("timeline.max_stretch_ratio must be at least 1")
	}
	if c.Timeline.StretchSafetyMargin < 1 {
		return errors.New("timeline.stretch_safety_margin must be at least 1")
	}
	if c.Timeline.MaxShiftSeconds < 0 {
		return errors.New("timeline.max_shift_seconds must not be negative")
	}
	if c.Timeline.DefaultVoiceBackgroundRatio <= 0 {
		return errors.New("timeline.default_voice_background_ratio must be positive")
	}
	return nil
}

func (c *Config) validateLanguages() error {
	if _, err := language.Normalize(c.Languages.Source); err != nil {
		return fmt.Errorf("languages.source: %w", err)
	}
	if _, err := language.Normalize(c.Languages.Target); err != nil {
		return fmt.Errorf("languages.target: %w", err)
	}
	return nil
}
