package config

const (
	defaultStagingDir         = "~/.local/share/dubforge/staging"
	defaultOutputDir          = "~/dubforge/output"
	defaultLogDir             = "~/.local/share/dubforge/logs"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultQueuePollInterval  = 5
	defaultErrorRetryInterval = 10

	defaultWhisperXModel     = "large-v3"
	defaultWhisperXVADMethod = "silero"

	defaultTranslationBaseURL = "https://openrouter.ai/api/v1/chat/completions"
	defaultTranslationModel   = "google/gemini-3-flash-preview"
	defaultTranslationTimeout = 120
	defaultTranslationBatch   = 20

	defaultSynthesisCommand = "uvx f5-tts_infer-cli --ref_audio {ref_audio} --gen_text {text} --output_file {output}"
	defaultSynthesisTimeout = 300

	defaultSeparationCommand = "demucs"
	defaultSeparationModel   = "htdemucs"
	defaultSeparationTimeout = 1800

	defaultSourceLanguage = "en"
	defaultTargetLanguage = "es"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
		},
		Transcription: Transcription{
			Model:     defaultWhisperXModel,
			VADMethod: defaultWhisperXVADMethod,
		},
		Translation: Translation{
			BaseURL:        defaultTranslationBaseURL,
			Model:          defaultTranslationModel,
			TimeoutSeconds: defaultTranslationTimeout,
			BatchSize:      defaultTranslationBatch,
		},
		Synthesis: Synthesis{
			Command:        defaultSynthesisCommand,
			TimeoutSeconds: defaultSynthesisTimeout,
		},
		Separation: Separation{
			Enabled:        true,
			Command:        defaultSeparationCommand,
			Model:          defaultSeparationModel,
			TimeoutSeconds: defaultSeparationTimeout,
		},
		Timeline: Timeline{
			StretchSafetyMargin:         1.1,
			MaxStretchRatio:             2.0,
			ChainedStretchThreshold:     1.2,
			MaxShiftSeconds:             0.5,
			TailFadeSeconds:             0.020,
			LowPassCutoffHz:             8000,
			MaxVoiceBoost:               1.2,
			DefaultVoiceBackgroundRatio: 2.0,
		},
		Languages: Languages{
			Source: defaultSourceLanguage,
			Target: defaultTargetLanguage,
		},
	}
}
