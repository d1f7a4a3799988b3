package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dubforge/internal/config"
	"dubforge/internal/logging"
	"dubforge/internal/media"
	"dubforge/internal/preflight"
	"dubforge/internal/queue"
	"dubforge/internal/services/demucs"
	"dubforge/internal/services/translator"
	"dubforge/internal/services/voiceclone"
	"dubforge/internal/services/whisperx"
	"dubforge/internal/stages"
	"dubforge/internal/timeline"
	"dubforge/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process the queue until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			runID := time.Now().UTC().Format("20060102T150405Z")
			logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("dubforge-%s.log", runID))
			logger, err := logging.New(logging.Options{
				Level:   cfg.Logging.Level,
				Format:  cfg.Logging.Format,
				Outputs: []string{"stdout", logPath},
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			if !skipPreflight {
				if err := runPreflight(cmd, cfg); err != nil {
					return err
				}
			}

			store, err := queue.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			stageSet, err := buildStageSet(cfg, logger)
			if err != nil {
				return err
			}

			manager := workflow.NewManager(cfg, store, logger, stageSet)
			if err := manager.Start(signalCtx); err != nil {
				return err
			}
			logger.Info("dubforge daemon started", "log", logPath)

			<-signalCtx.Done()
			logger.Info("dubforge daemon shutting down")
			manager.Stop()
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Start without running environment checks")
	return cmd
}

func runPreflight(cmd *cobra.Command, cfg *config.Config) error {
	out := cmd.OutOrStdout()
	failed := 0

	for _, dep := range preflight.CheckSystemDeps(cfg) {
		if dep.Available {
			continue
		}
		if dep.Optional {
			fmt.Fprintf(out, "warn: %s: %s\n", dep.Name, dep.Detail)
			continue
		}
		fmt.Fprintf(out, "missing: %s: %s (%s)\n", dep.Name, dep.Detail, dep.Description)
		failed++
	}
	for _, result := range preflight.RunAll(cmd.Context(), cfg) {
		if result.Passed {
			continue
		}
		fmt.Fprintf(out, "failed: %s: %s\n", result.Name, result.Detail)
		failed++
	}

	if failed > 0 {
		return fmt.Errorf("%d preflight check(s) failed (use --skip-preflight to override)", failed)
	}
	return nil
}

func buildStageSet(cfg *config.Config, logger *slog.Logger) (workflow.StageSet, error) {
	tools := media.NewToolset("", "")

	whisperSvc := whisperx.NewService(whisperx.Config{
		Model:       cfg.Transcription.Model,
		CUDAEnabled: cfg.Transcription.CUDAEnabled,
		VADMethod:   cfg.Transcription.VADMethod,
		HFToken:     cfg.Transcription.HFToken,
		Diarize:     cfg.Transcription.HFToken != "",
	})
	translateClient := translator.NewClient(translator.Config{
		APIKey:         cfg.Translation.APIKey,
		BaseURL:        cfg.Translation.BaseURL,
		Model:          cfg.Translation.Model,
		TimeoutSeconds: cfg.Translation.TimeoutSeconds,
		BatchSize:      cfg.Translation.BatchSize,
	})
	voiceSvc := voiceclone.NewService(voiceclone.Config{Command: cfg.Synthesis.Command})
	demucsSvc := demucs.NewService(demucs.Config{
		Command: cfg.Separation.Command,
		Model:   cfg.Separation.Model,
	})
	engine, err := timeline.NewEngine(cfg.TimelineConfig(), logger)
	if err != nil {
		return workflow.StageSet{}, fmt.Errorf("timeline engine: %w", err)
	}

	return workflow.StageSet{
		Separator:   stages.NewSeparator(cfg, logger, tools, demucsSvc),
		Transcriber: stages.NewTranscriber(cfg, logger, tools, whisperSvc),
		Translator:  stages.NewTranslator(cfg, logger, translateClient),
		Synthesizer: stages.NewSynthesizer(cfg, logger, tools, voiceSvc),
		Renderer:    stages.NewRenderer(cfg, logger, tools, engine),
	}, nil
}
