package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"dubforge/internal/logging"
	"dubforge/internal/media"
	"dubforge/internal/queue"
	"dubforge/internal/stages"
	"dubforge/internal/tasklock"
	"dubforge/internal/timeline"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "render <taskID>",
		Short: "Render the dubbed track for a task without the daemon",
		Long: "Runs the placement engine and muxing for one task directly. Useful\n" +
			"for re-rendering after segment edits or timeline tuning without\n" +
			"waiting for the workflow loop.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.New(logging.Options{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			engine, err := timeline.NewEngine(cfg.TimelineConfig(), logger)
			if err != nil {
				return fmt.Errorf("timeline engine: %w", err)
			}
			renderer := stages.NewRenderer(cfg, logger, media.NewToolset("", ""), engine)

			return ctx.withStore(func(store *queue.Store) error {
				task, err := store.GetByID(cmd.Context(), taskID)
				if err != nil {
					return err
				}

				lock, err := tasklock.Acquire(filepath.Join(cfg.Paths.StagingDir, "locks"), taskID)
				if err != nil {
					return err
				}
				defer lock.Release()

				if err := renderer.Prepare(cmd.Context(), task); err != nil {
					return err
				}
				if err := renderer.Execute(cmd.Context(), task); err != nil {
					return err
				}
				if task.Status == queue.StatusRendering || task.Status == queue.StatusSynthesized {
					task.Status = queue.StatusCompleted
				}
				if err := store.Update(cmd.Context(), task); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Rendered task %d -> %s\n", task.ID, task.FinalPath)
				return nil
			})
		},
	}
}
