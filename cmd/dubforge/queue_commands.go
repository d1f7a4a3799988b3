package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"dubforge/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the dubbing queue",
	}

	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	queueCmd.AddCommand(newQueueHealthCommand(ctx))
	queueCmd.AddCommand(newQueueRetryCommand(ctx))

	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List queued tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				tasks, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(tasks) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}

				rows := make([][]string, 0, len(tasks))
				for _, task := range tasks {
					rows = append(rows, []string{
						strconv.FormatInt(task.ID, 10),
						task.Title,
						string(task.Status),
						fmt.Sprintf("%s->%s", task.SourceLanguage, task.TargetLanguage),
						task.CreatedAt.Local().Format(time.DateTime),
					})
				}
				table := renderTable(
					[]string{"ID", "Title", "Status", "Languages", "Created"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var taskID int64

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove queued tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				out := cmd.OutOrStdout()
				if taskID > 0 {
					if err := store.Delete(cmd.Context(), taskID); err != nil {
						return err
					}
					fmt.Fprintf(out, "Removed task #%d\n", taskID)
					return nil
				}
				if err := store.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(out, "Cleared queue")
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&taskID, "id", 0, "Remove only the task with this id")
	return cmd
}

func newQueueHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show queue health summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				health, err := store.Health(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(),
					"Total: %d\nPending: %d\nProcessing: %d\nCompleted: %d\nFailed: %d\nReview: %d\n",
					health.Total,
					health.Pending,
					health.Processing,
					health.Completed,
					health.Failed,
					health.Review,
				)
				return nil
			})
		},
	}
}

// resumeStatuses maps the stage recorded at failure time to the status that
// reruns just that stage.
var resumeStatuses = map[string]queue.Status{
	"separate":   queue.StatusPending,
	"transcribe": queue.StatusSeparated,
	"translate":  queue.StatusTranscribed,
	"synthesize": queue.StatusTranslated,
	"render":     queue.StatusSynthesized,
}

func newQueueRetryCommand(ctx *commandContext) *cobra.Command {
	var fromStage string

	cmd := &cobra.Command{
		Use:   "retry <taskID...>",
		Short: "Return failed or review tasks to the pipeline",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid task id %q", arg)
				}
				ids = append(ids, id)
			}

			if fromStage != "" {
				if _, ok := resumeStatuses[fromStage]; !ok {
					return fmt.Errorf("unknown stage %q", fromStage)
				}
			}

			return ctx.withStore(func(store *queue.Store) error {
				out := cmd.OutOrStdout()
				for _, id := range ids {
					task, err := store.GetByID(cmd.Context(), id)
					if err != nil {
						return err
					}
					if task.Status != queue.StatusFailed && task.Status != queue.StatusReview {
						fmt.Fprintf(out, "Task %d is not failed or in review (%s)\n", id, task.Status)
						continue
					}

					stage := fromStage
					if stage == "" {
						stage = task.ProgressStage
					}
					status, ok := resumeStatuses[stage]
					if !ok {
						status = queue.StatusPending
					}

					task.Status = status
					task.ErrorMessage = ""
					task.ReviewReason = ""
					task.ProgressMessage = ""
					if err := store.Update(cmd.Context(), task); err != nil {
						return err
					}
					fmt.Fprintf(out, "Task %d reset to %s\n", id, status)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&fromStage, "from", "", "Stage to resume from (separate, transcribe, translate, synthesize, render)")
	return cmd
}
