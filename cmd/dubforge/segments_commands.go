package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"dubforge/internal/queue"
	"dubforge/internal/segment"
	"dubforge/internal/stages"
	"dubforge/internal/tasklock"
)

func newSegmentsCommand(ctx *commandContext) *cobra.Command {
	segmentsCmd := &cobra.Command{
		Use:   "segments",
		Short: "Inspect and edit a task's segment document",
		Long: "Segment documents produced by transcription can be reviewed and\n" +
			"repaired before translation and synthesis. Structural edits renumber\n" +
			"segment ids and relocate the per-segment clip files to match.",
	}

	segmentsCmd.AddCommand(newSegmentsValidateCommand(ctx))
	segmentsCmd.AddCommand(newSegmentsMergeCommand(ctx))
	segmentsCmd.AddCommand(newSegmentsSplitCommand(ctx))
	segmentsCmd.AddCommand(newSegmentsDeleteCommand(ctx))

	return segmentsCmd
}

func newSegmentsValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <taskID>",
		Short: "Validate a task's segments and clear review state when clean",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *queue.Store) error {
				task, err := store.GetByID(cmd.Context(), taskID)
				if err != nil {
					return err
				}
				doc, err := loadTaskDocument(task)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				issues := segment.Validate(doc.Segments, doc.Words)
				for _, issue := range issues {
					fmt.Fprintln(out, issue.String())
				}
				if segment.HasErrors(issues) {
					return fmt.Errorf("segment document has %d issue(s)", len(issues))
				}

				fmt.Fprintf(out, "%d segments valid\n", len(doc.Segments))
				if task.Status == queue.StatusReview {
					task.Status = queue.StatusTranscribed
					task.ReviewReason = ""
					task.ErrorMessage = ""
					if err := store.Update(cmd.Context(), task); err != nil {
						return err
					}
					fmt.Fprintf(out, "Task %d returned to the pipeline\n", task.ID)
				}
				return nil
			})
		},
	}
}

func newSegmentsMergeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <taskID> <firstSegID> <lastSegID>",
		Short: "Merge a contiguous run of segments into one",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			firstID, err := parseSegmentID(args[1])
			if err != nil {
				return err
			}
			lastID, err := parseSegmentID(args[2])
			if err != nil {
				return err
			}

			return editTaskSegments(cmd, ctx, taskID, func(doc *segment.Document) ([]segment.IDChange, error) {
				merged, changes, err := segment.MergeRange(doc.Segments, firstID, lastID)
				if err != nil {
					return nil, err
				}
				doc.Segments = merged
				return changes, nil
			})
		},
	}
}

func newSegmentsSplitCommand(ctx *commandContext) *cobra.Command {
	var atSeconds float64
	var snippet string
	var offset int

	cmd := &cobra.Command{
		Use:   "split <taskID> <segID>",
		Short: "Split a segment in two",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			segID, err := parseSegmentID(args[1])
			if err != nil {
				return err
			}

			strategies := 0
			if cmd.Flags().Changed("at") {
				strategies++
			}
			if cmd.Flags().Changed("snippet") {
				strategies++
			}
			if cmd.Flags().Changed("offset") {
				strategies++
			}
			if strategies != 1 {
				return errors.New("specify exactly one of --at, --snippet, or --offset")
			}

			return editTaskSegments(cmd, ctx, taskID, func(doc *segment.Document) ([]segment.IDChange, error) {
				var target *segment.Segment
				for i := range doc.Segments {
					if doc.Segments[i].ID == segID {
						target = &doc.Segments[i]
						break
					}
				}
				if target == nil {
					return nil, fmt.Errorf("segment %d not found", segID)
				}

				var first, second segment.Segment
				var err error
				switch {
				case cmd.Flags().Changed("at"):
					first, second, err = segment.SplitByTime(*target, atSeconds)
				case cmd.Flags().Changed("snippet"):
					first, second, err = segment.SplitBySnippet(*target, snippet)
				default:
					first, second, err = segment.SplitByOffset(*target, offset)
				}
				if err != nil {
					return nil, err
				}

				replaced, changes, err := segment.ReplaceWithHalves(doc.Segments, segID, first, second)
				if err != nil {
					return nil, err
				}
				doc.Segments = replaced
				return changes, nil
			})
		},
	}

	cmd.Flags().Float64Var(&atSeconds, "at", 0, "Split at this time in seconds")
	cmd.Flags().StringVar(&snippet, "snippet", "", "Split after this exact text snippet")
	cmd.Flags().IntVar(&offset, "offset", 0, "Split at the word boundary nearest this byte offset")
	return cmd
}

func newSegmentsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <taskID> <segID...>",
		Short: "Delete segments and renumber the remainder",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			ids := make([]uint32, 0, len(args)-1)
			for _, arg := range args[1:] {
				id, err := parseSegmentID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}

			return editTaskSegments(cmd, ctx, taskID, func(doc *segment.Document) ([]segment.IDChange, error) {
				remaining, changes, err := segment.Delete(doc.Segments, ids)
				if err != nil {
					return nil, err
				}
				doc.Segments = remaining
				return changes, nil
			})
		},
	}
}

// editTaskSegments runs one structural edit under the task lock: load the
// document, apply the edit, relocate clip files per the renumber map, save.
func editTaskSegments(cmd *cobra.Command, ctx *commandContext, taskID int64, edit func(*segment.Document) ([]segment.IDChange, error)) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
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

		doc, err := loadTaskDocument(task)
		if err != nil {
			return err
		}
		before := len(doc.Segments)

		changes, err := edit(doc)
		if err != nil {
			return err
		}
		if err := relocateClips(stages.ClipsDir(cfg, task), doc, changes); err != nil {
			return err
		}
		if err := segment.SaveDocument(task.SegmentsPath, doc); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Segments: %d -> %d\n", before, len(doc.Segments))
		return nil
	})
}

// relocateClips renames per-segment clip files whose names encode a changed
// id, then refreshes the clip path fields on every segment. Renames go
// through a temporary name first so chains like 2->1, 1->0 cannot collide.
func relocateClips(clipsDir string, doc *segment.Document, changes []segment.IDChange) error {
	type rename struct {
		tmp  string
		dest string
	}
	var staged []rename

	for _, change := range changes {
		if change.Old == change.New {
			continue
		}
		pairs := [][2]string{
			{stages.ReferenceClipPath(clipsDir, change.Old), stages.ReferenceClipPath(clipsDir, change.New)},
			{stages.ClonedClipPath(clipsDir, change.Old), stages.ClonedClipPath(clipsDir, change.New)},
		}
		for _, pair := range pairs {
			if _, err := os.Stat(pair[0]); err != nil {
				continue
			}
			tmp := pair[0] + ".relocating"
			if err := os.Rename(pair[0], tmp); err != nil {
				return fmt.Errorf("stage clip rename: %w", err)
			}
			staged = append(staged, rename{tmp: tmp, dest: pair[1]})
		}
	}
	for _, r := range staged {
		if err := os.Rename(r.tmp, r.dest); err != nil {
			return fmt.Errorf("relocate clip: %w", err)
		}
	}

	// Edits that invalidate a clip clear the segment's path field; only
	// surviving references are repointed at the renamed files.
	for i := range doc.Segments {
		seg := &doc.Segments[i]
		if seg.ReferenceAudioPath != "" {
			seg.ReferenceAudioPath = stages.ReferenceClipPath(clipsDir, seg.ID)
		}
		if seg.ClonedAudioPath != "" {
			seg.ClonedAudioPath = stages.ClonedClipPath(clipsDir, seg.ID)
		}
	}
	return nil
}

func loadTaskDocument(task *queue.Task) (*segment.Document, error) {
	if task.SegmentsPath == "" {
		return nil, fmt.Errorf("task %d has no segment document yet", task.ID)
	}
	return segment.LoadDocument(task.SegmentsPath)
}

func parseTaskID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", arg)
	}
	return id, nil
}

func parseSegmentID(arg string) (uint32, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid segment id %q", arg)
	}
	return uint32(id), nil
}
