package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"dubforge/internal/language"
	"dubforge/internal/queue"
)

var supportedMediaExtensions = map[string]struct{}{
	".mkv":  {},
	".mp4":  {},
	".avi":  {},
	".mov":  {},
	".wav":  {},
	".mp3":  {},
	".flac": {},
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	var sourceLang string
	var targetLang string

	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Add a media file to the dubbing queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			info, err := os.Stat(absPath)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("file does not exist: %s", absPath)
				}
				return fmt.Errorf("inspect file: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", absPath)
			}

			ext := strings.ToLower(filepath.Ext(info.Name()))
			if _, ok := supportedMediaExtensions[ext]; !ok {
				return fmt.Errorf("unsupported file extension %q", ext)
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if sourceLang == "" {
				sourceLang = cfg.Languages.Source
			}
			if targetLang == "" {
				targetLang = cfg.Languages.Target
			}
			source, err := language.Normalize(sourceLang)
			if err != nil {
				return fmt.Errorf("source language: %w", err)
			}
			target, err := language.Normalize(targetLang)
			if err != nil {
				return fmt.Errorf("target language: %w", err)
			}
			if source.Code == target.Code {
				return fmt.Errorf("source and target language are both %q", source.Code)
			}

			title := strings.TrimSuffix(filepath.Base(absPath), ext)
			return ctx.withStore(func(store *queue.Store) error {
				task, err := store.NewTask(cmd.Context(), absPath, title, source.Code, target.Code)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued task #%d (%s, %s -> %s)\n",
					task.ID, filepath.Base(absPath), source.Code, target.Code)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&sourceLang, "source-lang", "", "Spoken language of the source (defaults to languages.source)")
	cmd.Flags().StringVar(&targetLang, "target-lang", "", "Language to dub into (defaults to languages.target)")
	return cmd
}
