package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"dubforge/internal/preflight"
	"dubforge/internal/queue"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue and dependency status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			printSectionHeader(out, "Dependencies", colorize)
			for _, dep := range preflight.CheckSystemDeps(cfg) {
				if dep.Available {
					printStatusLine(out, dep.Name, "OK", dep.Command, ansiGreen, colorize)
				} else {
					color := ansiRed
					label := "MISSING"
					if dep.Optional {
						color = ansiYellow
						label = "WARN"
					}
					printStatusLine(out, dep.Name, label, dep.Detail, color, colorize)
				}
			}

			return ctx.withStore(func(store *queue.Store) error {
				health, err := store.Health(cmd.Context())
				if err != nil {
					return err
				}

				fmt.Fprintln(out)
				printSectionHeader(out, "Queue", colorize)
				if health.Total == 0 {
					fmt.Fprintln(out, "  Queue is empty")
					return nil
				}
				rows := [][]string{
					{"Pending", strconv.Itoa(health.Pending)},
					{"Processing", strconv.Itoa(health.Processing)},
					{"Completed", strconv.Itoa(health.Completed)},
					{"Failed", strconv.Itoa(health.Failed)},
					{"Review", strconv.Itoa(health.Review)},
					{"Total", strconv.Itoa(health.Total)},
				}
				table := renderTable([]string{"State", "Count"}, rows,
					[]columnAlignment{alignLeft, alignRight})
				fmt.Fprintln(out, table)
				return nil
			})
		},
	}
}

func printSectionHeader(out io.Writer, title string, colorize bool) {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	if colorize {
		line = ansiBlue + line + ansiReset
	}
	fmt.Fprintln(out, line)
}

func printStatusLine(out io.Writer, label, state, detail string, color string, colorize bool) {
	text := fmt.Sprintf("  %-18s [%s]", label+":", state)
	if detail != "" {
		text += " " + detail
	}
	if colorize && color != "" {
		text = color + text + ansiReset
	}
	fmt.Fprintln(out, text)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
