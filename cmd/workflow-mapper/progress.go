// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/workflow-mapper/internal/kvstore"
	"github.com/pdiddy/workflow-mapper/internal/progress"
	"github.com/pdiddy/workflow-mapper/pkg/types"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Track completion of the five workflow steps",
	Long: `Progress keeps the set of completed workflow steps in a local SQLite
database. Steps only move from Pending to Completed; reset clears them all.
Use subcommands to show the board, complete steps, reset, export, or work
the checklist interactively.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		return bindFlags(cmd, map[string]string{
			"db":    "progress.db",
			"key":   "progress.key",
			"steps": "progress.steps_file",
		})
	},
}

// trackerSession is an opened, hydrated tracker with its catalog.
type trackerSession struct {
	tracker *progress.Tracker
	catalog types.StepCatalog
	store   *kvstore.SQLiteStore
}

func (s *trackerSession) Close() error { return s.store.Close() }

// openTracker opens the progress database and loads the persisted steps.
// Corrected records are reported on stderr.
func openTracker(cfg types.ProgressConfig) (*trackerSession, error) {
	catalog, err := progress.LoadCatalog(cfg.StepsFile)
	if err != nil {
		return nil, err
	}
	store, err := kvstore.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	tracker := progress.NewTracker(store, cfg.Key)
	report, err := tracker.Hydrate()
	if err != nil {
		store.Close()
		return nil, err
	}
	warnHydrate(os.Stderr, report)
	return &trackerSession{tracker: tracker, catalog: catalog, store: store}, nil
}

func warnHydrate(w io.Writer, r progress.HydrateReport) {
	if r.Unparseable {
		fmt.Fprintln(w, "warning: saved progress is not a list of step numbers; starting empty")
	}
	if len(r.OutOfRange) > 0 {
		fmt.Fprintf(w, "warning: ignored saved steps outside 1-%d: %v\n", types.StepCount, r.OutOfRange)
	}
	if len(r.Duplicates) > 0 {
		fmt.Fprintf(w, "warning: ignored repeated saved steps: %v\n", r.Duplicates)
	}
}

// stdinConfirmer asks on stderr and reads the answer from stdin.
var stdinConfirmer = progress.ConfirmFunc(func(prompt string) (bool, error) {
	fmt.Fprintf(os.Stderr, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
})

// --- show subcommand ---

var progressShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the progress board",
	RunE: func(cmd *cobra.Command, args []string) error {
		details, _ := cmd.Flags().GetBool("details")

		s, err := openTracker(appConfig().Progress)
		if err != nil {
			return err
		}
		defer s.Close()

		progress.WriteBoard(os.Stdout, progress.Render(s.tracker, s.catalog, progress.RenderOptions{AllDetails: details}))
		return nil
	},
}

// --- complete subcommand ---

var progressCompleteCmd = &cobra.Command{
	Use:   "complete <step>...",
	Short: "Mark one or more steps complete",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps := make([]int, 0, len(args))
		for _, a := range args {
			n, err := strconv.Atoi(a)
			if err != nil {
				return fmt.Errorf("%w: %q", progress.ErrInvalidStep, a)
			}
			steps = append(steps, n)
		}

		s, err := openTracker(appConfig().Progress)
		if err != nil {
			return err
		}
		defer s.Close()

		var last progress.Outcome
		for _, n := range steps {
			out, err := s.tracker.MarkComplete(n)
			if err != nil {
				return err
			}
			if out.Newly {
				fmt.Fprintf(os.Stdout, "%s step %d completed\n", out.Flash, n)
			}
			last = out
		}
		fmt.Fprintf(os.Stdout, "%d/%d steps completed (%.0f%%)\n", last.Completed, types.StepCount, last.Percentage)
		if last.Celebrate {
			progress.WriteCompletion(os.Stdout)
		}
		return nil
	},
}

// --- reset subcommand ---

var progressResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear every completed step",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		s, err := openTracker(appConfig().Progress)
		if err != nil {
			return err
		}
		defer s.Close()

		var c progress.Confirmer = stdinConfirmer
		if yes {
			c = progress.Confirmed
		}
		done, err := s.tracker.Reset(c)
		if err != nil {
			return err
		}
		if done {
			fmt.Fprintln(os.Stdout, "progress reset")
		}
		return nil
	},
}

// --- interactive subcommand ---

var progressInteractiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Work the checklist with line commands and key shortcuts",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openTracker(appConfig().Progress)
		if err != nil {
			return err
		}
		defer s.Close()

		console := &progress.Console{Tracker: s.tracker, Catalog: s.catalog, In: os.Stdin, Out: os.Stdout}
		return console.Run()
	},
}

// --- export subcommand ---

var progressExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the progress board as YAML or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("output")

		s, err := openTracker(appConfig().Progress)
		if err != nil {
			return err
		}
		defer s.Close()

		w := io.Writer(os.Stdout)
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("creating %s: %w", outPath, err)
			}
			defer f.Close()
			w = f
		}
		return progress.Export(w, progress.Render(s.tracker, s.catalog, progress.RenderOptions{AllDetails: true}), format)
	},
}

func init() {
	progressCmd.PersistentFlags().String("db", types.DefaultProgressDB, "SQLite database holding progress")
	progressCmd.PersistentFlags().String("key", types.DefaultProgressKey, "storage key for the completed steps")
	progressCmd.PersistentFlags().String("steps", "", "YAML step catalog overriding the built-in steps")

	progressShowCmd.Flags().Bool("details", false, "include step details")
	progressResetCmd.Flags().BoolP("yes", "y", false, "skip the confirmation question")
	progressExportCmd.Flags().String("format", progress.FormatYAML, "export format: yaml or json")
	progressExportCmd.Flags().StringP("output", "o", "", "write to a file instead of stdout")

	progressCmd.AddCommand(progressShowCmd, progressCompleteCmd, progressResetCmd, progressInteractiveCmd, progressExportCmd)
	rootCmd.AddCommand(progressCmd)
}
