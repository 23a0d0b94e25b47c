// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/workflow-mapper/internal/container"
	"github.com/pdiddy/workflow-mapper/internal/convert"
	"github.com/pdiddy/workflow-mapper/internal/gemini"
	"github.com/pdiddy/workflow-mapper/internal/intake"
	"github.com/pdiddy/workflow-mapper/internal/mapping"
	"github.com/pdiddy/workflow-mapper/pkg/types"
)

var mapCmd = &cobra.Command{
	Use:   "map [files...]",
	Short: "Turn documents into a current-state workflow mapping",
	Long: `Map reads each file as text, wraps the documents in the workflow-mapping
prompt, and sends it to Gemini in a single request. The returned markdown is
printed to stdout and saved as workflow-mapping.md in the output directory.

Files larger than the size limit (10MB by default) are reported and skipped.
With --convert, .pdf, .doc and .docx files go through the markitdown
container first.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, geminiFlagKeys(map[string]string{
			"output-dir":    "output.dir",
			"output-file":   "output.file",
			"convert":       "intake.convert",
			"max-file-size": "intake.max_file_size",
		}))
	},
	RunE: runMap,
}

// geminiFlagKeys adds the shared Gemini flags to a command's bindings.
func geminiFlagKeys(keys map[string]string) map[string]string {
	keys["api-key"] = "gemini.api_key"
	keys["backend"] = "gemini.backend"
	keys["model"] = "gemini.model"
	return keys
}

func addGeminiFlags(cmd *cobra.Command) {
	cmd.Flags().String("api-key", "", "Gemini API key (default: config, GEMINI_API_KEY, or .secrets/gemini-api-key)")
	cmd.Flags().String("backend", string(types.BackendREST), "Gemini client: rest or google")
	cmd.Flags().String("model", types.DefaultGeminiModel, "model name used by the google backend")
}

func runMap(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := appConfig()
	clientName, _ := cmd.Flags().GetString("client")
	departments, _ := cmd.Flags().GetString("departments")
	copyOut, _ := cmd.Flags().GetBool("copy")
	noSave, _ := cmd.Flags().GetBool("no-save")

	candidates, err := intake.FromPaths(args)
	if err != nil {
		return err
	}
	ws := intake.NewWorkingSet(cfg.Intake.MaxFileSize)
	ws.Select(candidates)
	intake.WriteListing(os.Stderr, intake.Render(ws))

	if cfg.Gemini.APIKey == "" {
		fmt.Fprintln(os.Stderr, "warning: no Gemini API key configured; the request will be rejected")
	}

	decoder, err := newDecoder(ctx, cfg.Intake)
	if err != nil {
		return err
	}
	backend, err := gemini.New(ctx, cfg.Gemini, nil)
	if err != nil {
		return err
	}

	p := &mapping.Processor{Decoder: decoder, Backend: backend, Log: os.Stderr}
	res := p.Process(ctx, ws, mapping.Request{ClientName: clientName, Departments: departments})
	if !res.OK() {
		fmt.Fprintln(os.Stderr, res.Message())
		return fmt.Errorf("mapping failed (%s)", res.Failure)
	}

	fmt.Fprintln(os.Stdout, res.Output)

	if !noSave {
		path, err := mapping.Save(cfg.Output.Dir, cfg.Output.File, res.Output)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "saved %s\n", path)
	}
	if copyOut {
		if err := mapping.Copy(res.Output); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		} else {
			fmt.Fprintln(os.Stderr, "Copied to clipboard!")
		}
	}
	return nil
}

// newDecoder returns the plain text decoder, or a router that sends office
// and PDF files through markitdown when conversion is enabled.
func newDecoder(ctx context.Context, cfg types.IntakeConfig) (convert.Decoder, error) {
	if !cfg.Convert {
		return convert.TextDecoder{}, nil
	}
	rt, err := container.DetectRuntime(ctx)
	if err != nil {
		return nil, err
	}
	md, err := convert.NewMarkitdownDecoder(ctx, rt, "")
	if err != nil {
		return nil, err
	}
	return convert.NewRouter(md), nil
}

func init() {
	mapCmd.Flags().String("client", "", "client/organization name (default \"Unknown Client\")")
	mapCmd.Flags().String("departments", "", "departments to cover (default \"All departments\")")
	mapCmd.Flags().String("output-dir", ".", "directory for the saved mapping")
	mapCmd.Flags().String("output-file", types.DefaultOutputFile, "file name of the saved mapping")
	mapCmd.Flags().Bool("no-save", false, "print the mapping without saving it")
	mapCmd.Flags().Bool("copy", false, "copy the mapping to the clipboard")
	mapCmd.Flags().Bool("convert", false, "convert .pdf/.doc/.docx with the markitdown container")
	mapCmd.Flags().Int64("max-file-size", types.DefaultMaxFileSize, "per-file size limit in bytes")
	addGeminiFlags(mapCmd)

	rootCmd.AddCommand(mapCmd)
}
