// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/workflow-mapper/internal/gemini"
	"github.com/pdiddy/workflow-mapper/internal/mapping"
	"github.com/pdiddy/workflow-mapper/internal/server"
	"github.com/pdiddy/workflow-mapper/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the mapper and the progress board on a local web page",
	Long: `Serve starts an HTTP server with a landing page at / and a JSON API under
/api: page sessions with their uploaded files, document processing, the
mapping download, and the shared progress board. Responses are msgpack when
the request sends Accept: application/msgpack.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, geminiFlagKeys(map[string]string{
			"addr":          "server.addr",
			"db":            "progress.db",
			"convert":       "intake.convert",
			"max-file-size": "intake.max_file_size",
		}))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg := appConfig()
		if cfg.Gemini.APIKey == "" {
			fmt.Fprintln(os.Stderr, "warning: no Gemini API key configured; processing requests will fail")
		}

		decoder, err := newDecoder(ctx, cfg.Intake)
		if err != nil {
			return err
		}
		backend, err := gemini.New(ctx, cfg.Gemini, nil)
		if err != nil {
			return err
		}
		s, err := openTracker(cfg.Progress)
		if err != nil {
			return err
		}
		defer s.Close()

		srv := server.New(cfg.Server, server.Dependencies{
			Processor:   &mapping.Processor{Decoder: decoder, Backend: backend, Log: os.Stderr},
			Tracker:     s.tracker,
			Catalog:     s.catalog,
			OutputFile:  cfg.Output.File,
			MaxFileSize: cfg.Intake.MaxFileSize,
			Version:     version,
			Log:         os.Stderr,
		})
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", types.DefaultServerAddr, "listen address")
	serveCmd.Flags().String("db", types.DefaultProgressDB, "SQLite database holding progress")
	serveCmd.Flags().Bool("convert", false, "convert .pdf/.doc/.docx with the markitdown container")
	serveCmd.Flags().Int64("max-file-size", types.DefaultMaxFileSize, "per-file size limit in bytes")
	addGeminiFlags(serveCmd)

	rootCmd.AddCommand(serveCmd)
}
