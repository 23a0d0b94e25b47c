// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the document mapping pipeline and the progress
// tracker as a JSON API with an embedded landing page.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/pdiddy/workflow-mapper/internal/mapping"
	"github.com/pdiddy/workflow-mapper/internal/progress"
	"github.com/pdiddy/workflow-mapper/pkg/types"
)

// cleanupInterval is how often idle sessions are swept.
const cleanupInterval = time.Minute

// Dependencies holds what the handlers need.
type Dependencies struct {
	Processor *mapping.Processor
	Tracker   *progress.Tracker
	Catalog   types.StepCatalog

	// OutputFile names the download. Defaults to workflow-mapping.md.
	OutputFile  string
	MaxFileSize int64
	Version     string

	// Log receives startup and cleanup lines. Defaults to stderr.
	Log io.Writer
}

// Server is the HTTP surface.
type Server struct {
	cfg      types.ServerConfig
	deps     Dependencies
	echo     *echo.Echo
	sessions *SessionManager

	// trackerMu serialises access to deps.Tracker.
	trackerMu sync.Mutex
}

// New builds the echo instance and registers every route.
func New(cfg types.ServerConfig, deps Dependencies) *Server {
	if deps.OutputFile == "" {
		deps.OutputFile = types.DefaultOutputFile
	}
	if deps.Log == nil {
		deps.Log = os.Stderr
	}
	if deps.Catalog.Steps == nil {
		deps.Catalog = progress.DefaultCatalog()
	}

	s := &Server{
		cfg:      cfg,
		deps:     deps,
		sessions: NewSessionManager(deps.MaxFileSize),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			return !cfg.RequestLogging || c.Request().URL.Path == "/api/health"
		},
		Output: deps.Log,
	}))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10,
	}))
	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}

	s.echo = e
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	e := s.echo
	e.GET("/", handleIndex)
	e.GET("/api/health", s.handleHealth)

	sess := e.Group("/api/sessions")
	sess.POST("", s.handleCreateSession)
	sess.POST("/:id/files", s.handleUploadFiles)
	sess.GET("/:id/files", s.handleListFiles)
	sess.DELETE("/:id/files/:name", s.handleRemoveFile)
	sess.POST("/:id/process", s.handleProcess)
	sess.GET("/:id/output", s.handleOutput)

	prog := e.Group("/api/progress")
	prog.GET("", s.handleBoard)
	prog.POST("/steps/:step/complete", s.handleCompleteStep)
	prog.POST("/reset", s.handleReset)
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler { return s.echo }

// Sessions returns the session manager.
func (s *Server) Sessions() *SessionManager { return s.sessions }

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	go s.cleanupLoop(ctx)

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(s.deps.Log, "listening on http://%s\n", s.cfg.Addr)
		errCh <- s.echo.Start(s.cfg.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}

func (s *Server) cleanupLoop(ctx context.Context) {
	timeout := s.cfg.SessionTimeout
	if timeout <= 0 {
		timeout = types.DefaultSessionTimeout
	}
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sessions.CleanupIdle(timeout); n > 0 {
				fmt.Fprintf(s.deps.Log, "dropped %d idle session(s)\n", n)
			}
		}
	}
}

// parseDetails reads ?details=all or ?details=1,3 into render options.
func parseDetails(q string) progress.RenderOptions {
	if q == "all" {
		return progress.RenderOptions{AllDetails: true}
	}
	opts := progress.RenderOptions{Details: map[int]bool{}}
	for _, f := range strings.Split(q, ",") {
		var n int
		if _, err := fmt.Sscanf(strings.TrimSpace(f), "%d", &n); err == nil {
			opts.Details[n] = true
		}
	}
	return opts
}
