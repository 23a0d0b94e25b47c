// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pdiddy/workflow-mapper/internal/intake"
	"github.com/pdiddy/workflow-mapper/internal/mapping"
	"github.com/pdiddy/workflow-mapper/internal/progress"
)

// SessionResponse is returned when a session is created.
type SessionResponse struct {
	ID string `json:"id" msgpack:"id"`
}

// ProcessResponse carries the verbatim model output.
type ProcessResponse struct {
	Output string `json:"output" msgpack:"output"`
}

// CompleteResponse is returned by the complete-step endpoint.
type CompleteResponse struct {
	Board   progress.Board   `json:"board" msgpack:"board"`
	Outcome progress.Outcome `json:"outcome" msgpack:"outcome"`
}

// ResetRequest must carry confirm=true.
type ResetRequest struct {
	Confirm bool `json:"confirm" msgpack:"confirm"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return respond(c, http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  s.deps.Version,
		"sessions": s.sessions.Len(),
	})
}

func (s *Server) handleCreateSession(c echo.Context) error {
	sess := s.sessions.Create()
	return respond(c, http.StatusCreated, SessionResponse{ID: sess.ID})
}

func (s *Server) session(c echo.Context) (*Session, error) {
	id := c.Param("id")
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, NewNotFoundError("session", id)
	}
	return sess, nil
}

func (s *Server) handleUploadFiles(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return NewBadRequestError("expected multipart form", err)
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return NewValidationError("files")
	}

	candidates, err := intake.FromMultipart(headers, s.deps.MaxFileSize)
	if err != nil {
		return NewBadRequestError("failed to read upload", err)
	}

	sess.mu.Lock()
	sess.ws.Select(candidates)
	listing := intake.Render(sess.ws)
	sess.mu.Unlock()

	return respond(c, http.StatusOK, listing)
}

func (s *Server) handleListFiles(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	listing := intake.Render(sess.ws)
	sess.mu.Unlock()
	return respond(c, http.StatusOK, listing)
}

func (s *Server) handleRemoveFile(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	name := c.Param("name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}

	sess.mu.Lock()
	err = sess.ws.Remove(name)
	listing := intake.Render(sess.ws)
	sess.mu.Unlock()

	if errors.Is(err, intake.ErrNotFound) {
		return NewNotFoundError("file", name)
	}
	return respond(c, http.StatusOK, listing)
}

func (s *Server) handleProcess(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}

	var req mapping.Request
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	snapshot, ok := sess.begin()
	if !ok {
		return NewConflictError("documents are already being processed")
	}

	// A run ends with the session idle again, even if Process panics.
	var (
		res  mapping.Result
		done bool
	)
	defer func() { sess.finish(res.Output, done && res.OK()) }()

	// Client disconnects do not cancel the remote call.
	res = s.deps.Processor.Process(context.WithoutCancel(c.Request().Context()), snapshot, req)
	done = true

	if !res.OK() {
		return resultError(res)
	}
	return respond(c, http.StatusOK, ProcessResponse{Output: res.Output})
}

// resultError maps a failed mapping.Result onto an APIError.
func resultError(res mapping.Result) *APIError {
	switch res.Failure {
	case mapping.FailureNoDocuments:
		return newAPIError(http.StatusBadRequest, "NO_DOCUMENTS", res.Message(), nil)
	case mapping.FailureDecode:
		return newAPIError(http.StatusUnprocessableEntity, "DECODE_FAILED", res.Message(), nil)
	default:
		return newAPIError(http.StatusBadGateway, "REMOTE_"+strings.ToUpper(string(res.Failure)), res.Message(), nil)
	}
}

func (s *Server) handleOutput(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	output, ok := sess.output, sess.hasOutput
	sess.mu.Unlock()
	if !ok {
		return NewNotFoundError("output", sess.ID)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="`+s.deps.OutputFile+`"`)
	return c.Blob(http.StatusOK, mapping.ContentType+"; charset=utf-8", []byte(output))
}

func (s *Server) board(c echo.Context) progress.Board {
	return progress.Render(s.deps.Tracker, s.deps.Catalog, parseDetails(c.QueryParam("details")))
}

func (s *Server) handleBoard(c echo.Context) error {
	s.trackerMu.Lock()
	defer s.trackerMu.Unlock()
	return respond(c, http.StatusOK, s.board(c))
}

func (s *Server) handleCompleteStep(c echo.Context) error {
	step, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		return NewBadRequestError("step must be a number", err)
	}

	s.trackerMu.Lock()
	defer s.trackerMu.Unlock()

	out, err := s.deps.Tracker.MarkComplete(step)
	if errors.Is(err, progress.ErrInvalidStep) {
		return NewBadRequestError("invalid step", err)
	}
	if err != nil {
		return NewInternalError("failed to save progress", err)
	}
	return respond(c, http.StatusOK, CompleteResponse{Board: s.board(c), Outcome: out})
}

func (s *Server) handleReset(c echo.Context) error {
	var req ResetRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if !req.Confirm {
		return NewBadRequestError(progress.ResetPrompt, errors.New("confirm must be true"))
	}

	s.trackerMu.Lock()
	defer s.trackerMu.Unlock()

	if _, err := s.deps.Tracker.Reset(progress.Confirmed); err != nil {
		return NewInternalError("failed to reset progress", err)
	}
	return respond(c, http.StatusOK, s.board(c))
}
