// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mapping turns a working set of documents into a workflow mapping
// by decoding each file, rendering the mapping prompt, and sending it to a
// Gemini backend in a single attempt.
package mapping

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdiddy/workflow-mapper/internal/convert"
	"github.com/pdiddy/workflow-mapper/internal/gemini"
	"github.com/pdiddy/workflow-mapper/internal/httputil"
	"github.com/pdiddy/workflow-mapper/internal/intake"
)

// MsgNoDocuments is shown when processing is triggered on an empty set.
const MsgNoDocuments = "Please upload at least one document"

// FailureKind classifies why processing did not produce output.
type FailureKind string

const (
	FailureNone        FailureKind = ""
	FailureNoDocuments FailureKind = "no_documents"
	FailureDecode      FailureKind = "decode"
	FailureTransport   FailureKind = "transport"
	FailureStatus      FailureKind = "status"
	FailureMalformed   FailureKind = "malformed"
)

// Request carries the two free-text fields of a processing run.
type Request struct {
	ClientName  string `json:"clientName" msgpack:"clientName"`
	Departments string `json:"departments" msgpack:"departments"`
}

func (r Request) clientName() string {
	if strings.TrimSpace(r.ClientName) == "" {
		return DefaultClientName
	}
	return r.ClientName
}

func (r Request) departments() string {
	if strings.TrimSpace(r.Departments) == "" {
		return DefaultDepartments
	}
	return r.Departments
}

// Result is either the verbatim model output or a classified failure.
type Result struct {
	Output  string
	Failure FailureKind
	Err     error
}

// OK reports whether the run produced output.
func (r Result) OK() bool { return r.Failure == FailureNone }

// Message is the user-facing text for a failed run.
func (r Result) Message() string {
	switch {
	case r.OK():
		return ""
	case r.Failure == FailureNoDocuments:
		return MsgNoDocuments
	case r.Err != nil:
		return "Error processing documents: " + r.Err.Error()
	default:
		return "Error processing documents"
	}
}

func failed(kind FailureKind, err error) Result {
	return Result{Failure: kind, Err: err}
}

// Processor runs the decode, prompt, generate pipeline.
type Processor struct {
	Decoder convert.Decoder
	Backend gemini.Backend

	// Log receives status lines and failures. Defaults to stderr.
	Log io.Writer
}

func (p *Processor) log() io.Writer {
	if p.Log == nil {
		return os.Stderr
	}
	return p.Log
}

// Process maps every file in ws. An empty set returns FailureNoDocuments
// without touching the decoder or the backend.
func (p *Processor) Process(ctx context.Context, ws *intake.WorkingSet, req Request) Result {
	if ws == nil || ws.IsEmpty() {
		return failed(FailureNoDocuments, nil)
	}

	decoder := p.Decoder
	if decoder == nil {
		decoder = convert.TextDecoder{}
	}

	files := ws.Files()
	fmt.Fprintf(p.log(), "processing %d document(s) for %s\n", len(files), req.clientName())

	docs, err := convert.DecodeAll(ctx, decoder, files)
	if err != nil {
		fmt.Fprintf(p.log(), "Processing error: %v\n", err)
		return failed(FailureDecode, err)
	}

	prompt, err := BuildPrompt(req, docs)
	if err != nil {
		fmt.Fprintf(p.log(), "Processing error: %v\n", err)
		return failed(FailureDecode, fmt.Errorf("rendering prompt: %w", err))
	}

	out, err := p.Backend.Generate(ctx, prompt)
	if err != nil {
		fmt.Fprintf(p.log(), "Processing error: %v\n", err)
		return failed(classify(err), err)
	}

	fmt.Fprintf(p.log(), "received %d bytes of workflow mapping\n", len(out))
	return Result{Output: out}
}

func classify(err error) FailureKind {
	var se *httputil.StatusError
	var de *httputil.DecodeError
	switch {
	case errors.As(err, &se):
		return FailureStatus
	case errors.As(err, &de), errors.Is(err, gemini.ErrMalformedResponse):
		return FailureMalformed
	default:
		return FailureTransport
	}
}
