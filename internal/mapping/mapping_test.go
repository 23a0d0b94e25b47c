// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mapping

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/workflow-mapper/internal/gemini"
	"github.com/pdiddy/workflow-mapper/internal/httputil"
	"github.com/pdiddy/workflow-mapper/internal/intake"
	"github.com/pdiddy/workflow-mapper/pkg/types"
)

// fakeBackend records the prompt it was given and answers with a canned
// output or error.
type fakeBackend struct {
	calls  int
	prompt string
	output string
	err    error
}

func (f *fakeBackend) Generate(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	return f.output, f.err
}

func textFile(name, content string) types.UploadedFile {
	return types.UploadedFile{
		Name: name,
		Size: int64(len(content)),
		Open: func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader(content)), nil },
	}
}

func workingSet(files ...types.UploadedFile) *intake.WorkingSet {
	ws := intake.NewWorkingSet(0)
	ws.Select(files)
	return ws
}

func TestProcess_EmptySetMakesNoCall(t *testing.T) {
	backend := &fakeBackend{output: "unused"}
	p := &Processor{Backend: backend, Log: io.Discard}

	res := p.Process(context.Background(), intake.NewWorkingSet(0), Request{})
	assert.False(t, res.OK())
	assert.Equal(t, FailureNoDocuments, res.Failure)
	assert.Equal(t, MsgNoDocuments, res.Message())
	assert.Zero(t, backend.calls)

	res = p.Process(context.Background(), nil, Request{})
	assert.Equal(t, FailureNoDocuments, res.Failure)
	assert.Zero(t, backend.calls)
}

func TestProcess_PromptContainsEveryDocumentOnce(t *testing.T) {
	backend := &fakeBackend{output: "# SALES | Current State\n1A. Intake"}
	p := &Processor{Backend: backend, Log: io.Discard}

	ws := workingSet(
		textFile("intake-procedure.txt", "Receptionist logs every call."),
		textFile("billing-notes.txt", "Invoices are issued monthly."),
	)
	res := p.Process(context.Background(), ws, Request{ClientName: "Acme Co", Departments: "Sales, Billing"})
	require.True(t, res.OK(), res.Message())
	assert.Equal(t, "# SALES | Current State\n1A. Intake", res.Output)
	assert.Equal(t, 1, backend.calls)

	for _, f := range []struct{ name, content string }{
		{"intake-procedure.txt", "Receptionist logs every call."},
		{"billing-notes.txt", "Invoices are issued monthly."},
	} {
		assert.Equal(t, 1, strings.Count(backend.prompt, "--- Document: "+f.name+" ---"))
		assert.Equal(t, 1, strings.Count(backend.prompt, "--- End of "+f.name+" ---"))
		assert.Equal(t, 1, strings.Count(backend.prompt, f.content))
		assert.Contains(t, backend.prompt, "--- Document: "+f.name+" ---\n"+f.content+"\n--- End of "+f.name+" ---")
	}
	assert.Contains(t, backend.prompt, "Client/Organization: Acme Co\n")
	assert.Contains(t, backend.prompt, "Departments to cover: Sales, Billing\n")
}

func TestProcess_BlankFieldsDefault(t *testing.T) {
	backend := &fakeBackend{output: "ok"}
	p := &Processor{Backend: backend, Log: io.Discard}

	res := p.Process(context.Background(), workingSet(textFile("a.txt", "alpha")), Request{ClientName: "  "})
	require.True(t, res.OK())
	assert.Contains(t, backend.prompt, "Client/Organization: Unknown Client\n")
	assert.Contains(t, backend.prompt, "Departments to cover: All departments\n")
}

func TestProcess_DecodeFailureAbortsBatch(t *testing.T) {
	backend := &fakeBackend{output: "unused"}
	p := &Processor{Backend: backend, Log: io.Discard}

	broken := types.UploadedFile{
		Name: "locked.txt",
		Size: 1,
		Open: func() (io.ReadCloser, error) { return nil, errors.New("permission denied") },
	}
	res := p.Process(context.Background(), workingSet(textFile("a.txt", "alpha"), broken), Request{})
	assert.Equal(t, FailureDecode, res.Failure)
	assert.Empty(t, res.Output)
	assert.Zero(t, backend.calls)
	assert.Contains(t, res.Message(), "Error processing documents: ")
}

func TestProcess_ClassifiesBackendFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureKind
	}{
		{name: "status", err: &httputil.StatusError{Code: 403, Body: "denied"}, want: FailureStatus},
		{name: "wrapped status", err: errors.Join(errors.New("ctx"), &httputil.StatusError{Code: 500}), want: FailureStatus},
		{name: "malformed", err: gemini.ErrMalformedResponse, want: FailureMalformed},
		{name: "undecodable", err: &httputil.DecodeError{Err: errors.New("invalid character")}, want: FailureMalformed},
		{name: "transport", err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}, want: FailureTransport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var log strings.Builder
			p := &Processor{Backend: &fakeBackend{err: tt.err}, Log: &log}
			res := p.Process(context.Background(), workingSet(textFile("a.txt", "alpha")), Request{})
			assert.Equal(t, tt.want, res.Failure)
			assert.ErrorIs(t, res.Err, tt.err)
			assert.Contains(t, log.String(), "Processing error:")
		})
	}
}

func TestDocumentsText(t *testing.T) {
	got := DocumentsText([]types.DecodedDocument{
		{Name: "a.txt", Content: "alpha"},
		{Name: "b.txt", Content: "beta"},
	})
	want := "\n--- Document: a.txt ---\nalpha\n--- End of a.txt ---\n        " +
		"\n\n" +
		"\n--- Document: b.txt ---\nbeta\n--- End of b.txt ---\n        "
	assert.Equal(t, want, got)
	assert.Empty(t, DocumentsText(nil))
}

func TestBuildPrompt_FixedSections(t *testing.T) {
	prompt, err := BuildPrompt(Request{}, []types.DecodedDocument{{Name: "a.txt", Content: "alpha"}})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(prompt, "You are a workflow-mapping assistant."))
	assert.True(t, strings.HasSuffix(prompt, "Output the complete workflow mapping now."))
	for _, line := range []string{
		"Scope: Current State",
		"- Purple = Internal",
		"- Gray = Agency  \n",
		"- Red = Risk",
		"- One section per department: # [DEPARTMENT NAME] | Current State",
		"- Include details as bullets: People Involved, Process, Tools, Inputs, Outputs, Challenges, Dependencies",
		`- Mark unknowns as "Unknown"`,
	} {
		assert.Contains(t, prompt, line)
	}
}

func TestResultMessage(t *testing.T) {
	assert.Empty(t, Result{Output: "x"}.Message())
	assert.Equal(t, "Error processing documents: HTTP 500",
		Result{Failure: FailureStatus, Err: &httputil.StatusError{Code: 500}}.Message())
}

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	path, err := Save(dir, "", "# first")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "workflow-mapping.md"), path)

	path, err = Save(dir, "", "# second")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# second", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCopy(t *testing.T) {
	var got string
	orig := writeClipboard
	t.Cleanup(func() { writeClipboard = orig })

	writeClipboard = func(s string) error {
		got = s
		return nil
	}
	require.NoError(t, Copy("# mapping"))
	assert.Equal(t, "# mapping", got)

	writeClipboard = func(string) error { return errors.New("no xclip") }
	assert.ErrorContains(t, Copy("x"), "copying to clipboard")
}
