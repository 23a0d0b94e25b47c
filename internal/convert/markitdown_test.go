// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRuntime implements container.Runtime with canned behaviour.
type fakeRuntime struct {
	imageErr error
	runErr   error
	output   string
}

func (f *fakeRuntime) Name() string { return "fake" }
func (f *fakeRuntime) Available(context.Context) bool { return true }
func (f *fakeRuntime) ImageExists(context.Context, string) error { return f.imageErr }

func (f *fakeRuntime) Run(_ context.Context, _ string, stdin io.Reader, stdout io.Writer) error {
	if f.runErr != nil {
		return f.runErr
	}
	if _, err := io.ReadAll(stdin); err != nil {
		return err
	}
	_, err := io.WriteString(stdout, f.output)
	return err
}

func TestNewMarkitdownDecoder_MissingImage(t *testing.T) {
	_, err := NewMarkitdownDecoder(context.Background(), &fakeRuntime{imageErr: errors.New("no such image")}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "markitdown image not available in fake")
}

func TestMarkitdownDecoder_Decode(t *testing.T) {
	tests := []struct {
		name    string
		rt      *fakeRuntime
		want    string
		wantErr string
	}{
		{name: "converted text", rt: &fakeRuntime{output: "# Intake Procedure\n"}, want: "# Intake Procedure\n"},
		{name: "container failure", rt: &fakeRuntime{runErr: errors.New("exit 1")}, wantErr: "converting memo.docx with markitdown"},
		{name: "empty output", rt: &fakeRuntime{}, wantErr: "empty output"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewMarkitdownDecoder(context.Background(), tt.rt, "")
			require.NoError(t, err)

			got, err := d.Decode(context.Background(), textFile("memo.docx", "PK\x03\x04"))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
