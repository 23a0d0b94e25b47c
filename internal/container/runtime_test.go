// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockExecutor records piped invocations and answers silent commands from a table.
type mockExecutor struct {
	onPath   map[string]bool
	runnable map[string]bool
	piped    func(name string, args []string, stdin io.Reader, stdout io.Writer) error
	lastArgs []string
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.onPath[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) RunSilent(_ context.Context, name string, args ...string) error {
	key := name + " " + strings.Join(args, " ")
	if m.runnable[key] {
		return nil
	}
	return errors.New("command failed: " + key)
}

func (m *mockExecutor) RunPiped(_ context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error {
	m.lastArgs = args
	if m.piped != nil {
		return m.piped(name, args, stdin, stdout)
	}
	return nil
}

func TestDetectRuntime(t *testing.T) {
	tests := []struct {
		name     string
		exec     *mockExecutor
		wantName string
		wantErr  bool
	}{
		{
			name:     "docker available",
			exec:     &mockExecutor{onPath: map[string]bool{"docker": true}, runnable: map[string]bool{"docker info": true}},
			wantName: "docker",
		},
		{
			name:     "podman fallback",
			exec:     &mockExecutor{onPath: map[string]bool{"podman": true}, runnable: map[string]bool{"podman info": true}},
			wantName: "podman",
		},
		{
			name:     "docker info fails",
			exec:     &mockExecutor{onPath: map[string]bool{"docker": true, "podman": true}, runnable: map[string]bool{"podman info": true}},
			wantName: "podman",
		},
		{
			name:    "none available",
			exec:    &mockExecutor{},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, err := detectRuntime(context.Background(), tt.exec)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "no container runtime available")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, rt.Name())
		})
	}
}

func TestImageExists(t *testing.T) {
	e := &mockExecutor{runnable: map[string]bool{
		"docker image inspect markitdown:latest": true,
		"podman image exists markitdown:latest":  true,
	}}
	ctx := context.Background()

	assert.NoError(t, newDockerRuntime(e).ImageExists(ctx, "markitdown:latest"))
	assert.NoError(t, newPodmanRuntime(e).ImageExists(ctx, "markitdown:latest"))

	err := newDockerRuntime(e).ImageExists(ctx, "other:latest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "other:latest")
}

func TestRun(t *testing.T) {
	e := &mockExecutor{piped: func(name string, _ []string, stdin io.Reader, stdout io.Writer) error {
		data, _ := io.ReadAll(stdin)
		_, err := stdout.Write([]byte(name + ": " + string(data)))
		return err
	}}

	var out bytes.Buffer
	err := newPodmanRuntime(e).Run(context.Background(), "markitdown:latest", strings.NewReader("docx bytes"), &out)
	require.NoError(t, err)
	assert.Equal(t, "podman: docx bytes", out.String())
	assert.Equal(t, []string{"run", "--rm", "-i", "--network", "none", "markitdown:latest"}, e.lastArgs)
}

func TestRun_Failure(t *testing.T) {
	e := &mockExecutor{piped: func(string, []string, io.Reader, io.Writer) error {
		return errors.New("exit status 1")
	}}
	err := newDockerRuntime(e).Run(context.Background(), "markitdown:latest", strings.NewReader(""), io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "running docker container markitdown:latest")
}
