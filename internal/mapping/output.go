// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mapping

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"

	"github.com/pdiddy/workflow-mapper/pkg/types"
)

// ContentType is the media type of a saved mapping.
const ContentType = "text/markdown"

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

// Save writes output verbatim to dir/file, replacing any previous mapping
// atomically. An empty file name uses workflow-mapping.md. It returns the
// written path.
func Save(dir, file, output string) (string, error) {
	if file == "" {
		file = types.DefaultOutputFile
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	path := filepath.Join(dir, file)
	if err := writeFileAtomic(path, []byte(output), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// Copy places output on the system clipboard.
func Copy(output string) error {
	if err := writeClipboard(output); err != nil {
		return fmt.Errorf("copying to clipboard: %w", err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".workflow-mapping-*")
	if err != nil {
		return err
	}
	tmpPath := f.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Chmod(perm); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
