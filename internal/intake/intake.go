// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package intake validates selected files and holds the working set of
// documents waiting to be turned into a workflow mapping.
package intake

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/pdiddy/workflow-mapper/pkg/types"
)

// ErrNotFound is returned by Remove when no file has the given name.
var ErrNotFound = errors.New("file not in working set")

// Rejection records a candidate excluded for exceeding the size limit.
type Rejection struct {
	Name string `json:"name" msgpack:"name"`
	Size int64  `json:"size" msgpack:"size"`

	pos int // index within the selection
}

// WorkingSet is the list of accepted files of one session. Selecting new
// files replaces it wholesale; removal is by name.
type WorkingSet struct {
	maxSize  int64
	files    []types.UploadedFile
	rejected []Rejection
}

// NewWorkingSet returns an empty working set that accepts files up to
// maxSize bytes. A non-positive maxSize selects the 10 MiB default.
func NewWorkingSet(maxSize int64) *WorkingSet {
	if maxSize <= 0 {
		maxSize = types.DefaultMaxFileSize
	}
	return &WorkingSet{maxSize: maxSize}
}

// MaxSize returns the per-file byte limit.
func (ws *WorkingSet) MaxSize() int64 { return ws.maxSize }

// Select replaces the working set with the candidates that fit the size
// limit. Every oversized candidate is reported once in the returned slice.
func (ws *WorkingSet) Select(candidates []types.UploadedFile) []Rejection {
	ws.files = nil
	ws.rejected = nil
	for i, c := range candidates {
		if c.Size > ws.maxSize {
			ws.rejected = append(ws.rejected, Rejection{Name: c.Name, Size: c.Size, pos: i})
			continue
		}
		ws.files = append(ws.files, c)
	}
	return ws.rejected
}

// Remove drops the first file named name. Pending rejection notices are
// cleared because the listing is rebuilt from the remaining files only.
func (ws *WorkingSet) Remove(name string) error {
	for i, f := range ws.files {
		if f.Name == name {
			ws.files = append(ws.files[:i:i], ws.files[i+1:]...)
			ws.rejected = nil
			return nil
		}
	}
	return fmt.Errorf("removing %q: %w", name, ErrNotFound)
}

// Files returns a copy of the accepted files in selection order.
func (ws *WorkingSet) Files() []types.UploadedFile {
	out := make([]types.UploadedFile, len(ws.files))
	copy(out, ws.files)
	return out
}

// Rejected returns the oversized candidates of the latest selection.
func (ws *WorkingSet) Rejected() []Rejection {
	out := make([]Rejection, len(ws.rejected))
	copy(out, ws.rejected)
	return out
}

// Len returns the number of accepted files.
func (ws *WorkingSet) Len() int { return len(ws.files) }

// IsEmpty reports whether no files are accepted.
func (ws *WorkingSet) IsEmpty() bool { return len(ws.files) == 0 }

// FromPaths builds candidates from filesystem paths. Directories and
// missing paths are errors; content is opened lazily.
func FromPaths(paths []string) ([]types.UploadedFile, error) {
	out := make([]types.UploadedFile, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", p)
		}
		path := p
		out = append(out, types.UploadedFile{
			Name: filepath.Base(p),
			Size: info.Size(),
			Open: func() (io.ReadCloser, error) { return os.Open(path) },
		})
	}
	return out, nil
}

// FromMultipart builds candidates from uploaded form files. Files within
// maxSize are read into memory because the form's temporary files do not
// outlive the request; larger files keep only their size, since Select
// rejects them anyway.
func FromMultipart(headers []*multipart.FileHeader, maxSize int64) ([]types.UploadedFile, error) {
	if maxSize <= 0 {
		maxSize = types.DefaultMaxFileSize
	}
	out := make([]types.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		f := types.UploadedFile{Name: filepath.Base(fh.Filename), Size: fh.Size}
		if fh.Size <= maxSize {
			data, err := readHeader(fh)
			if err != nil {
				return nil, fmt.Errorf("reading upload %s: %w", f.Name, err)
			}
			f.Open = func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil }
		}
		out = append(out, f)
	}
	return out, nil
}

func readHeader(fh *multipart.FileHeader) ([]byte, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return io.ReadAll(src)
}
