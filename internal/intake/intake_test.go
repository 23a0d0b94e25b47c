// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package intake

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/workflow-mapper/pkg/types"
)

func candidate(name string, size int64) types.UploadedFile {
	return types.UploadedFile{
		Name: name,
		Size: size,
		Open: func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader("")), nil },
	}
}

// rejectionLines returns the error text of every rejected row.
func rejectionLines(l Listing) []string {
	var out []string
	for _, r := range l.Rows {
		if r.Error != "" {
			out = append(out, r.Error)
		}
	}
	return out
}

func names(files []types.UploadedFile) []string {
	var out []string
	for _, f := range files {
		out = append(out, f.Name)
	}
	return out
}

func TestSelect_RejectsOversized(t *testing.T) {
	ws := NewWorkingSet(0)
	rejected := ws.Select([]types.UploadedFile{
		candidate("small.txt", 100),
		candidate("exact.pdf", 10*types.MiB),
		candidate("huge.pdf", 10*types.MiB+1),
	})

	require.Len(t, rejected, 1)
	assert.Equal(t, "huge.pdf", rejected[0].Name)
	assert.Equal(t, []string{"small.txt", "exact.pdf"}, names(ws.Files()))

	errs := rejectionLines(Render(ws))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "huge.pdf")
	assert.Contains(t, errs[0], "is too large (10.00 MB). Max size is 10MB.")
}

func TestSelect_ReplacesPreviousSelection(t *testing.T) {
	ws := NewWorkingSet(0)
	ws.Select([]types.UploadedFile{candidate("a.txt", 1), candidate("b.txt", 2)})
	ws.Select([]types.UploadedFile{candidate("c.txt", 3)})

	assert.Equal(t, []string{"c.txt"}, names(ws.Files()))
}

func TestSelect_CustomLimit(t *testing.T) {
	ws := NewWorkingSet(1024)
	rejected := ws.Select([]types.UploadedFile{candidate("a.txt", 1025)})
	require.Len(t, rejected, 1)
	assert.True(t, ws.IsEmpty())
	assert.Contains(t, rejectionLines(Render(ws))[0], "Max size is 1.00 KB.")
}

func TestRemove(t *testing.T) {
	tests := []struct {
		name   string
		start  []string
		remove []string
		want   []string
	}{
		{name: "remove middle", start: []string{"a", "b", "c"}, remove: []string{"b"}, want: []string{"a", "c"}},
		{name: "remove all", start: []string{"a", "b"}, remove: []string{"a", "b"}, want: nil},
		{name: "remove first duplicate only", start: []string{"a", "a", "b"}, remove: []string{"a"}, want: []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := NewWorkingSet(0)
			var cands []types.UploadedFile
			for _, n := range tt.start {
				cands = append(cands, candidate(n, 10))
			}
			ws.Select(cands)
			for _, n := range tt.remove {
				require.NoError(t, ws.Remove(n))
			}
			assert.Equal(t, tt.want, names(ws.Files()))

			l := Render(ws)
			var rendered []string
			for _, r := range l.Rows {
				rendered = append(rendered, r.Name)
			}
			assert.Equal(t, tt.want, rendered)
			if len(tt.want) == 0 {
				assert.Equal(t, EmptyPlaceholder, l.Placeholder)
				assert.False(t, l.ShowConfig)
				assert.False(t, l.ShowProcess)
			} else {
				assert.True(t, l.ShowConfig)
				assert.True(t, l.ShowProcess)
			}
		})
	}
}

func TestRemove_UnknownName(t *testing.T) {
	ws := NewWorkingSet(0)
	ws.Select([]types.UploadedFile{candidate("a.txt", 1)})
	err := ws.Remove("missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, ws.Len())
}

func TestRemove_ClearsRejections(t *testing.T) {
	ws := NewWorkingSet(0)
	ws.Select([]types.UploadedFile{candidate("a.txt", 1), candidate("b.txt", 1), candidate("big.pdf", 11*types.MiB)})
	assert.Equal(t, "Uploaded Files (3):", Render(ws).Header)

	require.NoError(t, ws.Remove("a.txt"))
	l := Render(ws)
	assert.Empty(t, rejectionLines(l))
	assert.Equal(t, "Uploaded Files (1):", l.Header)
}

func TestRender_KeepsSelectionOrder(t *testing.T) {
	ws := NewWorkingSet(0)
	ws.Select([]types.UploadedFile{
		candidate("a.txt", 1),
		candidate("big1.pdf", 11*types.MiB),
		candidate("b.txt", 1),
		candidate("c.txt", 1),
		candidate("big2.pdf", 12*types.MiB),
	})

	l := Render(ws)
	var order []string
	for _, r := range l.Rows {
		order = append(order, r.Name)
	}
	assert.Equal(t, []string{"a.txt", "big1.pdf", "b.txt", "c.txt", "big2.pdf"}, order)
	assert.Empty(t, l.Rows[0].Error)
	assert.Contains(t, l.Rows[1].Error, "big1.pdf is too large (11.00 MB)")
	assert.Contains(t, l.Rows[4].Error, "big2.pdf is too large (12.00 MB)")

	var b strings.Builder
	WriteListing(&b, l)
	out := b.String()
	assert.Less(t, strings.Index(out, "a.txt"), strings.Index(out, "big1.pdf"))
	assert.Less(t, strings.Index(out, "big1.pdf"), strings.Index(out, "b.txt"))
}

func TestRender_SingleTextFile(t *testing.T) {
	ws := NewWorkingSet(0)
	ws.Select([]types.UploadedFile{candidate("notes.txt", 2048)})

	l := Render(ws)
	require.Len(t, l.Rows, 1)
	assert.Equal(t, Row{Icon: "📝", Name: "notes.txt", Size: "2.00 KB"}, l.Rows[0])
	assert.Equal(t, "Uploaded Files (1):", l.Header)
	assert.Equal(t, "✓ 1 file(s) ready for processing", l.Ready)
	assert.Empty(t, l.Placeholder)
}

func TestRender_Empty(t *testing.T) {
	l := Render(NewWorkingSet(0))
	assert.Equal(t, EmptyPlaceholder, l.Placeholder)
	assert.Empty(t, l.Header)
	assert.False(t, l.ShowConfig)
}

func TestRender_AllRejected(t *testing.T) {
	ws := NewWorkingSet(0)
	ws.Select([]types.UploadedFile{candidate("big.pdf", 20*types.MiB)})
	l := Render(ws)
	assert.Empty(t, l.Placeholder)
	assert.Empty(t, l.Ready)
	assert.Len(t, rejectionLines(l), 1)
	assert.False(t, l.ShowProcess)
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0.00 KB"},
		{512, "0.50 KB"},
		{2048, "2.00 KB"},
		{types.MiB, "1024.00 KB"},
		{types.MiB + 1, "1.00 MB"},
		{5*types.MiB + types.MiB/2, "5.50 MB"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatSize(tt.size))
		})
	}
}

func TestIcon(t *testing.T) {
	assert.Equal(t, "📄", Icon("report.pdf"))
	assert.Equal(t, "📝", Icon("notes.txt"))
	assert.Equal(t, "📋", Icon("memo.doc"))
	assert.Equal(t, "📋", Icon("memo.docx"))
	assert.Equal(t, "📄", Icon("data.csv"))
}

func TestFromPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	files, err := FromPaths([]string{path})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "notes.txt", files[0].Name)
	assert.Equal(t, int64(5), files[0].Size)

	rc, err := files[0].Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = FromPaths([]string{filepath.Join(dir, "missing.txt")})
	assert.Error(t, err)

	_, err = FromPaths([]string{dir})
	assert.ErrorContains(t, err, "is a directory")
}

func TestWriteListing(t *testing.T) {
	ws := NewWorkingSet(0)
	ws.Select([]types.UploadedFile{candidate("notes.txt", 2048)})

	var b strings.Builder
	WriteListing(&b, Render(ws))
	out := b.String()
	assert.Contains(t, out, "Uploaded Files (1):")
	assert.Contains(t, out, "notes.txt")
	assert.Contains(t, out, "2.00 KB")
	assert.Contains(t, out, "✓ 1 file(s) ready for processing")

	b.Reset()
	WriteListing(&b, Render(NewWorkingSet(0)))
	assert.Equal(t, EmptyPlaceholder+"\n", b.String())
}

func TestFromMultipart(t *testing.T) {
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	for name, content := range map[string]string{"notes.txt": "hello", "big.pdf": strings.Repeat("x", 64)} {
		part, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	files, err := FromMultipart(req.MultipartForm.File["files"], 32)
	require.NoError(t, err)
	require.Len(t, files, 2)
	require.NoError(t, req.MultipartForm.RemoveAll())

	ws := NewWorkingSet(32)
	rejected := ws.Select(files)
	require.Len(t, rejected, 1)
	assert.Equal(t, "big.pdf", rejected[0].Name)

	rc, err := ws.Files()[0].Open()
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}
