// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package intake

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/workflow-mapper/pkg/types"
)

// EmptyPlaceholder is shown when nothing has been selected.
const EmptyPlaceholder = "No files uploaded yet"

// Row is one rendered entry of the file listing. A row with Error set is a
// rejected file and carries only its name and the message.
type Row struct {
	Icon  string `json:"icon,omitempty" msgpack:"icon,omitempty"`
	Name  string `json:"name" msgpack:"name"`
	Size  string `json:"size,omitempty" msgpack:"size,omitempty"`
	Error string `json:"error,omitempty" msgpack:"error,omitempty"`
}

// Listing is the view projection of a WorkingSet. It carries everything a
// renderer needs and nothing that depends on the rendering target.
type Listing struct {
	Header      string `json:"header,omitempty" msgpack:"header,omitempty"`
	Rows        []Row  `json:"rows" msgpack:"rows"`
	Ready       string `json:"ready,omitempty" msgpack:"ready,omitempty"`
	Placeholder string `json:"placeholder,omitempty" msgpack:"placeholder,omitempty"`
	ShowConfig  bool   `json:"showConfig" msgpack:"showConfig"`
	ShowProcess bool   `json:"showProcess" msgpack:"showProcess"`
}

// Render projects the working set into a Listing. Rows follow the order of
// the latest selection, rejections included.
func Render(ws *WorkingSet) Listing {
	files := ws.files
	rejected := ws.rejected

	l := Listing{Rows: []Row{}}
	if len(files) == 0 && len(rejected) == 0 {
		l.Placeholder = EmptyPlaceholder
		return l
	}

	l.Header = fmt.Sprintf("Uploaded Files (%d):", len(files)+len(rejected))
	next := 0
	accept := func() {
		f := files[next]
		l.Rows = append(l.Rows, Row{Icon: Icon(f.Name), Name: f.Name, Size: FormatSize(f.Size)})
		next++
	}
	for _, r := range rejected {
		for len(l.Rows) < r.pos && next < len(files) {
			accept()
		}
		l.Rows = append(l.Rows, Row{Name: r.Name, Error: fmt.Sprintf("⚠️ %s is too large (%.2f MB). Max size is %s.",
			r.Name, float64(r.Size)/types.MiB, limitLabel(ws.maxSize))})
	}
	for next < len(files) {
		accept()
	}
	if len(files) > 0 {
		l.Ready = fmt.Sprintf("✓ %d file(s) ready for processing", len(files))
		l.ShowConfig = true
		l.ShowProcess = true
	}
	return l
}

// FormatSize renders a byte count as KB, or MB above one mebibyte, with
// two decimals.
func FormatSize(size int64) string {
	if size > types.MiB {
		return fmt.Sprintf("%.2f MB", float64(size)/types.MiB)
	}
	return fmt.Sprintf("%.2f KB", float64(size)/1024)
}

// Icon picks the listing icon from the file extension.
func Icon(name string) string {
	switch {
	case strings.HasSuffix(name, ".txt"):
		return "📝"
	case strings.HasSuffix(name, ".doc"), strings.HasSuffix(name, ".docx"):
		return "📋"
	default:
		return "📄"
	}
}

func limitLabel(maxSize int64) string {
	if maxSize%types.MiB == 0 {
		return fmt.Sprintf("%dMB", maxSize/types.MiB)
	}
	return FormatSize(maxSize)
}

// WriteListing prints a Listing for terminal output.
func WriteListing(w io.Writer, l Listing) {
	if l.Placeholder != "" {
		fmt.Fprintln(w, l.Placeholder)
		return
	}
	fmt.Fprintln(w, l.Header)
	for _, r := range l.Rows {
		if r.Error != "" {
			fmt.Fprintln(w, r.Error)
			continue
		}
		fmt.Fprintf(w, "  %s %-40s %12s\n", r.Icon, r.Name, r.Size)
	}
	if l.Ready != "" {
		fmt.Fprintln(w, l.Ready)
	}
}
