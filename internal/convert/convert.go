// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert decodes uploaded files into the text that is embedded in
// the workflow-mapping prompt. Plain files are read as UTF-8; office and PDF
// formats can be routed through a conversion container.
package convert

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pdiddy/workflow-mapper/pkg/types"
)

// Decoder turns one uploaded file into text.
type Decoder interface {
	Decode(ctx context.Context, f types.UploadedFile) (string, error)
}

// TextDecoder reads the file bytes as UTF-8. Invalid sequences are replaced
// with U+FFFD rather than failing, so only I/O errors abort a batch.
type TextDecoder struct{}

// Decode implements Decoder.
func (TextDecoder) Decode(_ context.Context, f types.UploadedFile) (string, error) {
	if f.Open == nil {
		return "", fmt.Errorf("reading %s: no content source", f.Name)
	}
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", f.Name, err)
	}
	return strings.ToValidUTF8(string(data), "�"), nil
}

// Router picks a decoder by lowercase file extension, falling back to
// Default for everything else.
type Router struct {
	Default Decoder
	ByExt   map[string]Decoder
}

// Decode implements Decoder.
func (r Router) Decode(ctx context.Context, f types.UploadedFile) (string, error) {
	if d, ok := r.ByExt[strings.ToLower(filepath.Ext(f.Name))]; ok {
		return d.Decode(ctx, f)
	}
	if r.Default == nil {
		return TextDecoder{}.Decode(ctx, f)
	}
	return r.Default.Decode(ctx, f)
}

// DecodeAll decodes every file in order. The first failure aborts the whole
// batch and no partial results are returned.
func DecodeAll(ctx context.Context, d Decoder, files []types.UploadedFile) ([]types.DecodedDocument, error) {
	docs := make([]types.DecodedDocument, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, err := d.Decode(ctx, f)
		if err != nil {
			return nil, err
		}
		docs = append(docs, types.DecodedDocument{Name: f.Name, Content: content})
	}
	return docs, nil
}
