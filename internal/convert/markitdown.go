// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pdiddy/workflow-mapper/internal/container"
	"github.com/pdiddy/workflow-mapper/pkg/types"
)

// ImageMarkitdown is the container image used for PDF and Word documents.
const ImageMarkitdown = "markitdown:latest"

// MarkitdownExtensions lists the file types routed through markitdown.
var MarkitdownExtensions = []string{".pdf", ".doc", ".docx"}

// MarkitdownDecoder pipes documents through the markitdown container image.
type MarkitdownDecoder struct {
	runtime container.Runtime
	image   string
}

// NewMarkitdownDecoder verifies that image exists in rt before returning.
// An empty image selects ImageMarkitdown.
func NewMarkitdownDecoder(ctx context.Context, rt container.Runtime, image string) (*MarkitdownDecoder, error) {
	if image == "" {
		image = ImageMarkitdown
	}
	if err := rt.ImageExists(ctx, image); err != nil {
		return nil, fmt.Errorf("markitdown image not available in %s: %w", rt.Name(), err)
	}
	return &MarkitdownDecoder{runtime: rt, image: image}, nil
}

// Decode implements Decoder.
func (m *MarkitdownDecoder) Decode(ctx context.Context, f types.UploadedFile) (string, error) {
	if f.Open == nil {
		return "", fmt.Errorf("reading %s: no content source", f.Name)
	}
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()

	var out bytes.Buffer
	if err := m.runtime.Run(ctx, m.image, rc, &out); err != nil {
		return "", fmt.Errorf("converting %s with markitdown: %w", f.Name, err)
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("markitdown produced empty output for %s", f.Name)
	}
	return out.String(), nil
}

// NewRouter returns a Router that sends MarkitdownExtensions to md and
// everything else to TextDecoder. A nil md yields a text-only router.
func NewRouter(md Decoder) Router {
	r := Router{Default: TextDecoder{}, ByExt: map[string]Decoder{}}
	if md == nil {
		return r
	}
	for _, ext := range MarkitdownExtensions {
		r.ByExt[ext] = md
	}
	return r
}
