// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "io"

// UploadedFile is one accepted member of the working set. It is held only
// in memory for the lifetime of a session.
type UploadedFile struct {
	// Name is the file's base name as selected by the user.
	Name string `json:"name" yaml:"name"`

	// Size is the file size in bytes.
	Size int64 `json:"size" yaml:"size"`

	// Open returns a fresh reader over the file's bytes.
	Open func() (io.ReadCloser, error) `json:"-" yaml:"-"`
}

// DecodedDocument is an UploadedFile whose bytes have been decoded to text.
type DecodedDocument struct {
	Name    string `json:"name" yaml:"name"`
	Content string `json:"content" yaml:"content"`
}
