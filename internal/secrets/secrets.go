// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file is one secret: the filename is the key name and the trimmed file
// contents are the value. The only key the tool reads is gemini-api-key.
package secrets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// GeminiAPIKey is the secret file holding the Gemini API key.
	GeminiAPIKey = "gemini-api-key"

	// EnvGeminiAPIKey is the conventional environment variable for the key.
	EnvGeminiAPIKey = "GEMINI_API_KEY"

	// DefaultDir is where secret files are looked up.
	DefaultDir = ".secrets/"
)

// Set maps secret names to values.
type Set map[string]string

// Names returns the loaded secret names, sorted. Values are never listed.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Load reads every regular, non-hidden file in dir. A missing directory is
// an empty Set. Unreadable files are reported to warn and skipped.
func Load(dir string, warn io.Writer) (Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Set{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}
	if warn == nil {
		warn = os.Stderr
	}

	set := make(Set)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(warn, "warning: could not read secret %s: %v\n", name, err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			set[name] = value
		}
	}
	return set, nil
}

// FirstNonEmpty returns the first candidate that is not blank, or "" when
// none is set. Callers list credential sources in precedence order.
func FirstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if v := strings.TrimSpace(c); v != "" {
			return v
		}
	}
	return ""
}
