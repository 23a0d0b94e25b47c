// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gemini calls the Gemini generateContent endpoint with a single
// user prompt and returns the first candidate's text.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/pdiddy/workflow-mapper/pkg/types"
)

// ErrMalformedResponse is returned when a successful response lacks
// candidates[0].content.parts[0].text.
var ErrMalformedResponse = errors.New("malformed generateContent response")

// Backend abstracts the generation API so callers and tests can swap the
// REST client, the generated Google client, or a fake.
type Backend interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// New returns the backend selected by cfg.Backend. client is used by the
// REST backend and may be nil.
func New(ctx context.Context, cfg types.GeminiConfig, client *http.Client) (Backend, error) {
	switch cfg.Backend {
	case types.BackendREST, "":
		return NewRESTBackend(cfg, client), nil
	case types.BackendGoogleAPI:
		return NewAPIBackend(ctx, cfg, client)
	default:
		return nil, fmt.Errorf("unsupported gemini backend %q: use rest or google", cfg.Backend)
	}
}

func temperature(cfg types.GeminiConfig) float64 {
	if cfg.Temperature <= 0 {
		return types.DefaultTemperature
	}
	return cfg.Temperature
}

func maxOutputTokens(cfg types.GeminiConfig) int {
	if cfg.MaxOutputTokens <= 0 {
		return types.DefaultMaxOutputTokens
	}
	return cfg.MaxOutputTokens
}
