// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/pdiddy/workflow-mapper/internal/httputil"
	"github.com/pdiddy/workflow-mapper/pkg/types"
)

// APIBackend calls generateContent through the typed genai client.
// Authentication is the same single API key as the REST backend.
type APIBackend struct {
	client          *genai.Client
	model           string
	temperature     float32
	maxOutputTokens int32
}

// NewAPIBackend creates the genai client. client may be nil; cfg.BaseURL
// overrides the service root when set.
func NewAPIBackend(ctx context.Context, cfg types.GeminiConfig, client *http.Client) (*APIBackend, error) {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: client,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    cfg.BaseURL,
			APIVersion: "v1beta",
		},
	}
	if cfg.UserAgent != "" {
		cc.HTTPOptions.Headers = http.Header{"User-Agent": []string{cfg.UserAgent}}
	}

	c, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = types.DefaultGeminiModel
	}
	return &APIBackend{
		client:          c,
		model:           model,
		temperature:     float32(temperature(cfg)),
		maxOutputTokens: int32(maxOutputTokens(cfg)),
	}, nil
}

// Generate implements Backend.
func (b *APIBackend) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := b.client.Models.GenerateContent(ctx, b.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(b.temperature),
		MaxOutputTokens: b.maxOutputTokens,
	})
	if err != nil {
		return "", classifyAPIError(err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 || resp.Candidates[0].Content.Parts[0] == nil {
		return "", ErrMalformedResponse
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// classifyAPIError maps genai errors onto the httputil error types so both
// backends report failures the same way.
func classifyAPIError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &httputil.StatusError{Code: apiErr.Code, Body: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return &httputil.StatusError{Code: apiErrPtr.Code, Body: apiErrPtr.Message}
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return &httputil.DecodeError{Err: err}
	}
	return err
}
