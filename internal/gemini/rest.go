// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gemini

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/workflow-mapper/internal/httputil"
	"github.com/pdiddy/workflow-mapper/pkg/types"
)

// RESTBackend posts hand-built JSON to the generateContent URL with the API
// key as the "key" query parameter.
type RESTBackend struct {
	Endpoint        string
	APIKey          string
	UserAgent       string
	Temperature     float64
	MaxOutputTokens int
	Client          *http.Client
}

// NewRESTBackend builds a RESTBackend from configuration.
func NewRESTBackend(cfg types.GeminiConfig, client *http.Client) *RESTBackend {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = types.DefaultGeminiEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &RESTBackend{
		Endpoint:        endpoint,
		APIKey:          cfg.APIKey,
		UserAgent:       cfg.UserAgent,
		Temperature:     temperature(cfg),
		MaxOutputTokens: maxOutputTokens(cfg),
		Client:          client,
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate implements Backend.
func (b *RESTBackend) Generate(ctx context.Context, prompt string) (string, error) {
	u, err := url.Parse(b.Endpoint)
	if err != nil {
		return "", fmt.Errorf("parsing endpoint: %w", err)
	}
	q := u.Query()
	q.Set("key", b.APIKey)
	u.RawQuery = q.Encode()

	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     b.Temperature,
			MaxOutputTokens: b.MaxOutputTokens,
		},
	}

	var resp generateResponse
	if err := httputil.PostJSON(ctx, b.Client, u.String(), b.UserAgent, reqBody, &resp); err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 || resp.Candidates[0].Content.Parts[0].Text == nil {
		return "", ErrMalformedResponse
	}
	return *resp.Candidates[0].Content.Parts[0].Text, nil
}
