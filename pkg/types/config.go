// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// MiB is one mebibyte in bytes.
const MiB = 1024 * 1024

// Defaults shared by the CLI and the HTTP server.
const (
	DefaultGeminiEndpoint  = "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-pro-latest:generateContent"
	DefaultGeminiModel     = "models/gemini-1.5-pro-latest"
	DefaultTemperature     = 0.2
	DefaultMaxOutputTokens = 8192
	DefaultMaxFileSize     = 10 * MiB
	DefaultOutputFile      = "workflow-mapping.md"
	DefaultProgressKey     = "workflowProgress"
	DefaultProgressDB      = "data/progress.db"
	DefaultServerAddr      = "127.0.0.1:8080"
	DefaultBodyLimit       = "64M"
	DefaultSessionTimeout  = 30 * time.Minute
)

// GeminiBackend selects how the generateContent endpoint is called.
type GeminiBackend string

const (
	// BackendREST posts hand-built JSON with net/http.
	BackendREST GeminiBackend = "rest"
	// BackendGoogleAPI uses the typed google.golang.org/genai client.
	BackendGoogleAPI GeminiBackend = "google"
)

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero means no timeout, which is
	// the default for the single best-effort generation call.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// GeminiConfig holds settings for the text-generation call.
type GeminiConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is the single injected credential. Empty is allowed; the
	// request is still sent and fails remotely.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Endpoint is the full generateContent URL used by the REST backend.
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// BaseURL overrides the service root used by the google backend.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// Model is the resource name used by the google backend (e.g. "models/gemini-1.5-pro-latest").
	Model string `json:"model" yaml:"model"`

	// Backend selects the client implementation: rest or google.
	Backend GeminiBackend `json:"backend" yaml:"backend"`

	// Temperature is the sampling temperature (default 0.2).
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxOutputTokens is the output length ceiling (default 8192).
	MaxOutputTokens int `json:"max_output_tokens" yaml:"max_output_tokens"`
}

// IntakeConfig holds file intake limits.
type IntakeConfig struct {
	// MaxFileSize is the largest accepted file in bytes (default 10 MiB).
	MaxFileSize int64 `json:"max_file_size" yaml:"max_file_size"`

	// Convert routes .pdf/.doc/.docx files through the markitdown container
	// instead of plain text decoding.
	Convert bool `json:"convert" yaml:"convert"`
}

// OutputConfig controls where generated workflow mappings are written.
type OutputConfig struct {
	// Dir is the directory for the downloaded markdown file.
	Dir string `json:"dir" yaml:"dir"`

	// File is the markdown filename (default "workflow-mapping.md").
	File string `json:"file" yaml:"file"`
}

// ProgressConfig holds settings for the progress tracker's persistence.
type ProgressConfig struct {
	// DBPath is the SQLite database holding the key-value table.
	DBPath string `json:"db" yaml:"db"`

	// Key is the storage key of the completed-steps record.
	Key string `json:"key" yaml:"key"`

	// StepsFile optionally overrides the embedded step catalog.
	StepsFile string `json:"steps_file,omitempty" yaml:"steps_file,omitempty"`
}

// ServerConfig holds settings for the HTTP surface.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `json:"addr" yaml:"addr"`

	// BodyLimit caps request bodies (echo size syntax, e.g. "64M").
	BodyLimit string `json:"body_limit" yaml:"body_limit"`

	// SessionTimeout is the idle time after which a page session is dropped.
	SessionTimeout time.Duration `json:"session_timeout" yaml:"session_timeout"`

	// RequestLogging enables echo's request logger.
	RequestLogging bool `json:"request_logging" yaml:"request_logging"`
}

// AppConfig groups all component configurations.
type AppConfig struct {
	Gemini   GeminiConfig   `json:"gemini" yaml:"gemini"`
	Intake   IntakeConfig   `json:"intake" yaml:"intake"`
	Output   OutputConfig   `json:"output" yaml:"output"`
	Progress ProgressConfig `json:"progress" yaml:"progress"`
	Server   ServerConfig   `json:"server" yaml:"server"`
}

// DefaultConfig returns an AppConfig with every default applied.
func DefaultConfig() AppConfig {
	return AppConfig{
		Gemini: GeminiConfig{
			HTTPConfig:      HTTPConfig{UserAgent: "workflow-mapper/0.1"},
			Endpoint:        DefaultGeminiEndpoint,
			Model:           DefaultGeminiModel,
			Backend:         BackendREST,
			Temperature:     DefaultTemperature,
			MaxOutputTokens: DefaultMaxOutputTokens,
		},
		Intake: IntakeConfig{MaxFileSize: DefaultMaxFileSize},
		Output: OutputConfig{Dir: ".", File: DefaultOutputFile},
		Progress: ProgressConfig{
			DBPath: DefaultProgressDB,
			Key:    DefaultProgressKey,
		},
		Server: ServerConfig{
			Addr:           DefaultServerAddr,
			BodyLimit:      DefaultBodyLimit,
			SessionTimeout: DefaultSessionTimeout,
			RequestLogging: true,
		},
	}
}
