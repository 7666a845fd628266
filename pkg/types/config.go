package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that call remote
// services.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout for non-streaming calls.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "tumorboard/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// NotesConfig holds settings for the Note Understanding stage.
// Per prd002-notes R5.1-R5.3.
type NotesConfig struct {
	HTTPConfig `yaml:",inline"`

	// DiseaseURL is the endpoint that extracts the primary disease from
	// case notes.
	DiseaseURL string `json:"disease_url" yaml:"disease_url"`

	// EventsURL is the endpoint that extracts actionable events from
	// case notes.
	EventsURL string `json:"events_url" yaml:"events_url"`

	// MaxRetries is the number of retry attempts on rate-limited or
	// temporarily unavailable responses (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// RetrievalConfig holds settings for the article analysis stream.
// Per prd003-analysis R5.1-R5.4.
type RetrievalConfig struct {
	HTTPConfig `yaml:",inline"`

	// AnalyzeURL is the endpoint that retrieves and analyzes articles,
	// returning a newline-delimited JSON event stream.
	AnalyzeURL string `json:"analyze_url" yaml:"analyze_url"`

	// MaxWait bounds the total lifetime of one analysis stream. The
	// upstream protocol defines no timeout of its own, so a stalled stream
	// is cut off here (default 10m). Zero disables the bound.
	MaxWait time.Duration `json:"max_wait" yaml:"max_wait"`

	// MaxRetries is the number of retry attempts for the initial request
	// (default 3). An established stream is never retried mid-flight.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// StoreConfig holds settings for the review history store.
// Per prd004-history R1.2, R2.3.
type StoreConfig struct {
	// ReviewsDir is the base directory for review history (contains index/).
	ReviewsDir string `json:"reviews_dir" yaml:"reviews_dir"`

	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ServerConfig holds settings for the HTTP server.
type ServerConfig struct {
	// Addr is the listen address (e.g. ":8086").
	Addr string `json:"addr" yaml:"addr"`

	// ShutdownGrace bounds graceful shutdown on SIGINT/SIGTERM (default 30s).
	ShutdownGrace time.Duration `json:"shutdown_grace" yaml:"shutdown_grace"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Notes     NotesConfig     `json:"notes" yaml:"notes"`
	Retrieval RetrievalConfig `json:"retrieval" yaml:"retrieval"`
	Store     StoreConfig     `json:"store" yaml:"store"`
	Server    ServerConfig    `json:"server" yaml:"server"`
}
