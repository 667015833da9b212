// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds HTTP settings for the search provider.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-index/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ArxivConfig holds settings for the arXiv search backend.
type ArxivConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the arXiv API query endpoint.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// RequestInterval is the minimum spacing between API calls. arXiv asks
	// for no more than one request every three seconds.
	RequestInterval time.Duration `json:"request_interval" yaml:"request_interval" mapstructure:"request_interval"`

	// MaxRetries bounds retries on HTTP 429 and 503 responses.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// CatalogConfig holds settings for the SQLite catalog.
type CatalogConfig struct {
	// Path is the catalog database file. Empty means catalog.db under PaperDir.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// Config groups all paper-index settings.
type Config struct {
	// PaperDir is the root directory holding one subdirectory per topic.
	PaperDir string `json:"paper_dir" yaml:"paper_dir" mapstructure:"paper_dir"`

	// MaxResults is the default number of search results per search (default 5).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level" yaml:"log_level" mapstructure:"log_level"`

	Arxiv   ArxivConfig   `json:"arxiv" yaml:"arxiv" mapstructure:"arxiv"`
	Catalog CatalogConfig `json:"catalog" yaml:"catalog" mapstructure:"catalog"`
}
