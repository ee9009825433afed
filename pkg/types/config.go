// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"path/filepath"
	"time"
)

// HTTPConfig holds shared HTTP settings for stages that make network
// requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paperboi/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// StorageConfig holds the fixed directory layout. All paths are created
// at startup if absent.
type StorageConfig struct {
	// BaseDir is the root under which the four stores live.
	BaseDir string `json:"base_dir" yaml:"base_dir"`
}

// PapersDir is where downloaded PDFs are stored.
func (c StorageConfig) PapersDir() string { return filepath.Join(c.BaseDir, "full_papers") }

// SummariesDir is where generated summaries are stored.
func (c StorageConfig) SummariesDir() string { return filepath.Join(c.BaseDir, "summaries") }

// MetadataDir holds per-paper records and the master index.
func (c StorageConfig) MetadataDir() string { return filepath.Join(c.BaseDir, "metadata") }

// ErrorsDir holds the per-day append-only error logs.
func (c StorageConfig) ErrorsDir() string { return filepath.Join(c.BaseDir, "error_log") }

// IndexDir holds the SQLite summary search index.
func (c StorageConfig) IndexDir() string { return filepath.Join(c.BaseDir, "index") }

// Dirs lists the directories created at startup.
func (c StorageConfig) Dirs() []string {
	return []string{c.PapersDir(), c.SummariesDir(), c.MetadataDir(), c.ErrorsDir(), c.IndexDir()}
}

// AssistantConfig holds settings for the external summarization
// assistant. The assistant itself is pre-provisioned; AssistantID
// addresses it, the system does not define or train it.
type AssistantConfig struct {
	// APIKey authenticates against the assistant API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// AssistantID is the pre-provisioned assistant profile.
	AssistantID string `json:"assistant_id" yaml:"assistant_id"`

	// BaseURL overrides the API endpoint; empty means the provider
	// default. Tests point this at an httptest server.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// PollInterval is the delay between run-status polls (default 1s).
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`

	// UploadRetries is the number of retries allowed per failed chunk
	// upload before the session is abandoned (default 1).
	UploadRetries int `json:"upload_retries" yaml:"upload_retries"`
}

// ChunkConfig holds settings for text chunking.
type ChunkConfig struct {
	// MaxSize is the maximum characters per chunk (default 7500).
	MaxSize int `json:"max_size" yaml:"max_size"`
}

// PipelineConfig groups all settings for an ingestion run. It is built
// once at process start and passed explicitly into constructors.
type PipelineConfig struct {
	HTTP      HTTPConfig      `json:"http" yaml:"http"`
	Storage   StorageConfig   `json:"storage" yaml:"storage"`
	Assistant AssistantConfig `json:"assistant" yaml:"assistant"`
	Chunk     ChunkConfig     `json:"chunk" yaml:"chunk"`
}
