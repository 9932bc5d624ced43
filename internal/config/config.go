// Package config loads the pipeline configuration from a YAML file
// with documented defaults, then overlays secrets and endpoint
// overrides from the environment. Credentials never live in the file.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultChunkSize       = 1000
	DefaultChunkOverlap    = 100
	DefaultEmbedBatchSize  = 100
	DefaultInsertBatchSize = 200
	DefaultTopK            = 3
	DefaultEndpoint        = "http://localhost:11434/api/embeddings"
	DefaultModel           = "qwen3-embedding:0.6b"
	DefaultDimensions      = 1024
)

type Config struct {
	Document DocumentConfig `yaml:"document"`
	Chunking ChunkingConfig `yaml:"chunking"`
	Embedder EmbedderConfig `yaml:"embedder"`
	Store    StoreConfig    `yaml:"store"`
	Query    QueryConfig    `yaml:"query"`
}

type DocumentConfig struct {
	// Path doubles as the metadata source value used for query
	// filtering, so it must match between ingest and query runs.
	Path string `yaml:"path"`
	// ID must stay stable across re-ingestion; a changed ID leaves the
	// previous generation of chunks behind as a separate document.
	ID string `yaml:"id"`
}

type ChunkingConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// EmbedderConfig selects the embedding client. Type "http" posts
// {model, input} to Endpoint and accepts both documented response
// shapes; type "openai" goes through an OpenAI-compatible API.
type EmbedderConfig struct {
	Type       string `yaml:"type"`
	Endpoint   string `yaml:"endpoint"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	BatchSize  int    `yaml:"batch_size"`
	APIKey     string `yaml:"-"`
}

// StoreConfig selects the chunk store backend.
type StoreConfig struct {
	Type            string         `yaml:"type"`
	InsertBatchSize int            `yaml:"insert_batch_size"`
	Supabase        SupabaseConfig `yaml:"supabase"`
	Chromem         ChromemConfig  `yaml:"chromem"`
}

type SupabaseConfig struct {
	URL   string `yaml:"-"`
	Key   string `yaml:"-"`
	Debug bool   `yaml:"debug"`
}

type ChromemConfig struct {
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
	InMemory   bool   `yaml:"in_memory"`
}

type QueryConfig struct {
	TopK int `yaml:"top_k"`
}

// Load reads the config file, applies defaults and overlays the
// environment. A missing file is not an error; defaults plus
// environment still make a runnable chromem setup.
func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyDefaults(&cfg)
	applyEnv(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Chunking.Size <= 0 {
		cfg.Chunking.Size = DefaultChunkSize
	}
	if cfg.Chunking.Overlap <= 0 {
		cfg.Chunking.Overlap = DefaultChunkOverlap
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "http"
	}
	if cfg.Embedder.Endpoint == "" {
		cfg.Embedder.Endpoint = DefaultEndpoint
	}
	if cfg.Embedder.Model == "" {
		cfg.Embedder.Model = DefaultModel
	}
	if cfg.Embedder.Dimensions <= 0 {
		cfg.Embedder.Dimensions = DefaultDimensions
	}
	if cfg.Embedder.BatchSize <= 0 {
		cfg.Embedder.BatchSize = DefaultEmbedBatchSize
	}
	if cfg.Store.Type == "" {
		cfg.Store.Type = "supabase"
	}
	if cfg.Store.InsertBatchSize <= 0 {
		cfg.Store.InsertBatchSize = DefaultInsertBatchSize
	}
	if cfg.Store.Chromem.Path == "" {
		cfg.Store.Chromem.Path = "./chromemdb"
	}
	if cfg.Store.Chromem.Collection == "" {
		cfg.Store.Chromem.Collection = "chunks"
	}
	if cfg.Query.TopK <= 0 {
		cfg.Query.TopK = DefaultTopK
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SUPABASE_DB_URL"); v != "" {
		cfg.Store.Supabase.URL = v
	}
	if v := os.Getenv("SUPABASE_SERVICE_ROLE_KEY"); v != "" {
		cfg.Store.Supabase.Key = v
	}
	if v := os.Getenv("EMBEDDING_API_URL"); v != "" {
		cfg.Embedder.Endpoint = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.Embedder.Model = v
	}
	if v := os.Getenv("EMBEDDING_API_KEY"); v != "" {
		cfg.Embedder.APIKey = v
	}
}

// Validate fails fast on configurations the pipelines cannot run with.
// Missing store credentials have no default and no retry.
func (cfg *Config) Validate() error {
	switch cfg.Store.Type {
	case "supabase":
		if cfg.Store.Supabase.URL == "" || cfg.Store.Supabase.Key == "" {
			return errors.New("SUPABASE_DB_URL and SUPABASE_SERVICE_ROLE_KEY must be set for the supabase store")
		}
	case "chromem":
	default:
		return fmt.Errorf("unknown store type: %q", cfg.Store.Type)
	}

	switch cfg.Embedder.Type {
	case "http":
	case "openai":
		if cfg.Embedder.APIKey == "" {
			return errors.New("EMBEDDING_API_KEY must be set for the openai embedder")
		}
	default:
		return fmt.Errorf("unknown embedder type: %q", cfg.Embedder.Type)
	}

	if cfg.Chunking.Overlap >= cfg.Chunking.Size {
		return fmt.Errorf("chunk overlap %d must be smaller than chunk size %d", cfg.Chunking.Overlap, cfg.Chunking.Size)
	}
	return nil
}
