// Package config loads the application configuration from YAML.
package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// IndexConfig locates the pre-built passage index on disk.
type IndexConfig struct {
	Path string `yaml:"path"`
}

// EmbedderConfig selects and configures the embedding provider.
type EmbedderConfig struct {
	Type        string `yaml:"type"` // huggingface | ollama
	Model       string `yaml:"model"`
	BaseURL     string `yaml:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// GeneratorConfig selects and configures the text-generation provider.
// Temperature is a pointer so an explicit 0 (greedy decoding) is
// distinguishable from an absent key.
type GeneratorConfig struct {
	Type        string   `yaml:"type"` // huggingface | ollama
	Model       string   `yaml:"model"`
	BaseURL     string   `yaml:"base_url"`
	TimeoutSecs int      `yaml:"timeout_secs"`
	MaxTokens   int      `yaml:"max_tokens"`
	Temperature *float64 `yaml:"temperature"`
}

// RetrievalConfig configures nearest-neighbor lookup.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// IngestConfig configures index builds.
type IngestConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// AppConfig is the root configuration structure.
type AppConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Index     IndexConfig     `yaml:"index"`
	Embedder  EmbedderConfig  `yaml:"embedder"`
	Generator GeneratorConfig `yaml:"generator"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Ingest    IngestConfig    `yaml:"ingest"`
}

// Load reads a config from path. A missing file yields the defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Index.Path == "" {
		cfg.Index.Path = "vectorstore"
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "huggingface"
	}
	if cfg.Embedder.Model == "" && cfg.Embedder.Type == "huggingface" {
		cfg.Embedder.Model = "sentence-transformers/all-MiniLM-L6-v2"
	}
	if cfg.Embedder.TimeoutSecs == 0 {
		cfg.Embedder.TimeoutSecs = 60
	}
	if cfg.Generator.Type == "" {
		cfg.Generator.Type = "huggingface"
	}
	if cfg.Generator.Model == "" && cfg.Generator.Type == "huggingface" {
		cfg.Generator.Model = "mistralai/Mistral-7B-Instruct-v0.3"
	}
	if cfg.Generator.TimeoutSecs == 0 {
		cfg.Generator.TimeoutSecs = 120
	}
	if cfg.Generator.MaxTokens == 0 {
		cfg.Generator.MaxTokens = 512
	}
	if cfg.Generator.Temperature == nil {
		temperature := 0.5
		cfg.Generator.Temperature = &temperature
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 3
	}
	if cfg.Ingest.ChunkSize == 0 {
		cfg.Ingest.ChunkSize = 500
	}
	if cfg.Ingest.ChunkOverlap == 0 {
		cfg.Ingest.ChunkOverlap = 50
	}
}
