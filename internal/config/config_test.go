package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "vectorstore", cfg.Index.Path)
	assert.Equal(t, "huggingface", cfg.Embedder.Type)
	assert.Equal(t, 3, cfg.Retrieval.TopK)
	assert.Equal(t, 512, cfg.Generator.MaxTokens)
	require.NotNil(t, cfg.Generator.Temperature)
	assert.Equal(t, 0.5, *cfg.Generator.Temperature)
}

func TestLoad_ExplicitZeroTemperatureSurvivesDefaulting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
generator:
  temperature: 0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)

	require.NoError(t, err)
	require.NotNil(t, cfg.Generator.Temperature)
	assert.Equal(t, 0.0, *cfg.Generator.Temperature)
}

func TestLoad_ParsesYAMLAndFillsGaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  addr: ":9090"
generator:
  type: ollama
  model: llama3.2
retrieval:
  top_k: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "ollama", cfg.Generator.Type)
	assert.Equal(t, "llama3.2", cfg.Generator.Model)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	// gaps filled with defaults
	assert.Equal(t, "vectorstore", cfg.Index.Path)
	assert.Equal(t, 512, cfg.Generator.MaxTokens)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n  - ]["), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
