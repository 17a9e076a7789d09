// Package embedding provides embedding provider adapters.
// Adapters implement ports.Embedder; the rest of the pipeline never talks to
// a provider directly.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"medibot/internal/domain/ports"
)

// HuggingFaceEmbedder implements ports.Embedder against the Hugging Face
// Inference feature-extraction pipeline.
type HuggingFaceEmbedder struct {
	baseURL string
	model   string
	token   string
	client  *http.Client
}

// NewHuggingFaceEmbedder creates the adapter. The token is required; an empty
// token fails with ports.ErrMissingCredential so the page refuses to start
// rather than failing per request.
func NewHuggingFaceEmbedder(baseURL, model, token string, timeout time.Duration) (*HuggingFaceEmbedder, error) {
	if token == "" {
		return nil, fmt.Errorf("hugging face embedder: HF_TOKEN not set: %w", ports.ErrMissingCredential)
	}
	if baseURL == "" {
		baseURL = "https://api-inference.huggingface.co"
	}
	if model == "" {
		model = "sentence-transformers/all-MiniLM-L6-v2"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HuggingFaceEmbedder{
		baseURL: baseURL,
		model:   model,
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

type featureExtractionRequest struct {
	Inputs []string `json:"inputs"`
}

// Embed generates an embedding for a single text.
func (a *HuggingFaceEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := a.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one call.
func (a *HuggingFaceEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	jsonData, err := json.Marshal(featureExtractionRequest{Inputs: texts})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := a.baseURL + "/pipeline/feature-extraction/" + a.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.token)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling feature extraction: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feature extraction returned status %d", resp.StatusCode)
	}

	var vectors [][]float32
	if err := json.NewDecoder(resp.Body).Decode(&vectors); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(vectors))
	}
	return vectors, nil
}
