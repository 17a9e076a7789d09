// Package llm provides text-generation adapters.
// Adapters implement ports.Generator. Failures wrap ports.ErrGeneration so
// the dialogue controller can surface them without retrying.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"medibot/internal/domain/ports"
)

// HuggingFaceGenerator implements ports.Generator against the Hugging Face
// Inference text-generation endpoint.
type HuggingFaceGenerator struct {
	baseURL string
	model   string
	token   string
	client  *http.Client
}

// NewHuggingFaceGenerator creates the adapter. An empty token fails with
// ports.ErrMissingCredential at construction; credential problems are fatal
// at page start, not per request.
func NewHuggingFaceGenerator(baseURL, model, token string, timeout time.Duration) (*HuggingFaceGenerator, error) {
	if token == "" {
		return nil, fmt.Errorf("hugging face generator: HF_TOKEN not set: %w", ports.ErrMissingCredential)
	}
	if baseURL == "" {
		baseURL = "https://api-inference.huggingface.co"
	}
	if model == "" {
		model = "mistralai/Mistral-7B-Instruct-v0.3"
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &HuggingFaceGenerator{
		baseURL: baseURL,
		model:   model,
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

type textGenerationRequest struct {
	Inputs     string                   `json:"inputs"`
	Parameters textGenerationParameters `json:"parameters"`
}

type textGenerationParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

type textGenerationResponse struct {
	GeneratedText string `json:"generated_text"`
}

// Generate invokes the model once with the composed prompt. No retries.
func (a *HuggingFaceGenerator) Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	reqBody := textGenerationRequest{
		Inputs: prompt,
		Parameters: textGenerationParameters{
			MaxNewTokens:   maxTokens,
			Temperature:    temperature,
			ReturnFullText: false,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := a.baseURL + "/models/" + a.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.token)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling text generation: %v: %w", err, ports.ErrGeneration)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("text generation returned status %d: %w", resp.StatusCode, ports.ErrGeneration)
	}

	var out []textGenerationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding response: %v: %w", err, ports.ErrGeneration)
	}
	if len(out) == 0 {
		return "", fmt.Errorf("empty generation response: %w", ports.ErrGeneration)
	}
	return out[0].GeneratedText, nil
}
