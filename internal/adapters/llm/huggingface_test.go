package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"medibot/internal/domain/ports"
)

func TestHuggingFaceGenerator_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/test-model" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req textGenerationRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Parameters.MaxNewTokens != 512 {
			t.Errorf("expected max_new_tokens 512, got %d", req.Parameters.MaxNewTokens)
		}
		if req.Parameters.Temperature != 0.5 {
			t.Errorf("expected temperature 0.5, got %f", req.Parameters.Temperature)
		}
		json.NewEncoder(w).Encode([]textGenerationResponse{{GeneratedText: "An answer."}})
	}))
	defer server.Close()

	gen, err := NewHuggingFaceGenerator(server.URL, "test-model", "secret", 0)
	if err != nil {
		t.Fatalf("constructor failed: %v", err)
	}

	text, err := gen.Generate(context.Background(), "prompt", 512, 0.5)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if text != "An answer." {
		t.Errorf("unexpected text: %q", text)
	}
}

func TestHuggingFaceGenerator_MissingToken(t *testing.T) {
	_, err := NewHuggingFaceGenerator("", "model", "", 0)

	if !errors.Is(err, ports.ErrMissingCredential) {
		t.Errorf("expected ErrMissingCredential, got %v", err)
	}
}

func TestHuggingFaceGenerator_AuthFailureIsGenerationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	gen, _ := NewHuggingFaceGenerator(server.URL, "test-model", "bad-token", 0)
	_, err := gen.Generate(context.Background(), "prompt", 512, 0.5)

	if !errors.Is(err, ports.ErrGeneration) {
		t.Errorf("expected ErrGeneration on 401, got %v", err)
	}
}

func TestHuggingFaceGenerator_ProviderErrorIsGenerationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	gen, _ := NewHuggingFaceGenerator(server.URL, "test-model", "secret", 0)
	_, err := gen.Generate(context.Background(), "prompt", 512, 0.5)

	if !errors.Is(err, ports.ErrGeneration) {
		t.Errorf("expected ErrGeneration on 503, got %v", err)
	}
}

func TestHuggingFaceGenerator_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]textGenerationResponse{})
	}))
	defer server.Close()

	gen, _ := NewHuggingFaceGenerator(server.URL, "test-model", "secret", 0)
	_, err := gen.Generate(context.Background(), "prompt", 512, 0.5)

	if !errors.Is(err, ports.ErrGeneration) {
		t.Errorf("expected ErrGeneration on empty response, got %v", err)
	}
}

func TestHuggingFaceGenerator_SingleAttempt(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	gen, _ := NewHuggingFaceGenerator(server.URL, "test-model", "secret", 0)
	gen.Generate(context.Background(), "prompt", 512, 0.5)

	if calls != 1 {
		t.Errorf("expected exactly one attempt, got %d", calls)
	}
}
