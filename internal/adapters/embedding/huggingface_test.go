package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"medibot/internal/domain/ports"
)

func TestHuggingFaceEmbedder_Embed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pipeline/feature-extraction/test-model" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header: %s", got)
		}
		json.NewEncoder(w).Encode([][]float32{{0.1, 0.2, 0.3}})
	}))
	defer server.Close()

	adapter, err := NewHuggingFaceEmbedder(server.URL, "test-model", "secret", 0)
	if err != nil {
		t.Fatalf("constructor failed: %v", err)
	}

	emb, err := adapter.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if len(emb) != 3 {
		t.Errorf("expected 3 dims, got %d", len(emb))
	}
}

func TestHuggingFaceEmbedder_EmbedBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req featureExtractionRequest
		json.NewDecoder(r.Body).Decode(&req)
		out := make([][]float32, len(req.Inputs))
		for i := range req.Inputs {
			out[i] = []float32{float32(i)}
		}
		json.NewEncoder(w).Encode(out)
	}))
	defer server.Close()

	adapter, _ := NewHuggingFaceEmbedder(server.URL, "test-model", "secret", 0)
	results, err := adapter.EmbedBatch(context.Background(), []string{"a", "b", "c"})

	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
}

func TestHuggingFaceEmbedder_MissingToken(t *testing.T) {
	_, err := NewHuggingFaceEmbedder("", "model", "", 0)

	if !errors.Is(err, ports.ErrMissingCredential) {
		t.Errorf("expected ErrMissingCredential, got %v", err)
	}
}

func TestHuggingFaceEmbedder_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	adapter, _ := NewHuggingFaceEmbedder(server.URL, "test-model", "secret", 0)
	_, err := adapter.Embed(context.Background(), "test")

	if err == nil {
		t.Error("should error on 503")
	}
}

func TestHuggingFaceEmbedder_CountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([][]float32{{0.1}})
	}))
	defer server.Close()

	adapter, _ := NewHuggingFaceEmbedder(server.URL, "test-model", "secret", 0)
	_, err := adapter.EmbedBatch(context.Background(), []string{"a", "b"})

	if err == nil {
		t.Error("should error when provider returns wrong count")
	}
}
