// Package ports defines interfaces for external dependencies.
// Usecases depend on these abstractions, not concrete implementations.
// Adapters implement these interfaces.
package ports

import (
	"context"

	"medibot/internal/domain/entities"
)

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces text from a remote language model.
type Generator interface {
	// Generate invokes the model with the composed prompt and decoding
	// parameters. Failures wrap ErrGeneration; at most one attempt is made.
	Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
}

// PassageRetriever performs nearest-neighbor lookup over the passage index.
type PassageRetriever interface {
	// Retrieve returns at most k passages ordered by descending similarity,
	// ties broken by insertion order. Returns an error wrapping
	// ErrIndexUnavailable if the index is missing or corrupt.
	Retrieve(ctx context.Context, query string, k int) ([]entities.RetrievedPassage, error)
}

// PassageWriter persists chunks into the passage index (build side).
type PassageWriter interface {
	// Store saves chunks with their embeddings.
	Store(ctx context.Context, chunks []entities.Chunk) error

	// Delete removes all chunks for a document.
	Delete(ctx context.Context, documentID string) error

	// Clear removes all data from the index.
	Clear(ctx context.Context) error
}

// DocumentLoader reads a document from disk.
type DocumentLoader interface {
	// Load reads a document from the given path.
	Load(ctx context.Context, path string) (*entities.Document, error)

	// SupportedExtensions returns file extensions this loader handles.
	SupportedExtensions() []string
}

// FileWatcher monitors a directory for corpus changes.
type FileWatcher interface {
	// Watch starts monitoring the directory and emits events.
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)

	// Stop stops the watcher.
	Stop() error
}

// FileEvent represents a file system change.
type FileEvent struct {
	Path      string
	Operation FileOperation
}

// FileOperation is the type of file change.
type FileOperation int

const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
)
