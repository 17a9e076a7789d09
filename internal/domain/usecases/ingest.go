// Package usecases - ingest.go builds the passage index from documents.
package usecases

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"medibot/internal/domain/entities"
	"medibot/internal/domain/ports"
)

// Ingestor processes a document into the passage index: chunk, embed, store.
type Ingestor struct {
	embedder     ports.Embedder
	writer       ports.PassageWriter
	logger       *zap.Logger
	chunkSize    int
	chunkOverlap int
}

// NewIngestor creates an Ingestor with injected dependencies.
func NewIngestor(embedder ports.Embedder, writer ports.PassageWriter, logger *zap.Logger, chunkSize, chunkOverlap int) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if chunkSize <= 0 {
		chunkSize = 500 // characters
	}
	if chunkOverlap < 0 {
		chunkOverlap = 50
	}
	return &Ingestor{
		embedder:     embedder,
		writer:       writer,
		logger:       logger,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Ingest chunks the document, embeds the chunks, and stores them. Any chunks
// previously stored for the document are removed first, so re-ingesting a
// document that shrank leaves no stale chunks behind.
func (uc *Ingestor) Ingest(ctx context.Context, doc *entities.Document) error {
	if err := uc.writer.Delete(ctx, doc.ID); err != nil {
		return fmt.Errorf("removing previous chunks: %w", err)
	}

	chunks := uc.chunkDocument(doc)
	if len(chunks) == 0 {
		return nil // empty document
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	embeddings, err := uc.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding chunks: %w", err)
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}

	if err := uc.writer.Store(ctx, chunks); err != nil {
		return fmt.Errorf("storing chunks: %w", err)
	}

	uc.logger.Info("document ingested",
		zap.String("document", doc.Name),
		zap.Int("chunks", len(chunks)))
	return nil
}

// Delete removes a document's chunks from the index.
func (uc *Ingestor) Delete(ctx context.Context, documentID string) error {
	return uc.writer.Delete(ctx, documentID)
}

// chunkDocument splits document content into overlapping character windows,
// breaking at word boundaries where possible.
func (uc *Ingestor) chunkDocument(doc *entities.Document) []entities.Chunk {
	content := strings.TrimSpace(doc.Content)
	if len(content) == 0 {
		return nil
	}

	var chunks []entities.Chunk
	start := 0
	index := 0

	for start < len(content) {
		end := start + uc.chunkSize
		if end > len(content) {
			end = len(content)
		}

		if end < len(content) {
			lastSpace := strings.LastIndex(content[start:end], " ")
			if lastSpace > 0 {
				end = start + lastSpace
			}
		}

		chunkContent := strings.TrimSpace(content[start:end])
		if len(chunkContent) > 0 {
			chunks = append(chunks, entities.Chunk{
				ID:         chunkID(doc.ID, index),
				DocumentID: doc.ID,
				Source:     doc.Name,
				Content:    chunkContent,
				Index:      index,
			})
			index++
		}

		if end == len(content) {
			break
		}
		next := end - uc.chunkOverlap
		// the overlap must not swallow the whole advance, e.g. when a word
		// boundary pulled end back close to start
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

func chunkID(docID string, index int) string {
	hash := sha256.Sum256([]byte(docID + ":" + strconv.Itoa(index)))
	return hex.EncodeToString(hash[:8])
}
