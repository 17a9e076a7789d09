// Package vectordb provides the persisted passage index.
// A Store writes chunks during index builds; an Index is the read-only
// query-side handle implementing ports.PassageRetriever.
package vectordb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"unicode/utf8"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"medibot/internal/domain/entities"
	"medibot/internal/domain/ports"
)

const dbFileName = "passages.db"

// excerptLimit caps the excerpt length surfaced to the user, in runes.
const excerptLimit = 500

// Store is the build-side handle to the passage index.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// NewStore opens (creating if needed) the index under dataPath for writing.
func NewStore(dataPath string) (*Store, error) {
	if dataPath == "" {
		dataPath = "vectorstore"
	}
	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dataPath, dbFileName))
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return store, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS passages (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL,
		source TEXT NOT NULL,
		page_label TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL,
		position INTEGER NOT NULL,
		embedding BLOB NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_passages_document_id ON passages(document_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Store saves chunks with their embeddings.
func (s *Store) Store(ctx context.Context, chunks []entities.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO passages (id, document_id, source, page_label, content, position, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		embeddingJSON, err := json.Marshal(chunk.Embedding)
		if err != nil {
			return fmt.Errorf("encoding embedding: %w", err)
		}
		_, err = stmt.ExecContext(ctx,
			chunk.ID,
			chunk.DocumentID,
			chunk.Source,
			chunk.PageLabel,
			chunk.Content,
			chunk.Index,
			embeddingJSON,
		)
		if err != nil {
			return fmt.Errorf("inserting passage: %w", err)
		}
	}

	return tx.Commit()
}

// Delete removes all passages for a document.
func (s *Store) Delete(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM passages WHERE document_id = ?", documentID)
	return err
}

// Clear removes all data from the index.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM passages")
	return err
}

// Count returns the number of stored passages.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM passages").Scan(&count)
	return count, err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Index is the query-side handle: opened read-only once at process start and
// shared across sessions. The stored data never changes after load, so reads
// need no locking.
type Index struct {
	db       *sql.DB
	embedder ports.Embedder
}

// OpenIndex opens the pre-built index under dataPath read-only. It fails with
// an error wrapping ports.ErrIndexUnavailable if the index file is missing or
// the schema probe fails; there is no empty-result fallback.
func OpenIndex(dataPath string, embedder ports.Embedder) (*Index, error) {
	if dataPath == "" {
		dataPath = "vectorstore"
	}
	dbPath := filepath.Join(dataPath, dbFileName)

	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("index at %s: %v: %w", dbPath, err, ports.ErrIndexUnavailable)
	}

	db, err := sql.Open("sqlite3", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening index at %s: %v: %w", dbPath, err, ports.ErrIndexUnavailable)
	}

	// Probe the schema so corruption surfaces at load, not first query.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM passages").Scan(&count); err != nil {
		db.Close()
		return nil, fmt.Errorf("probing index at %s: %v: %w", dbPath, err, ports.ErrIndexUnavailable)
	}

	return &Index{db: db, embedder: embedder}, nil
}

// Retrieve embeds the query and returns at most k passages ordered by
// descending cosine similarity. Ties keep insertion order, so identical
// queries against the same index yield identical orderings.
func (ix *Index) Retrieve(ctx context.Context, query string, k int) ([]entities.RetrievedPassage, error) {
	queryEmbedding, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	rows, err := ix.db.QueryContext(ctx, `
		SELECT source, page_label, content, embedding
		FROM passages
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying passages: %v: %w", err, ports.ErrIndexUnavailable)
	}
	defer rows.Close()

	type scored struct {
		source    string
		pageLabel string
		content   string
		score     float64
	}

	var results []scored
	for rows.Next() {
		var r scored
		var embeddingJSON []byte
		if err := rows.Scan(&r.source, &r.pageLabel, &r.content, &embeddingJSON); err != nil {
			return nil, fmt.Errorf("scanning passage: %v: %w", err, ports.ErrIndexUnavailable)
		}
		var embedding []float32
		if err := json.Unmarshal(embeddingJSON, &embedding); err != nil {
			// a corrupt index fails the query; there is no empty-result fallback
			return nil, fmt.Errorf("decoding embedding: %v: %w", err, ports.ErrIndexUnavailable)
		}
		r.score = cosineSimilarity(queryEmbedding, embedding)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading passages: %v: %w", err, ports.ErrIndexUnavailable)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})
	if len(results) > k {
		results = results[:k]
	}

	passages := make([]entities.RetrievedPassage, len(results))
	for i, r := range results {
		passages[i] = entities.RetrievedPassage{
			Source:    r.source,
			PageLabel: r.pageLabel,
			Excerpt:   truncateExcerpt(r.content),
			Rank:      i + 1,
		}
	}
	return passages, nil
}

// Close closes the read-only handle.
func (ix *Index) Close() error {
	return ix.db.Close()
}

func truncateExcerpt(content string) string {
	if utf8.RuneCountInString(content) <= excerptLimit {
		return content
	}
	runes := []rune(content)
	return string(runes[:excerptLimit]) + "..."
}

// cosineSimilarity calculates cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
