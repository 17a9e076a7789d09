// Package loader provides document loading for index builds.
package loader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"medibot/internal/domain/entities"
)

// TextLoader loads plain text and markdown documents.
type TextLoader struct{}

// NewTextLoader creates a new text document loader.
func NewTextLoader() *TextLoader {
	return &TextLoader{}
}

// Load reads a document from the given path.
func (l *TextLoader) Load(ctx context.Context, path string) (*entities.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &entities.Document{
		ID:      documentID(path),
		Name:    filepath.Base(path),
		Path:    path,
		Content: string(content),
	}, nil
}

// SupportedExtensions returns file extensions this loader handles.
func (l *TextLoader) SupportedExtensions() []string {
	return []string{".txt", ".md", ".markdown"}
}

// Supports reports whether the path has a supported extension.
func (l *TextLoader) Supports(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range l.SupportedExtensions() {
		if ext == e {
			return true
		}
	}
	return false
}

// documentID creates a deterministic ID from the path, so re-ingesting the
// same file replaces its passages instead of duplicating them.
func documentID(path string) string {
	hash := sha256.Sum256([]byte(path))
	return hex.EncodeToString(hash[:8])
}

// DocumentID exposes the ID derivation for delete-on-remove handling.
func DocumentID(path string) string {
	return documentID(path)
}
