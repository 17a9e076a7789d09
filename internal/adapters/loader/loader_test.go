package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestTextLoader_LoadTxtFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt")
	os.WriteFile(path, []byte("Hello World"), 0o644)

	loader := NewTextLoader()
	doc, err := loader.Load(context.Background(), path)

	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if doc.Content != "Hello World" {
		t.Errorf("unexpected content: %s", doc.Content)
	}
	if doc.Name != "test.txt" {
		t.Errorf("unexpected name: %s", doc.Name)
	}
	if doc.ID == "" {
		t.Error("document should have an ID")
	}
}

func TestTextLoader_DeterministicID(t *testing.T) {
	if DocumentID("/a/b.txt") != DocumentID("/a/b.txt") {
		t.Error("same path should yield same ID")
	}
	if DocumentID("/a/b.txt") == DocumentID("/a/c.txt") {
		t.Error("different paths should yield different IDs")
	}
}

func TestTextLoader_Supports(t *testing.T) {
	loader := NewTextLoader()

	for _, path := range []string{"a.txt", "b.md", "c.MARKDOWN"} {
		if !loader.Supports(path) {
			t.Errorf("%s should be supported", path)
		}
	}
	for _, path := range []string{"a.pdf", "b.json", "c"} {
		if loader.Supports(path) {
			t.Errorf("%s should not be supported", path)
		}
	}
}

func TestTextLoader_NonexistentFile(t *testing.T) {
	loader := NewTextLoader()
	_, err := loader.Load(context.Background(), "/nonexistent/file.txt")

	if err == nil {
		t.Error("should error on nonexistent file")
	}
}
