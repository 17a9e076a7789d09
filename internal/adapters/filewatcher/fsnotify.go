// Package filewatcher monitors the document corpus for changes.
// Implements ports.FileWatcher; used by the index builder's watch mode.
package filewatcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"medibot/internal/domain/ports"
)

// CorpusWatcher implements ports.FileWatcher using fsnotify.
type CorpusWatcher struct {
	watcher    *fsnotify.Watcher
	extensions []string
}

// NewCorpusWatcher creates a watcher filtered to the given extensions.
func NewCorpusWatcher(extensions []string) (*CorpusWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if len(extensions) == 0 {
		extensions = []string{".txt", ".md", ".markdown"}
	}
	return &CorpusWatcher{watcher: w, extensions: extensions}, nil
}

// Watch starts monitoring the directory tree and emits events until ctx ends.
// Subdirectories are watched too, including ones created while watching.
func (w *CorpusWatcher) Watch(ctx context.Context, dir string) (<-chan ports.FileEvent, error) {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	events := make(chan ports.FileEvent, 100)

	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Create == fsnotify.Create {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						w.watcher.Add(event.Name)
						continue
					}
				}
				if !w.isWatchedExtension(event.Name) {
					continue
				}

				var op ports.FileOperation
				switch {
				case event.Op&fsnotify.Create == fsnotify.Create:
					op = ports.FileCreated
				case event.Op&fsnotify.Write == fsnotify.Write:
					op = ports.FileModified
				case event.Op&fsnotify.Remove == fsnotify.Remove:
					op = ports.FileDeleted
				default:
					continue
				}

				select {
				case events <- ports.FileEvent{Path: event.Name, Operation: op}:
				case <-ctx.Done():
					return
				}
			case _, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return events, nil
}

// Stop stops the watcher.
func (w *CorpusWatcher) Stop() error {
	return w.watcher.Close()
}

func (w *CorpusWatcher) isWatchedExtension(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range w.extensions {
		if ext == e {
			return true
		}
	}
	return false
}
