package client

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MKhiriev/go-task-keeper/internal/logger"
	"github.com/MKhiriev/go-task-keeper/internal/utils"
	"github.com/MKhiriev/go-task-keeper/models"
)

// settleDelay lets an editor finish writing before the file is read.
const settleDelay = 100 * time.Millisecond

// WorkingCopy is the JSON file a user edits. Saves of the file become local
// edits; adopted remote content is written back to it.
type WorkingCopy struct {
	path string

	mu sync.Mutex
	// fingerprint of the content this process wrote last
	written string

	logger *logger.Logger
}

func NewWorkingCopy(path string, logger *logger.Logger) *WorkingCopy {
	return &WorkingCopy{path: path, logger: logger}
}

func (w *WorkingCopy) Path() string { return w.path }

// Read parses the file. A missing file is reported with an error matching
// [os.ErrNotExist].
func (w *WorkingCopy) Read() (models.Document, error) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return models.Document{}, err
	}
	return decodeDocument(data)
}

// Write replaces the file atomically. The write is remembered so the
// watcher does not report it back as a local edit.
func (w *WorkingCopy) Write(doc models.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode working copy: %w", err)
	}
	data = append(data, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(w.path), "."+filepath.Base(w.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("replace working copy: %w", err)
	}

	w.written = utils.TextHash(string(data))
	return nil
}

// Watch calls onEdit with the new content every time the file is saved by
// someone else. Content that does not parse is logged and skipped, the user
// may be half way through an edit. Blocks until ctx is cancelled.
func (w *WorkingCopy) Watch(ctx context.Context, onEdit func(models.Document)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	// editors often replace the file, so watch its directory
	dir := filepath.Dir(w.path)
	if err = watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	name := filepath.Clean(w.path)
	settle := time.NewTimer(settleDelay)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != name || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			settle.Reset(settleDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Str("func", "*WorkingCopy.Watch").Msg("watcher error")

		case <-settle.C:
			doc, changed, err := w.readIfForeign()
			switch {
			case err != nil:
				w.logger.Warn().Err(err).Str("func", "*WorkingCopy.Watch").Str("path", w.path).Msg("working copy skipped")
			case changed:
				onEdit(doc)
			}
		}
	}
}

// readIfForeign reads the file and reports whether its content differs from
// what this process wrote last.
func (w *WorkingCopy) readIfForeign() (models.Document, bool, error) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return models.Document{}, false, err
	}

	w.mu.Lock()
	own := utils.TextHash(string(data)) == w.written
	w.mu.Unlock()
	if own {
		return models.Document{}, false, nil
	}

	doc, err := decodeDocument(data)
	if err != nil {
		return models.Document{}, false, err
	}
	return doc, true, nil
}

func decodeDocument(data []byte) (models.Document, error) {
	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.Document{}, fmt.Errorf("decode working copy: %w", err)
	}
	return doc, nil
}
