// Package watcher triggers bulk imports when course description files
// land in a watched directory.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/karmanotes/pipeline/internal/core/ports/driving"
	"github.com/karmanotes/pipeline/internal/logger"
)

// settleDelay is how long a file must stay quiet before it is imported,
// so half-written files are not picked up.
const settleDelay = 2 * time.Second

// Watcher imports description files as they appear in a directory.
type Watcher struct {
	importer driving.Importer
	delay    time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New creates a watcher over the given importer.
func New(importer driving.Importer) *Watcher {
	return &Watcher{
		importer: importer,
		delay:    settleDelay,
		pending:  make(map[string]*time.Timer),
	}
}

// Watch blocks watching dir until the context is cancelled. Files
// already present are imported on startup; new or rewritten .json files
// are imported once they stop changing.
func (w *Watcher) Watch(ctx context.Context, dir string) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating fs watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	// Catch up on whatever is already there.
	if stats, err := w.importer.ImportDirectory(ctx, dir); err != nil {
		logger.Error("Initial import of %s failed: %v", dir, err)
	} else if stats.Files > 0 {
		logger.Info("Initial import: %d files, %d imported, %d skipped, %d failed",
			stats.Files, stats.Imported, stats.Skipped, stats.Failed)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".json") {
				continue
			}
			w.schedule(ctx, event.Name)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// schedule (re)arms the settle timer for a path. Every write pushes the
// import back until the file goes quiet.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.delay)
		return
	}
	w.pending[path] = time.AfterFunc(w.delay, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		stats, err := w.importer.ImportFile(ctx, path)
		if err != nil {
			logger.Error("Import of %s failed: %v", path, err)
			return
		}
		logger.Info("Imported %s: %d imported, %d skipped, %d failed",
			filepath.Base(path), stats.Imported, stats.Skipped, stats.Failed)
	})
}
