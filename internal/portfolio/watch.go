package portfolio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch re-validates the document at path every time it is written or
// replaced and hands the outcome to fn. It blocks until ctx ends.
//
// The parent directory is watched rather than the file itself so editors
// that save through a rename are still picked up.
func Watch(ctx context.Context, path string, logger *slog.Logger, fn func(*Document, error)) error {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	logger.Debug("watching portfolio document", "path", abs)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			data, err := os.ReadFile(abs)
			if err != nil {
				fn(nil, fmt.Errorf("%w: %w", ErrFetch, err))
				continue
			}
			fn(Parse(data))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("portfolio watcher error", "error", err)
		}
	}
}
