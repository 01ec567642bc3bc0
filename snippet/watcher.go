package snippet

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the store when its backing file is rewritten on disk by
// another process (or a text editor). Events are debounced because editors
// and atomic renames produce bursts. Blocks until ctx is cancelled.
func Watch(ctx context.Context, store *Store) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory, not the file: rename-based writes replace the
	// inode and would drop a file-level watch.
	dir := filepath.Dir(store.filePath)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	var debounce *time.Timer
	reload := func() {
		if err := store.Reload(); err != nil {
			slog.Warn("Snippet file changed on disk but reload failed", "error", err)
			return
		}
		slog.Info("Snippet file reloaded from disk")
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if evt.Name != store.filePath {
				continue
			}
			if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Rename) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(250*time.Millisecond, reload)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Snippet file watcher error", "error", err)
		}
	}
}
