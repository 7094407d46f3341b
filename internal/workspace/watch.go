package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the workspace whenever another process rewrites the blob.
// Writes made by this workspace are recognized by their digest and
// ignored. onReload, when non-nil, is called after every successful reload.
// Watch returns once the watcher is running; the loop stops when ctx is
// cancelled or the workspace is closed.
func (w *Workspace) Watch(ctx context.Context, onReload func()) error {
	blob, err := w.BlobPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(blob)
	// The blob is replaced by rename, so the directory is watched rather
	// than the file.
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		cancel()
		_ = fw.Close()
		return ErrClosed
	}
	w.stopWatch = append(w.stopWatch, cancel)
	w.watchers.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.watchers.Done()
		defer func() { _ = fw.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != blob {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				w.handleChange(ctx, onReload)
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				w.logger.WarnContext(ctx, "Error watching blob", "err", err)
			}
		}
	}()
	w.logger.DebugContext(ctx, "Watching blob", "path", blob)
	return nil
}

func (w *Workspace) handleChange(ctx context.Context, onReload func()) {
	data, err := w.readBlob()
	if err != nil {
		w.logger.WarnContext(ctx, "Cannot read changed blob", "err", err)
		return
	}
	if data == nil || !w.changedOnDisk(data) {
		return
	}
	w.logger.InfoContext(ctx, "Blob changed on disk")
	if err := w.Reload(ctx); err != nil {
		if errors.Is(err, ErrClosed) || ctx.Err() != nil {
			return
		}
		if errors.Is(err, ErrUnsavedChanges) {
			w.logger.WarnContext(ctx, "Skipping reload", "err", err)
			return
		}
		// A partially written blob fails to open; the final write event
		// triggers another attempt.
		w.logger.WarnContext(ctx, "Reload failed", "err", err)
		return
	}
	if onReload != nil {
		onReload()
	}
}
