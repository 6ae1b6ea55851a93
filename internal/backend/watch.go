package backend

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch follows the trove directory and drops stale tabs and recent files
// when a document is removed or renamed outside the app. It blocks until ctx
// is done.
func (b *Backend) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(b.troveDir); err != nil {
		return fmt.Errorf("watch trove: %w", err)
	}
	b.log.Debug("backend watch start", "dir", b.troveDir)
	for {
		select {
		case <-ctx.Done():
			b.log.Debug("backend watch stop")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			switch filepath.Ext(event.Name) {
			case markdownExt, jsonExt:
			default:
				continue
			}
			b.log.Trace("backend watch event", "path", event.Name, "op", event.Op.String())
			if _, err := b.CleanupStaleEntries(ctx); err != nil {
				b.log.Warn("backend stale cleanup failed", "err", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			b.log.Warn("backend watch error", "err", err)
		}
	}
}
