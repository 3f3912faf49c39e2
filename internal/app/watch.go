package service

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/layoffatlas/layoffatlas/pkg/logger"
)

// reloadDebounce coalesces the burst of fsnotify events an atomic save emits.
const reloadDebounce = 500 * time.Millisecond

// watchLoop reloads the dataset whenever its file changes. A failed reload
// is logged and the previous snapshot stays active. Runs until ctx is
// cancelled or the service stops.
func (s *Service) watchLoop(ctx context.Context) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.logger.Error(ctx, "dataset watcher failed to start", logger.Error(err))
		return
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors and pipelines replace the
	// file via rename, which would silently drop a file-level watch.
	dir := filepath.Dir(s.datasetPath)
	if err := watcher.Add(dir); err != nil {
		s.logger.Error(ctx, "dataset watcher failed to add path",
			logger.String("dir", dir), logger.Error(err))
		return
	}
	s.logger.Info(ctx, "watching dataset for changes", logger.String("path", s.datasetPath))

	var debounce *time.Timer
	reload := func() {
		if err := s.Reload(ctx); err != nil {
			s.logger.Error(ctx, "dataset reload failed; keeping previous snapshot",
				logger.String("path", s.datasetPath), logger.Error(err))
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.datasetPath) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, reload)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Error(ctx, "dataset watcher error", logger.Error(err))
		}
	}
}
