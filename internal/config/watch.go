package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/clipstack/clipstack/internal/logger"
)

// FileWatcher hot-reloads the global configuration whenever its file changes
// on disk. Each successful reload re-runs Load, so env overrides reapply and
// registered ConfigWatchers fire.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	done    chan struct{}
}

// WatchFile starts watching the given configuration file
func WatchFile(path string) (*FileWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// watch the directory; editors that replace the file via rename+create
	// would otherwise drop the watch
	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	w := &FileWatcher{
		watcher: fsWatcher,
		path:    filepath.Clean(path),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *FileWatcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Configuration watch error: %v", err)
		}
	}
}

func (w *FileWatcher) handle(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
		return
	}

	if err := Load(w.path); err != nil {
		logger.Warn("Failed to reload configuration from %s: %v", w.path, err)
		return
	}
	logger.Info("Configuration reloaded from %s", w.path)
}

// Close stops the watcher
func (w *FileWatcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
