package assetmodule

import (
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"
)

var mediaExtensions = map[string]AssetKind{
	".mp4": AssetKindVideo,
	".mov": AssetKindVideo,
	".m4v": AssetKindVideo,
	".mp3": AssetKindAudio,
	".m4a": AssetKindAudio,
	".wav": AssetKindAudio,
	".aac": AssetKindAudio,
	".ogg": AssetKindAudio,
}

// Watcher registers media files dropped into the watch directory. Durations
// start at zero; the decoding collaborator fills them in via SetDuration
// before the asset is usable in a composition.
type Watcher struct {
	service *Service
	watcher *fsnotify.Watcher
	logger  hclog.Logger
	done    chan struct{}
}

// NewWatcher creates a watcher over the given directory
func NewWatcher(service *Service, dir string, logger hclog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	w := &Watcher{
		service: service,
		watcher: fsWatcher,
		logger:  logger,
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
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
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	kind, ok := mediaExtensions[strings.ToLower(filepath.Ext(event.Name))]
	if !ok {
		return
	}

	switch {
	case event.Op.Has(fsnotify.Create):
		if _, err := w.service.Register(RegisterRequest{Path: event.Name, Kind: kind}); err != nil {
			w.logger.Warn("failed to register watched asset", "path", event.Name, "error", err)
		}
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		assets, err := w.service.List("")
		if err != nil {
			return
		}
		for _, asset := range assets {
			if asset.Path == event.Name {
				if err := w.service.Remove(asset.ID); err != nil {
					w.logger.Warn("failed to remove watched asset", "path", event.Name, "error", err)
				}
				return
			}
		}
	}
}

// Close stops the watcher
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
