package poll

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const watchDebounce = 100 * time.Millisecond

// FileWatcher signals when a snapshot file changes. The parent directory is
// watched so editors that replace the file by rename are still seen.
type FileWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	log     zerolog.Logger
}

// NewFileWatcher starts watching path.
func NewFileWatcher(path string, log zerolog.Logger) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	return &FileWatcher{path: abs, watcher: w, log: log}, nil
}

// Changes emits once per settled burst of writes to the file until ctx is
// done or the watcher is closed.
func (fw *FileWatcher) Changes(ctx context.Context) <-chan struct{} {
	out := make(chan struct{}, 1)

	go func() {
		defer close(out)

		var debounce <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fw.watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != fw.path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				fw.log.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("snapshot file event")
				debounce = time.After(watchDebounce)
			case <-debounce:
				debounce = nil
				select {
				case out <- struct{}{}:
				default:
				}
			case err, ok := <-fw.watcher.Errors:
				if !ok {
					return
				}
				fw.log.Error().Err(err).Msg("watcher error")
			}
		}
	}()

	return out
}

// Close stops the watcher.
func (fw *FileWatcher) Close() error {
	return fw.watcher.Close()
}
