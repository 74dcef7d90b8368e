package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reports when the stored session file is removed, for example by
// `futureproof auth logout` in another terminal.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	logger  *zap.Logger

	ended    chan struct{}
	endOnce  sync.Once
	stopCh   chan struct{}
	stopOnce sync.Once
	doneCh   chan struct{}
}

// Watch starts watching the store's file. The watcher stops when ctx is
// cancelled or Stop is called.
func (st *Store) Watch(ctx context.Context) (*Watcher, error) {
	dir := filepath.Dir(st.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// The directory is watched because a watch on the file itself is lost
	// once the file is removed.
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &Watcher{
		watcher: fw,
		path:    filepath.Clean(st.path),
		logger:  st.logger,
		ended:   make(chan struct{}),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	go w.run(ctx)
	return w, nil
}

// Ended is closed once the session file has been removed.
func (w *Watcher) Ended() <-chan struct{} {
	return w.ended
}

// Stop ends the watch and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	<-w.doneCh
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				w.logger.Debug("session file removed", zap.String("path", w.path))
				w.endOnce.Do(func() { close(w.ended) })
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("session watcher error", zap.Error(err))
		}
	}
}
