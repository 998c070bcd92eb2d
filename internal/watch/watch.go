// Package watch reruns a write pass whenever one of the watched input files changes.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const DefaultDebounce = 300 * time.Millisecond

// Watcher observes the directories of its target files since editors tend to replace files instead of writing them.
// Passes are run one after the other on the watcher goroutine, never concurrently.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	targets  map[string]bool
	onChange func(ctx context.Context) error
	debounce time.Duration
	log      *zap.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
	closed   bool
	passes   int
}

func New(targets []string, debounce time.Duration, onChange func(ctx context.Context) error, log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		watcher:  watcher,
		targets:  make(map[string]bool),
		onChange: onChange,
		debounce: debounce,
		log:      log,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, target := range targets {
		absolute, err := filepath.Abs(target)
		if err != nil {
			watcher.Close()
			return nil, err
		}
		w.targets[absolute] = true
	}
	return w, nil
}

// Start subscribes to the target directories and returns immediately.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running || w.closed {
		return nil
	}

	dirs := make(map[string]bool)
	for target := range w.targets {
		dirs[filepath.Dir(target)] = true
	}
	for dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return err
		}
		w.log.Debug("watching directory", zap.String("dir", dir))
	}

	w.running = true
	go w.run(ctx)
	return nil
}

// Stop ends the event loop, waiting for a running pass to finish.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	wasRunning := w.running
	w.running = false
	w.closed = true
	w.mu.Unlock()

	close(w.stopCh)
	if wasRunning {
		<-w.doneCh
	}
	if err := w.watcher.Close(); err != nil {
		w.log.Warn("closing watcher failed", zap.Error(err))
	}
}

// Passes counts the completed passes.
func (w *Watcher) Passes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.passes
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	var pending <-chan time.Time
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
			if !w.relevant(event) {
				continue
			}
			w.log.Debug("input changed", zap.String("path", event.Name), zap.Stringer("op", event.Op))
			pending = time.After(w.debounce) //rapid saves collapse into one pass

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", zap.Error(err))

		case <-pending:
			pending = nil
			if err := w.onChange(ctx); err != nil {
				w.log.Error("pass after change failed", zap.Error(err))
			}
			w.mu.Lock()
			w.passes++
			w.mu.Unlock()
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return false
	}
	absolute, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return w.targets[absolute]
}
