package editor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Handler receives the new content of a watched file.
type Handler func(path string, content []byte)

// Watcher calls handlers when watched files are written. Parent directories are
// watched so that editors which replace files on save are noticed too.
type Watcher struct {
	log     *zap.Logger
	watcher *fsnotify.Watcher

	mu       sync.Mutex
	handlers map[string]Handler
	running  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewWatcher creates a Watcher.
func NewWatcher(log *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		log:      log,
		watcher:  fw,
		handlers: make(map[string]Handler),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Add registers h for path.
func (w *Watcher) Add(path string, h Handler) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if err := w.watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	w.mu.Lock()
	w.handlers[abs] = h
	w.mu.Unlock()
	w.log.Debug("watching file", zap.String("path", abs))
	return nil
}

// Start runs the event loop until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.run(ctx)
}

// Stop ends the event loop and releases the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	if err := w.watcher.Close(); err != nil {
		w.log.Warn("failed to close file watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
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
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("file watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	w.mu.Lock()
	h, ok := w.handlers[filepath.Clean(event.Name)]
	w.mu.Unlock()
	if !ok {
		return
	}
	content, err := os.ReadFile(event.Name)
	if err != nil {
		w.log.Warn("failed to read changed file", zap.String("path", event.Name), zap.Error(err))
		return
	}
	w.log.Debug("file changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
	h(event.Name, content)
}
