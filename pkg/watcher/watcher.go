// Package watcher observes a directory for file changes and reports them to
// the agent, so drop-in files (new skill manifests, watched folders) are
// noticed without polling.
package watcher

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/tarunerror/openNova/pkg/logx"
)

// Event is one observed filesystem change.
type Event struct {
	Path string
	Op   string
}

// Handler receives events. It runs on the watcher goroutine and must not
// block.
type Handler func(Event)

// Watcher wraps fsnotify with a single handler and a clean shutdown.
type Watcher struct {
	fsw     *fsnotify.Watcher
	handler Handler
	logger  *logx.Logger

	stopOnce sync.Once
	done     chan struct{}
}

// New creates a watcher over path. The handler fires for every create,
// write, rename, and remove under the watched directory.
func New(path string, handler Handler, logger *logx.Logger) (*Watcher, error) {
	if handler == nil {
		return nil, fmt.Errorf("watcher needs a handler")
	}
	if logger == nil {
		logger = logx.NewLogger("watcher")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(path); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	w := &Watcher{
		fsw:     fsw,
		handler: handler,
		logger:  logger,
		done:    make(chan struct{}),
	}
	go w.loop()

	logger.Info("watching %s", path)
	return w, nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.logger.Debug("fs event %s %s", ev.Op, ev.Name)
			w.handler(Event{Path: ev.Name, Op: ev.Op.String()})
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error: %v", err)
		}
	}
}

// Close stops watching and waits for the event loop to drain.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		err = w.fsw.Close()
		<-w.done
	})
	return err
}
