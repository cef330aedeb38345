// Package watcher provides file watching for catalog hot-reload.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event represents a change of the watched file.
type Event struct {
	Path      string
	Operation Operation
}

// Operation represents the type of file operation.
type Operation int

// File operation types.
const (
	OpCreate Operation = iota
	OpModify
	OpDelete
)

// String returns the string representation of the operation.
func (o Operation) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpModify:
		return "modify"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Handler is called when the watched file changed and settled.
type Handler func(ctx context.Context, event Event) error

// pendingEvent holds a debounced event with its operation.
type pendingEvent struct {
	timestamp time.Time
	op        Operation
}

// Watcher watches a single file. The parent directory is watched so that
// editors replacing the file by rename are seen as well.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	handler   Handler
	logger    *slog.Logger
	file      string
	debounce  time.Duration
	mu        sync.Mutex
	pending   *pendingEvent
}

// Config holds watcher configuration.
type Config struct {
	File     string
	Debounce time.Duration
}

// New creates a new file watcher.
func New(cfg Config, handler Handler, logger *slog.Logger) (*Watcher, error) {
	file, err := filepath.Abs(cfg.File)
	if err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if cfg.Debounce == 0 {
		cfg.Debounce = 500 * time.Millisecond
	}

	return &Watcher{
		fsWatcher: fsWatcher,
		handler:   handler,
		logger:    logger,
		file:      file,
		debounce:  cfg.Debounce,
	}, nil
}

// Start starts watching the configured file.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.file)
	if err := w.fsWatcher.Add(dir); err != nil {
		return err
	}
	w.logger.Info("watching file", "path", w.file)

	go w.eventLoop(ctx)
	go w.debounceLoop(ctx)

	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// eventLoop processes fsnotify events.
func (w *Watcher) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleFsEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// handleFsEvent records a single fsnotify event for the watched file.
func (w *Watcher) handleFsEvent(event fsnotify.Event) {
	if !w.matches(event.Name) {
		return
	}

	w.logger.Debug("file event", "path", event.Name, "op", event.Op.String())

	op := fsnotifyOpToOperation(event.Op)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending == nil {
		w.pending = &pendingEvent{timestamp: time.Now(), op: op}
		return
	}
	updatePendingEvent(w.pending, op)
}

// updatePendingEvent merges a new operation into a pending event.
func updatePendingEvent(existing *pendingEvent, newOp Operation) {
	existing.timestamp = time.Now()

	switch {
	case existing.op == OpDelete && newOp == OpCreate:
		// Replaced by rename or delete-and-write.
		existing.op = OpCreate
	case newOp == OpDelete:
		existing.op = OpDelete
	}
}

// debounceLoop processes debounced events.
func (w *Watcher) debounceLoop(ctx context.Context) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			w.processPending(ctx, time.Now())
		}
	}
}

// processPending hands a settled event to the handler.
func (w *Watcher) processPending(ctx context.Context, now time.Time) {
	w.mu.Lock()
	pending := w.pending
	if pending == nil || now.Sub(pending.timestamp) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.pending = nil
	w.mu.Unlock()

	event := Event{Path: w.file, Operation: pending.op}
	w.logger.Info("processing file event",
		"path", event.Path,
		"operation", event.Operation.String(),
	)

	if err := w.handler(ctx, event); err != nil {
		w.logger.Error("handler error",
			"path", event.Path,
			"operation", event.Operation.String(),
			"error", err,
		)
	}
}

func (w *Watcher) matches(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return abs == w.file
}

// fsnotifyOpToOperation converts fsnotify.Op to our Operation type.
func fsnotifyOpToOperation(op fsnotify.Op) Operation {
	switch {
	case op.Has(fsnotify.Remove):
		return OpDelete
	case op.Has(fsnotify.Rename):
		// The file is gone from its original location.
		return OpDelete
	case op.Has(fsnotify.Create):
		return OpCreate
	default:
		return OpModify
	}
}
