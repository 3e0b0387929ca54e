// Package watcher reports changes to the VM settings files of a project.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Operation represents a file system operation type.
type Operation int

const (
	OpCreate Operation = iota
	OpModify
	OpDelete
	OpRename
)

// String returns a human-readable representation of the operation.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	case OpRename:
		return "RENAME"
	default:
		return "UNKNOWN"
	}
}

// FileEvent is a change to one watched file.
type FileEvent struct {
	// Path is the file name relative to the watched directory.
	Path      string
	Operation Operation
	Timestamp time.Time
}

// DefaultDebounceWindow is used when Options leaves the window unset.
const DefaultDebounceWindow = 300 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// DebounceWindow is the quiet period before a batch is emitted.
	DebounceWindow time.Duration
	Logger         *slog.Logger
}

// Watcher watches a set of files in one directory. The directory is
// watched rather than the files so that atomic replaces, which swap the
// inode, are still seen.
type Watcher struct {
	dir       string
	names     map[string]bool
	fsw       *fsnotify.Watcher
	debouncer *Debouncer
	events    chan []FileEvent
	logger    *slog.Logger
}

// New creates a watcher for the files called names inside dir.
func New(dir string, names []string, opts Options) (*Watcher, error) {
	if opts.DebounceWindow <= 0 {
		opts.DebounceWindow = DefaultDebounceWindow
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[filepath.Base(n)] = true
	}
	return &Watcher{
		dir:       dir,
		names:     set,
		fsw:       fsw,
		debouncer: NewDebouncer(opts.DebounceWindow, opts.Logger),
		events:    make(chan []FileEvent, 4),
		logger:    opts.Logger,
	}, nil
}

// Events returns debounced batches. The channel is closed when Run returns.
func (w *Watcher) Events() <-chan []FileEvent {
	return w.events
}

// Run forwards events until ctx is cancelled or the underlying watcher
// fails. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.events)
	defer w.debouncer.Stop()
	defer func() { _ = w.fsw.Close() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("file watcher failed: %w", err)
		case batch, ok := <-w.debouncer.Output():
			if !ok {
				return nil
			}
			select {
			case w.events <- batch:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if !w.names[name] {
		return
	}

	var op Operation
	switch {
	case event.Op&fsnotify.Create != 0:
		op = OpCreate
	case event.Op&fsnotify.Write != 0:
		op = OpModify
	case event.Op&fsnotify.Remove != 0:
		op = OpDelete
	case event.Op&fsnotify.Rename != 0:
		op = OpRename
	default:
		return
	}

	w.logger.Debug("settings file changed", slog.String("file", name), slog.String("op", op.String()))
	w.debouncer.Add(FileEvent{Path: name, Operation: op, Timestamp: time.Now()})
}
