// Package ledger tracks install and update progress of a project: whether
// the package has been installed and the weight of the last applied update
// step.
package ledger

import (
	"context"
	"errors"
	"log/slog"
)

// ErrRecordNotFound is returned by a Store that has no record for the
// package, e.g. when run in the root project instead of an installed
// dependency.
var ErrRecordNotFound = errors.New("package record not found")

// Entry is the persisted progress marker.
type Entry struct {
	AlreadyInstalled  bool `json:"already-installed"`
	LastAppliedWeight int  `json:"last-update-weight"`
}

// Store persists an Entry.
type Store interface {
	// Load returns the entry and whether the package record exists.
	Load(ctx context.Context) (Entry, bool, error)
	// Update reads the entry, applies mutate and writes the result when
	// mutate reports a change, as one exclusive operation. It returns
	// ErrRecordNotFound when there is no package record.
	Update(ctx context.Context, mutate func(e *Entry) bool) error
}

// Ledger reads and advances the progress marker. Without a package record
// reads return zero values and writes are skipped.
type Ledger struct {
	store  Store
	logger *slog.Logger
}

// New creates a Ledger over store.
func New(store Store, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{store: store, logger: logger}
}

// Entry returns the stored entry and whether a package record exists.
func (l *Ledger) Entry(ctx context.Context) (Entry, bool, error) {
	return l.store.Load(ctx)
}

// LastAppliedWeight returns the weight of the last applied update step.
func (l *Ledger) LastAppliedWeight(ctx context.Context) (int, error) {
	e, _, err := l.store.Load(ctx)
	return e.LastAppliedWeight, err
}

// HasBeenInstalled reports whether install completed before.
func (l *Ledger) HasBeenInstalled(ctx context.Context) (bool, error) {
	e, _, err := l.store.Load(ctx)
	return e.AlreadyInstalled, err
}

// SetLastAppliedWeight stores w unless a higher weight is stored already.
func (l *Ledger) SetLastAppliedWeight(ctx context.Context, w int) error {
	return l.update(ctx, func(e *Entry) bool {
		if w <= e.LastAppliedWeight {
			if w < e.LastAppliedWeight {
				l.logger.Warn("ignoring attempt to lower the last applied weight",
					slog.Int("stored", e.LastAppliedWeight), slog.Int("requested", w))
			}
			return false
		}
		e.LastAppliedWeight = w
		return true
	})
}

// MarkInstalled records a completed install.
func (l *Ledger) MarkInstalled(ctx context.Context) error {
	return l.update(ctx, func(e *Entry) bool {
		if e.AlreadyInstalled {
			return false
		}
		e.AlreadyInstalled = true
		return true
	})
}

func (l *Ledger) update(ctx context.Context, mutate func(e *Entry) bool) error {
	err := l.store.Update(ctx, mutate)
	if errors.Is(err, ErrRecordNotFound) {
		l.logger.Debug("ledger write skipped, no package record")
		return nil
	}
	return err
}
