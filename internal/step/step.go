// Package step defines the migration step contracts and the registry that
// discovers and orders them.
//
// A step is one atomic configuration change with a fixed weight. Weights
// double as version markers: an update step's weight is the position of the
// release that introduced it, and the ledger remembers the highest weight
// applied to a project.
package step

import (
	"context"
	"log/slog"
	"time"

	"github.com/lemberg/draftenv/internal/config"
	"github.com/lemberg/draftenv/internal/document"
	"github.com/lemberg/draftenv/internal/fileio"
)

// Step is the part every flavour shares.
type Step interface {
	// Weight orders steps ascending. Update step weights must be unique.
	Weight() int
	Name() string
	// Messages returns user facing text collected while the step ran.
	Messages() []string
}

// InitStep runs once on first install and performs file system side effects.
type InitStep interface {
	Step
	Install(ctx context.Context) error
}

// ConfigStep fills the freshly copied configuration on first install.
type ConfigStep interface {
	Step
	Install(ctx context.Context, tree *document.Map) error
}

// UpdateStep migrates an existing configuration. Applying it to a tree it
// already migrated must change nothing.
type UpdateStep interface {
	Step
	Update(ctx context.Context, tree *document.Map) error
}

// UninstallStep removes what an InitStep created.
type UninstallStep interface {
	Step
	Uninstall(ctx context.Context) error
}

// Prompter asks the user questions.
type Prompter interface {
	// Ask returns the validated answer, or def on empty input. validate may
	// normalize the answer; a validation error makes the prompter ask again.
	Ask(question string, validate func(string) (string, error), def string) (string, error)
	// Select returns one of choices, or def on empty input.
	Select(question string, choices []string, def string) (string, error)
}

// InstallMarker records that the package has been installed.
type InstallMarker interface {
	MarkInstalled(ctx context.Context) error
}

// Env holds the collaborators shared by all steps of a run.
type Env struct {
	Layout   *config.Layout
	FS       fileio.FS
	Prompter Prompter
	Ledger   InstallMarker
	// ManifestPath is the host manifest (composer.json).
	ManifestPath string
	Plan         *Plan
	Logger       *slog.Logger
	Now          func() time.Time
}

// Log returns the configured logger or the default one.
func (e *Env) Log() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// Time returns the current time of the run.
func (e *Env) Time() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Messenger collects user facing messages. Embed it in a step.
type Messenger struct {
	messages []string
}

// AddMessage queues msg. Empty messages are ignored.
func (m *Messenger) AddMessage(msg string) {
	if msg != "" {
		m.messages = append(m.messages, msg)
	}
}

// Messages returns the queued messages in order.
func (m *Messenger) Messages() []string {
	return append([]string(nil), m.messages...)
}
