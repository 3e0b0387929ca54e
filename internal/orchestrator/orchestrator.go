// Package orchestrator runs the install, update and uninstall flows: it
// discovers the steps of a role, applies them to the configuration tree,
// writes the result with comments preserved and advances the ledger.
package orchestrator

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/lemberg/draftenv/internal/config"
	"github.com/lemberg/draftenv/internal/document"
	"github.com/lemberg/draftenv/internal/fileio"
	"github.com/lemberg/draftenv/internal/ledger"
	"github.com/lemberg/draftenv/internal/step"
)

// Reporter receives user facing messages. Messages may carry <info>,
// <comment> and <question> tags.
type Reporter interface {
	Message(msg string)
}

type nopReporter struct{}

func (nopReporter) Message(string) {}

// defaultsPrompter answers every question with its default.
type defaultsPrompter struct{}

func (defaultsPrompter) Ask(_ string, _ func(string) (string, error), def string) (string, error) {
	return def, nil
}

func (defaultsPrompter) Select(_ string, _ []string, def string) (string, error) {
	return def, nil
}

// Config wires an Orchestrator.
type Config struct {
	Registry *step.Registry
	Layout   *config.Layout
	FS       fileio.FS
	Ledger   *ledger.Ledger
	Prompter step.Prompter
	Reporter Reporter
	// ManifestPath is the composer.json of the project, if any.
	ManifestPath string
	Logger       *slog.Logger
	Now          func() time.Time
}

// Orchestrator runs the lifecycle flows over one project.
type Orchestrator struct {
	registry     *step.Registry
	layout       *config.Layout
	fs           fileio.FS
	ledger       *ledger.Ledger
	prompter     step.Prompter
	reporter     Reporter
	manifestPath string
	logger       *slog.Logger
	now          func() time.Time
}

// Result describes what a flow did.
type Result struct {
	// Skipped is set when there was nothing to do.
	Skipped bool
	// Applied lists the names of the steps that ran, in order.
	Applied []string
	// Weight is the ledger weight written by the run.
	Weight int
	// Backup is the path of the configuration backup taken before an update.
	Backup string
}

// New creates an Orchestrator. Registry and Layout are required; a nil
// Ledger falls back to an in-memory one.
func New(cfg Config) *Orchestrator {
	o := &Orchestrator{
		registry:     cfg.Registry,
		layout:       cfg.Layout,
		fs:           cfg.FS,
		ledger:       cfg.Ledger,
		prompter:     cfg.Prompter,
		reporter:     cfg.Reporter,
		manifestPath: cfg.ManifestPath,
		logger:       cfg.Logger,
		now:          cfg.Now,
	}
	if o.fs == nil {
		o.fs = fileio.OS{}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.reporter == nil {
		o.reporter = nopReporter{}
	}
	if o.prompter == nil {
		o.prompter = defaultsPrompter{}
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.ledger == nil {
		o.ledger = ledger.New(ledger.NewMemoryStore(ledger.Entry{}), o.logger)
	}
	return o
}

// newEnv returns a fresh step environment with an empty plan.
func (o *Orchestrator) newEnv() *step.Env {
	env := &step.Env{
		Layout:       o.layout,
		FS:           o.fs,
		Prompter:     o.prompter,
		ManifestPath: o.manifestPath,
		Plan:         step.NewPlan(),
		Logger:       o.logger,
		Now:          o.now,
	}
	if o.ledger != nil {
		env.Ledger = o.ledger
	}
	return env
}

func (o *Orchestrator) targetConfigPath() string {
	return o.layout.MustTargetPath(config.TargetConfigFilename)
}

func (o *Orchestrator) emit(msgs ...string) {
	for _, m := range msgs {
		if m != "" {
			o.reporter.Message(m)
		}
	}
}

// stampDocument mirrors the ledger weight into draft.last_applied_update
// when the document keeps a draft section.
func stampDocument(tree *document.Map, weight int) {
	if draft, ok := tree.LookupMap("draft"); ok {
		draft.Set("last_applied_update", weight)
	}
}

func stepError(s step.Step, err error) error {
	return fmt.Errorf("step %s (weight %d) failed: %w", s.Name(), s.Weight(), err)
}
