package lifecycle

import (
	"context"
	"log/slog"

	"github.com/Masterminds/semver/v3"

	"github.com/lemberg/draftenv/internal/orchestrator"
)

// Runner runs the lifecycle flows. *orchestrator.Orchestrator implements it.
type Runner interface {
	Install(ctx context.Context) (orchestrator.Result, error)
	Update(ctx context.Context) (orchestrator.Result, error)
	Uninstall(ctx context.Context) (orchestrator.Result, error)
}

// PendingAction is the flow a package event schedules for the next
// post-dependency-resolution event.
type PendingAction int

const (
	ActionNone PendingAction = iota
	ActionInstall
	ActionUpdate
)

func (a PendingAction) String() string {
	switch a {
	case ActionInstall:
		return "install"
	case ActionUpdate:
		return "update"
	default:
		return "none"
	}
}

// merge combines two pending actions. A fresh install stamps the ledger
// with every update, so install wins over update in either order.
func (a PendingAction) merge(next PendingAction) PendingAction {
	switch {
	case a == ActionInstall || next == ActionInstall:
		return ActionInstall
	case a == ActionUpdate || next == ActionUpdate:
		return ActionUpdate
	default:
		return ActionNone
	}
}

// Outcome records a flow run by Dispatch.
type Outcome struct {
	Action string
	Result orchestrator.Result
}

// Dispatcher routes lifecycle events of one package to a Runner.
type Dispatcher struct {
	runner Runner
	pkg    string
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher reacting to events for pkg.
func NewDispatcher(runner Runner, pkg string, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{runner: runner, pkg: pkg, logger: logger}
}

// Dispatch handles events in order. Install and update wait for a
// post-dependency-resolution event; uninstall runs at once because the
// package files are about to disappear. The returned action is what is
// still pending when events run out.
func (d *Dispatcher) Dispatch(ctx context.Context, events []Event) ([]Outcome, PendingAction, error) {
	var outcomes []Outcome
	pending := ActionNone

	for _, e := range events {
		if err := ctx.Err(); err != nil {
			return outcomes, pending, err
		}
		if e.Kind != EventPostDependencyResolution && e.Package != d.pkg {
			d.logger.Debug("ignoring event for another package",
				slog.String("kind", string(e.Kind)), slog.String("package", e.Package))
			continue
		}

		switch e.Kind {
		case EventPackageInstalled:
			pending = pending.merge(ActionInstall)

		case EventPackageUpdated:
			if IsDowngrade(e) {
				d.logger.Info("skipping update for a downgrade",
					slog.String("from", e.FromVersion), slog.String("to", e.ToVersion))
				continue
			}
			pending = pending.merge(ActionUpdate)

		case EventPackageWillUninstall:
			pending = ActionNone
			res, err := d.runner.Uninstall(ctx)
			if err != nil {
				return outcomes, pending, err
			}
			outcomes = append(outcomes, Outcome{Action: "uninstall", Result: res})

		case EventPostDependencyResolution:
			action := pending
			pending = ActionNone
			outcome, err := d.run(ctx, action)
			if err != nil {
				return outcomes, pending, err
			}
			if outcome != nil {
				outcomes = append(outcomes, *outcome)
			}
		}
	}

	if pending != ActionNone {
		d.logger.Debug("action left pending", slog.String("action", pending.String()))
	}
	return outcomes, pending, nil
}

func (d *Dispatcher) run(ctx context.Context, action PendingAction) (*Outcome, error) {
	var (
		res orchestrator.Result
		err error
	)
	switch action {
	case ActionInstall:
		res, err = d.runner.Install(ctx)
	case ActionUpdate:
		res, err = d.runner.Update(ctx)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &Outcome{Action: action.String(), Result: res}, nil
}

// IsDowngrade reports whether an update event moves to an older release.
// Release dates decide when both are known, versions otherwise. Versions
// that are not semver never count as a downgrade.
func IsDowngrade(e Event) bool {
	if e.FromReleaseDate != nil && e.ToReleaseDate != nil {
		return e.ToReleaseDate.Before(*e.FromReleaseDate)
	}
	from, err := semver.NewVersion(e.FromVersion)
	if err != nil {
		return false
	}
	to, err := semver.NewVersion(e.ToVersion)
	if err != nil {
		return false
	}
	return to.LessThan(from)
}
