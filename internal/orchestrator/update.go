package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lemberg/draftenv/internal/config"
	"github.com/lemberg/draftenv/internal/document"
	draftErrors "github.com/lemberg/draftenv/internal/errors"
	"github.com/lemberg/draftenv/internal/step"
)

// Pending returns the update steps an update would apply, in order.
func (o *Orchestrator) Pending(ctx context.Context) ([]step.Step, error) {
	return o.pending(ctx, o.newEnv())
}

// LastAvailableWeight is the weight of the newest known update step.
func (o *Orchestrator) LastAvailableWeight() int {
	return o.registry.LastAvailableWeight(o.newEnv())
}

func (o *Orchestrator) pending(ctx context.Context, env *step.Env) ([]step.Step, error) {
	last, err := o.ledger.LastAppliedWeight(ctx)
	if err != nil {
		return nil, err
	}
	return step.FilterNewerThan(o.registry.Discover(step.RoleUpdate, env), last), nil
}

// Update migrates vm-settings.yml with every step newer than the ledger
// weight. The batch is all or nothing: a failing step leaves the file and
// the ledger untouched.
func (o *Orchestrator) Update(ctx context.Context) (Result, error) {
	env := o.newEnv()
	steps, err := o.pending(ctx, env)
	if err != nil {
		return Result{}, err
	}
	if len(steps) == 0 {
		o.logger.Debug("configuration is up to date")
		return Result{Skipped: true}, nil
	}

	target := o.targetConfigPath()
	priorText, err := document.Read(o.fs, target)
	if err != nil {
		return Result{}, err
	}
	tree, err := document.Parse(priorText)
	if err != nil {
		if de, ok := draftErrors.As(err); ok {
			de.WithDetail("file", target)
		}
		return Result{}, err
	}

	var res Result
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		us, ok := s.(step.UpdateStep)
		if !ok {
			return Result{}, draftErrors.InternalError(fmt.Sprintf("step %s is not an update step", s.Name()), nil)
		}
		o.logger.Debug("applying update step", slog.String("step", s.Name()), slog.Int("weight", s.Weight()))
		if err := us.Update(ctx, tree); err != nil {
			return Result{}, stepError(s, err)
		}
		res.Applied = append(res.Applied, s.Name())
	}

	weight := steps[len(steps)-1].Weight()
	stampDocument(tree, weight)

	backup, err := config.BackupTargetConfig(o.fs, target, o.now(), o.logger)
	if err != nil {
		return Result{}, draftErrors.IOError("failed to back up configuration", err).WithDetail("file", target)
	}
	res.Backup = backup

	commentSource := priorText
	if text, ok := env.Plan.CommentSource(); ok {
		commentSource = text
	}
	if err := document.WritePreservingComments(o.fs, commentSource, target, tree); err != nil {
		return res, err
	}
	if err := env.Plan.RunDeferred(ctx); err != nil {
		return res, err
	}
	if err := o.ledger.SetLastAppliedWeight(ctx, weight); err != nil {
		return res, err
	}
	res.Weight = weight

	for _, s := range steps {
		o.emit(s.Messages()...)
	}
	o.logger.Info("configuration updated",
		slog.Int("weight", weight), slog.Int("steps", len(res.Applied)), slog.String("backup", backup))
	return res, nil
}
