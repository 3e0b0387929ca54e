package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lemberg/draftenv/internal/document"
	draftErrors "github.com/lemberg/draftenv/internal/errors"
	"github.com/lemberg/draftenv/internal/step"
)

const (
	welcomeMessage   = "<info>Welcome to the Draft Environment interactive installer</info>"
	questionsMessage = "<info>Please answer to a few questions:</info>"
)

// Install scaffolds the project configuration. It does nothing when
// vm-settings.yml already exists.
func (o *Orchestrator) Install(ctx context.Context) (Result, error) {
	target := o.targetConfigPath()
	if o.fs.Exists(target) {
		o.logger.Debug("configuration exists, install skipped", slog.String("file", target))
		return Result{Skipped: true}, nil
	}

	env := o.newEnv()
	var res Result

	// Init phase: copy templates and touch .gitignore.
	o.emit(welcomeMessage)
	for _, s := range o.registry.Discover(step.RoleInstallInit, env) {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		is, ok := s.(step.InitStep)
		if !ok {
			return res, draftErrors.InternalError(fmt.Sprintf("step %s is not an install init step", s.Name()), nil)
		}
		if err := is.Install(ctx); err != nil {
			return res, stepError(s, err)
		}
		res.Applied = append(res.Applied, s.Name())
		o.emit(s.Messages()...)
	}

	// Config phase: answer questions against the copied configuration.
	sourceText, err := document.Read(o.fs, target)
	if err != nil {
		return res, err
	}
	tree, err := document.Parse(sourceText)
	if err != nil {
		return res, err
	}

	o.emit(questionsMessage)
	for _, s := range o.registry.Discover(step.RoleInstallConfig, env) {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		cs, ok := s.(step.ConfigStep)
		if !ok {
			return res, draftErrors.InternalError(fmt.Sprintf("step %s is not an install config step", s.Name()), nil)
		}
		if err := cs.Install(ctx, tree); err != nil {
			return res, stepError(s, err)
		}
		res.Applied = append(res.Applied, s.Name())
		o.emit(s.Messages()...)
	}

	weight := o.registry.LastAvailableWeight(env)
	stampDocument(tree, weight)
	if err := document.WritePreservingComments(o.fs, sourceText, target, tree); err != nil {
		return res, err
	}

	if err := o.ledger.MarkInstalled(ctx); err != nil {
		return res, err
	}
	if err := o.ledger.SetLastAppliedWeight(ctx, weight); err != nil {
		return res, err
	}
	res.Weight = weight

	hostname, _ := tree.LookupString("vagrant", "hostname")
	o.emit(closingMessage(hostname))
	o.logger.Info("install complete", slog.Int("weight", weight), slog.Int("steps", len(res.Applied)))
	return res, nil
}

// Uninstall removes the generated files. Only uninstall steps run; nothing
// else is discovered.
func (o *Orchestrator) Uninstall(ctx context.Context) (Result, error) {
	env := o.newEnv()
	var res Result
	for _, s := range o.registry.Discover(step.RoleUninstall, env) {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		us, ok := s.(step.UninstallStep)
		if !ok {
			return res, draftErrors.InternalError(fmt.Sprintf("step %s is not an uninstall step", s.Name()), nil)
		}
		if err := us.Uninstall(ctx); err != nil {
			return res, stepError(s, err)
		}
		res.Applied = append(res.Applied, s.Name())
		o.emit(s.Messages()...)
	}
	return res, nil
}

func closingMessage(hostname string) string {
	return "<info>Unfortunately, the interactive installer has quite limited functionality at the moment</info>\n" +
		"<info>Please check the configuration files and adjust them manually, if required</info>\n" +
		"\n" +
		"<info>Then just relax and run</info> <comment>vagrant up</comment><info>. Now you can make some coffee. It won't take too long though :)</info>\n" +
		"<info>Project will be available at</info> <comment>http://" + hostname + ".test</comment> <info>after provisioning</info>\n" +
		"<info>Happy coding!</info>"
}
