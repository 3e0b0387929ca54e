// Package install holds the steps that run on first install and on
// uninstall.
package install

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lemberg/draftenv/internal/config"
	draftErrors "github.com/lemberg/draftenv/internal/errors"
	"github.com/lemberg/draftenv/internal/gitignore"
	"github.com/lemberg/draftenv/internal/step"
)

// InitConfig copies the templates into the project and registers the
// draftenv entries in .gitignore. Its uninstall counterpart undoes both.
type InitConfig struct {
	step.Messenger
	env *step.Env
}

// NewInitConfig creates the step.
func NewInitConfig(env *step.Env) step.Step {
	return &InitConfig{env: env}
}

func (s *InitConfig) Weight() int  { return -100 }
func (s *InitConfig) Name() string { return "InitConfig" }

// Install copies vm-settings.yml and the Vagrantfile and updates .gitignore.
func (s *InitConfig) Install(ctx context.Context) error {
	layout := s.env.Layout

	// Both templates are read before anything is written so a missing one
	// leaves the project untouched.
	settings, err := layout.ReadSource(s.env.FS, config.SourceConfigFilename)
	if err != nil {
		return err
	}
	vagrantfile, err := layout.ReadSource(s.env.FS, config.SourceVMFilename)
	if err != nil {
		return err
	}
	// The proxy loads the package Vagrantfile from the vendor directory.
	if vendor := strings.Trim(layout.VendorDir, "/"); vendor != "vendor" {
		vagrantfile = strings.ReplaceAll(vagrantfile, "/vendor/", "/"+vendor+"/")
	}

	if err := s.write(layout.MustTargetPath(config.TargetConfigFilename), settings); err != nil {
		return err
	}
	if err := s.write(layout.MustTargetPath(config.TargetVMFilename), vagrantfile); err != nil {
		return err
	}

	gitignorePath := layout.MustTargetPath(config.TargetGitignoreFilename)
	current := ""
	if s.env.FS.Exists(gitignorePath) {
		data, err := s.env.FS.ReadFile(gitignorePath)
		if err != nil {
			return draftErrors.IOError("failed to read .gitignore", err).WithDetail("file", gitignorePath)
		}
		current = string(data)
	}
	updated, added := gitignore.Ensure(current, gitignore.VagrantEntry, gitignore.LocalOverridesEntry)
	if err := s.write(gitignorePath, updated); err != nil {
		return err
	}
	s.env.Log().Debug("gitignore updated", slog.Int("entries_added", len(added)))

	s.AddMessage(filesMessage("added"))
	return nil
}

// Uninstall removes the generated files and the .gitignore entries.
// vm-settings.local.yml belongs to the user and is kept.
func (s *InitConfig) Uninstall(ctx context.Context) error {
	layout := s.env.Layout

	for _, name := range []string{config.TargetVMFilename, config.TargetConfigFilename} {
		path := layout.MustTargetPath(name)
		if err := s.env.FS.Remove(path); err != nil {
			return draftErrors.IOError(fmt.Sprintf("failed to remove %s", path), err).WithDetail("file", path)
		}
	}

	gitignorePath := layout.MustTargetPath(config.TargetGitignoreFilename)
	if s.env.FS.Exists(gitignorePath) {
		data, err := s.env.FS.ReadFile(gitignorePath)
		if err != nil {
			return draftErrors.IOError("failed to read .gitignore", err).WithDetail("file", gitignorePath)
		}
		content := gitignore.Remove(string(data), gitignore.VagrantEntry, gitignore.LocalOverridesEntry)
		if gitignore.IsBlank(content) {
			if err := s.env.FS.Remove(gitignorePath); err != nil {
				return draftErrors.IOError("failed to remove .gitignore", err).WithDetail("file", gitignorePath)
			}
		} else if err := s.write(gitignorePath, content); err != nil {
			return err
		}
	}

	s.AddMessage(filesMessage("removed"))
	return nil
}

func (s *InitConfig) write(path, content string) error {
	if err := s.env.FS.WriteFile(path, []byte(content), 0o644); err != nil {
		return draftErrors.IOError(fmt.Sprintf("failed to write %s", path), err).WithDetail("file", path)
	}
	return nil
}

func filesMessage(verb string) string {
	lines := []string{
		fmt.Sprintf("The following configuration files have been %s or modified:", verb),
		config.RelativeTarget(config.TargetVMFilename),
		config.RelativeTarget(config.TargetConfigFilename),
		config.RelativeTarget(config.TargetGitignoreFilename),
	}
	return strings.Join(lines, "\n  - ") + "\n<comment>Do not forget to commit them!</comment>"
}
