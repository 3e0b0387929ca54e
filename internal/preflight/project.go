package preflight

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lemberg/draftenv/internal/composer"
	"github.com/lemberg/draftenv/internal/config"
	"github.com/lemberg/draftenv/internal/document"
	"github.com/lemberg/draftenv/internal/gitignore"
	"github.com/lemberg/draftenv/internal/ledger"
)

// CheckWritePermissions checks if we can write to the project directory.
func (c *Checker) CheckWritePermissions(path string) CheckResult {
	result := CheckResult{
		Name:     "write_permissions",
		Required: true,
	}

	f, err := os.CreateTemp(path, ".draftenv-preflight-*")
	if err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("cannot write to %s", path)
		result.Details = err.Error()
		return result
	}
	_ = f.Close()
	_ = os.Remove(f.Name())

	result.Status = StatusPass
	result.Message = "OK"
	return result
}

// CheckTemplates checks that the default settings template is readable
// and parses.
func (c *Checker) CheckTemplates(p Project) CheckResult {
	result := CheckResult{Name: "templates", Required: true}

	text, err := p.Layout.ReadSource(p.FS, config.SourceConfigFilename)
	if err == nil {
		_, err = document.Parse(text)
	}
	if err != nil {
		result.Status = StatusFail
		result.Message = "default settings template is unusable"
		result.Details = err.Error()
		return result
	}

	result.Status = StatusPass
	if p.Layout.SourceDir == "" {
		result.Message = "using the templates built into draftenv"
	} else {
		result.Message = p.Layout.SourceDir
	}
	return result
}

// CheckLockFile checks that install and update progress can be recorded.
func (c *Checker) CheckLockFile(ctx context.Context, p Project) CheckResult {
	result := CheckResult{Name: "lock_file", Required: true}

	if p.LockFile == "" {
		result.Status = StatusWarn
		result.Message = "no lock file, progress will not be recorded"
		return result
	}

	store := ledger.NewComposerLockStore(p.LockFile, p.PackageName, p.FS, nil)
	entry, found, err := store.Load(ctx)
	switch {
	case err != nil:
		result.Status = StatusFail
		result.Message = fmt.Sprintf("cannot read %s", filepath.Base(p.LockFile))
		result.Details = err.Error()
	case !found:
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("%s is not in %s, progress will not be recorded", p.PackageName, filepath.Base(p.LockFile))
	default:
		result.Status = StatusPass
		result.Message = fmt.Sprintf("last applied update weight %d", entry.LastAppliedWeight)
		if data, err := p.FS.ReadFile(p.LockFile); err == nil {
			if v, ok := composer.PackageVersion(data, p.PackageName); ok && v != "" {
				result.Message += fmt.Sprintf(" (%s %s)", p.PackageName, v)
			}
		}
	}
	return result
}

// CheckSettingsFile checks that a settings file parses. A missing file is
// a warning when expected is set and fine otherwise.
func (c *Checker) CheckSettingsFile(p Project, name string, expected bool) CheckResult {
	result := CheckResult{Name: name, Required: true}

	path := p.Layout.MustTargetPath(name)
	if !p.FS.Exists(path) {
		if expected {
			result.Status = StatusWarn
			result.Message = "not installed, run 'draftenv install'"
		} else {
			result.Status = StatusPass
			result.Message = "not present"
		}
		return result
	}

	text, err := document.Read(p.FS, path)
	if err == nil {
		_, err = document.Parse(text)
	}
	if err != nil {
		result.Status = StatusFail
		result.Message = "does not parse"
		result.Details = err.Error()
		return result
	}

	result.Status = StatusPass
	result.Message = "OK"
	return result
}

// CheckGitignore checks that Vagrant data and local overrides are ignored.
func (c *Checker) CheckGitignore(p Project) CheckResult {
	result := CheckResult{Name: "gitignore"}

	data, err := p.FS.ReadFile(p.Layout.MustTargetPath(config.TargetGitignoreFilename))
	if err != nil && !os.IsNotExist(err) {
		result.Status = StatusWarn
		result.Message = "cannot read .gitignore"
		result.Details = err.Error()
		return result
	}

	m := gitignore.Parse(string(data))
	var missing []string
	if !m.Match(".vagrant", true) {
		missing = append(missing, "/.vagrant")
	}
	if !m.Match(config.TargetLocalConfigFilename, false) {
		missing = append(missing, "/"+config.TargetLocalConfigFilename)
	}
	if len(missing) > 0 {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("not ignored: %v", missing)
		return result
	}

	result.Status = StatusPass
	result.Message = "OK"
	return result
}

// CheckGit checks that git is available for the VM git identity.
func (c *Checker) CheckGit() CheckResult {
	result := CheckResult{Name: "git"}

	path, err := c.lookPath("git")
	if err != nil {
		result.Status = StatusWarn
		result.Message = "git not found, the VM gets no git identity"
		return result
	}

	result.Status = StatusPass
	result.Message = path
	return result
}
