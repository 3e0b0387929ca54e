package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lemberg/draftenv/configs"
	draftErrors "github.com/lemberg/draftenv/internal/errors"
	"github.com/lemberg/draftenv/internal/fileio"
)

// Bundled template filenames.
const (
	SourceConfigFilename = configs.DefaultSettingsFilename
	SourceVMFilename     = configs.VagrantfileProxyFilename
)

// Generated and user-owned filenames in the project.
const (
	TargetConfigFilename      = "vm-settings.yml"
	TargetLocalConfigFilename = "vm-settings.local.yml"
	TargetVMFilename          = "Vagrantfile"
	TargetGitignoreFilename   = ".gitignore"
)

var (
	sourceFiles = map[string]bool{
		SourceConfigFilename: true,
		SourceVMFilename:     true,
	}
	targetFiles = map[string]bool{
		TargetConfigFilename:      true,
		TargetLocalConfigFilename: true,
		TargetVMFilename:          true,
		TargetGitignoreFilename:   true,
	}
)

// Layout is the fixed set of source and target files of a project.
type Layout struct {
	ProjectDir string
	// SourceDir is empty when the embedded templates are used.
	SourceDir string
	// VendorDir is relative to ProjectDir, slash separated.
	VendorDir string
}

// TargetPath returns the project path of a generated or user-owned file.
func (l *Layout) TargetPath(name string) (string, error) {
	if !targetFiles[name] {
		return "", unknownFile("target", name)
	}
	return filepath.Join(l.ProjectDir, name), nil
}

// MustTargetPath is TargetPath for the package's own filename constants.
func (l *Layout) MustTargetPath(name string) string {
	p, err := l.TargetPath(name)
	if err != nil {
		panic(err)
	}
	return p
}

// SourcePath returns the path of a bundled template inside SourceDir.
// It returns an empty path when the embedded templates are in use.
func (l *Layout) SourcePath(name string) (string, error) {
	if !sourceFiles[name] {
		return "", unknownFile("source", name)
	}
	if l.SourceDir == "" {
		return "", nil
	}
	return filepath.Join(l.SourceDir, name), nil
}

// ReadSource returns the content of a bundled template, from SourceDir when
// set, otherwise from the binary.
func (l *Layout) ReadSource(fsys fileio.FS, name string) (string, error) {
	path, err := l.SourcePath(name)
	if err != nil {
		return "", err
	}
	if path == "" {
		text, _ := configs.Template(name)
		return text, nil
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		return "", draftErrors.IOError(fmt.Sprintf("failed to read template %s", path), err).
			WithDetail("file", path)
	}
	return string(data), nil
}

// RelativeTarget returns the project-relative display form of a target file,
// e.g. "/vm-settings.yml".
func RelativeTarget(name string) string {
	return "/" + name
}

func unknownFile(kind, name string) error {
	return draftErrors.InvalidArgument(fmt.Sprintf("unknown %s file %q", kind, name)).
		WithDetail("file", name)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
