// Package config holds the tool settings (environment and flags) and the
// project layout: where the bundled templates come from and where the
// generated files go.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	draftErrors "github.com/lemberg/draftenv/internal/errors"
)

// EnvPrefix is the prefix of every environment variable read by LoadSettings.
const EnvPrefix = "DRAFTENV"

// DefaultPackageName is the package record the ledger is stored under.
const DefaultPackageName = "lemberg/draft-environment"

// Settings configures a draftenv run.
// Values come from DRAFTENV_* variables and are then overridden by CLI flags.
type Settings struct {
	// ProjectDir is the root of the project that receives the generated files.
	ProjectDir string `envconfig:"PROJECT_DIR" default:"."`
	// SourceDir holds the bundled templates. Empty means auto-detect the
	// installed package directory, falling back to the embedded templates.
	SourceDir string `envconfig:"SOURCE_DIR"`
	// VendorDir is the host tool vendor directory, relative to ProjectDir.
	VendorDir string `envconfig:"VENDOR_DIR" default:"vendor"`
	// LockFile is the host lock file that stores the ledger.
	LockFile string `envconfig:"LOCK_FILE" default:"composer.lock"`
	// ManifestFile is the host manifest (composer.json).
	ManifestFile string `envconfig:"MANIFEST_FILE" default:"composer.json"`
	// PackageName identifies this package in the lock file.
	PackageName string `envconfig:"PACKAGE_NAME" default:"lemberg/draft-environment"`

	NoInteraction bool          `envconfig:"NO_INTERACTION"`
	LogLevel      string        `envconfig:"LOG_LEVEL" default:"warn"`
	WatchDebounce time.Duration `envconfig:"WATCH_DEBOUNCE" default:"300ms"`
}

// LoadSettings reads settings from the environment.
func LoadSettings() (*Settings, error) {
	var s Settings
	if err := envconfig.Process(EnvPrefix, &s); err != nil {
		return nil, draftErrors.New(draftErrors.ErrCodeInvalidSettings,
			"failed to read DRAFTENV_* environment variables", err)
	}
	return &s, nil
}

// Validate reports the first invalid setting.
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.ProjectDir) == "" {
		return invalidSetting("project directory must not be empty")
	}
	if strings.TrimSpace(s.VendorDir) == "" {
		return invalidSetting("vendor directory must not be empty")
	}
	if filepath.IsAbs(s.VendorDir) {
		return invalidSetting(fmt.Sprintf("vendor directory must be relative to the project, got %s", s.VendorDir))
	}
	if s.LockFile == "" || s.ManifestFile == "" {
		return invalidSetting("lock file and manifest file must be set")
	}
	if !strings.Contains(s.PackageName, "/") {
		return invalidSetting(fmt.Sprintf("package name must look like vendor/name, got %q", s.PackageName))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return invalidSetting(fmt.Sprintf("log level must be 'debug', 'info', 'warn', or 'error', got %s", s.LogLevel))
	}
	if s.WatchDebounce < 0 {
		return invalidSetting("watch debounce must not be negative")
	}
	return nil
}

// Layout resolves the file layout described by the settings.
func (s *Settings) Layout() (*Layout, error) {
	projectDir, err := filepath.Abs(s.ProjectDir)
	if err != nil {
		return nil, draftErrors.IOError("failed to resolve project directory", err)
	}

	sourceDir := s.SourceDir
	if sourceDir == "" {
		candidate := filepath.Join(projectDir, s.VendorDir, filepath.FromSlash(s.PackageName))
		if fileExists(filepath.Join(candidate, SourceConfigFilename)) {
			sourceDir = candidate
		}
	} else if !filepath.IsAbs(sourceDir) {
		sourceDir = filepath.Join(projectDir, sourceDir)
	}

	return &Layout{
		ProjectDir: projectDir,
		SourceDir:  sourceDir,
		VendorDir:  filepath.ToSlash(filepath.Clean(s.VendorDir)),
	}, nil
}

// LockFilePath returns the absolute path of the host lock file.
func (s *Settings) LockFilePath(projectDir string) string {
	return resolve(projectDir, s.LockFile)
}

// ManifestFilePath returns the absolute path of the host manifest.
func (s *Settings) ManifestFilePath(projectDir string) string {
	return resolve(projectDir, s.ManifestFile)
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func invalidSetting(msg string) error {
	return draftErrors.New(draftErrors.ErrCodeInvalidSettings, msg, nil).
		WithSuggestion("Check the DRAFTENV_* environment variables and command flags")
}
