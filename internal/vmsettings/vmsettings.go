// Package vmsettings computes the settings the virtual machine is built
// with: the default template, the project configuration and the local
// overrides merged in that order, plus derived values.
package vmsettings

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lemberg/draftenv/internal/config"
	"github.com/lemberg/draftenv/internal/document"
	"github.com/lemberg/draftenv/internal/fileio"
)

// HostnameSuffix is the reserved top level domain the site is served under.
const HostnameSuffix = ".test"

// Loader reads the three configuration layers of a project.
type Loader struct {
	layout *config.Layout
	fs     fileio.FS
	git    GitConfig
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithGitConfig replaces the git lookup.
func WithGitConfig(g GitConfig) Option {
	return func(l *Loader) { l.git = g }
}

// WithClock replaces the time source used for the default host name.
func WithClock(now func() time.Time) Option {
	return func(l *Loader) { l.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a Loader for layout.
func NewLoader(layout *config.Layout, fsys fileio.FS, opts ...Option) *Loader {
	l := &Loader{
		layout: layout,
		fs:     fsys,
		git:    GitCLI{},
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Files returns the paths Load reads from the project, in merge order.
func (l *Loader) Files() []string {
	return []string{
		l.layout.MustTargetPath(config.TargetConfigFilename),
		l.layout.MustTargetPath(config.TargetLocalConfigFilename),
	}
}

// Load returns the effective settings. Missing project or local files are
// skipped.
func (l *Loader) Load(ctx context.Context) (*document.Map, error) {
	text, err := l.layout.ReadSource(l.fs, config.SourceConfigFilename)
	if err != nil {
		return nil, err
	}
	defaults, err := document.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("default settings: %w", err)
	}

	layers := []*document.Map{defaults}
	for _, path := range l.Files() {
		if !l.fs.Exists(path) {
			l.logger.Debug("settings layer missing", slog.String("file", path))
			continue
		}
		layer, err := document.ReadAndParse(l.fs, path)
		if err != nil {
			return nil, err
		}
		layers = append(layers, layer)
	}

	return Effective(ctx, document.MergeAll(layers...), l.now(), l.git), nil
}

// Effective fills the derived values of merged in place and returns it.
func Effective(ctx context.Context, merged *document.Map, now time.Time, git GitConfig) *document.Map {
	hostname, _ := merged.LookupString("vagrant", "hostname")
	if hostname == "" {
		hostname = fmt.Sprintf("draft.%d", now.Unix())
		merged.SetPath(hostname, "vagrant", "hostname")
	}

	if name, _ := merged.LookupString("virtualbox", "name"); name == "" {
		merged.SetPath(hostname, "virtualbox", "name")
	}

	if ip, _ := merged.LookupString("vagrant", "ip_address"); ip == "" {
		merged.SetPath(DeriveIPAddress(hostname), "vagrant", "ip_address")
	}

	merged.Set("git_user_name", git.Get(ctx, "user.name"))
	merged.Set("git_user_email", git.Get(ctx, "user.email"))

	merged.SetPath(hostname+HostnameSuffix, "vagrant", "hostname")
	return merged
}

// DeriveIPAddress maps hostname to a stable private address in 10.10.0.0/16.
// The last two octets come from the byte sum of the name; the third is kept
// in [1, 255] and the fourth in [2, 255] so the network and gateway
// addresses are never used.
func DeriveIPAddress(hostname string) string {
	sum := 0
	for i := 0; i < len(hostname); i++ {
		sum += int(hostname[i])
	}
	return fmt.Sprintf("10.10.%d.%d", clamp(sum>>8, 1, 255), clamp(sum%256, 2, 255))
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
