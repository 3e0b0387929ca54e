package vmsettings

import (
	"context"
	"os/exec"
	"strings"
)

// GitConfig looks up git configuration values.
type GitConfig interface {
	// Get returns the value of key, or "" when it is unset or git is missing.
	Get(ctx context.Context, key string) string
}

// GitCLI runs `git config --get`.
type GitCLI struct{}

func (GitCLI) Get(ctx context.Context, key string) string {
	out, err := exec.CommandContext(ctx, "git", "config", "--get", key).Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// StaticGitConfig serves values from a map.
type StaticGitConfig map[string]string

func (g StaticGitConfig) Get(_ context.Context, key string) string {
	return g[key]
}
