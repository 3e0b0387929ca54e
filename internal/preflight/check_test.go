package preflight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lemberg/draftenv/internal/config"
	"github.com/lemberg/draftenv/internal/fileio"
)

const packageName = "lemberg/draft-environment"

func TestCheckStatus_String(t *testing.T) {
	tests := []struct {
		status CheckStatus
		want   string
	}{
		{StatusPass, "PASS"},
		{StatusWarn, "WARN"},
		{StatusFail, "FAIL"},
		{CheckStatus(9), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.String())
		})
	}
}

func TestCheckResult_IsCritical(t *testing.T) {
	tests := []struct {
		name     string
		result   CheckResult
		expected bool
	}{
		{"required pass is not critical", CheckResult{Status: StatusPass, Required: true}, false},
		{"required fail is critical", CheckResult{Status: StatusFail, Required: true}, true},
		{"optional fail is not critical", CheckResult{Status: StatusFail}, false},
		{"required warn is not critical", CheckResult{Status: StatusWarn, Required: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.result.IsCritical())
		})
	}
}

func TestCheckResult_JSONStatusByName(t *testing.T) {
	data, err := json.Marshal(CheckResult{Name: "git", Status: StatusWarn})

	require.NoError(t, err)
	assert.Contains(t, string(data), `"status":"warn"`)
}

func TestSummaryStatus(t *testing.T) {
	c := New()

	assert.Equal(t, "ready", c.SummaryStatus([]CheckResult{{Status: StatusPass}}))
	assert.Equal(t, "ready_with_warnings", c.SummaryStatus([]CheckResult{{Status: StatusPass}, {Status: StatusWarn}}))
	assert.Equal(t, "failed", c.SummaryStatus([]CheckResult{{Status: StatusWarn}, {Status: StatusFail, Required: true}}))
}

func newProject(t *testing.T) Project {
	t.Helper()
	return Project{
		Layout:      &config.Layout{ProjectDir: t.TempDir(), VendorDir: "vendor"},
		FS:          fileio.OS{},
		PackageName: packageName,
	}
}

func write(t *testing.T, p Project, name, content string) string {
	t.Helper()
	path := filepath.Join(p.Layout.ProjectDir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func byName(results []CheckResult) map[string]CheckResult {
	m := make(map[string]CheckResult, len(results))
	for _, r := range results {
		m[r.Name] = r
	}
	return m
}

func TestRunAll_InstalledProject(t *testing.T) {
	// Given: an installed project with a recorded ledger
	p := newProject(t)
	write(t, p, "vm-settings.yml", "php_version: \"8.0\"\n")
	write(t, p, ".gitignore", "/.vagrant\n/vm-settings.local.yml\n")
	p.LockFile = write(t, p, "composer.lock", `{"packages": [{"name": "`+packageName+`", "extra": {"draft-environment": {"already-installed": true, "last-update-weight": 13}}}]}`)
	c := New(WithLookPath(func(string) (string, error) { return "/usr/bin/git", nil }))

	// When: running all checks
	results := c.RunAll(context.Background(), p)

	// Then: everything passes
	for _, r := range results {
		assert.Equal(t, StatusPass, r.Status, "%s: %s", r.Name, r.Message)
	}
	assert.Equal(t, "ready", c.SummaryStatus(results))
	assert.Equal(t, "last applied update weight 13", byName(results)["lock_file"].Message)
	assert.Contains(t, byName(results)["templates"].Message, "built into draftenv")
}

func TestRunAll_FreshProjectWarns(t *testing.T) {
	// Given: an empty project without git
	p := newProject(t)
	c := New(WithLookPath(func(string) (string, error) { return "", errors.New("not found") }))

	// When: running all checks
	results := byName(c.RunAll(context.Background(), p))

	// Then: it is usable with warnings
	assert.Equal(t, StatusWarn, results["lock_file"].Status)
	assert.Equal(t, StatusWarn, results["vm-settings.yml"].Status)
	assert.Equal(t, StatusPass, results["vm-settings.local.yml"].Status)
	assert.Equal(t, StatusWarn, results["gitignore"].Status)
	assert.Contains(t, results["gitignore"].Message, "/.vagrant")
	assert.Equal(t, StatusWarn, results["git"].Status)
}

func TestRunAll_BrokenFilesFail(t *testing.T) {
	// Given: a malformed settings file and lock file
	p := newProject(t)
	write(t, p, "vm-settings.local.yml", "vagrant: [\n")
	p.LockFile = write(t, p, "composer.lock", "{not json")
	c := New(WithLookPath(func(string) (string, error) { return "/usr/bin/git", nil }))

	// When: running all checks
	results := c.RunAll(context.Background(), p)

	// Then: the failures are critical
	assert.True(t, c.HasCriticalFailures(results))
	named := byName(results)
	assert.Equal(t, StatusFail, named["vm-settings.local.yml"].Status)
	assert.Equal(t, StatusFail, named["lock_file"].Status)
}

func TestRunAll_PackageNotInLockFile(t *testing.T) {
	p := newProject(t)
	p.LockFile = write(t, p, "composer.lock", `{"packages": [{"name": "acme/lib"}]}`)

	result := New().CheckLockFile(context.Background(), p)

	assert.Equal(t, StatusWarn, result.Status)
	assert.Contains(t, result.Message, "is not in composer.lock")
}

func TestCheckLockFile_ReportsLockedVersion(t *testing.T) {
	// Given: a lock file recording the package version
	p := newProject(t)
	p.LockFile = write(t, p, "composer.lock", `{"packages-dev": [{"name": "`+packageName+`", "version": "3.6.0", "extra": {"draft-environment": {"last-update-weight": 11}}}]}`)

	// When: checking the lock file
	result := New().CheckLockFile(context.Background(), p)

	// Then: the locked version is part of the message
	assert.Equal(t, StatusPass, result.Status)
	assert.Equal(t, "last applied update weight 11 ("+packageName+" 3.6.0)", result.Message)
}

func TestCheckWritePermissions_MissingDirectory(t *testing.T) {
	result := New().CheckWritePermissions(filepath.Join(t.TempDir(), "missing"))

	assert.Equal(t, StatusFail, result.Status)
	assert.True(t, result.IsCritical())
}

func TestPrintResults(t *testing.T) {
	// Given: mixed results
	var buf bytes.Buffer
	c := New(WithOutput(&buf), WithVerbose(true))
	results := []CheckResult{
		{Name: "templates", Status: StatusPass, Message: "OK"},
		{Name: "git", Status: StatusWarn, Message: "git not found"},
		{Name: "lock_file", Status: StatusFail, Message: "cannot read composer.lock", Details: "invalid JSON", Required: true},
	}

	// When: printing them
	c.PrintResults(results)

	// Then: each check and the summary is listed
	out := buf.String()
	assert.Contains(t, out, "[PASS] templates: OK")
	assert.Contains(t, out, "[WARN] git: git not found")
	assert.Contains(t, out, "      invalid JSON")
	assert.Contains(t, out, "Status: FAILED")
	assert.Contains(t, out, "1 error(s):")
	assert.Contains(t, out, "1 warning(s):")
}
