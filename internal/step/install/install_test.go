package install

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lemberg/draftenv/configs"
	"github.com/lemberg/draftenv/internal/config"
	"github.com/lemberg/draftenv/internal/document"
	draftErrors "github.com/lemberg/draftenv/internal/errors"
	"github.com/lemberg/draftenv/internal/fileio"
	"github.com/lemberg/draftenv/internal/step"
)

// scriptedPrompter answers from a queue and falls back to the default.
type scriptedPrompter struct {
	answers   []string
	questions []string
}

func (p *scriptedPrompter) next() (string, bool) {
	if len(p.answers) == 0 {
		return "", false
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a, true
}

func (p *scriptedPrompter) Ask(question string, validate func(string) (string, error), def string) (string, error) {
	p.questions = append(p.questions, question)
	answer, ok := p.next()
	if !ok || answer == "" {
		return def, nil
	}
	return validate(answer)
}

func (p *scriptedPrompter) Select(question string, choices []string, def string) (string, error) {
	p.questions = append(p.questions, question)
	answer, ok := p.next()
	if !ok || answer == "" {
		return def, nil
	}
	return answer, nil
}

func newEnv(t *testing.T, vendorDir string) *step.Env {
	t.Helper()
	return &step.Env{
		Layout:   &config.Layout{ProjectDir: t.TempDir(), VendorDir: vendorDir},
		FS:       fileio.OS{},
		Prompter: &scriptedPrompter{},
		Plan:     step.NewPlan(),
		Now:      func() time.Time { return time.Unix(1700000000, 0) },
	}
}

func readTarget(t *testing.T, env *step.Env, name string) string {
	t.Helper()
	data, err := os.ReadFile(env.Layout.MustTargetPath(name))
	require.NoError(t, err)
	return string(data)
}

func TestInitConfig_Install_CopiesTemplates(t *testing.T) {
	// Given: an empty project using the embedded templates
	env := newEnv(t, "vendor")
	s := NewInitConfig(env).(*InitConfig)

	// When: running the init step
	require.NoError(t, s.Install(context.Background()))

	// Then: both templates are copied verbatim and .gitignore is created
	assert.Equal(t, configs.DefaultSettingsTemplate, readTarget(t, env, config.TargetConfigFilename))
	assert.Equal(t, configs.VagrantfileProxyTemplate, readTarget(t, env, config.TargetVMFilename))
	assert.Equal(t,
		"\n# Ignore Vagrant virtual machine data.\n/.vagrant\n"+
			"\n# Ignore Draft Environment local configuration overrides.\n/vm-settings.local.yml\n",
		readTarget(t, env, config.TargetGitignoreFilename))

	require.Len(t, s.Messages(), 1)
	assert.Equal(t, "The following configuration files have been added or modified:\n"+
		"  - /Vagrantfile\n  - /vm-settings.yml\n  - /.gitignore\n"+
		"<comment>Do not forget to commit them!</comment>", s.Messages()[0])
}

func TestInitConfig_Install_CustomVendorDir(t *testing.T) {
	env := newEnv(t, "lib/vendor")
	s := NewInitConfig(env).(*InitConfig)

	require.NoError(t, s.Install(context.Background()))

	vagrantfile := readTarget(t, env, config.TargetVMFilename)
	assert.Contains(t, vagrantfile, "/lib/vendor/lemberg/draft-environment/Vagrantfile")
	assert.NotContains(t, vagrantfile, `"/vendor/`)
}

func TestInitConfig_Install_KeepsExistingGitignore(t *testing.T) {
	env := newEnv(t, "vendor")
	gitignorePath := env.Layout.MustTargetPath(config.TargetGitignoreFilename)
	require.NoError(t, os.WriteFile(gitignorePath, []byte("/vendor/\n.vagrant/\n"), 0o644))

	require.NoError(t, NewInitConfig(env).(*InitConfig).Install(context.Background()))

	assert.Equal(t,
		"/vendor/\n.vagrant/\n\n# Ignore Draft Environment local configuration overrides.\n/vm-settings.local.yml\n",
		readTarget(t, env, config.TargetGitignoreFilename))
}

func TestInitConfig_Install_SourceDirTemplate(t *testing.T) {
	env := newEnv(t, "vendor")
	src := t.TempDir()
	env.Layout.SourceDir = src
	require.NoError(t, os.WriteFile(filepath.Join(src, config.SourceConfigFilename), []byte("a: 1\n"), 0o644))

	err := NewInitConfig(env).(*InitConfig).Install(context.Background())

	// The Vagrantfile template is missing from the source dir, so nothing
	// is written and a later run starts from a clean project.
	assert.True(t, draftErrors.HasCode(err, draftErrors.ErrCodeIO))
	assert.NoFileExists(t, env.Layout.MustTargetPath(config.TargetConfigFilename))
	assert.NoFileExists(t, env.Layout.MustTargetPath(config.TargetVMFilename))
	assert.NoFileExists(t, env.Layout.MustTargetPath(config.TargetGitignoreFilename))

	// Once the template appears the step succeeds
	require.NoError(t, os.WriteFile(filepath.Join(src, config.SourceVMFilename), []byte("Vagrant.configure\n"), 0o644))
	require.NoError(t, NewInitConfig(env).(*InitConfig).Install(context.Background()))
	assert.Equal(t, "a: 1\n", readTarget(t, env, config.TargetConfigFilename))
}

func TestInitConfig_Uninstall(t *testing.T) {
	t.Run("restores user gitignore", func(t *testing.T) {
		// Given: an installed project with a pre-existing .gitignore
		env := newEnv(t, "vendor")
		gitignorePath := env.Layout.MustTargetPath(config.TargetGitignoreFilename)
		require.NoError(t, os.WriteFile(gitignorePath, []byte("/vendor/\n"), 0o644))
		local := env.Layout.MustTargetPath(config.TargetLocalConfigFilename)
		require.NoError(t, os.WriteFile(local, []byte("php_version: \"8.1\"\n"), 0o644))
		require.NoError(t, NewInitConfig(env).(*InitConfig).Install(context.Background()))

		// When: uninstalling
		s := NewInitConfig(env).(*InitConfig)
		require.NoError(t, s.Uninstall(context.Background()))

		// Then: generated files are gone, user files stay
		assert.NoFileExists(t, env.Layout.MustTargetPath(config.TargetConfigFilename))
		assert.NoFileExists(t, env.Layout.MustTargetPath(config.TargetVMFilename))
		assert.FileExists(t, local)
		assert.Equal(t, "/vendor/\n", readTarget(t, env, config.TargetGitignoreFilename))
		assert.Contains(t, s.Messages()[0], "have been removed or modified")
	})

	t.Run("deletes gitignore it created", func(t *testing.T) {
		env := newEnv(t, "vendor")
		require.NoError(t, NewInitConfig(env).(*InitConfig).Install(context.Background()))

		require.NoError(t, NewInitConfig(env).(*InitConfig).Uninstall(context.Background()))

		assert.NoFileExists(t, env.Layout.MustTargetPath(config.TargetGitignoreFilename))
	})

	t.Run("nothing installed", func(t *testing.T) {
		env := newEnv(t, "vendor")

		assert.NoError(t, NewInitConfig(env).(*InitConfig).Uninstall(context.Background()))
	})
}

func TestProjectName_Install(t *testing.T) {
	t.Run("answer", func(t *testing.T) {
		env := newEnv(t, "vendor")
		env.Prompter = &scriptedPrompter{answers: []string{"my-project"}}
		tree := document.MapOf("vagrant", document.MapOf("hostname", ""))

		require.NoError(t, NewProjectName(env).(*ProjectName).Install(context.Background(), tree))

		hostname, _ := tree.LookupString("vagrant", "hostname")
		assert.Equal(t, "my-project", hostname)
	})

	t.Run("default", func(t *testing.T) {
		env := newEnv(t, "vendor")
		prompter := &scriptedPrompter{}
		env.Prompter = prompter
		tree := document.NewMap()

		require.NoError(t, NewProjectName(env).(*ProjectName).Install(context.Background(), tree))

		hostname, _ := tree.LookupString("vagrant", "hostname")
		assert.Equal(t, "draft.1700000000", hostname)
		assert.Contains(t, prompter.questions[0], "[draft.1700000000]")
	})
}

func TestValidateProjectName(t *testing.T) {
	valid := []string{"abc", "my-project", "draft.1700000000", "a1.b2-c3", "abC"}
	invalid := []string{"", "ab", "-abc", ".abc", "abc-", "abc.", "ABC", "my_project", "abc def"}

	for _, v := range valid {
		got, err := ValidateProjectName(v)
		assert.NoError(t, err, v)
		assert.Equal(t, v, got)
	}
	for _, v := range invalid {
		_, err := ValidateProjectName(v)
		assert.True(t, draftErrors.HasCode(err, draftErrors.ErrCodeValidation), "%q should be invalid", v)
	}
}

func TestPhpVersion_Install(t *testing.T) {
	env := newEnv(t, "vendor")
	tree := document.MapOf("php_version", "7.4")

	require.NoError(t, NewPhpVersion(env).(*PhpVersion).Install(context.Background(), tree))
	v, _ := tree.Get("php_version")
	assert.Equal(t, DefaultPhpVersion, v)

	env.Prompter = &scriptedPrompter{answers: []string{"8.1"}}
	require.NoError(t, NewPhpVersion(env).(*PhpVersion).Install(context.Background(), tree))
	v, _ = tree.Get("php_version")
	assert.Equal(t, "8.1", v)
}

func TestWeights(t *testing.T) {
	env := newEnv(t, "vendor")
	assert.Equal(t, -100, NewInitConfig(env).Weight())
	assert.Equal(t, -10, NewProjectName(env).Weight())
	assert.Equal(t, 0, NewPhpVersion(env).Weight())
}
