package update

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/lemberg/draftenv/configs"
	"github.com/lemberg/draftenv/internal/config"
	"github.com/lemberg/draftenv/internal/document"
	draftErrors "github.com/lemberg/draftenv/internal/errors"
	"github.com/lemberg/draftenv/internal/fileio"
	"github.com/lemberg/draftenv/internal/step"
)

type markerFunc func(ctx context.Context) error

func (f markerFunc) MarkInstalled(ctx context.Context) error { return f(ctx) }

func newEnv(t *testing.T) *step.Env {
	t.Helper()
	return &step.Env{
		Layout: &config.Layout{ProjectDir: t.TempDir(), VendorDir: "vendor"},
		FS:     fileio.OS{},
		Plan:   step.NewPlan(),
	}
}

func parse(t *testing.T, text string) *document.Map {
	t.Helper()
	tree, err := document.Parse(text)
	require.NoError(t, err)
	return tree
}

// applyTwice runs s on tree twice and checks the second run is a no-op.
func applyTwice(t *testing.T, s step.Step, tree *document.Map) {
	t.Helper()
	u := s.(step.UpdateStep)
	require.NoError(t, u.Update(context.Background(), tree))
	once := tree.Clone()
	require.NoError(t, u.Update(context.Background(), tree))
	assert.True(t, once.Equal(tree), "second run changed the tree:\n%s\nvs\n%s", once, tree)
}

func TestWeights_AreUniqueAndOrdered(t *testing.T) {
	env := newEnv(t)
	steps := []step.Step{
		NewRemoveConfigurerComposerScript(env),
		NewExportAllAvailableConfiguration(env),
		NewSetAsAlreadyInstalled(env),
		NewReplaceBaseDirectoryWithDestinationDirectory(env),
		NewAddIdToSyncedFoldersOptions(env),
		NewAllowAllHostsMysql(env),
		NewRevisePhpConfiguration(env),
		NewXdebug2To3(env),
		NewXenial2Focal(env),
		NewCleanup30400(env),
		NewCleanup30401(env),
		NewDefaultConfigUpdate30600(env),
	}
	want := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 13}
	for i, s := range steps {
		assert.Equal(t, want[i], s.Weight(), s.Name())
		_, ok := s.(step.UpdateStep)
		assert.True(t, ok, s.Name())
	}
}

func TestRemoveConfigurerComposerScript_DefersManifestEdit(t *testing.T) {
	// Given: a manifest with the legacy configurer script
	env := newEnv(t)
	env.ManifestPath = filepath.Join(env.Layout.ProjectDir, "composer.json")
	require.NoError(t, os.WriteFile(env.ManifestPath,
		[]byte(`{"scripts":{"post-install-cmd":["Lemberg\\Draft\\Environment\\Configurer::setUp","@build"]}}`), 0o644))
	s := NewRemoveConfigurerComposerScript(env).(step.UpdateStep)

	// When: running the step
	require.NoError(t, s.Update(context.Background(), document.NewMap()))

	// Then: nothing changes until the plan runs
	before, err := os.ReadFile(env.ManifestPath)
	require.NoError(t, err)
	assert.Contains(t, string(before), "Configurer::setUp")
	assert.Equal(t, []string{"RemoveConfigurerComposerScript"}, env.Plan.Deferred())

	require.NoError(t, env.Plan.RunDeferred(context.Background()))
	after, err := os.ReadFile(env.ManifestPath)
	require.NoError(t, err)
	scripts := gjson.GetBytes(after, "scripts.post-install-cmd").Array()
	require.Len(t, scripts, 1)
	assert.Equal(t, "@build", scripts[0].String())
}

func TestRemoveConfigurerComposerScript_NoManifest(t *testing.T) {
	env := newEnv(t)
	s := NewRemoveConfigurerComposerScript(env).(step.UpdateStep)

	require.NoError(t, s.Update(context.Background(), document.NewMap()))

	assert.Empty(t, env.Plan.Deferred())
}

func TestExportAllAvailableConfiguration(t *testing.T) {
	// Given: an old, sparse configuration
	env := newEnv(t)
	tree := parse(t, "ansible:\n  version: 2.9.*\nvagrant:\n  hostname: site\ncustom: kept\n")
	s := NewExportAllAvailableConfiguration(env)

	// When: exporting the defaults
	applyTwice(t, s, tree)

	// Then: project values win, defaults fill the gaps in template order
	v, _ := tree.Lookup("ansible", "version")
	assert.Equal(t, "2.9.*", v)
	v, _ = tree.Lookup("vagrant", "hostname")
	assert.Equal(t, "site", v)
	v, _ = tree.Lookup("vagrant", "box")
	assert.Equal(t, "ubuntu/focal64", v)
	assert.Equal(t, "vagrant", tree.Keys()[0])
	assert.Equal(t, "custom", tree.Keys()[tree.Len()-1])
	assert.True(t, tree.Has("php_version"))

	source, ok := env.Plan.CommentSource()
	require.True(t, ok)
	assert.Equal(t, configs.DefaultSettingsTemplate, source)
}

func TestDefaultConfigUpdate30600_MatchesExport(t *testing.T) {
	env := newEnv(t)
	a := parse(t, "vagrant:\n  hostname: site\n")
	b := a.Clone()

	require.NoError(t, NewExportAllAvailableConfiguration(env).(step.UpdateStep).Update(context.Background(), a))
	require.NoError(t, NewDefaultConfigUpdate30600(env).(step.UpdateStep).Update(context.Background(), b))

	assert.True(t, a.Equal(b))
}

func TestExportAllAvailableConfiguration_MissingSource(t *testing.T) {
	env := newEnv(t)
	env.Layout.SourceDir = filepath.Join(env.Layout.ProjectDir, "missing")
	require.NoError(t, os.MkdirAll(env.Layout.SourceDir, 0o755))
	s := NewExportAllAvailableConfiguration(env).(step.UpdateStep)

	err := s.Update(context.Background(), document.NewMap())

	require.Error(t, err)
	_, ok := env.Plan.CommentSource()
	assert.False(t, ok)
}

func TestSetAsAlreadyInstalled(t *testing.T) {
	env := newEnv(t)
	calls := 0
	env.Ledger = markerFunc(func(ctx context.Context) error {
		calls++
		return nil
	})
	s := NewSetAsAlreadyInstalled(env).(step.UpdateStep)

	require.NoError(t, s.Update(context.Background(), document.NewMap()))
	assert.Equal(t, 0, calls)

	require.NoError(t, env.Plan.RunDeferred(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestSetAsAlreadyInstalled_PropagatesLedgerError(t *testing.T) {
	env := newEnv(t)
	boom := errors.New("boom")
	env.Ledger = markerFunc(func(ctx context.Context) error { return boom })
	require.NoError(t, NewSetAsAlreadyInstalled(env).(step.UpdateStep).Update(context.Background(), document.NewMap()))

	err := env.Plan.RunDeferred(context.Background())

	assert.ErrorIs(t, err, boom)
}

func TestReplaceBaseDirectoryWithDestinationDirectory(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantDest string
		wantSSH  any
	}{
		{
			name:     "base directory moves to destination",
			input:    "vagrant:\n  base_directory: /srv/app\nssh_default_directory: '{{ base_directory }}/web'\n",
			wantDest: "/srv/app",
			wantSSH:  "{{ destination_directory }}/web",
		},
		{
			name:     "default destination",
			input:    "vagrant:\n  hostname: site\n",
			wantDest: DefaultDestinationDirectory,
		},
		{
			name:     "existing destination kept",
			input:    "vagrant:\n  destination_directory: /opt/site\n",
			wantDest: "/opt/site",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := parse(t, tt.input)

			applyTwice(t, NewReplaceBaseDirectoryWithDestinationDirectory(newEnv(t)), tree)

			v, _ := tree.Lookup("vagrant", "source_directory")
			assert.Equal(t, ".", v)
			v, _ = tree.Lookup("vagrant", "destination_directory")
			assert.Equal(t, tt.wantDest, v)
			_, ok := tree.Lookup("vagrant", "base_directory")
			assert.False(t, ok)
			if tt.wantSSH != nil {
				v, _ = tree.Get("ssh_default_directory")
				assert.Equal(t, tt.wantSSH, v)
			}
		})
	}
}

func TestAddIdToSyncedFoldersOptions(t *testing.T) {
	tree := parse(t, "vagrant:\n  synced_folder_options:\n    type: nfs\n")

	applyTwice(t, NewAddIdToSyncedFoldersOptions(newEnv(t)), tree)

	options, ok := tree.LookupMap("vagrant", "synced_folder_options")
	require.True(t, ok)
	assert.Equal(t, []string{"type", "id"}, options.Keys())
	v, _ := options.Get("id")
	assert.Equal(t, "default", v)
}

func TestAddIdToSyncedFoldersOptions_CreatesSection(t *testing.T) {
	tree := document.NewMap()

	applyTwice(t, NewAddIdToSyncedFoldersOptions(newEnv(t)), tree)

	v, _ := tree.Lookup("vagrant", "synced_folder_options", "id")
	assert.Equal(t, "default", v)
}

func TestAllowAllHostsMysql(t *testing.T) {
	tree := parse(t, `mysql_users:
  - name: drupal
    password: drupal
  - name: admin
    host: localhost
  - name: legacy
    host: ~
`)

	applyTwice(t, NewAllowAllHostsMysql(newEnv(t)), tree)

	users, _ := tree.Get("mysql_users")
	list := users.([]any)
	require.Len(t, list, 3)
	hosts := make([]any, 0, len(list))
	for _, item := range list {
		v, _ := item.(*document.Map).Get("host")
		hosts = append(hosts, v)
	}
	assert.Equal(t, []any{"%", "localhost", "%"}, hosts)
}

func TestAllowAllHostsMysql_NoUsers(t *testing.T) {
	tree := parse(t, "php_version: \"8.0\"\n")

	applyTwice(t, NewAllowAllHostsMysql(newEnv(t)), tree)

	assert.False(t, tree.Has("mysql_users"))
}

func TestRevisePhpConfiguration(t *testing.T) {
	tree := parse(t, `php_configuration:
  PHP:
    memory_limit: 512M
php_cli_configuration:
  PHP:
    max_execution_time: 60
`)

	applyTwice(t, NewRevisePhpConfiguration(newEnv(t)), tree)

	fpm, ok := tree.LookupMap("php_configuration", "PHP")
	require.True(t, ok)
	assert.Equal(t, []string{"memory_limit", "max_execution_time"}, fpm.Keys())
	v, _ := fpm.Get("max_execution_time")
	assert.Equal(t, 300, v)

	cli, ok := tree.LookupMap("php_cli_configuration", "PHP")
	require.True(t, ok)
	v, _ = cli.Get("max_execution_time")
	assert.Equal(t, 60, v, "existing value is kept")
	v, _ = cli.Get("output_buffering")
	assert.Equal(t, "Off", v)
	v, _ = cli.Get("sendmail_path")
	assert.Equal(t, "{{ mailhog_install_dir }}/mhsendmail", v)
}

func TestRevisePhpConfiguration_SkipsAbsentSections(t *testing.T) {
	tree := parse(t, "php_version: \"8.0\"\n")

	applyTwice(t, NewRevisePhpConfiguration(newEnv(t)), tree)

	assert.Equal(t, []string{"php_version"}, tree.Keys())
}

func TestXdebug2To3(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantKeys   []string
		wantMode   any
		wantClient any
	}{
		{
			name:       "enabled",
			input:      "php_extensions_configuration:\n  xdebug:\n    xdebug.remote_enable: On\n    xdebug.remote_connect_back: On\n    xdebug.idekey: PHPSTORM\n",
			wantKeys:   []string{"xdebug.mode", "xdebug.discover_client_host", "xdebug.idekey"},
			wantMode:   "debug",
			wantClient: "true",
		},
		{
			name:       "disabled",
			input:      "php_extensions_configuration:\n  xdebug:\n    xdebug.remote_enable: Off\n    xdebug.remote_connect_back: Off\n",
			wantKeys:   []string{"xdebug.mode", "xdebug.discover_client_host"},
			wantMode:   "off",
			wantClient: "false",
		},
		{
			name:       "already migrated",
			input:      "php_extensions_configuration:\n  xdebug:\n    xdebug.mode: develop\n    xdebug.discover_client_host: \"true\"\n",
			wantKeys:   []string{"xdebug.mode", "xdebug.discover_client_host"},
			wantMode:   "develop",
			wantClient: "true",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := parse(t, tt.input)

			applyTwice(t, NewXdebug2To3(newEnv(t)), tree)

			xdebug, ok := tree.LookupMap("php_extensions_configuration", "xdebug")
			require.True(t, ok)
			assert.Equal(t, tt.wantKeys, xdebug.Keys())
			v, _ := xdebug.Get("xdebug.mode")
			assert.Equal(t, tt.wantMode, v)
			v, _ = xdebug.Get("xdebug.discover_client_host")
			assert.Equal(t, tt.wantClient, v)
		})
	}
}

func TestXdebug2To3_ConflictingKeys(t *testing.T) {
	// Given: both the old and the new key
	tree := parse(t, "php_extensions_configuration:\n  xdebug:\n    xdebug.remote_enable: On\n    xdebug.mode: debug\n")

	// When: migrating
	err := NewXdebug2To3(newEnv(t)).(step.UpdateStep).Update(context.Background(), tree)

	// Then: the rename is refused
	require.Error(t, err)
	assert.True(t, draftErrors.HasCode(err, draftErrors.ErrCodeInvariant))
}

func TestXenial2Focal(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"vagrant:\n  box: ubuntu/xenial64\n", "ubuntu/focal64"},
		{"vagrant:\n  box: generic/debian11\n", "generic/debian11"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tree := parse(t, tt.input)

			applyTwice(t, NewXenial2Focal(newEnv(t)), tree)

			v, _ := tree.Lookup("vagrant", "box")
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestCleanup30400(t *testing.T) {
	tree := parse(t, `virtualbox:
  disk_size: 10Gb
ansible:
  version: 2.9.*
php_extensions_configuration:
  xdebug:
    xdebug.discover_client_host: true
mysql_sql_mode: "~"
`)

	applyTwice(t, NewCleanup30400(newEnv(t)), tree)

	v, _ := tree.Lookup("ansible", "version")
	assert.Equal(t, "4.*", v)
	v, _ = tree.Lookup("virtualbox", "disk_size")
	assert.Equal(t, "40Gb", v)
	v, _ = tree.Lookup("php_extensions_configuration", "xdebug", "xdebug.discover_client_host")
	assert.Equal(t, "true", v)
	v, _ = tree.Get("mysql_sql_mode")
	assert.Equal(t, "~", v, "sql mode is left to Cleanup30401")
}

func TestCleanup30400_KeepsCustomValues(t *testing.T) {
	tree := parse(t, "virtualbox:\n  disk_size: 80Gb\nansible:\n  version: 5.*\n")

	applyTwice(t, NewCleanup30400(newEnv(t)), tree)

	v, _ := tree.Lookup("ansible", "version")
	assert.Equal(t, "5.*", v)
	v, _ = tree.Lookup("virtualbox", "disk_size")
	assert.Equal(t, "80Gb", v)
}

func TestCleanup30401(t *testing.T) {
	tree := parse(t, "ansible:\n  version: 2.9.*\nmysql_sql_mode: \"~\"\n")

	applyTwice(t, NewCleanup30401(newEnv(t)), tree)

	v, _ := tree.Lookup("ansible", "version")
	assert.Equal(t, "4.*", v)
	v, ok := tree.Get("mysql_sql_mode")
	assert.True(t, ok)
	assert.Nil(t, v)
}
