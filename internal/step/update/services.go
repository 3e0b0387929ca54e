package update

import (
	"context"

	"github.com/lemberg/draftenv/internal/document"
	"github.com/lemberg/draftenv/internal/step"
)

// AllowAllHostsMysql lets MySQL users connect from any host unless a host
// is set already.
type AllowAllHostsMysql struct{ base }

func NewAllowAllHostsMysql(env *step.Env) step.Step {
	return &AllowAllHostsMysql{base{env: env}}
}

func (s *AllowAllHostsMysql) Weight() int  { return 6 }
func (s *AllowAllHostsMysql) Name() string { return "AllowAllHostsMysql" }

func (s *AllowAllHostsMysql) Update(ctx context.Context, tree *document.Map) error {
	users, ok := tree.Get("mysql_users")
	if !ok {
		return nil
	}
	list, ok := users.([]any)
	if !ok {
		return nil
	}
	for _, item := range list {
		if user, ok := item.(*document.Map); ok {
			setIfMissingOrNil(user, "host", "%")
		}
	}
	return nil
}

// RevisePhpConfiguration adds php.ini defaults introduced for FPM and CLI.
type RevisePhpConfiguration struct{ base }

func NewRevisePhpConfiguration(env *step.Env) step.Step {
	return &RevisePhpConfiguration{base{env: env}}
}

func (s *RevisePhpConfiguration) Weight() int  { return 7 }
func (s *RevisePhpConfiguration) Name() string { return "RevisePhpConfiguration" }

var (
	phpFpmDefaults = []setting{
		{"max_execution_time", 300},
	}
	phpCliDefaults = []setting{
		{"error_reporting", "E_ALL"},
		{"error_log", "/var/log/draft/php_error.log"},
		{"max_execution_time", 0},
		{"output_buffering", "Off"},
		{"sendmail_path", "{{ mailhog_install_dir }}/mhsendmail"},
	}
)

type setting struct {
	key   string
	value any
}

func (s *RevisePhpConfiguration) Update(ctx context.Context, tree *document.Map) error {
	applyPhpDefaults(tree, "php_configuration", phpFpmDefaults)
	applyPhpDefaults(tree, "php_cli_configuration", phpCliDefaults)
	return nil
}

func applyPhpDefaults(tree *document.Map, section string, defaults []setting) {
	if !tree.Has(section) {
		return
	}
	php, ok := tree.LookupMap(section, "PHP")
	if !ok {
		php = document.NewMap()
		tree.SetPath(php, section, "PHP")
	}
	for _, d := range defaults {
		setIfMissingOrNil(php, d.key, d.value)
	}
}

// setIfMissingOrNil stores value unless key holds a non-nil value.
func setIfMissingOrNil(m *document.Map, key string, value any) {
	if current, ok := m.Get(key); ok && current != nil {
		return
	}
	m.Set(key, value)
}
