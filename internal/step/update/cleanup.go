package update

import (
	"context"

	"github.com/lemberg/draftenv/internal/document"
	"github.com/lemberg/draftenv/internal/step"
)

// Xenial2Focal moves projects still on Ubuntu 16.04 to 20.04.
type Xenial2Focal struct{ base }

func NewXenial2Focal(env *step.Env) step.Step {
	return &Xenial2Focal{base{env: env}}
}

func (s *Xenial2Focal) Weight() int  { return 9 }
func (s *Xenial2Focal) Name() string { return "Xenial2Focal" }

func (s *Xenial2Focal) Update(ctx context.Context, tree *document.Map) error {
	replaceIfEquals(tree, "ubuntu/xenial64", "ubuntu/focal64", "vagrant", "box")
	return nil
}

// Cleanup30400 bumps defaults that changed in 3.4.0.
type Cleanup30400 struct{ base }

func NewCleanup30400(env *step.Env) step.Step {
	return &Cleanup30400{base{env: env}}
}

func (s *Cleanup30400) Weight() int  { return 10 }
func (s *Cleanup30400) Name() string { return "Cleanup30400" }

func (s *Cleanup30400) Update(ctx context.Context, tree *document.Map) error {
	cleanup30400(tree)
	return nil
}

func cleanup30400(tree *document.Map) {
	replaceIfEquals(tree, "2.9.*", "4.*", "ansible", "version")
	// Ubuntu 20.04 boxes ship a 40Gb disk.
	replaceIfEquals(tree, "10Gb", "40Gb", "virtualbox", "disk_size")
	// Xdebug expects the string "true", a YAML boolean breaks the ini file.
	replaceIfEquals(tree, true, "true", "php_extensions_configuration", "xdebug", "xdebug.discover_client_host")
}

// Cleanup30401 repeats Cleanup30400 and fixes the MySQL sql_mode default.
type Cleanup30401 struct{ base }

func NewCleanup30401(env *step.Env) step.Step {
	return &Cleanup30401{base{env: env}}
}

func (s *Cleanup30401) Weight() int  { return 11 }
func (s *Cleanup30401) Name() string { return "Cleanup30401" }

func (s *Cleanup30401) Update(ctx context.Context, tree *document.Map) error {
	cleanup30400(tree)
	// A quoted "~" is the string, not null, and breaks the MySQL install.
	replaceIfEquals(tree, "~", nil, "mysql_sql_mode")
	return nil
}
