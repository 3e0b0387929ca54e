package install

import (
	"context"
	"fmt"

	"github.com/lemberg/draftenv/internal/document"
	"github.com/lemberg/draftenv/internal/step"
)

// PhpVersions lists the supported PHP releases.
var PhpVersions = []string{"7.4", "8.0", "8.1"}

// DefaultPhpVersion is preselected in the prompt.
const DefaultPhpVersion = "8.0"

// PhpVersion asks which PHP release the VM runs.
type PhpVersion struct {
	step.Messenger
	env *step.Env
}

// NewPhpVersion creates the step.
func NewPhpVersion(env *step.Env) step.Step {
	return &PhpVersion{env: env}
}

func (s *PhpVersion) Weight() int  { return 0 }
func (s *PhpVersion) Name() string { return "PhpVersion" }

func (s *PhpVersion) Install(ctx context.Context, tree *document.Map) error {
	question := fmt.Sprintf("\nPlease specify PHP version <question>[%s]</question>: ", DefaultPhpVersion)
	version, err := s.env.Prompter.Select(question, PhpVersions, DefaultPhpVersion)
	if err != nil {
		return err
	}
	tree.Set("php_version", version)
	return nil
}
