package install

import (
	"context"
	"fmt"
	"regexp"

	"github.com/lemberg/draftenv/internal/document"
	draftErrors "github.com/lemberg/draftenv/internal/errors"
	"github.com/lemberg/draftenv/internal/step"
)

var projectNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-.]{1,61}[a-zA-Z0-9]$`)

// ProjectName asks for the project name and stores it as vagrant.hostname.
type ProjectName struct {
	step.Messenger
	env *step.Env
}

// NewProjectName creates the step.
func NewProjectName(env *step.Env) step.Step {
	return &ProjectName{env: env}
}

func (s *ProjectName) Weight() int  { return -10 }
func (s *ProjectName) Name() string { return "ProjectName" }

// Install prompts for the name, defaulting to draft.<unix time>.
func (s *ProjectName) Install(ctx context.Context, tree *document.Map) error {
	def := fmt.Sprintf("draft.%d", s.env.Time().Unix())
	question := fmt.Sprintf(`
Please specify the project name. Must be a valid domain name:
  - Allowed characters: lowercase letters (a-z), numbers (0-9), period (.) and
    dash (-)
  - Should not start or end with dash (-) or dot (.) (e.g. -google- or .apple.)
  - Should be between 3 and 63 characters long

 > Project name <question>[%s]</question>: `, def)

	name, err := s.env.Prompter.Ask(question, ValidateProjectName, def)
	if err != nil {
		return err
	}
	tree.SetPath(name, "vagrant", "hostname")
	return nil
}

// ValidateProjectName accepts names usable as a DNS label under .test.
func ValidateProjectName(value string) (string, error) {
	if !projectNamePattern.MatchString(value) {
		return "", draftErrors.ValidationError(
			fmt.Sprintf("Specified value '%s' is not a valid project name. Please try again", value))
	}
	return value, nil
}
