package update

import (
	"context"

	"github.com/lemberg/draftenv/internal/config"
	"github.com/lemberg/draftenv/internal/document"
	"github.com/lemberg/draftenv/internal/step"
)

// ExportAllAvailableConfiguration adds every setting of the default template
// that the project configuration lacks. Project values win; the result
// follows the template key order and carries its comments.
type ExportAllAvailableConfiguration struct{ base }

func NewExportAllAvailableConfiguration(env *step.Env) step.Step {
	return &ExportAllAvailableConfiguration{base{env: env}}
}

func (s *ExportAllAvailableConfiguration) Weight() int { return 2 }
func (s *ExportAllAvailableConfiguration) Name() string {
	return "ExportAllAvailableConfiguration"
}

func (s *ExportAllAvailableConfiguration) Update(ctx context.Context, tree *document.Map) error {
	return exportDefaults(s.env, tree)
}

// DefaultConfigUpdate30600 re-exports the defaults introduced in 3.6.0.
type DefaultConfigUpdate30600 struct{ base }

func NewDefaultConfigUpdate30600(env *step.Env) step.Step {
	return &DefaultConfigUpdate30600{base{env: env}}
}

func (s *DefaultConfigUpdate30600) Weight() int  { return 13 }
func (s *DefaultConfigUpdate30600) Name() string { return "DefaultConfigUpdate30600" }

func (s *DefaultConfigUpdate30600) Update(ctx context.Context, tree *document.Map) error {
	return exportDefaults(s.env, tree)
}

func exportDefaults(env *step.Env, tree *document.Map) error {
	text, err := env.Layout.ReadSource(env.FS, config.SourceConfigFilename)
	if err != nil {
		return err
	}
	defaults, err := document.Parse(text)
	if err != nil {
		return err
	}

	merged := document.MergeRecursive(defaults, tree)
	replaceContents(tree, merged)
	env.Plan.SetCommentSource(text)
	return nil
}

// replaceContents makes dst hold exactly the keys and values of src.
func replaceContents(dst, src *document.Map) {
	for _, k := range dst.Keys() {
		dst.Delete(k)
	}
	for _, k := range src.Keys() {
		v, _ := src.Get(k)
		dst.Set(k, v)
	}
}
