package update

import (
	"context"
	"log/slog"

	"github.com/lemberg/draftenv/internal/composer"
	"github.com/lemberg/draftenv/internal/document"
	"github.com/lemberg/draftenv/internal/step"
)

// RemoveConfigurerComposerScript drops the legacy configurer callback from
// composer.json scripts. The manifest is edited after the configuration has
// been written.
type RemoveConfigurerComposerScript struct{ base }

func NewRemoveConfigurerComposerScript(env *step.Env) step.Step {
	return &RemoveConfigurerComposerScript{base{env: env}}
}

func (s *RemoveConfigurerComposerScript) Weight() int  { return 1 }
func (s *RemoveConfigurerComposerScript) Name() string { return "RemoveConfigurerComposerScript" }

func (s *RemoveConfigurerComposerScript) Update(ctx context.Context, tree *document.Map) error {
	if s.env.ManifestPath == "" {
		return nil
	}
	path := s.env.ManifestPath
	s.env.Plan.Defer(s.Name(), func(ctx context.Context) error {
		changed, err := composer.RemoveScript(s.env.FS, path, composer.ConfigurerScript,
			composer.EventPostInstallCmd, composer.EventPostUpdateCmd)
		if err != nil {
			return err
		}
		if changed {
			s.env.Log().Info("removed legacy configurer script", slog.String("file", path))
		}
		return nil
	})
	return nil
}
