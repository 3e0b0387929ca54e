package update

import (
	"context"

	"github.com/lemberg/draftenv/internal/document"
	"github.com/lemberg/draftenv/internal/step"
)

// SetAsAlreadyInstalled marks projects installed before the ledger existed.
type SetAsAlreadyInstalled struct{ base }

func NewSetAsAlreadyInstalled(env *step.Env) step.Step {
	return &SetAsAlreadyInstalled{base{env: env}}
}

func (s *SetAsAlreadyInstalled) Weight() int  { return 3 }
func (s *SetAsAlreadyInstalled) Name() string { return "SetAsAlreadyInstalled" }

func (s *SetAsAlreadyInstalled) Update(ctx context.Context, tree *document.Map) error {
	if s.env.Ledger == nil {
		return nil
	}
	s.env.Plan.Defer(s.Name(), s.env.Ledger.MarkInstalled)
	return nil
}
