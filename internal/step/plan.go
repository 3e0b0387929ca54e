package step

import (
	"context"
	"fmt"
)

// Plan collects what an update batch wants to happen after the new
// configuration has been written. Nothing queued here runs if a step fails
// or the write fails.
type Plan struct {
	commentSource    string
	hasCommentSource bool
	deferred         []deferredAction
}

type deferredAction struct {
	name string
	fn   func(ctx context.Context) error
}

// NewPlan returns an empty plan.
func NewPlan() *Plan {
	return &Plan{}
}

// SetCommentSource makes text the primary comment source of the write.
// The last call wins.
func (p *Plan) SetCommentSource(text string) {
	p.commentSource = text
	p.hasCommentSource = true
}

// CommentSource returns the override set by SetCommentSource.
func (p *Plan) CommentSource() (string, bool) {
	return p.commentSource, p.hasCommentSource
}

// Defer queues fn to run after a successful write.
func (p *Plan) Defer(name string, fn func(ctx context.Context) error) {
	p.deferred = append(p.deferred, deferredAction{name: name, fn: fn})
}

// Deferred returns the names of the queued actions.
func (p *Plan) Deferred() []string {
	names := make([]string, len(p.deferred))
	for i, a := range p.deferred {
		names[i] = a.name
	}
	return names
}

// RunDeferred runs queued actions in order and stops at the first error.
func (p *Plan) RunDeferred(ctx context.Context) error {
	for _, a := range p.deferred {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := a.fn(ctx); err != nil {
			return fmt.Errorf("%s: %w", a.name, err)
		}
	}
	return nil
}
