// Package update holds the migration steps applied to an existing
// vm-settings.yml on package update.
//
// Every step checks that the keys it touches exist before reading them and
// only rewrites values that still hold an old default, so running a step
// on already migrated configuration changes nothing.
package update

import (
	"github.com/lemberg/draftenv/internal/document"
	"github.com/lemberg/draftenv/internal/step"
)

// base carries what every update step shares.
type base struct {
	step.Messenger
	env *step.Env
}

// replaceIfEquals sets path to next only when its current value is old.
func replaceIfEquals(tree *document.Map, old, next any, path ...string) bool {
	parent, ok := tree.LookupMap(path[:len(path)-1]...)
	if !ok {
		return false
	}
	key := path[len(path)-1]
	current, ok := parent.Get(key)
	if !ok || current != old {
		return false
	}
	parent.Set(key, next)
	return true
}
