package update

import (
	"context"

	"github.com/lemberg/draftenv/internal/document"
	"github.com/lemberg/draftenv/internal/step"
)

// Xdebug2To3 renames Xdebug 2 settings to their Xdebug 3 counterparts.
type Xdebug2To3 struct{ base }

func NewXdebug2To3(env *step.Env) step.Step {
	return &Xdebug2To3{base{env: env}}
}

func (s *Xdebug2To3) Weight() int  { return 8 }
func (s *Xdebug2To3) Name() string { return "Xdebug2To3" }

func (s *Xdebug2To3) Update(ctx context.Context, tree *document.Map) error {
	xdebug, ok := tree.LookupMap("php_extensions_configuration", "xdebug")
	if !ok {
		return nil
	}

	if xdebug.Has("xdebug.remote_enable") {
		if err := renameAndMap(xdebug, "xdebug.remote_enable", "xdebug.mode", "debug", "off"); err != nil {
			return err
		}
	}
	if xdebug.Has("xdebug.remote_connect_back") {
		if err := renameAndMap(xdebug, "xdebug.remote_connect_back", "xdebug.discover_client_host", "true", "false"); err != nil {
			return err
		}
	}
	return nil
}

// renameAndMap renames oldKey and maps an enabled value ("On", or a YAML
// boolean true) to on, anything else to off.
func renameAndMap(m *document.Map, oldKey, newKey, on, off string) error {
	if err := m.RenameKey(oldKey, newKey); err != nil {
		return err
	}
	value, _ := m.Get(newKey)
	if value == "On" || value == true {
		m.Set(newKey, on)
	} else {
		m.Set(newKey, off)
	}
	return nil
}
