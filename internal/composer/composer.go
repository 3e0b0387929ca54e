// Package composer reads and edits the host build tool's JSON files
// (composer.json and composer.lock) in place, keeping untouched bytes as
// they are.
package composer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	draftErrors "github.com/lemberg/draftenv/internal/errors"
	"github.com/lemberg/draftenv/internal/fileio"
)

// Script events that used to run the legacy configurer.
const (
	EventPostInstallCmd = "post-install-cmd"
	EventPostUpdateCmd  = "post-update-cmd"
)

// ConfigurerScript is the legacy setup callback registered in composer.json.
const ConfigurerScript = `Lemberg\Draft\Environment\Configurer::setUp`

// RemoveScript removes script from the given script events of the manifest
// at path. Events left empty are removed, and so is an empty "scripts"
// object. Returns whether the file changed. A missing manifest is not an
// error.
func RemoveScript(fsys fileio.FS, path, script string, events ...string) (bool, error) {
	if !fsys.Exists(path) {
		return false, nil
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		return false, draftErrors.IOError(fmt.Sprintf("failed to read %s", path), err).WithDetail("file", path)
	}
	if !gjson.ValidBytes(data) {
		return false, draftErrors.ParseError(fmt.Sprintf("%s is not valid JSON", path), nil).WithDetail("file", path)
	}

	updated, changed, err := removeScript(data, script, events)
	if err != nil {
		return false, draftErrors.InternalError(fmt.Sprintf("failed to edit %s", path), err)
	}
	if !changed {
		return false, nil
	}
	if err := fsys.WriteFile(path, updated, 0o644); err != nil {
		return false, draftErrors.IOError(fmt.Sprintf("failed to write %s", path), err).WithDetail("file", path)
	}
	return true, nil
}

func removeScript(data []byte, script string, events []string) ([]byte, bool, error) {
	changed := false
	var err error

	for _, event := range events {
		eventPath := "scripts." + escapeKey(event)
		value := gjson.GetBytes(data, eventPath)
		if !value.Exists() {
			continue
		}

		if !value.IsArray() {
			if value.String() == script {
				if data, err = sjson.DeleteBytes(data, eventPath); err != nil {
					return nil, false, err
				}
				changed = true
			}
			continue
		}

		items := value.Array()
		removed := 0
		// Delete from the end so earlier indexes stay valid.
		for i := len(items) - 1; i >= 0; i-- {
			if items[i].String() != script {
				continue
			}
			if data, err = sjson.DeleteBytes(data, eventPath+"."+strconv.Itoa(i)); err != nil {
				return nil, false, err
			}
			removed++
			changed = true
		}
		if removed > 0 && removed == len(items) {
			if data, err = sjson.DeleteBytes(data, eventPath); err != nil {
				return nil, false, err
			}
		}
	}

	scripts := gjson.GetBytes(data, "scripts")
	if scripts.IsObject() && len(scripts.Map()) == 0 {
		if data, err = sjson.DeleteBytes(data, "scripts"); err != nil {
			return nil, false, err
		}
		changed = true
	}
	return data, changed, nil
}

// VendorDir returns config.vendor-dir of the manifest, or "" when unset or
// unreadable.
func VendorDir(fsys fileio.FS, path string) string {
	data, err := fsys.ReadFile(path)
	if err != nil || !gjson.ValidBytes(data) {
		return ""
	}
	return strings.Trim(gjson.GetBytes(data, "config.vendor-dir").String(), "/")
}

// escapeKey escapes gjson path syntax inside a single key.
func escapeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
