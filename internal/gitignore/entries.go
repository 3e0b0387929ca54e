package gitignore

import (
	"strings"
)

// Entry is a commented .gitignore block managed by draftenv.
type Entry struct {
	Comment string
	// Pattern is written as is, e.g. "/.vagrant".
	Pattern string
	// Dir marks entries that ignore a directory.
	Dir bool
}

// VagrantEntry ignores the Vagrant machine data directory.
var VagrantEntry = Entry{
	Comment: "Ignore Vagrant virtual machine data.",
	Pattern: "/.vagrant",
	Dir:     true,
}

// LocalOverridesEntry ignores the local settings overrides file.
var LocalOverridesEntry = Entry{
	Comment: "Ignore Draft Environment local configuration overrides.",
	Pattern: "/vm-settings.local.yml",
}

// Block returns the text appended to .gitignore for e.
func (e Entry) Block() string {
	return "\n# " + e.Comment + "\n" + e.Pattern + "\n"
}

func (e Entry) path() string {
	return strings.TrimPrefix(e.Pattern, "/")
}

// Ensure appends the block of every entry whose path content does not
// ignore yet. It returns the new content and the entries that were added.
func Ensure(content string, entries ...Entry) (string, []Entry) {
	var added []Entry
	for _, e := range entries {
		if Parse(content).Match(e.path(), e.Dir) {
			continue
		}
		content += e.Block()
		added = append(added, e)
	}
	return content, added
}

// Remove strips the blocks of entries from content. A bare entry block
// without its surrounding newlines is stripped as well.
func Remove(content string, entries ...Entry) string {
	for _, e := range entries {
		block := e.Block()
		content = strings.ReplaceAll(content, block, "")
		content = strings.ReplaceAll(content, strings.TrimSpace(block), "")
	}
	return content
}

// IsBlank reports whether content holds nothing but line breaks.
func IsBlank(content string) bool {
	return strings.Trim(content, "\r\n") == ""
}
