// Package gitignore reads and edits the project .gitignore file.
//
// Matching follows https://git-scm.com/docs/gitignore closely enough to
// answer "is this path already ignored?" for entries draftenv manages:
// wildcards (*, ?, **), rooted patterns (/build), directory-only patterns
// (build/) and negation (!keep.log).
package gitignore

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Matcher holds compiled gitignore patterns.
type Matcher struct {
	rules []rule
}

type rule struct {
	pattern  string
	regex    *regexp.Regexp
	negation bool
	dirOnly  bool
	anchored bool
}

// New creates an empty Matcher.
func New() *Matcher {
	return &Matcher{}
}

// Parse builds a Matcher from .gitignore content.
func Parse(content string) *Matcher {
	m := New()
	for _, line := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n") {
		m.AddPattern(line)
	}
	return m
}

// AddPattern adds one .gitignore line. Blank lines and comments are skipped.
func (m *Matcher) AddPattern(pattern string) {
	hasEscapedTrailingSpace := strings.HasSuffix(pattern, `\ `)
	pattern = strings.TrimSpace(pattern)

	if pattern == "" || (strings.HasPrefix(pattern, "#") && !strings.HasPrefix(pattern, `\#`)) {
		return
	}

	r := rule{pattern: pattern}

	switch {
	case strings.HasPrefix(pattern, `\#`), strings.HasPrefix(pattern, `\!`):
		pattern = pattern[1:]
		r.pattern = pattern
	case strings.HasPrefix(pattern, "!"):
		r.negation = true
		pattern = pattern[1:]
	}

	if hasEscapedTrailingSpace && strings.HasSuffix(pattern, `\`) {
		pattern = strings.TrimSuffix(pattern, `\`) + " "
	}

	if strings.HasSuffix(pattern, "/") {
		r.dirOnly = true
		pattern = strings.TrimSuffix(pattern, "/")
	}
	if strings.HasPrefix(pattern, "/") {
		r.anchored = true
		pattern = strings.TrimPrefix(pattern, "/")
	}
	// "doc/frotz" means "/doc/frotz", not "**/doc/frotz".
	if strings.Contains(pattern, "/") && !strings.HasPrefix(pattern, "**/") && !strings.HasPrefix(pattern, "*") {
		r.anchored = true
	}

	r.regex = regexp.MustCompile("^" + patternToRegex(pattern) + "$")
	m.rules = append(m.rules, r)
}

// Match reports whether path, relative to the .gitignore directory, is
// ignored. The last matching rule wins.
func (m *Matcher) Match(path string, isDir bool) bool {
	path = strings.TrimPrefix(filepath.ToSlash(path), "/")

	ignored := false
	for _, r := range m.rules {
		if r.match(path, isDir) {
			ignored = !r.negation
		}
	}
	return ignored
}

func (r rule) match(path string, isDir bool) bool {
	parts := strings.Split(path, "/")

	if r.anchored {
		if r.regex.MatchString(path) {
			return !r.dirOnly || isDir
		}
		// Files inside an ignored directory are ignored too.
		for i := range parts[:len(parts)-1] {
			if r.regex.MatchString(strings.Join(parts[:i+1], "/")) {
				return true
			}
		}
		return false
	}

	for i, part := range parts {
		if !r.regex.MatchString(part) {
			continue
		}
		if i == len(parts)-1 && r.dirOnly {
			return isDir
		}
		return true
	}

	return r.regex.MatchString(path)
}

// patternToRegex converts a gitignore glob to a regular expression body.
func patternToRegex(pattern string) string {
	var result strings.Builder

	for i := 0; i < len(pattern); {
		c := pattern[i]
		switch c {
		case '*':
			if i+1 < len(pattern) && pattern[i+1] == '*' {
				if i+2 < len(pattern) && pattern[i+2] == '/' {
					result.WriteString("(?:.*/)?")
					i += 3
					continue
				}
				if i == 0 || pattern[i-1] == '/' {
					result.WriteString(".*")
					i += 2
					continue
				}
			}
			result.WriteString("[^/]*")
			i++
		case '?':
			result.WriteString("[^/]")
			i++
		case '[':
			j := strings.IndexByte(pattern[i+1:], ']')
			if j < 0 {
				result.WriteString(`\[`)
				i++
				continue
			}
			result.WriteString(pattern[i : i+j+2])
			i += j + 2
		case '\\':
			if i+1 < len(pattern) {
				result.WriteString(regexp.QuoteMeta(string(pattern[i+1])))
				i += 2
				continue
			}
			result.WriteString(`\\`)
			i++
		default:
			result.WriteString(regexp.QuoteMeta(string(c)))
			i++
		}
	}
	return result.String()
}
