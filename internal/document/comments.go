package document

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"

	draftErrors "github.com/lemberg/draftenv/internal/errors"
	"github.com/lemberg/draftenv/internal/fileio"
)

// continuationPrefix marks anchors of content lines that carry no key of
// their own (block scalar bodies, wrapped flow collections).
const continuationPrefix = "\x00"

// annotated is a YAML text split into content lines, each identified by an
// anchor (its dotted key path), and the comment blocks that precede them.
type annotated struct {
	lines   []string
	anchors []string
	// blocks[i] holds the comment and blank lines found right before lines[i].
	blocks [][]string
	// index maps a key anchor to the first content line that carries it.
	index  map[string]int
	inline map[string]string

	header          []string
	footer          []string
	trailingNewline bool
}

// annotate parses text and assigns an anchor to every content line.
func annotate(text string) (*annotated, error) {
	root, err := parseNode(text)
	if err != nil {
		return nil, err
	}

	idx := &lineIndex{
		anchors: make(map[int]string),
		body:    make(map[int]bool),
		inline:  make(map[string]string),
	}
	if root != nil {
		idx.walk(root, "")
	}

	a := &annotated{
		index:           make(map[string]int),
		inline:          idx.inline,
		trailingNewline: strings.HasSuffix(text, "\n"),
	}

	var pending []string
	seenContent := false
	for i, line := range splitLines(text) {
		lineNo := i + 1
		trimmed := strings.TrimSpace(line)
		if !idx.body[lineNo] && (trimmed == "" || strings.HasPrefix(trimmed, "#")) {
			pending = append(pending, line)
			continue
		}

		if !seenContent {
			// Comments separated from the first key by a blank line describe
			// the whole document.
			for j := len(pending) - 1; j >= 0; j-- {
				if strings.TrimSpace(pending[j]) == "" {
					a.header = pending[:j+1]
					pending = pending[j+1:]
					break
				}
			}
			seenContent = true
		}

		anchor, ok := idx.anchors[lineNo]
		if !ok {
			anchor = continuationPrefix + trimmed
		} else if _, dup := a.index[anchor]; !dup {
			a.index[anchor] = len(a.lines)
		}

		a.lines = append(a.lines, line)
		a.anchors = append(a.anchors, anchor)
		a.blocks = append(a.blocks, pending)
		pending = nil
	}

	if seenContent {
		a.footer = pending
	} else {
		a.header = pending
	}
	return a, nil
}

// blockFor returns the comment block preceding the line anchored at anchor.
func (a *annotated) blockFor(anchor string) []string {
	if a == nil || isContinuation(anchor) {
		return nil
	}
	if i, ok := a.index[anchor]; ok {
		return a.blocks[i]
	}
	return nil
}

type lineIndex struct {
	anchors map[int]string
	body    map[int]bool
	inline  map[string]string
}

func (x *lineIndex) mark(line int, anchor string) {
	if _, ok := x.anchors[line]; !ok {
		x.anchors[line] = anchor
	}
}

func (x *lineIndex) walk(n *yaml.Node, path string) {
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			p := joinPath(path, k.Value)
			x.mark(k.Line, p)
			if c := firstNonEmpty(k.LineComment, v.LineComment); c != "" && v.Line == k.Line {
				x.inline[p] = c
			}
			x.walk(v, p)
		}
	case yaml.SequenceNode:
		for i, item := range n.Content {
			p := joinPath(path, strconv.Itoa(i))
			x.mark(item.Line, p)
			if item.Kind == yaml.ScalarNode && item.LineComment != "" {
				x.inline[p] = item.LineComment
			}
			x.walk(item, p)
		}
	case yaml.ScalarNode:
		if n.Style&(yaml.LiteralStyle|yaml.FoldedStyle) != 0 {
			count := strings.Count(strings.TrimRight(n.Value, "\n"), "\n") + 1
			for l := n.Line + 1; l <= n.Line+count; l++ {
				x.body[l] = true
			}
		}
	}
}

// RenderPreservingComments serializes tree and re-attaches the comments of
// sourceText. Comments are matched to lines by key path using a stable diff
// between the original and regenerated line anchors; a comment whose key is
// gone is dropped. priorText, when non-empty and different from sourceText,
// supplies comments for keys that have none in sourceText. The result ends
// with a newline only if sourceText does.
func RenderPreservingComments(sourceText, priorText string, tree *Map) (string, error) {
	rendered, err := Serialize(tree)
	if err != nil {
		return "", err
	}
	gen, err := annotate(rendered)
	if err != nil {
		return "", draftErrors.InternalError("failed to re-read generated configuration", err)
	}
	src, err := annotate(sourceText)
	if err != nil {
		return "", err
	}
	var prior *annotated
	if priorText != "" && priorText != sourceText {
		if prior, err = annotate(priorText); err != nil {
			return "", err
		}
	}

	assigned := make([]int, len(gen.anchors))
	for i := range assigned {
		assigned[i] = -1
	}
	used := make(map[int]bool)

	matcher := difflib.NewMatcherWithJunk(src.anchors, gen.anchors, false, nil)
	for _, m := range matcher.GetMatchingBlocks() {
		for k := 0; k < m.Size; k++ {
			assigned[m.B+k] = m.A + k
			used[m.A+k] = true
		}
	}
	// Keys that moved relative to their neighbours still own their comments.
	for j, anchor := range gen.anchors {
		if assigned[j] >= 0 || isContinuation(anchor) {
			continue
		}
		if i, ok := src.index[anchor]; ok && !used[i] {
			assigned[j] = i
			used[i] = true
		}
	}

	var out []string
	out = append(out, pickBlock(src.header, priorHeader(prior))...)
	for j, line := range gen.lines {
		anchor := gen.anchors[j]
		var block []string
		if i := assigned[j]; i >= 0 {
			block = src.blocks[i]
		}
		out = append(out, pickBlock(block, prior.blockFor(anchor))...)
		out = append(out, withInlineComment(line, anchor, src, prior))
	}
	out = append(out, pickBlock(src.footer, priorFooter(prior))...)

	text := strings.Join(out, "\n")
	if src.trailingNewline && text != "" {
		text += "\n"
	}
	return text, nil
}

// WritePreservingComments renders tree with the comments of sourceText and
// writes it to targetPath. The current content of targetPath, if any, is the
// secondary comment source.
func WritePreservingComments(fsys fileio.FS, sourceText, targetPath string, tree *Map) error {
	var priorText string
	if fsys.Exists(targetPath) {
		text, err := Read(fsys, targetPath)
		if err != nil {
			return err
		}
		priorText = text
	}

	text, err := RenderPreservingComments(sourceText, priorText, tree)
	if err != nil {
		return err
	}

	if err := fsys.WriteFile(targetPath, []byte(text), 0o644); err != nil {
		return draftErrors.IOError(fmt.Sprintf("failed to write %s", targetPath), err).
			WithDetail("file", targetPath)
	}
	return nil
}

// pickBlock prefers the primary block unless only the fallback has comments.
func pickBlock(primary, fallback []string) []string {
	if !hasComment(primary) && hasComment(fallback) {
		return fallback
	}
	return primary
}

func hasComment(block []string) bool {
	for _, line := range block {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			return true
		}
	}
	return false
}

func withInlineComment(line, anchor string, src, prior *annotated) string {
	comment, ok := src.inline[anchor]
	if !ok && prior != nil {
		comment, ok = prior.inline[anchor]
	}
	if !ok || strings.Contains(line, comment) {
		return line
	}
	return line + " " + comment
}

func priorHeader(a *annotated) []string {
	if a == nil {
		return nil
	}
	return a.header
}

func priorFooter(a *annotated) []string {
	if a == nil {
		return nil
	}
	return a.footer
}

func isContinuation(anchor string) bool {
	return strings.HasPrefix(anchor, continuationPrefix)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
