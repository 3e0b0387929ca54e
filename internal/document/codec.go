package document

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	draftErrors "github.com/lemberg/draftenv/internal/errors"
	"github.com/lemberg/draftenv/internal/fileio"
)

// Indent is the number of spaces used per nesting level when serializing.
const Indent = 2

// Read returns the content of path. A missing or unreadable file is an IO
// error; there is no empty fallback.
func Read(fsys fileio.FS, path string) (string, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		code := draftErrors.ErrCodeIO
		if errors.Is(err, fs.ErrNotExist) {
			code = draftErrors.ErrCodeFileNotFound
		}
		return "", draftErrors.New(code, fmt.Sprintf("failed to read %s", path), err).
			WithDetail("file", path)
	}
	return string(data), nil
}

// ReadAndParse reads path and parses it as a configuration tree.
func ReadAndParse(fsys fileio.FS, path string) (*Map, error) {
	text, err := Read(fsys, path)
	if err != nil {
		return nil, err
	}
	tree, err := Parse(text)
	if err != nil {
		if de, ok := draftErrors.As(err); ok {
			de.WithDetail("file", path)
		}
		return nil, err
	}
	return tree, nil
}

// Parse decodes YAML text into a Map, keeping key order. Empty input yields
// an empty Map.
func Parse(text string) (*Map, error) {
	root, err := parseNode(text)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return NewMap(), nil
	}
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return NewMap(), nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, draftErrors.ParseError("configuration document must be a mapping at the top level", nil)
	}
	v, err := fromNode(root, "")
	if err != nil {
		return nil, err
	}
	return v.(*Map), nil
}

// parseNode returns the root content node, or nil for an empty document.
func parseNode(text string) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, draftErrors.ParseError(fmt.Sprintf("malformed YAML: %v", err), err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}
	return doc.Content[0], nil
}

func fromNode(n *yaml.Node, path string) (any, error) {
	switch n.Kind {
	case yaml.MappingNode:
		m := NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode || k.Tag == "!!merge" {
				return nil, draftErrors.UnsupportedValueError(joinPath(path, k.Value), k.Value)
			}
			value, err := fromNode(v, joinPath(path, k.Value))
			if err != nil {
				return nil, err
			}
			m.Set(k.Value, value)
		}
		return m, nil

	case yaml.SequenceNode:
		items := make([]any, 0, len(n.Content))
		var sawMap, sawScalar bool
		for i, item := range n.Content {
			itemPath := joinPath(path, strconv.Itoa(i))
			value, err := fromNode(item, itemPath)
			if err != nil {
				return nil, err
			}
			switch value.(type) {
			case *Map:
				sawMap = true
			case []any:
				return nil, draftErrors.UnsupportedValueError(itemPath, value).
					WithSuggestion("Nested sequences are not supported in vm-settings.yml")
			default:
				sawScalar = true
			}
			if sawMap && sawScalar {
				return nil, draftErrors.UnsupportedValueError(itemPath, value).
					WithSuggestion("A sequence must hold either scalars or mappings, not both")
			}
			items = append(items, value)
		}
		return items, nil

	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, draftErrors.ParseError(fmt.Sprintf("invalid scalar at %q: %v", path, err), err)
		}
		return v, nil

	default:
		return nil, draftErrors.UnsupportedValueError(path, n.Value).
			WithSuggestion("YAML aliases and anchors are not supported in vm-settings.yml")
	}
}

// Serialize encodes tree as YAML with two-space indentation. Empty sequences
// render as [], empty mappings as {} and nil as null.
func Serialize(tree *Map) (string, error) {
	node, err := toNode(tree, "")
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(Indent)
	if err := enc.Encode(node); err != nil {
		return "", draftErrors.InternalError("failed to encode configuration", err)
	}
	if err := enc.Close(); err != nil {
		return "", draftErrors.InternalError("failed to encode configuration", err)
	}
	return buf.String(), nil
}

func toNode(v any, path string) (*yaml.Node, error) {
	switch t := v.(type) {
	case *Map:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		if t.Len() == 0 {
			n.Style = yaml.FlowStyle
		}
		for _, k := range t.keys {
			child, err := toNode(t.values[k], joinPath(path, k))
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, child)
		}
		return n, nil

	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		if len(t) == 0 {
			n.Style = yaml.FlowStyle
		}
		var sawMap, sawScalar bool
		for i, item := range t {
			itemPath := joinPath(path, strconv.Itoa(i))
			switch item.(type) {
			case *Map:
				sawMap = true
			case []any:
				return nil, draftErrors.UnsupportedValueError(itemPath, item)
			default:
				sawScalar = true
			}
			if sawMap && sawScalar {
				return nil, draftErrors.UnsupportedValueError(itemPath, item)
			}
			child, err := toNode(item, itemPath)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, child)
		}
		return n, nil

	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil

	case string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		n := &yaml.Node{}
		if err := n.Encode(t); err != nil {
			return nil, draftErrors.UnsupportedValueError(path, v)
		}
		return n, nil

	default:
		return nil, draftErrors.UnsupportedValueError(path, v)
	}
}

// splitLines splits text into lines without their terminators.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
