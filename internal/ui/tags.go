package ui

import (
	"regexp"

	"github.com/charmbracelet/lipgloss"
)

var tagPattern = regexp.MustCompile(`(?s)<(info|comment|question|error)>(.*?)</(?:info|comment|question|error)>`)

// RenderTags replaces <info>, <comment>, <question> and <error> markup in
// msg with the matching styles.
func RenderTags(msg string, styles Styles) string {
	return tagPattern.ReplaceAllStringFunc(msg, func(m string) string {
		parts := tagPattern.FindStringSubmatch(m)
		return styleFor(parts[1], styles).Render(parts[2])
	})
}

// StripTags removes the markup from msg.
func StripTags(msg string) string {
	return tagPattern.ReplaceAllString(msg, "$2")
}

func styleFor(tag string, styles Styles) lipgloss.Style {
	switch tag {
	case "info":
		return styles.Info
	case "comment":
		return styles.Comment
	case "question":
		return styles.Question
	default:
		return styles.Error
	}
}

// Formatter turns tagged messages into console text.
type Formatter func(msg string) string

// NewFormatter returns a Formatter that styles tags when color is set and
// strips them otherwise.
func NewFormatter(color bool) Formatter {
	if !color {
		return StripTags
	}
	styles := DefaultStyles()
	return func(msg string) string {
		return RenderTags(msg, styles)
	}
}
