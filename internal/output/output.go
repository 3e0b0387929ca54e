// Package output provides consistent CLI output formatting.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/lemberg/draftenv/internal/ui"
)

// Writer provides formatted output for CLI.
type Writer struct {
	out    io.Writer
	format ui.Formatter
}

// New creates a Writer that strips message tags.
func New(out io.Writer) *Writer {
	return &Writer{
		out:    out,
		format: ui.NewFormatter(false),
	}
}

// NewStyled creates a Writer that colors message tags when out is a
// terminal and NO_COLOR is unset.
func NewStyled(out io.Writer) *Writer {
	return &Writer{
		out:    out,
		format: ui.NewFormatter(ui.UseColor(out)),
	}
}

// Out returns the underlying writer.
func (w *Writer) Out() io.Writer {
	return w.out
}

// Format renders the tags of msg for this writer.
func (w *Writer) Format(msg string) string {
	return w.format(msg)
}

// Message prints a step or installer message preceded by a blank line.
func (w *Writer) Message(msg string) {
	if msg == "" {
		return
	}
	_, _ = fmt.Fprintf(w.out, "\n%s\n", w.format(msg))
}

// Status prints a status message with an icon.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, w.format(msg))
	} else {
		_, _ = fmt.Fprintf(w.out, "   %s\n", w.format(msg))
	}
}

// Statusf prints a formatted status message with an icon.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message with checkmark.
func (w *Writer) Success(msg string) {
	w.Status("✅", msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status("⚠️ ", msg)
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status("❌", msg)
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// List prints items as an indented bullet list.
func (w *Writer) List(items []string) {
	for _, item := range items {
		_, _ = fmt.Fprintf(w.out, "  - %s\n", item)
	}
}

// Code prints a code block with indentation.
func (w *Writer) Code(content string) {
	_, _ = fmt.Fprintln(w.out)
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	for _, line := range lines {
		_, _ = fmt.Fprintf(w.out, "  %s\n", line)
	}
	_, _ = fmt.Fprintln(w.out)
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}
