// Package lifecycle connects the host build tool to the orchestrators: it
// decodes lifecycle events, decides which flow to run and asks the user
// questions on the console.
package lifecycle

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	draftErrors "github.com/lemberg/draftenv/internal/errors"
	"github.com/lemberg/draftenv/internal/step"
)

// Prompter asks the user questions. See step.Prompter.
type Prompter = step.Prompter

// ConsolePrompter reads answers line by line from a reader.
type ConsolePrompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
	format      func(string) string
}

// NewConsolePrompter creates a prompter over in and out. When interactive is
// false every question is answered with its default and nothing is printed.
// format renders message tags; nil leaves them untouched.
func NewConsolePrompter(in io.Reader, out io.Writer, interactive bool, format func(string) string) *ConsolePrompter {
	if format == nil {
		format = func(s string) string { return s }
	}
	return &ConsolePrompter{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: interactive,
		format:      format,
	}
}

// Ask prints question and returns the validated answer. Empty input picks
// def. A validation error is shown and the question asked again; any other
// error is returned.
func (p *ConsolePrompter) Ask(question string, validate func(string) (string, error), def string) (string, error) {
	if !p.interactive {
		return def, nil
	}
	for {
		input, eof, err := p.readLine(question)
		if err != nil {
			return "", err
		}
		if input == "" {
			return def, nil
		}
		if validate == nil {
			return input, nil
		}
		value, err := validate(input)
		if err == nil {
			return value, nil
		}
		if !draftErrors.HasCode(err, draftErrors.ErrCodeValidation) {
			return "", err
		}
		p.showError(err)
		if eof {
			return def, nil
		}
	}
}

// Select prints question and returns one of choices. Empty input picks def.
func (p *ConsolePrompter) Select(question string, choices []string, def string) (string, error) {
	return p.Ask(question, func(value string) (string, error) {
		if slices.Contains(choices, value) {
			return value, nil
		}
		return "", draftErrors.ValidationError(fmt.Sprintf("Specified value '%s' is not one of: %s",
			value, strings.Join(choices, ", ")))
	}, def)
}

// readLine prints question and reads one trimmed line. eof is set when the
// input ended.
func (p *ConsolePrompter) readLine(question string) (string, bool, error) {
	_, _ = fmt.Fprint(p.out, p.format(question))
	line, err := p.in.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			_, _ = fmt.Fprintln(p.out)
			return strings.TrimSpace(line), true, nil
		}
		return "", false, fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), false, nil
}

func (p *ConsolePrompter) showError(err error) {
	msg := err.Error()
	if de, ok := draftErrors.As(err); ok {
		msg = de.Message
	}
	_, _ = fmt.Fprintf(p.out, "%s\n", p.format("<error>"+msg+"</error>"))
}
