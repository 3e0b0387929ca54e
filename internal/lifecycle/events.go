package lifecycle

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	draftErrors "github.com/lemberg/draftenv/internal/errors"
)

// EventKind names a host lifecycle notification.
type EventKind string

const (
	EventPackageInstalled         EventKind = "package-installed"
	EventPackageUpdated           EventKind = "package-updated"
	EventPackageWillUninstall     EventKind = "package-will-uninstall"
	EventPostDependencyResolution EventKind = "post-dependency-resolution"
)

// Event is one lifecycle notification. Release dates are optional.
type Event struct {
	Kind            EventKind  `json:"kind"`
	Package         string     `json:"package,omitempty"`
	FromVersion     string     `json:"from_version,omitempty"`
	ToVersion       string     `json:"to_version,omitempty"`
	FromReleaseDate *time.Time `json:"from_release_date,omitempty"`
	ToReleaseDate   *time.Time `json:"to_release_date,omitempty"`
}

// Validate checks the kind and the fields it requires.
func (e Event) Validate() error {
	switch e.Kind {
	case EventPackageInstalled, EventPackageUpdated, EventPackageWillUninstall:
		if e.Package == "" {
			return draftErrors.InvalidArgument(fmt.Sprintf("event %q requires a package", e.Kind))
		}
	case EventPostDependencyResolution:
	default:
		return draftErrors.InvalidArgument(fmt.Sprintf("unknown event kind %q", e.Kind)).
			WithSuggestion("Use one of: package-installed, package-updated, package-will-uninstall, post-dependency-resolution")
	}
	return nil
}

// DecodeEvents reads one JSON event per line. Blank lines and lines
// starting with # are skipped.
func DecodeEvents(r io.Reader) ([]Event, error) {
	var events []Event
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var e Event
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return nil, draftErrors.ParseError(fmt.Sprintf("invalid event on line %d: %v", lineNo, err), err).
				WithDetail("line", fmt.Sprint(lineNo))
		}
		if err := e.Validate(); err != nil {
			if de, ok := draftErrors.As(err); ok {
				de.WithDetail("line", fmt.Sprint(lineNo))
			}
			return nil, err
		}
		events = append(events, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, draftErrors.IOError("failed to read events", err)
	}
	return events, nil
}
