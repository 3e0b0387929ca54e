package logging

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/lemberg/draftenv/internal/ui"
)

// Entry is one parsed line of the JSON log.
type Entry struct {
	Time  time.Time
	Level string
	Msg   string
	Attrs map[string]any
	Raw   string
	// Valid is false when the line was not JSON.
	Valid bool
}

// ViewerConfig filters and styles log output.
type ViewerConfig struct {
	// Level is the minimum level shown. Empty shows everything.
	Level   string
	Pattern *regexp.Regexp
	NoColor bool
}

// Viewer prints log entries for `draftenv logs`.
type Viewer struct {
	config ViewerConfig
	styles ui.Styles
	out    io.Writer
}

// NewViewer creates a viewer writing to out.
func NewViewer(cfg ViewerConfig, out io.Writer) *Viewer {
	return &Viewer{config: cfg, styles: ui.GetStyles(cfg.NoColor), out: out}
}

// Tail returns the matching entries among the last n lines of path.
func (v *Viewer) Tail(path string, n int) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if n > 0 && len(lines) > n {
			lines = lines[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}

	var entries []Entry
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if e := ParseLine(line); v.matches(e) {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// Print writes entries, one per line.
func (v *Viewer) Print(entries []Entry) {
	for _, e := range entries {
		_, _ = fmt.Fprintln(v.out, v.Format(e))
	}
}

// ParseLine parses a JSON log line. Non-JSON lines come back with
// Valid unset and only Raw filled.
func ParseLine(line string) Entry {
	entry := Entry{Raw: line}

	var fields map[string]any
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return entry
	}
	entry.Valid = true
	if s, ok := fields["time"].(string); ok {
		entry.Time, _ = time.Parse(time.RFC3339Nano, s)
	}
	entry.Level, _ = fields["level"].(string)
	entry.Msg, _ = fields["msg"].(string)
	delete(fields, "time")
	delete(fields, "level")
	delete(fields, "msg")
	entry.Attrs = fields
	return entry
}

func (v *Viewer) matches(e Entry) bool {
	if v.config.Level != "" && e.Valid {
		if parseLevel(e.Level) < parseLevel(v.config.Level) {
			return false
		}
	}
	if v.config.Pattern != nil {
		return v.config.Pattern.MatchString(e.Raw)
	}
	return true
}

// Format renders an entry as "15:04:05 LEVEL message key=value ...".
func (v *Viewer) Format(e Entry) string {
	if !e.Valid {
		return v.styles.Dim.Render(e.Raw)
	}

	var b strings.Builder
	b.WriteString(v.styles.Dim.Render(e.Time.Format("15:04:05")))
	b.WriteString(" ")
	b.WriteString(v.formatLevel(e.Level))
	b.WriteString(" ")
	b.WriteString(e.Msg)

	keys := make([]string, 0, len(e.Attrs))
	for k := range e.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(" ")
		b.WriteString(v.styles.Label.Render(k + "="))
		b.WriteString(fmt.Sprint(e.Attrs[k]))
	}
	return b.String()
}

func (v *Viewer) formatLevel(level string) string {
	label := fmt.Sprintf("%-5s", strings.ToUpper(level))
	switch parseLevel(level) {
	case slog.LevelError:
		return v.styles.Error.Render(label)
	case slog.LevelWarn:
		return v.styles.Warning.Render(label)
	case slog.LevelDebug:
		return v.styles.Dim.Render(label)
	default:
		return v.styles.Info.Render(label)
	}
}
