package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// StatusInfo describes the migration state of a project.
type StatusInfo struct {
	ProjectDir          string   `json:"project_dir"`
	ConfigFile          string   `json:"config_file"`
	ConfigExists        bool     `json:"config_exists"`
	LedgerFile          string   `json:"ledger_file,omitempty"`
	PackageRecord       bool     `json:"package_record"`
	Installed           bool     `json:"installed"`
	LastAppliedWeight   int      `json:"last_applied_weight"`
	LastAvailableWeight int      `json:"last_available_weight"`
	Pending             []string `json:"pending"`
	Backups             []string `json:"backups,omitempty"`
}

// UpToDate reports whether no update step is pending.
func (s StatusInfo) UpToDate() bool {
	return len(s.Pending) == 0
}

// StatusRenderer displays project status.
type StatusRenderer struct {
	out    io.Writer
	styles Styles
}

// NewStatusRenderer creates a status renderer.
func NewStatusRenderer(out io.Writer, noColor bool) *StatusRenderer {
	return &StatusRenderer{
		out:    out,
		styles: GetStyles(noColor),
	}
}

// Render displays status info to terminal.
func (r *StatusRenderer) Render(info StatusInfo) error {
	_, _ = fmt.Fprintf(r.out, "%s\n\n", r.styles.Header.Render("Draft Environment: "+info.ProjectDir))

	_, _ = fmt.Fprintf(r.out, "  %s %s %s\n", r.styles.Label.Render("Config:   "), info.ConfigFile, r.presence(info.ConfigExists))
	if info.LedgerFile != "" {
		_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.styles.Label.Render("Ledger:   "), info.LedgerFile)
	}
	if !info.PackageRecord {
		_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.styles.Label.Render("Record:   "),
			r.styles.Warning.Render("package not found, progress is not persisted"))
	}
	_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.styles.Label.Render("Installed:"), yesNo(info.Installed))
	_, _ = fmt.Fprintf(r.out, "  %s %d of %d\n", r.styles.Label.Render("Weight:   "),
		info.LastAppliedWeight, info.LastAvailableWeight)
	_, _ = fmt.Fprintln(r.out)

	if info.UpToDate() {
		_, _ = fmt.Fprintf(r.out, "  %s\n", r.styles.Success.Render("Configuration is up to date"))
	} else {
		_, _ = fmt.Fprintf(r.out, "  %s\n", r.styles.Warning.Render(
			fmt.Sprintf("%d pending update step(s):", len(info.Pending))))
		for _, name := range info.Pending {
			_, _ = fmt.Fprintf(r.out, "    - %s\n", name)
		}
	}

	if len(info.Backups) > 0 {
		_, _ = fmt.Fprintln(r.out)
		_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.styles.Label.Render("Backups:  "),
			r.styles.Dim.Render(strings.Join(info.Backups, ", ")))
	}
	return nil
}

// RenderJSON outputs status as JSON.
func (r *StatusRenderer) RenderJSON(info StatusInfo) error {
	if info.Pending == nil {
		info.Pending = []string{}
	}
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(info)
}

func (r *StatusRenderer) presence(exists bool) string {
	if exists {
		return r.styles.Success.Render("(present)")
	}
	return r.styles.Error.Render("(missing)")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
