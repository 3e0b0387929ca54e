package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	draftErrors "github.com/lemberg/draftenv/internal/errors"
	"github.com/lemberg/draftenv/internal/lifecycle"
)

func newHookCmd(opts *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "hook",
		Short: "Dispatch host package manager lifecycle events",
		Long: `Read lifecycle events, one JSON object per line, and run the matching
flow. Install and update run on the next post-dependency-resolution event;
uninstall runs immediately.

Example:
  {"kind":"package-updated","package":"lemberg/draft-environment","from_version":"3.4.0","to_version":"3.6.0"}
  {"kind":"post-dependency-resolution"}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var in io.Reader = cmd.InOrStdin()
			if file != "" && file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return draftErrors.IOError("failed to open event file", err).WithDetail("path", file)
				}
				defer func() { _ = f.Close() }()
				in = f
			}

			events, err := lifecycle.DecodeEvents(in)
			if err != nil {
				return err
			}

			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}

			dispatcher := lifecycle.NewDispatcher(a.orchestrator, a.settings.PackageName, a.logger)
			outcomes, pending, err := dispatcher.Dispatch(cmd.Context(), events)
			if err != nil {
				return err
			}

			for _, o := range outcomes {
				switch {
				case o.Result.Skipped:
					a.out.Statusf("ℹ️", "%s: nothing to do", o.Action)
				default:
					a.out.Successf("%s finished", o.Action)
				}
			}
			if pending != lifecycle.ActionNone {
				a.out.Warningf("%s is pending until a post-dependency-resolution event arrives", pending)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read events from a file instead of stdin")

	return cmd
}
