package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lemberg/draftenv/internal/vmsettings"
	"github.com/lemberg/draftenv/internal/watcher"
)

func newSettingsCmd(opts *rootOptions) *cobra.Command {
	var (
		jsonOutput bool
		watch      bool
	)

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Print the effective VM settings",
		Long: `Print the settings the virtual machine is built with: the package
defaults, overridden by vm-settings.yml, overridden by vm-settings.local.yml,
with the hostname, IP address and git identity filled in.

With --watch the settings are printed again whenever one of the files
changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}

			loader := vmsettings.NewLoader(a.layout, a.fs, vmsettings.WithLogger(a.logger))
			render := func() error {
				return renderSettings(cmd.Context(), cmd.OutOrStdout(), loader, jsonOutput)
			}

			if err := render(); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			return watchSettings(cmd.Context(), a, loader, render)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Print again when a settings file changes")

	return cmd
}

func renderSettings(ctx context.Context, out io.Writer, loader *vmsettings.Loader, jsonOutput bool) error {
	settings, err := loader.Load(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		data, err := json.Marshal(settings)
		if err != nil {
			return fmt.Errorf("failed to encode settings: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}
	_, err = fmt.Fprintln(out, settings.String())
	return err
}

// watchSettings re-renders after each batch of changes until ctx is done.
// A file that fails to parse is reported and watching goes on.
func watchSettings(ctx context.Context, a *app, loader *vmsettings.Loader, render func() error) error {
	files := loader.Files()
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Base(f)
	}

	w, err := watcher.New(a.layout.ProjectDir, names, watcher.Options{
		DebounceWindow: a.settings.WatchDebounce,
		Logger:         a.logger,
	})
	if err != nil {
		return err
	}

	a.out.Statusf("👀", "Watching %s for changes (Ctrl+C to stop)", strings.Join(names, ", "))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Run(gctx)
	})
	g.Go(func() error {
		for batch := range w.Events() {
			changed := make([]string, len(batch))
			for i, e := range batch {
				changed[i] = fmt.Sprintf("%s %s", e.Path, strings.ToLower(e.Operation.String()))
			}
			a.out.Newline()
			a.out.Statusf("🔄", "Changed: %s", strings.Join(changed, ", "))
			if err := render(); err != nil {
				a.out.Error(err.Error())
			}
		}
		return nil
	})
	return g.Wait()
}
