package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lemberg/draftenv/internal/composer"
	"github.com/lemberg/draftenv/internal/config"
	"github.com/lemberg/draftenv/internal/fileio"
	"github.com/lemberg/draftenv/internal/ledger"
	"github.com/lemberg/draftenv/internal/lifecycle"
	"github.com/lemberg/draftenv/internal/orchestrator"
	"github.com/lemberg/draftenv/internal/output"
	"github.com/lemberg/draftenv/internal/step/builtin"
	"github.com/lemberg/draftenv/internal/ui"
)

// app is everything a command needs to work on one project.
type app struct {
	settings     *config.Settings
	layout       *config.Layout
	fs           fileio.FS
	ledger       *ledger.Ledger
	ledgerPath   string
	orchestrator *orchestrator.Orchestrator
	out          *output.Writer
	logger       *slog.Logger
}

// newApp resolves the project layout and wires the orchestrator for cmd.
func (o *rootOptions) newApp(cmd *cobra.Command) (*app, error) {
	settings := *o.settings
	fsys := fileio.OS{}
	logger := o.logger

	layout, err := settings.Layout()
	if err != nil {
		return nil, err
	}

	manifest := settings.ManifestFilePath(layout.ProjectDir)
	if !cmd.Flags().Changed("vendor-dir") && os.Getenv(config.EnvPrefix+"_VENDOR_DIR") == "" {
		if dir := composer.VendorDir(fsys, manifest); dir != "" && dir != settings.VendorDir {
			settings.VendorDir = dir
			if layout, err = settings.Layout(); err != nil {
				return nil, err
			}
		}
	}
	if !fileExists(manifest) {
		manifest = ""
	}

	var (
		store      ledger.Store
		ledgerPath string
	)
	if lock := settings.LockFilePath(layout.ProjectDir); fileExists(lock) {
		store = ledger.NewComposerLockStore(lock, settings.PackageName, fsys, logger)
		ledgerPath = lock
	} else {
		logger.Debug("no lock file, progress will not be recorded", slog.String("path", lock))
		store = ledger.NewMemoryStoreWithoutRecord()
	}
	led := ledger.New(store, logger)

	out := output.NewStyled(cmd.OutOrStdout())
	interactive := !settings.NoInteraction && ui.IsInteractive(cmd.InOrStdin())
	prompter := lifecycle.NewConsolePrompter(cmd.InOrStdin(), cmd.OutOrStdout(), interactive, out.Format)

	orch := orchestrator.New(orchestrator.Config{
		Registry:     builtin.NewRegistry(),
		Layout:       layout,
		FS:           fsys,
		Ledger:       led,
		Prompter:     prompter,
		Reporter:     out,
		ManifestPath: manifest,
		Logger:       logger,
	})

	return &app{
		settings:     &settings,
		layout:       layout,
		fs:           fsys,
		ledger:       led,
		ledgerPath:   ledgerPath,
		orchestrator: orch,
		out:          out,
		logger:       logger,
	}, nil
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
