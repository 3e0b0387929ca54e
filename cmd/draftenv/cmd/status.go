package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/lemberg/draftenv/internal/config"
	"github.com/lemberg/draftenv/internal/step"
	"github.com/lemberg/draftenv/internal/ui"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show install and update state",
		Long: `Display the migration state of the project:
  - whether vm-settings.yml exists
  - where progress is recorded and whether it was installed
  - last applied and last available update weight
  - pending update steps and configuration backups`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}

			info, err := a.status(cmd.Context())
			if err != nil {
				return err
			}

			renderer := ui.NewStatusRenderer(cmd.OutOrStdout(), !ui.UseColor(cmd.OutOrStdout()))
			if jsonOutput {
				return renderer.RenderJSON(info)
			}
			return renderer.Render(info)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func (a *app) status(ctx context.Context) (ui.StatusInfo, error) {
	configPath := a.layout.MustTargetPath(config.TargetConfigFilename)
	info := ui.StatusInfo{
		ProjectDir:          a.layout.ProjectDir,
		ConfigFile:          configPath,
		ConfigExists:        fileExists(configPath),
		LedgerFile:          a.ledgerPath,
		LastAvailableWeight: a.orchestrator.LastAvailableWeight(),
	}

	entry, found, err := a.ledger.Entry(ctx)
	if err != nil {
		return info, err
	}
	info.PackageRecord = found
	info.Installed = entry.AlreadyInstalled
	info.LastAppliedWeight = entry.LastAppliedWeight

	pending, err := a.orchestrator.Pending(ctx)
	if err != nil {
		return info, err
	}
	info.Pending = step.Names(pending)

	backups, err := config.ListBackups(configPath)
	if err != nil {
		return info, err
	}
	info.Backups = backups
	return info, nil
}
