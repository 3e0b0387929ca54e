package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lemberg/draftenv/internal/config"
)

func newInstallCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Install the Draft Environment files into the project",
		Long: `Copy vm-settings.yml and Vagrantfile into the project, ignore the
Vagrant data and local overrides in .gitignore and ask for the project
settings. Nothing happens when vm-settings.yml already exists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}

			res, err := a.orchestrator.Install(cmd.Context())
			if err != nil {
				return err
			}
			if res.Skipped {
				a.out.Statusf("ℹ️", "%s already exists, nothing to install", config.TargetConfigFilename)
				return nil
			}
			a.out.Successf("Installed, configuration is at update weight %d", res.Weight)
			return nil
		},
	}
}

func newUninstallCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the Draft Environment files from the project",
		Long: `Remove vm-settings.yml and Vagrantfile and drop the Draft Environment
entries from .gitignore. vm-settings.local.yml is left in place.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}

			if _, err := a.orchestrator.Uninstall(cmd.Context()); err != nil {
				return err
			}
			a.out.Success("Draft Environment files removed")
			return nil
		},
	}
}
