package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUpdateCmd(opts *rootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Apply pending configuration updates",
		Long: `Apply every update step newer than the last applied weight to
vm-settings.yml. The previous file is backed up first. When a step fails
nothing is written and the recorded weight does not move.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}

			if dryRun {
				pending, err := a.orchestrator.Pending(cmd.Context())
				if err != nil {
					return err
				}
				if len(pending) == 0 {
					a.out.Success("Configuration is up to date")
					return nil
				}
				a.out.Statusf("📋", "%d pending update step(s):", len(pending))
				items := make([]string, len(pending))
				for i, s := range pending {
					items[i] = fmt.Sprintf("%s (weight %d)", s.Name(), s.Weight())
				}
				a.out.List(items)
				return nil
			}

			res, err := a.orchestrator.Update(cmd.Context())
			if err != nil {
				return err
			}
			if res.Skipped {
				a.out.Success("Configuration is up to date")
				return nil
			}
			a.out.Newline()
			a.out.Successf("Applied %s", pluralSteps(res.Applied))
			if res.Backup != "" {
				a.out.Statusf("", "Backup: %s", res.Backup)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List pending steps without changing anything")

	return cmd
}

func pluralSteps(names []string) string {
	if len(names) == 1 {
		return "1 update step"
	}
	return fmt.Sprintf("%d update steps", len(names))
}
