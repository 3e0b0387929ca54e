// Package cmd provides the CLI commands for draftenv.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lemberg/draftenv/internal/config"
	draftErrors "github.com/lemberg/draftenv/internal/errors"
	"github.com/lemberg/draftenv/internal/logging"
	"github.com/lemberg/draftenv/pkg/version"
)

// rootOptions holds the persistent flags and the state built from them
// before a subcommand runs.
type rootOptions struct {
	projectDir    string
	sourceDir     string
	vendorDir     string
	lockFile      string
	noInteraction bool
	debug         bool

	settings       *config.Settings
	logger         *slog.Logger
	loggingCleanup func()
}

// NewRootCmd creates the root command for the draftenv CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&rootOptions{})
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draftenv",
		Short: "Install and migrate Draft Environment VM settings",
		Long: `draftenv manages the Draft Environment files of a project:
vm-settings.yml, Vagrantfile and the matching .gitignore entries.

It installs them on first use, migrates vm-settings.yml through every
update step released since the last run and removes them on uninstall.
Progress is recorded in composer.lock next to the package record.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("draftenv version {{.Version}}\n")

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.projectDir, "project-dir", "", "Project root (default: DRAFTENV_PROJECT_DIR or current directory)")
	flags.StringVar(&opts.sourceDir, "source-dir", "", "Directory with the package templates (default: installed package, then embedded)")
	flags.StringVar(&opts.vendorDir, "vendor-dir", "", "Vendor directory relative to the project (default: composer.json config.vendor-dir or vendor)")
	flags.StringVar(&opts.lockFile, "lock-file", "", "Lock file that stores install and update progress (default: composer.lock)")
	flags.BoolVarP(&opts.noInteraction, "no-interaction", "n", false, "Do not ask any question, use defaults")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging to ~/.draftenv/logs/")

	cmd.PersistentPreRunE = opts.setup
	cmd.PersistentPostRunE = opts.teardown

	cmd.AddCommand(newInstallCmd(opts))
	cmd.AddCommand(newUpdateCmd(opts))
	cmd.AddCommand(newUninstallCmd(opts))
	cmd.AddCommand(newHookCmd(opts))
	cmd.AddCommand(newStatusCmd(opts))
	cmd.AddCommand(newSettingsCmd(opts))
	cmd.AddCommand(newDoctorCmd(opts))
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// setup loads settings, applies flag overrides and starts logging.
func (o *rootOptions) setup(cmd *cobra.Command, _ []string) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("project-dir") {
		settings.ProjectDir = o.projectDir
	}
	if flags.Changed("source-dir") {
		settings.SourceDir = o.sourceDir
	}
	if flags.Changed("vendor-dir") {
		settings.VendorDir = o.vendorDir
	}
	if flags.Changed("lock-file") {
		settings.LockFile = o.lockFile
	}
	if o.noInteraction {
		settings.NoInteraction = true
	}
	if o.debug {
		settings.LogLevel = "debug"
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	o.settings = settings

	logCfg := logging.DefaultConfig()
	logCfg.Level = settings.LogLevel
	logCfg.Stderr = cmd.ErrOrStderr()
	if o.debug {
		logCfg = logging.DebugConfig()
		logCfg.Stderr = cmd.ErrOrStderr()
	}
	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	o.logger = logger
	o.loggingCleanup = cleanup
	if o.debug {
		logger.Debug("debug logging enabled",
			slog.String("log_file", logCfg.FilePath),
			slog.String("version", version.Short()))
	}
	return nil
}

func (o *rootOptions) teardown(_ *cobra.Command, _ []string) error {
	if o.loggingCleanup != nil {
		o.loggingCleanup()
		o.loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command with a context cancelled on SIGINT and
// SIGTERM, and reports errors.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := &rootOptions{}
	root := newRootCmd(opts)
	cmd, err := root.ExecuteContextC(ctx)
	if err != nil {
		if cmd == nil {
			cmd = root
		}
		opts.report(cmd, err)
	}
	return err
}

// report prints the error of a failed command: as JSON on stdout when the
// command was asked for --json, otherwise for humans on stderr. With
// --debug the error is also logged and the log file closed, since
// PersistentPostRunE does not run after a failure.
func (o *rootOptions) report(cmd *cobra.Command, err error) {
	if o.debug && o.logger != nil {
		o.logger.Error("command failed", errorAttrs(err)...)
	}
	_ = o.teardown(cmd, nil)

	if jsonRequested(cmd) {
		if data, jerr := draftErrors.FormatJSON(err); jerr == nil {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return
		}
	}
	if o.debug {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), draftErrors.FormatForUser(err, true))
		return
	}
	_, _ = fmt.Fprint(cmd.ErrOrStderr(), draftErrors.FormatForCLI(err))
}

func jsonRequested(cmd *cobra.Command) bool {
	f := cmd.Flags().Lookup("json")
	return f != nil && f.Value.String() == "true"
}

// errorAttrs turns the structured fields of err into slog arguments in a
// stable order.
func errorAttrs(err error) []any {
	fields := draftErrors.FormatForLog(err)
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]any, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, fields[k]))
	}
	return attrs
}
