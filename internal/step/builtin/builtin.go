// Package builtin lists the steps shipped with draftenv.
package builtin

import (
	"github.com/lemberg/draftenv/internal/step"
	"github.com/lemberg/draftenv/internal/step/install"
	"github.com/lemberg/draftenv/internal/step/update"
)

// Register adds the built-in steps to reg.
func Register(reg *step.Registry) {
	reg.Register(step.RoleInstallInit, install.NewInitConfig)

	reg.Register(step.RoleInstallConfig, install.NewProjectName)
	reg.Register(step.RoleInstallConfig, install.NewPhpVersion)

	for _, c := range []step.Constructor{
		update.NewRemoveConfigurerComposerScript,
		update.NewExportAllAvailableConfiguration,
		update.NewSetAsAlreadyInstalled,
		update.NewReplaceBaseDirectoryWithDestinationDirectory,
		update.NewAddIdToSyncedFoldersOptions,
		update.NewAllowAllHostsMysql,
		update.NewRevisePhpConfiguration,
		update.NewXdebug2To3,
		update.NewXenial2Focal,
		update.NewCleanup30400,
		update.NewCleanup30401,
		update.NewDefaultConfigUpdate30600,
	} {
		reg.Register(step.RoleUpdate, c)
	}

	reg.Register(step.RoleUninstall, install.NewInitConfig)
}

// NewRegistry returns a registry holding the built-in steps.
func NewRegistry() *step.Registry {
	reg := step.NewRegistry()
	Register(reg)
	return reg
}
