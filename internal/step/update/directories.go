package update

import (
	"context"
	"strings"

	"github.com/lemberg/draftenv/internal/document"
	"github.com/lemberg/draftenv/internal/step"
)

// DefaultDestinationDirectory is the project path inside the VM.
const DefaultDestinationDirectory = "/var/www/draft"

// ReplaceBaseDirectoryWithDestinationDirectory splits vagrant.base_directory
// into source_directory (host) and destination_directory (guest).
type ReplaceBaseDirectoryWithDestinationDirectory struct{ base }

func NewReplaceBaseDirectoryWithDestinationDirectory(env *step.Env) step.Step {
	return &ReplaceBaseDirectoryWithDestinationDirectory{base{env: env}}
}

func (s *ReplaceBaseDirectoryWithDestinationDirectory) Weight() int { return 4 }
func (s *ReplaceBaseDirectoryWithDestinationDirectory) Name() string {
	return "ReplaceBaseDirectoryWithDestinationDirectory"
}

func (s *ReplaceBaseDirectoryWithDestinationDirectory) Update(ctx context.Context, tree *document.Map) error {
	vagrant, ok := tree.LookupMap("vagrant")
	if !ok {
		vagrant = document.NewMap()
		tree.Set("vagrant", vagrant)
	}

	vagrant.Set("source_directory", ".")
	if baseDir, ok := vagrant.Get("base_directory"); ok && baseDir != nil {
		vagrant.Set("destination_directory", baseDir)
	} else {
		vagrant.SetDefault("destination_directory", DefaultDestinationDirectory)
	}
	vagrant.Delete("base_directory")

	if dir, ok := tree.LookupString("ssh_default_directory"); ok {
		tree.Set("ssh_default_directory", strings.ReplaceAll(dir, "base_directory", "destination_directory"))
	}
	return nil
}

// AddIdToSyncedFoldersOptions names the synced folder so Vagrant can reuse
// it across reloads.
type AddIdToSyncedFoldersOptions struct{ base }

func NewAddIdToSyncedFoldersOptions(env *step.Env) step.Step {
	return &AddIdToSyncedFoldersOptions{base{env: env}}
}

func (s *AddIdToSyncedFoldersOptions) Weight() int  { return 5 }
func (s *AddIdToSyncedFoldersOptions) Name() string { return "AddIdToSyncedFoldersOptions" }

func (s *AddIdToSyncedFoldersOptions) Update(ctx context.Context, tree *document.Map) error {
	options, ok := tree.LookupMap("vagrant", "synced_folder_options")
	if !ok {
		tree.SetPath("default", "vagrant", "synced_folder_options", "id")
		return nil
	}
	options.SetDefault("id", "default")
	return nil
}
