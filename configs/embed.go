// Package configs provides the templates draftenv copies into a project.
//
// Templates are embedded at build time so the binary works without the
// package source being present. When a source directory is configured
// (usually vendor/lemberg/draft-environment) the files there take precedence,
// see internal/config Layout.
//
// Template files:
//   - default.vm-settings.yml: default VM settings, copied to vm-settings.yml
//   - Vagrantfile.proxy: thin Vagrantfile that loads the packaged one
package configs

import _ "embed"

// DefaultSettingsFilename is the name of the default settings template.
const DefaultSettingsFilename = "default.vm-settings.yml"

// VagrantfileProxyFilename is the name of the Vagrantfile template.
const VagrantfileProxyFilename = "Vagrantfile.proxy"

// DefaultSettingsTemplate is the default VM configuration.
// Copied by the install init step and used as the comment source when an
// update exports newly available settings.
//
//go:embed default.vm-settings.yml
var DefaultSettingsTemplate string

// VagrantfileProxyTemplate loads the Vagrantfile shipped with the package.
//
//go:embed Vagrantfile.proxy
var VagrantfileProxyTemplate string

// Template returns the embedded template with the given filename.
func Template(name string) (string, bool) {
	switch name {
	case DefaultSettingsFilename:
		return DefaultSettingsTemplate, true
	case VagrantfileProxyFilename:
		return VagrantfileProxyTemplate, true
	}
	return "", false
}
