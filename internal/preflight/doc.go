// Package preflight checks that a project can be installed and migrated:
// the project directory is writable, the templates and the lock file can
// be read and the existing settings files parse.
//
//	checker := preflight.New()
//	results := checker.RunAll(ctx, project)
//	if checker.HasCriticalFailures(results) {
//	    // Handle failures
//	}
package preflight
