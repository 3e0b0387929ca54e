// Package logging sets up the slog logger used by draftenv.
//
// By default warnings go to stderr as text. With --debug every record is
// also written as JSON to ~/.draftenv/logs/draftenv.log, which is rotated
// by size and can be read back with `draftenv logs`.
package logging
