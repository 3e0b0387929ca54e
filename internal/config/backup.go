package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lemberg/draftenv/internal/fileio"
)

const (
	// MaxBackups is the maximum number of backups kept per file.
	MaxBackups = 3

	// BackupSuffix is the file extension for backup files.
	BackupSuffix = ".bak"

	backupTimeFormat = "20060102-150405"
)

// BackupTargetConfig copies path to a timestamped backup next to it and
// prunes older backups beyond MaxBackups.
// Returns the backup path, or an empty string when path does not exist.
func BackupTargetConfig(fsys fileio.FS, path string, now time.Time, logger *slog.Logger) (string, error) {
	if !fsys.Exists(path) {
		return "", nil
	}

	backupPath := fmt.Sprintf("%s%s.%s", path, BackupSuffix, now.Format(backupTimeFormat))
	if err := fileio.CopyFile(fsys, path, backupPath); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	// The backup itself succeeded, so a failed prune is only logged.
	if err := cleanupOldBackups(fsys, path); err != nil && logger != nil {
		logger.Debug("backup cleanup failed", slog.String("file", path), slog.String("error", err.Error()))
	}

	return backupPath, nil
}

// ListBackups returns the backups of path, newest first.
func ListBackups(path string) ([]string, error) {
	dir := filepath.Dir(path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list backup directory: %w", err)
	}

	var backups []string
	prefix := filepath.Base(path) + BackupSuffix + "."
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), prefix) {
			backups = append(backups, filepath.Join(dir, entry.Name()))
		}
	}

	// Timestamps sort lexically.
	sort.Sort(sort.Reverse(sort.StringSlice(backups)))
	return backups, nil
}

func cleanupOldBackups(fsys fileio.FS, path string) error {
	backups, err := ListBackups(path)
	if err != nil {
		return err
	}
	if len(backups) <= MaxBackups {
		return nil
	}
	var errs []error
	for _, backup := range backups[MaxBackups:] {
		if err := fsys.Remove(backup); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
