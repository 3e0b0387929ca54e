// Package fileio is the file system port used by the configuration engine.
package fileio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FS is the small set of file operations the engine needs.
type FS interface {
	ReadFile(path string) ([]byte, error)
	// WriteFile replaces path atomically, creating parent directories.
	WriteFile(path string, data []byte, perm os.FileMode) error
	Exists(path string) bool
	// Remove deletes path. Removing a missing file is not an error.
	Remove(path string) error
}

// OS implements FS on the local file system.
type OS struct{}

// ReadFile reads the named file.
func (OS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes data to path via a temporary file and rename.
func (OS) WriteFile(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	return writeAtomic(path, data, perm)
}

// Exists reports whether path exists.
func (OS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Remove deletes path, ignoring missing files.
func (OS) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// CopyFile copies src to dst through fsys, keeping 0644 permissions.
func CopyFile(fsys FS, src, dst string) error {
	data, err := fsys.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}
	if err := fsys.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return nil
}
