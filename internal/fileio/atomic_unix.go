//go:build !windows

package fileio

import (
	"os"

	"github.com/google/renameio"
)

func writeAtomic(path string, data []byte, perm os.FileMode) error {
	return renameio.WriteFile(path, data, perm)
}
