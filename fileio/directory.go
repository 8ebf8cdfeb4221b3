package fileio

import (
	"fmt"
	"os"
	"path/filepath"

	"fshare/constants"
)

// ValidateDirectory checks that path is an existing directory we can create
// files in. It returns the cleaned path.
func ValidateDirectory(path string) (string, error) {
	dir := filepath.Clean(path)

	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("invalid directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("invalid directory: %s is not a directory", dir)
	}

	probe := filepath.Join(dir, constants.WRITE_TEST_FILE)
	f, err := os.Create(probe)
	if err != nil {
		return "", fmt.Errorf("directory %s is not writable: %w", dir, err)
	}
	f.Close()
	if err := os.Remove(probe); err != nil {
		return "", fmt.Errorf("could not remove %s: %w", probe, err)
	}
	return dir, nil
}
