package fileio

import (
	"os"
	"path/filepath"
	"testing"

	"fshare/constants"

	qt "github.com/frankban/quicktest"
)

func TestValidateDirectory(t *testing.T) {
	c := qt.New(t)
	dir := c.TempDir()

	got, err := ValidateDirectory(dir + string(filepath.Separator))
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, filepath.Clean(dir))

	_, err = os.Stat(filepath.Join(dir, constants.WRITE_TEST_FILE))
	c.Assert(os.IsNotExist(err), qt.IsTrue)
}

func TestValidateDirectoryMissing(t *testing.T) {
	c := qt.New(t)
	_, err := ValidateDirectory(filepath.Join(c.TempDir(), "nope"))
	c.Assert(err, qt.ErrorMatches, "invalid directory: .*")
}

func TestValidateDirectoryRejectsFile(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(c.TempDir(), "file.txt")
	c.Assert(os.WriteFile(path, nil, 0o644), qt.IsNil)

	_, err := ValidateDirectory(path)
	c.Assert(err, qt.ErrorMatches, "invalid directory: .* is not a directory")
}

func TestValidateDirectoryReadOnly(t *testing.T) {
	c := qt.New(t)
	if os.Geteuid() == 0 {
		c.Skip("root can write anywhere")
	}
	dir := c.TempDir()
	c.Assert(os.Chmod(dir, 0o555), qt.IsNil)
	c.Cleanup(func() { os.Chmod(dir, 0o755) })

	_, err := ValidateDirectory(dir)
	c.Assert(err, qt.ErrorMatches, "directory .* is not writable: .*")
}
