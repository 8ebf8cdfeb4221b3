package fileio

import (
	"fmt"
	"os"
	"path/filepath"
)

// PendingFile is an opened local file waiting to be sent together with the
// name the receiver will see.
type PendingFile struct {
	File *os.File
	Name string
}

// LoadFile opens path for sending. Only the final path component is kept as
// the name; directories are rejected.
func LoadFile(path string) (*PendingFile, error) {
	name := filepath.Base(filepath.Clean(path))
	if path == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return nil, fmt.Errorf("could not load file: `%s`, is it a directory?\n"+
			"You can only send one file at a time", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: `%s`: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("could not load file: `%s`, is it a directory?\n"+
			"You can only send one file at a time", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: `%s`: %w", path, err)
	}
	return &PendingFile{File: file, Name: name}, nil
}

// Close releases the file handle. Safe on a nil receiver.
func (p *PendingFile) Close() error {
	if p == nil || p.File == nil {
		return nil
	}
	return p.File.Close()
}
