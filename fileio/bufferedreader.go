package fileio

import (
	"bufio"
	"os"
)

// BufferedReader does buffered reads from the file being sent
type BufferedReader struct {
	file   *os.File
	reader *bufio.Reader
	size   int64
}

// New wraps an open file or returns error if it cannot be inspected
func (b *BufferedReader) New(file *os.File, bufferSize int) error {
	info, err := file.Stat()
	if err != nil {
		return err
	}
	b.file = file
	b.size = info.Size()
	b.reader = bufio.NewReaderSize(file, bufferSize)
	return nil
}

// Size is the length of the file when it was wrapped
func (b *BufferedReader) Size() int64 {
	return b.size
}

func (b *BufferedReader) Read(p []byte) (int, error) {
	if b.reader == nil {
		panic("cannot read without file handle")
	}
	return b.reader.Read(p)
}
