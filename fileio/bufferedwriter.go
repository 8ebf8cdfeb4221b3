package fileio

import (
	"bufio"
	"encoding/binary"
	"os"
)

// BufferedWriter does buffered writes to a destination file
type BufferedWriter struct {
	file      *os.File
	writer    *bufio.Writer
	crc32Hash uint32
	written   uint64
}

// New creates new file for writing or returns error upon failing to do so
func (b *BufferedWriter) New(filename string, bufferSize int) error {
	file, err := os.Create(filename)
	if err == nil {
		b.file = file
		b.writer = bufio.NewWriterSize(b.file, bufferSize)
		return nil
	}
	return err
}

func (b *BufferedWriter) Write(chunk []byte) (int, error) {
	if b.file == nil {
		panic("cannot write without file handle")
	}
	n, err := b.writer.Write(chunk)
	b.crc32Hash = progressiveChecksumCRC32(b.crc32Hash, chunk[:n])
	b.written += uint64(n)
	return n, err
}

// Close writes any remaining bytes and closes the file
func (b *BufferedWriter) Close() error {
	err := b.writer.Flush()
	if cerr := b.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// Name is the path of the file being written
func (b *BufferedWriter) Name() string {
	return b.file.Name()
}

// Written returns the number of bytes accepted so far
func (b *BufferedWriter) Written() uint64 {
	return b.written
}

// Checksum returns CRC32 of all data written so far
func (b *BufferedWriter) Checksum() []byte {
	return binary.BigEndian.AppendUint32(make([]byte, 0, 4), b.crc32Hash)
}
