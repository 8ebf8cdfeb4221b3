package fileio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fshare/constants"
	"fshare/networking"
)

// Engine streams one file body framed by an 8 byte big-endian length prefix
type Engine struct {
	BufferSize int
	Progress   ProgressFunc
}

// Received describes a file written by Receive
type Received struct {
	Path     string
	Size     uint64
	Checksum []byte
}

func (e *Engine) bufferSize() int {
	if e == nil || e.BufferSize <= 0 {
		return constants.FILE_BUFFER_SIZE
	}
	return e.BufferSize
}

func (e *Engine) progress(description string, size int64) io.Writer {
	if e == nil || e.Progress == nil {
		return nil
	}
	return e.Progress(description, size)
}

// Send writes the size of file followed by exactly that many bytes of its
// contents to dst. A file that changes length while being read fails the
// transfer rather than putting more or fewer bytes on the wire than declared.
func (e *Engine) Send(dst io.Writer, file *os.File, name string) (int64, error) {
	reader := new(BufferedReader)
	if err := reader.New(file, e.bufferSize()); err != nil {
		return 0, fmt.Errorf("%w: %w", networking.ErrIO, err)
	}
	size := reader.Size()

	if _, err := dst.Write(networking.TransferSizeToBytes(uint64(size))); err != nil {
		return 0, ioError(err)
	}

	var src io.Reader = reader
	if w := e.progress(name, size); w != nil {
		src = io.TeeReader(reader, w)
	}

	sent, err := io.CopyN(dst, src, size)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return sent, fmt.Errorf("%w: %s ended after %d of %d bytes", networking.ErrShortRead, name, sent, size)
		}
		return sent, ioError(err)
	}
	return sent, nil
}

// Receive reads a size prefix from src and then exactly that many bytes into
// a new file called name inside directory. Reads never ask for more than what
// is still owed, so bytes that follow the body stay on the stream. On failure
// the partially written file is removed.
func (e *Engine) Receive(src io.Reader, directory, name string) (*Received, error) {
	prefix := make([]byte, networking.TransferSizeLen)
	if _, err := io.ReadFull(src, prefix); err != nil {
		return nil, shortRead("size prefix", err)
	}
	size, err := networking.DecodeTransferSize(prefix)
	if err != nil {
		return nil, err
	}

	base := networking.BaseName(name)
	if base == "" || base == "." || base == ".." {
		return nil, fmt.Errorf("%w: empty filename received", networking.ErrProtocolViolation)
	}
	path := filepath.Join(directory, base)

	writer := new(BufferedWriter)
	if err := writer.New(path, e.bufferSize()); err != nil {
		return nil, fmt.Errorf("%w: %w", networking.ErrIO, err)
	}

	var progress io.Writer
	if size <= uint64(1<<63-1) {
		progress = e.progress(base, int64(size))
	}

	if err := receiveBody(src, writer, size, e.bufferSize(), progress); err != nil {
		writer.Close()
		os.Remove(path)
		return nil, err
	}
	if err := writer.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("%w: %w", networking.ErrIO, err)
	}

	return &Received{
		Path:     path,
		Size:     writer.Written(),
		Checksum: writer.Checksum(),
	}, nil
}

// receiveBody copies exactly size bytes from src to dst, tolerating reads of
// any length.
func receiveBody(src io.Reader, dst io.Writer, size uint64, bufferSize int, progress io.Writer) error {
	buf := make([]byte, bufferSize)
	var received uint64
	for received < size {
		want := uint64(len(buf))
		if remaining := size - received; remaining < want {
			want = remaining
		}

		n, err := src.Read(buf[:want])
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return fmt.Errorf("%w: %w", networking.ErrIO, werr)
			}
			if progress != nil {
				progress.Write(buf[:n])
			}
			received += uint64(n)
		}
		if err != nil {
			if received == size {
				break
			}
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: stream ended after %d of %d bytes", networking.ErrShortRead, received, size)
			}
			return ioError(err)
		}
	}
	return nil
}

func shortRead(what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s: %w", networking.ErrShortRead, what, err)
	}
	return ioError(err)
}

func ioError(err error) error {
	if errors.Is(err, networking.ErrIO) || errors.Is(err, networking.ErrTimeout) || errors.Is(err, networking.ErrShortRead) {
		return err
	}
	return fmt.Errorf("%w: %w", networking.ErrIO, err)
}
