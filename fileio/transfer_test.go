package fileio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"testing/iotest"

	"fshare/networking"

	qt "github.com/frankban/quicktest"
)

// small buffers so multi chunk paths are exercised
const testBufferSize = 512

// openTemp writes data to dir/name and opens it for reading
func openTemp(c *qt.C, dir, name string, data []byte) *os.File {
	path := filepath.Join(dir, name)
	c.Assert(os.WriteFile(path, data, 0o644), qt.IsNil)
	f, err := os.Open(path)
	c.Assert(err, qt.IsNil)
	c.Cleanup(func() { f.Close() })
	return f
}

func randomBytes(n int) []byte {
	data := make([]byte, n)
	rand.New(rand.NewSource(int64(n))).Read(data)
	return data
}

func TestSendReceiveRoundTrip(t *testing.T) {
	c := qt.New(t)
	for _, size := range []int{0, 1, 10, 4095, 100_000, 3*testBufferSize + 7} {
		c.Run(fmt.Sprintf("%d bytes", size), func(c *qt.C) {
			data := randomBytes(size)
			engine := &Engine{BufferSize: testBufferSize}

			var wire bytes.Buffer
			sent, err := engine.Send(&wire, openTemp(c, c.TempDir(), "data.bin", data), "data.bin")
			c.Assert(err, qt.IsNil)
			c.Assert(sent, qt.Equals, int64(size))
			c.Assert(wire.Len(), qt.Equals, networking.TransferSizeLen+size)

			dst := c.TempDir()
			received, err := engine.Receive(&wire, dst, "data.bin")
			c.Assert(err, qt.IsNil)
			c.Assert(received.Size, qt.Equals, uint64(size))
			c.Assert(received.Path, qt.Equals, filepath.Join(dst, "data.bin"))

			got, err := os.ReadFile(received.Path)
			c.Assert(err, qt.IsNil)
			c.Assert(bytes.Equal(got, data), qt.IsTrue)
			c.Assert(wire.Len(), qt.Equals, 0)
		})
	}
}

func TestSendWritesLengthPrefixThenBody(t *testing.T) {
	c := qt.New(t)
	data := []byte("0123456789")
	var wire bytes.Buffer

	_, err := new(Engine).Send(&wire, openTemp(c, c.TempDir(), "note.txt", data), "note.txt")
	c.Assert(err, qt.IsNil)

	want := append([]byte{0, 0, 0, 0, 0, 0, 0, 10}, data...)
	c.Assert(wire.Bytes(), qt.DeepEquals, want)
}

func TestReceiveToleratesAnyChunkSize(t *testing.T) {
	c := qt.New(t)
	data := randomBytes(3000)
	frame := append(networking.TransferSizeToBytes(uint64(len(data))), data...)

	tests := []struct {
		about string
		wrap  func(io.Reader) io.Reader
	}{
		{"one byte", iotest.OneByteReader},
		{"half", iotest.HalfReader},
		{"eof with data", iotest.DataErrReader},
	}
	for _, test := range tests {
		c.Run(test.about, func(c *qt.C) {
			received, err := (&Engine{BufferSize: 100}).Receive(test.wrap(bytes.NewReader(frame)), c.TempDir(), "chunks.bin")
			c.Assert(err, qt.IsNil)
			got, err := os.ReadFile(received.Path)
			c.Assert(err, qt.IsNil)
			c.Assert(bytes.Equal(got, data), qt.IsTrue)
		})
	}
}

func TestReceiveNeverReadsPastDeclaredLength(t *testing.T) {
	c := qt.New(t)
	var wire bytes.Buffer
	wire.Write(networking.TransferSizeToBytes(10))
	wire.WriteString("0123456789")
	wire.WriteByte(networking.Goodbye.Encode())

	_, err := new(Engine).Receive(&wire, c.TempDir(), "note.txt")
	c.Assert(err, qt.IsNil)
	c.Assert(wire.Bytes(), qt.DeepEquals, []byte{255})
}

func TestReceiveStripsDirectoryComponents(t *testing.T) {
	c := qt.New(t)
	root := c.TempDir()
	dir := filepath.Join(root, "inbox")
	c.Assert(os.Mkdir(dir, 0o755), qt.IsNil)

	wire := bytes.NewBuffer(append(networking.TransferSizeToBytes(3), "abc"...))
	received, err := new(Engine).Receive(wire, dir, "../../passwd")
	c.Assert(err, qt.IsNil)
	c.Assert(received.Path, qt.Equals, filepath.Join(dir, "passwd"))

	_, err = os.Stat(filepath.Join(root, "passwd"))
	c.Assert(errors.Is(err, os.ErrNotExist), qt.IsTrue)
}

func TestReceiveShortBodyRemovesPartialFile(t *testing.T) {
	c := qt.New(t)
	dir := c.TempDir()
	wire := bytes.NewBuffer(append(networking.TransferSizeToBytes(10), "0123"...))

	_, err := new(Engine).Receive(wire, dir, "note.txt")
	c.Assert(err, qt.ErrorIs, networking.ErrShortRead)

	_, err = os.Stat(filepath.Join(dir, "note.txt"))
	c.Assert(errors.Is(err, os.ErrNotExist), qt.IsTrue)
}

func TestReceiveShortPrefix(t *testing.T) {
	c := qt.New(t)
	_, err := new(Engine).Receive(bytes.NewReader([]byte{0, 0, 1}), c.TempDir(), "note.txt")
	c.Assert(err, qt.ErrorIs, networking.ErrShortRead)
}

func TestReceiveRejectsEmptyName(t *testing.T) {
	c := qt.New(t)
	wire := bytes.NewBuffer(networking.TransferSizeToBytes(0))
	_, err := new(Engine).Receive(wire, c.TempDir(), "../")
	c.Assert(err, qt.ErrorIs, networking.ErrProtocolViolation)
}

func TestReceiveIntoMissingDirectory(t *testing.T) {
	c := qt.New(t)
	wire := bytes.NewBuffer(networking.TransferSizeToBytes(0))
	_, err := new(Engine).Receive(wire, filepath.Join(c.TempDir(), "missing"), "note.txt")
	c.Assert(err, qt.ErrorIs, networking.ErrIO)
}

func TestSendWriteFailure(t *testing.T) {
	c := qt.New(t)
	_, err := new(Engine).Send(failingWriter{}, openTemp(c, c.TempDir(), "note.txt", []byte("hi")), "note.txt")
	c.Assert(err, qt.ErrorIs, networking.ErrIO)
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("connection reset by peer")
}

type countingWriter struct {
	total int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.total += len(p)
	return len(p), nil
}

func TestProgressSeesEveryByte(t *testing.T) {
	c := qt.New(t)
	data := randomBytes(5000)
	var sendCount, recvCount countingWriter
	var descriptions []string

	sender := &Engine{BufferSize: 256, Progress: func(description string, size int64) io.Writer {
		descriptions = append(descriptions, description)
		c.Check(size, qt.Equals, int64(len(data)))
		return &sendCount
	}}
	receiver := &Engine{BufferSize: 256, Progress: func(description string, size int64) io.Writer {
		descriptions = append(descriptions, description)
		return &recvCount
	}}

	var wire bytes.Buffer
	_, err := sender.Send(&wire, openTemp(c, c.TempDir(), "p.bin", data), "p.bin")
	c.Assert(err, qt.IsNil)
	_, err = receiver.Receive(&wire, c.TempDir(), "p.bin")
	c.Assert(err, qt.IsNil)

	c.Assert(sendCount.total, qt.Equals, len(data))
	c.Assert(recvCount.total, qt.Equals, len(data))
	c.Assert(descriptions, qt.DeepEquals, []string{"p.bin", "p.bin"})
}
