package networking

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// TransferSizeLen is the length of the big-endian size prefix before a file body
const TransferSizeLen = 8

// TransferSizeToBytes encodes the byte count of the file body that follows
func TransferSizeToBytes(size uint64) []byte {
	buffer := bytes.NewBuffer(make([]byte, 0, TransferSizeLen))
	binary.Write(buffer, binary.BigEndian, size)
	return buffer.Bytes()
}

// DecodeTransferSize decodes an 8 byte size prefix
func DecodeTransferSize(prefix []byte) (uint64, error) {
	if len(prefix) != TransferSizeLen {
		return 0, fmt.Errorf("%w: size prefix should always be %d bytes, got %d",
			ErrProtocolViolation, TransferSizeLen, len(prefix))
	}
	var size uint64
	err := binary.Read(bytes.NewReader(prefix), binary.BigEndian, &size)
	return size, err
}

// FilenameToBytes encodes the negotiation payload. It is sent as is, with no
// length prefix and no terminator.
func FilenameToBytes(name string) []byte {
	return []byte(name)
}

// DecodeFilename interprets a received negotiation payload. Directory
// components are stripped so the name can only ever address a file directly
// inside the destination directory.
func DecodeFilename(payload []byte) (string, error) {
	if !utf8.Valid(payload) {
		return "", fmt.Errorf("%w: filename is not valid UTF-8", ErrProtocolViolation)
	}
	name := BaseName(string(payload))
	if name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("%w: empty filename received: %q", ErrProtocolViolation, payload)
	}
	return name, nil
}

// BaseName returns the final path component, treating both slash and
// backslash as separators regardless of the local OS.
func BaseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[i+1:]
		}
	}
	return path
}
