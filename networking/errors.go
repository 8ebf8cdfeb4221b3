package networking

import (
	"errors"
	"fmt"
)

var (
	// ErrIO reports a transport or filesystem failure.
	ErrIO = errors.New("i/o error")
	// ErrTimeout reports that no data arrived within the read deadline.
	ErrTimeout = errors.New("timed out")
	// ErrProtocolViolation reports a message or payload not valid for the current phase.
	ErrProtocolViolation = errors.New("protocol violation")
	// ErrShortRead reports a stream that ended before the declared size was reached.
	ErrShortRead = errors.New("short read")
	// ErrNoFileConfigured is returned when a transfer is requested without a loaded file.
	ErrNoFileConfigured = errors.New("no file has been configured")
	// ErrNoFilenameConfigured is returned when the loaded file has no usable name.
	ErrNoFilenameConfigured = errors.New("no filename has been configured")
	// ErrInvariantViolation reports a connection whose phase is unset.
	ErrInvariantViolation = errors.New("protocol invariant violation")
)

// DecodeError is returned for a byte outside the control message set
type DecodeError struct {
	Byte byte
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unknown message: %d", e.Byte)
}
