package networking

import (
	"strconv"

	"fshare/networking/opcode"
)

// Message is a single byte control signal
type Message uint8

const (
	FileTransferRequest Message = opcode.FILETRANSFERREQUEST
	RequestDenied       Message = opcode.REQUESTDENIED
	Ack                 Message = opcode.ACK
	Goodbye             Message = opcode.GOODBYE
)

// Encode returns the wire byte of the message
func (m Message) Encode() byte {
	return byte(m)
}

// Decode maps a wire byte to a control message
func Decode(b byte) (Message, error) {
	switch b {
	case opcode.FILETRANSFERREQUEST, opcode.REQUESTDENIED, opcode.ACK, opcode.GOODBYE:
		return Message(b), nil
	}
	return 0, &DecodeError{Byte: b}
}

func (m Message) String() string {
	switch m {
	case FileTransferRequest:
		return "FileTransferRequest"
	case RequestDenied:
		return "RequestDenied"
	case Ack:
		return "Ack"
	case Goodbye:
		return "Goodbye"
	default:
		return "Message(" + strconv.Itoa(int(m)) + ")"
	}
}
