package opcode

// Every control message is exactly one byte on the wire.
const (
	FILETRANSFERREQUEST = 30  // Client asks to send a file
	REQUESTDENIED       = 43  // Request refused
	ACK                 = 200 // Generic acknowledgement
	GOODBYE             = 255 // Orderly close
)
