package server

import (
	"fmt"
	"log"

	"fshare/constants"
	"fshare/networking"
)

// Phase of one connection on the server
type Phase int

const (
	PhaseUnset Phase = iota
	PhaseConnected
	PhaseNegotiating
	PhaseReceiving
)

func (p Phase) String() string {
	switch p {
	case PhaseConnected:
		return "Connected"
	case PhaseNegotiating:
		return "Negotiating"
	case PhaseReceiving:
		return "Receiving"
	default:
		return "Unset"
	}
}

// connection is the state of the single accepted peer
type connection struct {
	id       string
	channel  *networking.Channel
	phase    Phase
	filename string
	log      *log.Logger
}

// progressProtocol reads from the channel and acts according to the phase
// until the peer says Goodbye or something fails.
func (s *Server) progressProtocol(c *connection) error {
	for {
		switch c.phase {
		case PhaseConnected:
			message, err := c.channel.ReceiveControl()
			if err != nil {
				return err
			}
			done, err := s.handleMessage(c, message)
			if err != nil || done {
				return err
			}
		case PhaseNegotiating:
			if err := s.receiveFilename(c); err != nil {
				return err
			}
			if err := c.channel.SendControl(networking.Ack); err != nil {
				return err
			}
			c.phase = PhaseReceiving
		case PhaseReceiving:
			if err := s.receiveFile(c); err != nil {
				return err
			}
			if err := c.channel.SendControl(networking.Ack); err != nil {
				return err
			}
			c.phase = PhaseConnected
		default:
			return fmt.Errorf("%w: connection %s is in phase %v", networking.ErrInvariantViolation, c.id, c.phase)
		}
	}
}

// handleMessage reacts to a control message received while Connected. It
// reports true once the connection has been closed.
func (s *Server) handleMessage(c *connection, message networking.Message) (bool, error) {
	switch message {
	case networking.Goodbye:
		return true, s.goodbye(c)
	case networking.FileTransferRequest:
		if err := c.channel.SendControl(networking.Ack); err != nil {
			return true, err
		}
		c.phase = PhaseNegotiating
		return false, nil
	default:
		c.log.Println("Unexpected message received:", message)
		return true, s.goodbye(c)
	}
}

// receiveFilename takes whatever is buffered as the filename. Any filename is accepted.
func (s *Server) receiveFilename(c *connection) error {
	payload, err := c.channel.ReceivePayload(constants.MAX_FILENAME_PAYLOAD)
	if err != nil {
		return err
	}
	name, err := networking.DecodeFilename(payload)
	if err != nil {
		return err
	}
	c.filename = name
	c.log.Printf("filename received: %q", name)
	return nil
}

func (s *Server) receiveFile(c *connection) error {
	if c.filename == "" {
		return fmt.Errorf("%w: receiving without a negotiated filename", networking.ErrInvariantViolation)
	}
	received, err := s.engine.Receive(c.channel, s.folder, c.filename)
	if err != nil {
		return err
	}
	c.log.Printf("Saved %s (%d bytes, checksum %x)", received.Path, received.Size, received.Checksum)
	c.filename = ""
	return nil
}

// goodbye replies Goodbye, half-closes the connection and resets its state.
// It must not be called once the channel is gone.
func (s *Server) goodbye(c *connection) error {
	var err error
	for attempt := 1; attempt <= constants.SERVER_GOODBYE_ATTEMPTS; attempt++ {
		if err = c.channel.SendControl(networking.Goodbye); err == nil {
			break
		}
		c.log.Printf("Error saying Goodbye: attempt %d: %v", attempt, err)
	}
	if err != nil {
		c.log.Println("Max attempts to say Goodbye reached")
	} else if cerr := c.channel.CloseRead(); cerr != nil {
		err = cerr
	}

	c.channel.Close()
	c.channel = nil
	c.phase = PhaseUnset
	c.filename = ""
	return err
}
