package comms

import (
	"context"
	"fmt"
	"log"
	"net"
	"time"

	"fshare/constants"
	"fshare/fileio"
	"fshare/networking"
)

// Options configure a client. The zero value uses the defaults from constants.
type Options struct {
	Timeout  time.Duration
	Socket   networking.SocketOptions
	Logger   *log.Logger
	Progress fileio.ProgressFunc
}

// session is shared by every phase value of one client
type session struct {
	log     *log.Logger
	timeout time.Duration
	socket  networking.SocketOptions
	engine  *fileio.Engine
}

func newSession(opts Options) *session {
	s := &session{
		log:     opts.Logger,
		timeout: opts.Timeout,
		socket:  opts.Socket,
		engine:  &fileio.Engine{BufferSize: constants.FILE_BUFFER_SIZE, Progress: opts.Progress},
	}
	if s.log == nil {
		s.log = log.Default()
	}
	if s.timeout <= 0 {
		s.timeout = constants.READ_TIMEOUT
	}
	return s
}

// spent is returned when a phase value is used after it moved into the next phase
func spent(phase string) error {
	return fmt.Errorf("%w: %s client has already moved on", networking.ErrInvariantViolation, phase)
}

// Disconnected is the initial phase. It may hold a pending file.
type Disconnected struct {
	session *session
	file    *fileio.PendingFile
	Err     error
}

// NewClient returns a disconnected client without a pending file
func NewClient(opts Options) *Disconnected {
	return &Disconnected{session: newSession(opts)}
}

// LoadFile opens path as the file to send, replacing any previous one
func (d *Disconnected) LoadFile(path string) error {
	return loadFile(d.session, &d.file, path)
}

// Connect opens a channel to address. On failure the client stays
// disconnected and Err holds the cause.
func (d *Disconnected) Connect(address string) (*Connected, error) {
	if d.session == nil {
		return nil, spent("disconnected")
	}
	ctx, cancel := context.WithTimeout(context.Background(), d.session.timeout)
	defer cancel()

	conn, err := networking.Dial(ctx, address, d.session.socket)
	if err != nil {
		d.Err = err
		return nil, err
	}
	d.session.log.Println("Connected to", conn.RemoteAddr())
	return d.attach(conn), nil
}

// attach moves the pending file onto an established connection
func (d *Disconnected) attach(conn net.Conn) *Connected {
	c := &Connected{
		session: d.session,
		channel: networking.NewChannel(conn, d.session.timeout),
		file:    d.file,
	}
	d.session, d.file, d.Err = nil, nil, nil
	return c
}

// Close releases the pending file, if any
func (d *Disconnected) Close() error {
	err := d.file.Close()
	d.file = nil
	return err
}

// Connected is idle on an open channel, ready to request a transfer
type Connected struct {
	session *session
	channel *networking.Channel
	file    *fileio.PendingFile
	Err     error
}

// LoadFile opens path as the file to send, replacing any previous one
func (c *Connected) LoadFile(path string) error {
	return loadFile(c.session, &c.file, path)
}

// Request asks the server to accept a file and, once acknowledged, sends the
// file's base name. On any failure the client stays connected and Err holds
// the reason.
func (c *Connected) Request() (*Negotiating, error) {
	if c.channel == nil {
		return nil, spent("connected")
	}
	if c.file == nil {
		return nil, c.fail(fmt.Errorf("cannot request to transfer file: %w", networking.ErrNoFileConfigured))
	}
	if c.file.Name == "" {
		return nil, c.fail(fmt.Errorf("cannot request to transfer file: %w", networking.ErrNoFilenameConfigured))
	}

	if err := c.channel.SendControl(networking.FileTransferRequest); err != nil {
		return nil, c.fail(err)
	}
	received, err := c.channel.ReceiveControl()
	if err != nil {
		return nil, c.fail(err)
	}
	if received != networking.Ack {
		return nil, c.fail(fmt.Errorf("%w: expected Ack, received: %v", networking.ErrProtocolViolation, received))
	}

	if _, err := c.channel.Write(networking.FilenameToBytes(c.file.Name)); err != nil {
		return nil, c.fail(err)
	}
	c.session.log.Println("sent filename:", c.file.Name)

	n := &Negotiating{session: c.session, channel: c.channel, file: c.file}
	c.channel, c.file, c.Err = nil, nil, nil
	return n, nil
}

func (c *Connected) fail(err error) error {
	c.Err = err
	return err
}

// Goodbye sends Goodbye and waits for the server's Goodbye. Each failed round
// costs one attempt. The connection is torn down either way; Err on the
// returned value holds the last failure if no Goodbye came back.
func (c *Connected) Goodbye() *Disconnected {
	if c.channel == nil {
		return &Disconnected{session: c.session, file: c.file, Err: spent("connected")}
	}

	var lastErr error
	for attempt := 1; attempt <= constants.GOODBYE_ATTEMPTS; attempt++ {
		if err := c.channel.SendControl(networking.Goodbye); err != nil {
			c.session.log.Printf("Error saying Goodbye: attempt %d: %v", attempt, err)
			lastErr = err
			continue
		}
		received, err := c.channel.ReceiveControl()
		if err == nil && received == networking.Goodbye {
			lastErr = nil
			break
		}
		if err == nil {
			err = fmt.Errorf("%w: expected Goodbye, received: %v", networking.ErrProtocolViolation, received)
		}
		c.session.log.Printf("No Goodbye from server: attempt %d: %v", attempt, err)
		lastErr = err
	}
	if lastErr != nil {
		c.session.log.Println("Max attempts to say Goodbye reached. Disconnecting")
	}

	c.channel.Close()
	d := &Disconnected{session: c.session, file: c.file, Err: lastErr}
	c.session, c.channel, c.file = nil, nil, nil
	return d
}

// Negotiating has sent the filename and waits for the server to accept it
type Negotiating struct {
	session *session
	channel *networking.Channel
	file    *fileio.PendingFile
}

// AwaitAccept blocks for the server's reply to the filename. Ack moves on to
// Sending; anything else abandons the negotiation and returns a Connected
// client without a pending file, its Err describing the refusal. Exactly one
// of the results is non-nil.
func (n *Negotiating) AwaitAccept() (*Sending, *Connected) {
	if n.channel == nil {
		return nil, &Connected{session: n.session, Err: spent("negotiating")}
	}
	received, err := n.channel.ReceiveControl()
	if err == nil && received == networking.Ack {
		s := &Sending{session: n.session, channel: n.channel, file: n.file}
		n.channel, n.file = nil, nil
		return s, nil
	}
	if err == nil {
		err = fmt.Errorf("%w: expected Ack, received: %v", networking.ErrProtocolViolation, received)
	}

	n.file.Close()
	c := &Connected{session: n.session, channel: n.channel, Err: err}
	n.channel, n.file = nil, nil
	return nil, c
}

// Sending owns an accepted transfer
type Sending struct {
	session  *session
	channel  *networking.Channel
	file     *fileio.PendingFile
	streamed bool
	Err      error
}

// StreamFile sends the length prefixed file body and then waits for the
// server's Ack. The Ack is informational only.
func (s *Sending) StreamFile() error {
	if s.channel == nil {
		return spent("sending")
	}
	if s.streamed {
		s.Err = fmt.Errorf("%w: %s has already been sent", networking.ErrProtocolViolation, s.file.Name)
		return s.Err
	}
	s.streamed = true

	if sum, err := fileio.GetFileChecksumCRC32(s.file.File); err == nil {
		s.session.log.Printf("Checksum %x", sum)
	}

	sent, err := s.session.engine.Send(s.channel, s.file.File, s.file.Name)
	if err != nil {
		s.Err = err
		return err
	}
	s.session.log.Printf("Sent %d bytes of %s", sent, s.file.Name)

	received, err := s.channel.ReceiveControl()
	switch {
	case err != nil:
		s.session.log.Println("No acknowledgement from server:", err)
	case received == networking.Ack:
		s.session.log.Println("Server acknowledged receipt of file")
	default:
		s.session.log.Println("Unexpected reply to file:", received)
	}
	return nil
}

// Finish sends Goodbye and returns to Connected. If the send fails the client
// stays in Sending with Err set and Finish may be retried.
func (s *Sending) Finish() (*Connected, error) {
	if s.channel == nil {
		return nil, spent("sending")
	}
	if err := s.channel.SendControl(networking.Goodbye); err != nil {
		s.Err = err
		return nil, err
	}
	s.file.Close()
	c := &Connected{session: s.session, channel: s.channel}
	s.channel, s.file, s.Err = nil, nil, nil
	return c, nil
}

// Close abandons the transfer and the connection
func (s *Sending) Close() error {
	if s.channel == nil {
		return nil
	}
	s.file.Close()
	err := s.channel.Close()
	s.channel, s.file = nil, nil
	return err
}

// loadFile replaces *slot with the file at path, closing the previous one
func loadFile(s *session, slot **fileio.PendingFile, path string) error {
	if s == nil {
		return spent("loading")
	}
	pending, err := fileio.LoadFile(path)
	if err != nil {
		return err
	}
	(*slot).Close()
	*slot = pending
	s.log.Println("Loaded", pending.Name)
	return nil
}
