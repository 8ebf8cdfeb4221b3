package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	"fshare/constants"
	"fshare/fileio"
	"fshare/networking"

	"github.com/google/uuid"
)

// Options configure a server. The zero value uses the defaults from constants.
type Options struct {
	Timeout  time.Duration
	Socket   networking.SocketOptions
	Logger   *log.Logger
	Progress fileio.ProgressFunc
	Announce bool // advertise the listening address over mDNS
}

// Builder collects the server configuration; a directory must be set before Build
type Builder struct {
	directory string
	opts      Options
}

// Server accepts one connection at a time and stores each received file in folder
type Server struct {
	folder   string
	timeout  time.Duration
	socket   networking.SocketOptions
	log      *log.Logger
	engine   *fileio.Engine
	announce bool
}

func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts}
}

// Directory configures a directory to save received files to. It must exist
// and be writable.
func (b *Builder) Directory(path string) error {
	dir, err := fileio.ValidateDirectory(path)
	if err != nil {
		return err
	}
	b.directory = dir
	return nil
}

// Build returns the configured server
func (b *Builder) Build() (*Server, error) {
	if b.directory == "" {
		return nil, errors.New("please configure a directory before listening")
	}
	s := &Server{
		folder:   b.directory,
		timeout:  b.opts.Timeout,
		socket:   b.opts.Socket,
		log:      b.opts.Logger,
		engine:   &fileio.Engine{BufferSize: constants.FILE_BUFFER_SIZE, Progress: b.opts.Progress},
		announce: b.opts.Announce,
	}
	if s.log == nil {
		s.log = log.Default()
	}
	if s.timeout <= 0 {
		s.timeout = constants.READ_TIMEOUT
	}
	return s, nil
}

// StartListening binds addr and serves until ctx is cancelled
func (s *Server) StartListening(ctx context.Context, addr string) error {
	l, err := networking.Listen(ctx, addr, s.socket)
	if err != nil {
		return fmt.Errorf("could not bind listening socket on %s: %w", addr, err)
	}
	s.log.Println("Listening on", l.Addr())

	if s.announce {
		withdrawn, err := networking.Announce(ctx, l.Addr().String())
		if err != nil {
			s.log.Println("Could not announce server over mDNS:", err)
		} else {
			defer withdrawn()
		}
	}

	return s.Serve(ctx, l)
}

// Serve accepts connections from l sequentially. A failing connection never
// stops the loop; it returns nil once ctx is cancelled.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	// Close the listener when the context ends.
	stop := context.AfterFunc(ctx, func() { l.Close() })
	defer stop()
	defer l.Close()

	for {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			s.log.Println("Failed to establish incoming connection:", err)
			continue
		}
		s.handleConnection(conn)
	}
}

// handleConnection runs the protocol on conn until the peer leaves or fails
func (s *Server) handleConnection(conn net.Conn) {
	networking.Tune(conn, s.socket)

	id := uuid.NewString()[:8]
	logger := log.New(s.log.Writer(), s.log.Prefix()+"["+id+"] ", s.log.Flags())
	logger.Println("New connection from", conn.RemoteAddr())

	c := &connection{
		id:      id,
		channel: networking.NewChannel(conn, s.timeout),
		phase:   PhaseConnected,
		log:     logger,
	}

	err := s.progressProtocol(c)
	if err != nil {
		logger.Println("Connection failed:", err)
		if c.channel != nil && !errors.Is(err, networking.ErrInvariantViolation) {
			s.goodbye(c)
		}
	}
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	logger.Println("Protocol Completed")
}
