package networking

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"

	"fshare/constants"

	"github.com/grandcat/zeroconf"
)

// Announce registers the server over mDNS until ctx is cancelled. The
// returned function blocks until the registration has been withdrawn.
func Announce(ctx context.Context, listenAddr string) (func(), error) {
	_, portStr, err := net.SplitHostPort(listenAddr)
	if err != nil {
		return nil, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid port %q: %w", portStr, err)
	}
	instance, err := os.Hostname()
	if err != nil {
		return nil, err
	}
	server, err := zeroconf.Register(instance, constants.SERVICE_TYPE, constants.SERVICE_DOMAIN,
		port, []string{"txtv=0", "proto=fshare"}, nil)
	if err != nil {
		return nil, err
	}
	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		server.Shutdown()
		close(done)
	}()
	return func() { <-done }, nil
}
