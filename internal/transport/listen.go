package transport

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
)

// Listen opens a stream listener. For unix sockets a stale socket file at
// addr is removed first.
func Listen(network, addr string) (net.Listener, error) {
	switch network {
	case "unix":
		if err := os.Remove(addr); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("remove stale socket %s: %w", addr, err)
		}
	case "tcp", "tcp4", "tcp6":
	default:
		return nil, fmt.Errorf("unsupported network %q", network)
	}
	ln, err := net.Listen(network, addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s %s: %w", network, addr, err)
	}
	return ln, nil
}
