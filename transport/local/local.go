// Package local owns the rendezvous-name-to-local-endpoint mapping the
// inspector endpoint (listener) and the controller bridge (dialer) both
// need: a stable name derived from a target process's PID, resolved to a
// host-local, connection-oriented transport.
package local

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrSocketInUse is returned by Listen when the rendezvous address is
// already bound by another listener.
var ErrSocketInUse = errors.New("local: rendezvous address already in use")

// ErrSocketNotFound is returned by Dial when no listener is bound to the
// rendezvous address.
var ErrSocketNotFound = errors.New("local: rendezvous address not found")

// Address derives the stable rendezvous name for pid under prefix, e.g.
// Address("wpf_inspector_", 4242) -> "wpf_inspector_4242".
func Address(prefix string, pid int) string {
	return fmt.Sprintf("%s%d", prefix, pid)
}

// Dial opens a client connection to address, honoring ctx's deadline as
// the connection timeout.
func Dial(ctx context.Context, address string) (net.Conn, error) {
	return dial(ctx, address)
}

// Listen binds a listener at address. The caller owns the returned
// listener and must Close it to release the underlying resource.
func Listen(address string) (net.Listener, error) {
	return listen(address)
}
