//go:build windows

package local

import (
	"context"
	"errors"
	"net"
	"os"
	"time"

	"golang.org/x/sys/windows"
)

func pipePath(address string) string {
	return `\\.\pipe\uiinspect-` + address
}

const (
	pipeBufferSize = 64 * 1024
	dialRetryDelay = 50 * time.Millisecond
)

// pipeListener wraps a Win32 named pipe server in the net.Listener shape
// the endpoint's accept loop expects. Each Accept call creates and waits
// on a fresh pipe instance, matching the single-client-at-a-time model
// the inspector endpoint already implements above this package.
type pipeListener struct {
	path   string
	closed chan struct{}
}

func listen(address string) (net.Listener, error) {
	path := pipePath(address)

	h, err := createPipeInstance(path, true)
	if err != nil {
		if errors.Is(err, windows.ERROR_PIPE_BUSY) {
			return nil, ErrSocketInUse
		}
		return nil, err
	}
	// Close the probe instance; Accept creates its own instances on
	// demand, but creating one eagerly here surfaces "already in use"
	// errors at Listen time rather than on the first Accept.
	windows.CloseHandle(h)

	return &pipeListener{path: path, closed: make(chan struct{})}, nil
}

func createPipeInstance(path string, firstInstance bool) (windows.Handle, error) {
	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, err
	}
	openMode := uint32(windows.PIPE_ACCESS_DUPLEX)
	if firstInstance {
		openMode |= windows.FILE_FLAG_FIRST_PIPE_INSTANCE
	}
	return windows.CreateNamedPipe(
		pathPtr,
		openMode,
		windows.PIPE_TYPE_BYTE|windows.PIPE_READMODE_BYTE|windows.PIPE_WAIT,
		windows.PIPE_UNLIMITED_INSTANCES,
		pipeBufferSize,
		pipeBufferSize,
		0,
		nil,
	)
}

func (l *pipeListener) Accept() (net.Conn, error) {
	h, err := createPipeInstance(l.path, false)
	if err != nil {
		return nil, err
	}

	if err := windows.ConnectNamedPipe(h, nil); err != nil && !errors.Is(err, windows.ERROR_PIPE_CONNECTED) {
		windows.CloseHandle(h)
		return nil, err
	}

	return newPipeConn(h, l.path), nil
}

func (l *pipeListener) Close() error {
	select {
	case <-l.closed:
	default:
		close(l.closed)
	}
	return nil
}

func (l *pipeListener) Addr() net.Addr { return pipeAddr(l.path) }

func dial(ctx context.Context, address string) (net.Conn, error) {
	path := pipePath(address)
	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, err
	}

	for {
		h, err := windows.CreateFile(pathPtr,
			windows.GENERIC_READ|windows.GENERIC_WRITE,
			0, nil, windows.OPEN_EXISTING, windows.FILE_ATTRIBUTE_NORMAL, 0)
		if err == nil {
			return newPipeConn(h, path), nil
		}
		if !errors.Is(err, windows.ERROR_PIPE_BUSY) && !errors.Is(err, windows.ERROR_FILE_NOT_FOUND) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			if errors.Is(err, windows.ERROR_FILE_NOT_FOUND) {
				return nil, ErrSocketNotFound
			}
			return nil, ctx.Err()
		case <-time.After(dialRetryDelay):
		}
	}
}

type pipeAddr string

func (p pipeAddr) Network() string { return "pipe" }
func (p pipeAddr) String() string  { return string(p) }

// pipeConn adapts a Win32 named pipe handle to net.Conn by wrapping it in
// an *os.File, which on Windows already knows how to ReadFile/WriteFile
// against any synchronous handle.
type pipeConn struct {
	f    *os.File
	path string
}

func newPipeConn(h windows.Handle, path string) *pipeConn {
	return &pipeConn{f: os.NewFile(uintptr(h), path), path: path}
}

func (c *pipeConn) Read(b []byte) (int, error)  { return c.f.Read(b) }
func (c *pipeConn) Write(b []byte) (int, error) { return c.f.Write(b) }
func (c *pipeConn) Close() error                { return c.f.Close() }
func (c *pipeConn) LocalAddr() net.Addr         { return pipeAddr(c.path) }
func (c *pipeConn) RemoteAddr() net.Addr        { return pipeAddr(c.path) }

func (c *pipeConn) SetDeadline(t time.Time) error      { return c.f.SetDeadline(t) }
func (c *pipeConn) SetReadDeadline(t time.Time) error   { return c.f.SetReadDeadline(t) }
func (c *pipeConn) SetWriteDeadline(t time.Time) error  { return c.f.SetWriteDeadline(t) }
