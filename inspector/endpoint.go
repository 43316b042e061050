// Package inspector hosts the point-to-point transport inside a target
// application process, dispatching tagged requests to handlers that run
// under the UI-thread marshaler and streaming change notifications.
package inspector

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/slighter12/uiinspect-go/analyzer"
	"github.com/slighter12/uiinspect-go/errorkind"
	"github.com/slighter12/uiinspect-go/handle"
	"github.com/slighter12/uiinspect-go/toolkit"
	"github.com/slighter12/uiinspect-go/uithread"
	"github.com/slighter12/uiinspect-go/wire"
)

// State is one of the endpoint's connection-lifecycle states, §4.E.
type State string

const (
	StateIdle        State = "Idle"
	StateAccepting   State = "Accepting"
	StateConnected   State = "Connected"
	StateReading     State = "Reading"
	StateDispatching State = "Dispatching"
	StateWriting     State = "Writing"
	StateStopped     State = "Stopped"
)

// DefaultHandlerTimeout is the deadline passed to the UI-thread marshaler
// for every dispatched request.
const DefaultHandlerTimeout = uithread.DefaultTimeout

const acceptRetryBackoff = 200 * time.Millisecond

// Handler runs one request kind's body. It is called on the connection's
// goroutine; each handler passes the work that touches the toolkit to
// run(), which executes it on the UI-thread marshaler's worker. It must
// return a fully-serialized set of response fields (no deferred lazy
// enumeration once it returns).
type Handler func(e *Endpoint, data json.RawMessage) (map[string]any, error)

// Endpoint is one inspector instance hosted inside a target process.
type Endpoint struct {
	Adapter   toolkit.Adapter
	Marshaler *uithread.Marshaler
	Registry  *handle.Registry
	Watches   *analyzer.WatchSet
	Errors    *analyzer.ErrorBuffer

	handlers map[wire.RequestKind]Handler

	listener net.Listener
	log      *slog.Logger

	mu           sync.Mutex
	state        State
	activeWriter io.Writer
	writeMu      sync.Mutex
	highlighted  []toolkit.Node
}

// writeFrame serializes every frame (responses and notifications alike)
// written to the active connection, per §5's "writes on a connection are
// serialized" guarantee — the response path and the notification path
// (driven by adapter callbacks on their own goroutine) would otherwise
// race directly on conn.Write.
func (e *Endpoint) writeFrame(w io.Writer, v any) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	return wire.Encode(w, v)
}

// New builds an endpoint over adapter, wiring a fresh handle registry,
// watch set, and binding-error buffer (attached to the adapter's trace
// sink immediately, per 4.F's "attach early and buffer" guidance).
func New(adapter toolkit.Adapter, errorBufferCapacity int, log *slog.Logger) *Endpoint {
	if log == nil {
		log = slog.Default()
	}
	e := &Endpoint{
		Adapter:   adapter,
		Marshaler: uithread.New(),
		Registry:  handle.NewRegistry(),
		Watches:   analyzer.NewWatchSet(),
		Errors:    analyzer.NewErrorBuffer(errorBufferCapacity),
		log:       log,
		state:     StateIdle,
	}
	e.handlers = defaultHandlers()
	adapter.AttachBindingTraceSink(e.Errors)
	return e
}

func (e *Endpoint) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// State reports the endpoint's current connection-lifecycle state.
func (e *Endpoint) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Serve runs the accept loop over listener until ctx is cancelled. It
// owns listener and closes it on return.
func (e *Endpoint) Serve(ctx context.Context, listener net.Listener) error {
	e.listener = listener
	defer listener.Close()
	defer e.Marshaler.Stop()

	e.setState(StateAccepting)
	for {
		select {
		case <-ctx.Done():
			e.setState(StateStopped)
			return ctx.Err()
		default:
		}

		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				e.setState(StateStopped)
				return ctx.Err()
			}
			e.log.Warn("accept failed, retrying", "error", err)
			time.Sleep(acceptRetryBackoff)
			continue
		}

		e.setState(StateConnected)
		e.serveConn(ctx, conn)

		if ctx.Err() != nil {
			e.setState(StateStopped)
			return ctx.Err()
		}
		e.setState(StateAccepting)
	}
}

func (e *Endpoint) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	e.mu.Lock()
	e.activeWriter = conn
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.activeWriter = nil
		toClear := e.highlighted
		e.highlighted = nil
		e.mu.Unlock()
		if clearer, ok := e.Adapter.(toolkit.HighlightClearer); ok {
			for _, n := range toClear {
				clearer.ClearHighlight(n)
			}
		}
	}()

	reader := wire.NewFrameReader(conn)
	for {
		e.setState(StateReading)
		frame, err := reader.ReadFrame()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				e.log.Debug("connection read ended", "error", err)
			}
			return
		}

		e.setState(StateDispatching)
		resp := e.handleFrame(ctx, frame)

		e.setState(StateWriting)
		if err := e.writeFrame(conn, resp); err != nil {
			e.log.Debug("connection write failed", "error", err)
			return
		}
	}
}

type requestIDOnly struct {
	RequestID string `json:"requestId"`
}

func (e *Endpoint) handleFrame(ctx context.Context, frame []byte) wire.ResponseEnvelope {
	env, err := wire.DecodeRequest(frame)
	if err != nil {
		return wire.ResponseEnvelope{RequestID: "", Success: false, Error: err.Error()}
	}

	var idOnly requestIDOnly
	_ = json.Unmarshal(env.Data, &idOnly)

	handler, ok := e.handlers[env.Type]
	if !ok {
		return wire.ResponseEnvelope{
			RequestID: idOnly.RequestID,
			Success:   false,
			Error:     errorkind.Newf(errorkind.InvalidRequest, "unknown request kind %q", env.Type).Error(),
		}
	}

	fields, herr := handler(e, env.Data)
	if herr != nil {
		return wire.ResponseEnvelope{RequestID: idOnly.RequestID, Success: false, Error: herr.Error()}
	}
	return wire.ResponseEnvelope{RequestID: idOnly.RequestID, Success: true, Fields: fields}
}

// Notify writes a notification synchronously to the currently connected
// session's writer, serialized with responses by writeFrame; there is no
// delivery queue. If no session is connected, PropertyChanged
// notifications are dropped (per §5's backpressure policy); BindingError
// is never sent unsolicited — clients pull it via GetBindingErrors.
func (e *Endpoint) Notify(n wire.NotificationEnvelope) {
	e.mu.Lock()
	w := e.activeWriter
	e.mu.Unlock()
	if w == nil {
		return
	}
	if err := e.writeFrame(w, n); err != nil {
		e.log.Debug("notification delivery failed", "error", err)
	}
}

func (e *Endpoint) recordHighlighted(node toolkit.Node) {
	e.mu.Lock()
	e.highlighted = append(e.highlighted, node)
	e.mu.Unlock()
}
