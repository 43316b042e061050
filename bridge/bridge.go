package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/slighter12/uiinspect-go/errorkind"
	"github.com/slighter12/uiinspect-go/transport/local"
	"github.com/slighter12/uiinspect-go/wire"
)

// DefaultConnectionTimeout and DefaultRequestTimeout are the bridge's
// per-call deadlines when a caller does not override them, per §4.G.
const (
	DefaultConnectionTimeout = 5 * time.Second
	DefaultRequestTimeout    = 30 * time.Second
)

// ProcessExists reports whether pid names a live process. The default
// implementation uses the portable os.FindProcess + zero-signal probe
// trick; callers may inject a different check (e.g. one backed by an OS
// process table) without this package reaching into OS specifics itself.
type ProcessExists func(pid int) bool

// DefaultProcessExists sends signal 0 to pid, which succeeds without
// actually signaling the process if and only if it exists and is
// reachable by the caller.
func DefaultProcessExists(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

// Bridge is one controller-side session attached to a single target
// process. It opens a fresh transient connection per Invoke call; it
// never holds a long-lived connection open (§4.G).
type Bridge struct {
	prefix            string
	connectionTimeout time.Duration
	requestTimeout    time.Duration
	processExists     ProcessExists
	log               *slog.Logger

	mu          sync.RWMutex
	pid         int
	processName string
	attached    bool
}

// New builds a Bridge that will rendezvous with endpoints named
// prefix+pid. processExists defaults to DefaultProcessExists when nil.
func New(prefix string, connectionTimeout, requestTimeout time.Duration, processExists ProcessExists, log *slog.Logger) *Bridge {
	if connectionTimeout <= 0 {
		connectionTimeout = DefaultConnectionTimeout
	}
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	if processExists == nil {
		processExists = DefaultProcessExists
	}
	if log == nil {
		log = slog.Default()
	}
	return &Bridge{
		prefix:            prefix,
		connectionTimeout: connectionTimeout,
		requestTimeout:    requestTimeout,
		processExists:     processExists,
		log:               log,
	}
}

// Attach validates that pid is a live process and records it as this
// session's target. processName is advisory (for logs/CLI display) and
// not itself verified against pid.
func (b *Bridge) Attach(ctx context.Context, pid int, processName string) error {
	if !b.processExists(pid) {
		return errorkind.WithRemediation(errorkind.Newf(errorkind.ProcessGone, "process %d does not exist", pid))
	}

	b.mu.Lock()
	b.pid = pid
	b.processName = processName
	b.attached = true
	b.mu.Unlock()

	b.log.Info("bridge attached", "pid", pid, "processName", processName)
	return nil
}

// Detach clears the session's target, e.g. before re-attaching to a
// replacement PID after ProcessGone.
func (b *Bridge) Detach() {
	b.mu.Lock()
	b.attached = false
	b.pid = 0
	b.processName = ""
	b.mu.Unlock()
}

func (b *Bridge) target() (int, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.pid, b.attached
}

// Invoke performs one request/response round trip against the attached
// process's inspector endpoint, implementing §4.G's five numbered steps.
func (b *Bridge) Invoke(ctx context.Context, kind wire.RequestKind, fields map[string]any) (map[string]any, error) {
	pid, attached := b.target()
	if !attached {
		return nil, errorkind.New(errorkind.HandlerError, "bridge is not attached to any process")
	}

	// Step 1: verify the PID still exists.
	if !b.processExists(pid) {
		return nil, errorkind.WithRemediation(errorkind.Newf(errorkind.ProcessGone, "process %d no longer exists", pid))
	}

	// Step 2: open a client connection with a connection timeout.
	address := local.Address(b.prefix, pid)
	dialCtx, cancel := context.WithTimeout(ctx, b.connectionTimeout)
	defer cancel()

	conn, err := local.Dial(dialCtx, address)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errorkind.Newf(errorkind.ConnectionTimeout, "timed out connecting to inspector for pid %d", pid)
		}
		return nil, errorkind.WithRemediation(errorkind.Newf(errorkind.InspectorUnreachable,
			"no inspector endpoint responded for pid %d: %v", pid, err))
	}
	defer conn.Close()

	requestID := uuid.New().String()
	data := map[string]any{"requestId": requestID}
	for k, v := range fields {
		data[k] = v
	}
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, errorkind.New(errorkind.ProtocolError, "encode request data: "+err.Error())
	}

	// Step 3: write one request frame.
	env := wire.RequestEnvelope{Type: kind, Data: dataBytes}
	if err := wire.Encode(conn, env); err != nil {
		return nil, errorkind.New(errorkind.ProtocolError, "write request: "+err.Error())
	}

	// Step 4: read one response frame with a request timeout.
	readDeadline := time.Now().Add(b.requestTimeout)
	if deadline, ok := ctx.Deadline(); ok && deadline.Before(readDeadline) {
		readDeadline = deadline
	}
	_ = conn.SetReadDeadline(readDeadline)
	reader := wire.NewFrameReader(conn)
	frame, err := reader.ReadFrame()
	if err != nil {
		if isDeadlineErr(err) {
			return nil, errorkind.Newf(errorkind.RequestTimeout, "no reply from pid %d within %s", pid, b.requestTimeout)
		}
		return nil, errorkind.New(errorkind.ProtocolError, "read response: "+err.Error())
	}
	if len(frame) == 0 {
		return nil, errorkind.New(errorkind.ProtocolError, "empty response frame")
	}

	// Step 5: decode and return.
	var resp wire.ResponseEnvelope
	if err := json.Unmarshal(frame, &resp); err != nil {
		return nil, errorkind.New(errorkind.ProtocolError, "malformed response: "+err.Error())
	}
	if resp.RequestID != requestID {
		b.log.Warn("response requestId mismatch", "want", requestID, "got", resp.RequestID)
	}
	if !resp.Success {
		return nil, errorkind.New(errorkind.HandlerError, resp.Error)
	}
	return resp.Fields, nil
}

// InvokeTyped is a generic convenience wrapper over Invoke that decodes
// the reply fields into T, the concrete record type a call site expects.
func InvokeTyped[T any](ctx context.Context, b *Bridge, kind wire.RequestKind, fields map[string]any) (T, error) {
	var zero T
	raw, err := b.Invoke(ctx, kind, fields)
	if err != nil {
		return zero, err
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return zero, errorkind.New(errorkind.ProtocolError, "re-encode reply fields: "+err.Error())
	}
	var out T
	if err := json.Unmarshal(encoded, &out); err != nil {
		return zero, errorkind.New(errorkind.ProtocolError, "decode reply: "+err.Error())
	}
	return out, nil
}

func isDeadlineErr(err error) bool {
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return errors.Is(err, os.ErrDeadlineExceeded)
}
