// Package handle bridges the live, in-process UI-object graph into stable
// opaque wire identities.
package handle

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Handle is a short opaque token naming a UI node for the lifetime of an
// endpoint session. Clients must not parse it.
type Handle string

// Registry assigns and resolves handles for one endpoint session. Per
// spec, every touchpoint runs under the UI-thread marshaler, so the mutex
// here is a defensive fallback rather than the primary concurrency
// control — see uithread.Marshaler.
type Registry struct {
	mu       sync.RWMutex
	byNode   map[any]Handle
	byHandle map[Handle]any
}

func NewRegistry() *Registry {
	return &Registry{
		byNode:   make(map[any]Handle),
		byHandle: make(map[Handle]any),
	}
}

// Assign returns the stable handle for node, minting a fresh one on first
// observation. Repeated calls for the same node (by identity) return the
// same handle.
func (r *Registry) Assign(node any) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.byNode[node]; ok {
		return h
	}
	h := newHandle()
	r.byNode[node] = h
	r.byHandle[h] = node
	return h
}

// Resolve returns the node for h if it is still tracked by this session.
func (r *Registry) Resolve(h Handle) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	node, ok := r.byHandle[h]
	return node, ok
}

// Size reports how many handles are currently tracked, for tests and
// diagnostics.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byHandle)
}

func newHandle() Handle {
	id := uuid.New().String()
	return Handle("elem_" + strings.ReplaceAll(id, "-", "")[:12])
}
