// Package bridge is the controller-side half of the inspection protocol:
// it discovers candidate target processes, attaches to one, and
// translates typed tool calls into Wire Codec requests over a fresh
// per-call connection.
package bridge

import (
	"context"
	"sync"
	"time"

	"github.com/slighter12/uiinspect-go/transport/local"
)

// ProcessInfo is one OS process surfaced by a ProcessLister. Process
// enumeration itself is out of scope for this protocol (spec §1); the
// lister is injected so this package never reaches into OS-specific
// process listing APIs directly.
type ProcessInfo struct {
	PID  int
	Name string
}

// ProcessLister enumerates plausible target processes, e.g. by name or
// loaded-module heuristics. The caller supplies the implementation.
type ProcessLister func(ctx context.Context) ([]ProcessInfo, error)

// Candidate is one discovered process, annotated with whether an
// inspector endpoint answered a probe at its rendezvous address.
type Candidate struct {
	PID                int       `json:"pid"`
	ProcessName        string    `json:"processName"`
	InspectorAvailable bool      `json:"inspectorAvailable"`
	LastSeen           time.Time `json:"lastSeen"`
}

// Discovery maintains the set of candidate target processes seen across
// Refresh calls, grounded on the same created/last-seen bookkeeping and
// Cleanup(timeout) shape as a server/client registry.
type Discovery struct {
	mu           sync.RWMutex
	candidates   map[int]*Candidate
	lister       ProcessLister
	prefix       string
	probeTimeout time.Duration
}

// NewDiscovery builds a Discovery that lists candidates via lister and
// probes each one's rendezvous address (prefix + pid) with a short dial.
func NewDiscovery(lister ProcessLister, prefix string, probeTimeout time.Duration) *Discovery {
	if probeTimeout <= 0 {
		probeTimeout = 500 * time.Millisecond
	}
	return &Discovery{
		candidates:   make(map[int]*Candidate),
		lister:       lister,
		prefix:       prefix,
		probeTimeout: probeTimeout,
	}
}

// Refresh re-lists candidate processes and probes each for a responding
// inspector endpoint, updating InspectorAvailable and LastSeen.
func (d *Discovery) Refresh(ctx context.Context) error {
	procs, err := d.lister(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, p := range procs {
		available := d.probe(ctx, p.PID)

		d.mu.Lock()
		d.candidates[p.PID] = &Candidate{
			PID:                p.PID,
			ProcessName:        p.Name,
			InspectorAvailable: available,
			LastSeen:           now,
		}
		d.mu.Unlock()
	}
	return nil
}

func (d *Discovery) probe(ctx context.Context, pid int) bool {
	address := local.Address(d.prefix, pid)
	dialCtx, cancel := context.WithTimeout(ctx, d.probeTimeout)
	defer cancel()

	conn, err := local.Dial(dialCtx, address)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// Candidates returns a snapshot of every process recorded by any Refresh
// and not yet evicted by Cleanup, in no particular order.
func (d *Discovery) Candidates() []Candidate {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Candidate, 0, len(d.candidates))
	for _, c := range d.candidates {
		out = append(out, *c)
	}
	return out
}

// Cleanup drops candidates not seen within timeout, mirroring a
// registry's age-based eviction.
func (d *Discovery) Cleanup(timeout time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := time.Now()
	for pid, c := range d.candidates {
		if now.Sub(c.LastSeen) > timeout {
			delete(d.candidates, pid)
		}
	}
}
