package analyzer

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/slighter12/uiinspect-go/handle"
)

// Watch is the server-side bookkeeping for one WatchProperty
// subscription, §3.
type Watch struct {
	WatchID      string
	Handle       handle.Handle
	PropertyName string
	LastValue    string
	Token        any // adapter-returned toolkit.SubscriptionToken, opaque here

	seq uint64 // creation order within its WatchSet
}

// PropertyChangedRecord is the wire notification payload emitted on
// every observed change, §4.F.
type PropertyChangedRecord struct {
	WatchID      string `json:"watchId"`
	PropertyName string `json:"propertyName"`
	OldValue     string `json:"oldValue"`
	NewValue     string `json:"newValue"`
	Timestamp    string `json:"timestamp"`
}

// WatchSet tracks every live subscription for one endpoint session.
// Per §5, every touchpoint is expected to run under the UI-thread
// marshaler; the mutex here is the same defensive fallback discipline as
// handle.Registry.
type WatchSet struct {
	mu      sync.Mutex
	watches map[string]*Watch
	nextSeq uint64
}

func NewWatchSet() *WatchSet {
	return &WatchSet{watches: make(map[string]*Watch)}
}

// Create registers a new watch, seeding LastValue at the initial
// observed value without emitting a notification — the first genuine
// PropertyChanged notification always compares against a real prior
// value, never a synthetic one.
func (s *WatchSet) Create(h handle.Handle, propertyName, initialValue string, token any) *Watch {
	w := &Watch{
		WatchID:      "watch_" + uuid.New().String(),
		Handle:       h,
		PropertyName: propertyName,
		LastValue:    initialValue,
		Token:        token,
	}
	s.mu.Lock()
	s.nextSeq++
	w.seq = s.nextSeq
	s.watches[w.WatchID] = w
	s.mu.Unlock()
	return w
}

func (s *WatchSet) Get(watchID string) (*Watch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.watches[watchID]
	return w, ok
}

// FindByElementProperty returns the most recently created watch for
// (h, propertyName), if any. A subscription callback fires per
// (node, propertyName) pair, which WatchProperty only ever registers
// once per pair in this endpoint, so "most recent" is the only live
// watch for that pair in practice.
func (s *WatchSet) FindByElementProperty(h handle.Handle, propertyName string) (*Watch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *Watch
	for _, w := range s.watches {
		if w.Handle == h && w.PropertyName == propertyName && (found == nil || w.seq > found.seq) {
			found = w
		}
	}
	if found == nil {
		return nil, false
	}
	return found, true
}

// ApplyChange records a newly observed value for watchID and returns the
// notification to emit, with OldValue set to whatever LastValue held
// before this call.
func (s *WatchSet) ApplyChange(watchID, newValue string) (PropertyChangedRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.watches[watchID]
	if !ok {
		return PropertyChangedRecord{}, false
	}
	old := w.LastValue
	w.LastValue = newValue
	return PropertyChangedRecord{
		WatchID:      w.WatchID,
		PropertyName: w.PropertyName,
		OldValue:     old,
		NewValue:     newValue,
		Timestamp:    time.Now().UTC().Format(time.RFC3339Nano),
	}, true
}

// AwaitValue polls get until predicate holds or deadline elapses,
// returning the last observed value and whether the predicate held. It
// exists only for tests that need to wait for a background mutation to
// become visible; no handler in this repository blocks on convergence.
func AwaitValue(get func() string, predicate func(string) bool, deadline, pollInterval time.Duration) (string, bool) {
	end := time.Now().Add(deadline)
	for {
		v := get()
		if predicate(v) {
			return v, true
		}
		if time.Now().After(end) {
			return v, false
		}
		time.Sleep(pollInterval)
	}
}
