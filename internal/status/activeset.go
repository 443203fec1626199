// internal/status/activeset.go
package status

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// ActiveSet is the deduplicated set of addresses detected since the last tick.
// Record and SnapshotAndClear are mutually exclusive: a Record lands either in
// the snapshot being taken or in the next window, never in both or neither.
//
// There is no upper bound on size within a window.
type ActiveSet struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	order []string // first-seen order
}

// NewActiveSet returns an empty set.
func NewActiveSet() *ActiveSet {
	return &ActiveSet{seen: make(map[string]struct{})}
}

// Record inserts addr. Returns true if addr was not yet present in this window.
func (a *ActiveSet) Record(addr string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.seen[addr]; ok {
		return false
	}
	a.seen[addr] = struct{}{}
	a.order = append(a.order, addr)
	return true
}

// Len returns the current window size.
func (a *ActiveSet) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.order)
}

// SnapshotAndClear captures the window and empties the set.
// Addresses is truncated to the first max entries; max <= 0 keeps all.
func (a *ActiveSet) SnapshotAndClear(max int, at time.Time) Snapshot {
	a.mu.Lock()
	count := len(a.order)
	n := count
	if max > 0 && n > max {
		n = max
	}
	addrs := make([]string, n)
	copy(addrs, a.order[:n])

	a.seen = make(map[string]struct{})
	a.order = nil
	a.mu.Unlock()

	return Snapshot{
		ID:        uuid.NewString(),
		Count:     count,
		Addresses: addrs,
		TakenAt:   at,
	}
}
