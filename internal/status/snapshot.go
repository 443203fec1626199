// internal/status/snapshot.go
package status

import "time"

// Snapshot represents exactly what a sink is allowed to deliver for one tick.
// Immutable once produced: Addresses is a private copy per snapshot.
type Snapshot struct {
	ID        string // correlates sink log lines for one tick
	Seq       uint64 // tick number within a scanning session (1-based)
	Count     int    // total distinct addresses seen in the window
	Addresses []string
	TakenAt   time.Time
}

// Empty reports whether nothing was detected in the window.
func (s Snapshot) Empty() bool { return s.Count == 0 }
