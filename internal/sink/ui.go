// internal/sink/ui.go
package sink

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/tamzrod/beacon-reporter/internal/fault"
	"github.com/tamzrod/beacon-reporter/internal/proximity"
	"github.com/tamzrod/beacon-reporter/internal/status"
)

// UISink renders snapshots and detections to a terminal-like writer.
// All rendering is serialized on one lock, the stand-in for a UI thread.
type UISink struct {
	mu             sync.Mutex
	w              io.Writer
	showDetections bool
}

func NewUISink(w io.Writer, showDetections bool) *UISink {
	return &UISink{w: w, showDetections: showDetections}
}

func (u *UISink) Name() string { return "ui" }

func (u *UISink) Deliver(_ context.Context, s status.Snapshot) Result {
	var b strings.Builder
	fmt.Fprintf(&b, "%s nearby=%d", s.TakenAt.Format("15:04:05"), s.Count)
	for _, a := range s.Addresses {
		b.WriteString(" ")
		b.WriteString(a)
	}
	if more := s.Count - len(s.Addresses); more > 0 {
		fmt.Fprintf(&b, " (+%d more)", more)
	}
	b.WriteString("\n")

	if err := u.write(b.String()); err != nil {
		return failed(u.Name(), err)
	}
	return ok(u.Name())
}

// ObserveDetection renders one accepted observation when enabled.
func (u *UISink) ObserveDetection(ev proximity.DetectionEvent) {
	if !u.showDetections {
		return
	}
	_ = u.write(fmt.Sprintf(
		"beacon address=%s rssi=%d dBm distance=%.3f m\n",
		ev.Address, ev.RSSI, ev.DistanceM,
	))
}

func (u *UISink) write(s string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, err := io.WriteString(u.w, s); err != nil {
		return fault.New(fault.KindRenderFailure, "ui write", err)
	}
	return nil
}
