// internal/sink/builder.go
package sink

import (
	"errors"
	"io"
	"time"

	cfg "github.com/tamzrod/beacon-reporter/internal/config"
	"github.com/tamzrod/beacon-reporter/internal/broadcast"
)

// Deps are the process-local collaborators some sinks need.
type Deps struct {
	UIOut io.Writer
	Bus   *broadcast.Bus
}

// Set is the built sink list plus typed handles the daemon needs later.
type Set struct {
	Sinks    []Sink
	UI       *UISink   // nil when disabled
	Observer *HTTPSink // nil when disabled
	History  *HistorySink

	closers []func() error
}

// Close releases every sink that holds a resource. Returns the last error.
func (s *Set) Close() error {
	var last error
	for _, fn := range s.closers {
		if err := fn(); err != nil {
			last = err
		}
	}
	s.closers = nil
	return last
}

// Build creates the enabled sinks in a fixed order: ui, broadcast, observer,
// modbus, history. Assumes config has passed Validate and Normalize.
func Build(c cfg.SinksConfig, d Deps) (*Set, error) {
	set := &Set{}

	if cfg.On(c.UI.Enabled) {
		if d.UIOut == nil {
			return nil, errors.New("sink: ui enabled without an output")
		}
		set.UI = NewUISink(d.UIOut, c.UI.ShowDetections)
		set.Sinks = append(set.Sinks, set.UI)
	}

	if cfg.On(c.Broadcast.Enabled) {
		if d.Bus == nil {
			return nil, errors.New("sink: broadcast enabled without a bus")
		}
		set.Sinks = append(set.Sinks, NewBroadcastSink(d.Bus, c.Broadcast.Name))
	}

	if o := c.Observer; cfg.On(o.Enabled) {
		set.Observer = NewHTTPSink(HTTPConfig{
			Host:           o.Host,
			Port:           o.Port,
			Method:         o.Method,
			SendBody:       cfg.On(o.SendBody),
			ConnectTimeout: time.Duration(o.ConnectTimeoutMs) * time.Millisecond,
			ReadTimeout:    time.Duration(o.ReadTimeoutMs) * time.Millisecond,
		})
		set.Sinks = append(set.Sinks, set.Observer)
	}

	if m := c.Modbus; cfg.On(m.Enabled) {
		// Dial is lazy: an unreachable endpoint at boot is a delivery
		// failure on the first tick, not a startup error.
		ms := NewModbusSink(ModbusConfig{
			Endpoint:    m.Endpoint,
			UnitID:      m.UnitID,
			BaseSlot:    m.BaseSlot,
			StationName: m.StationName,
			Timeout:     time.Duration(m.TimeoutMs) * time.Millisecond,
		})
		set.Sinks = append(set.Sinks, ms)
		set.closers = append(set.closers, ms.Close)
	}

	if h := c.History; cfg.On(h.Enabled) {
		hs, err := OpenHistory(h.Path)
		if err != nil {
			_ = set.Close()
			return nil, err
		}
		set.History = hs
		set.Sinks = append(set.Sinks, hs)
		set.closers = append(set.closers, hs.Close)
	}

	return set, nil
}
