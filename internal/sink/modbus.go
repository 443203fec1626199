// internal/sink/modbus.go
package sink

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tamzrod/beacon-reporter/internal/sink/modbus"
	"github.com/tamzrod/beacon-reporter/internal/status"
)

// blockWriter is the exact contract the modbus sink uses.
type blockWriter interface {
	WriteBlock(addr uint16, regs []uint16) error
	Close() error
}

// ModbusConfig locates the station status block.
type ModbusConfig struct {
	Endpoint    string
	UnitID      uint8
	BaseSlot    uint16
	StationName string
	Timeout     time.Duration
}

// ModbusSink mirrors each snapshot into a fixed status block of holding
// registers. The connection is reused while healthy; on failure it is
// discarded and re-dialled on a later tick, which also re-asserts the full
// block (station name included).
type ModbusSink struct {
	cfg  ModbusConfig
	dial func() (blockWriter, error)

	mu       sync.Mutex
	cli      blockWriter
	needFull bool
	last     []uint16
}

func NewModbusSink(cfg ModbusConfig) *ModbusSink {
	return newModbusSink(cfg, func() (blockWriter, error) {
		return modbus.Dial(cfg.Endpoint, cfg.UnitID, cfg.Timeout)
	})
}

func newModbusSink(cfg ModbusConfig, dial func() (blockWriter, error)) *ModbusSink {
	return &ModbusSink{cfg: cfg, dial: dial, needFull: true}
}

func (m *ModbusSink) Name() string { return "modbus" }

func (m *ModbusSink) baseAddr() uint16 {
	// Each station owns a fixed SlotsPerStation block.
	return m.cfg.BaseSlot * status.SlotsPerStation
}

// Deliver writes the block. Overlapping ticks are serialized.
func (m *ModbusSink) Deliver(_ context.Context, s status.Snapshot) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.write(status.Encode(s, m.cfg.StationName)); err != nil {
		return failed(m.Name(), fmt.Errorf("modbus %s: %w", m.cfg.Endpoint, err))
	}
	return ok(m.Name())
}

func (m *ModbusSink) write(regs []uint16) error {
	if m.cli == nil {
		cli, err := m.dial()
		if err != nil {
			return err
		}
		m.cli = cli
		m.needFull = true
	}

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if m.needFull {
		if err := m.cli.WriteBlock(m.baseAddr(), regs); err != nil {
			m.drop()
			return fmt.Errorf("full block write failed: %w", err)
		}
		m.needFull = false
		m.last = regs
		return nil
	}

	// ------------------------------------------------------------
	// Incremental: one write spanning the changed slots
	// ------------------------------------------------------------
	lo, hi := -1, -1
	for i := range regs {
		if regs[i] != m.last[i] {
			if lo < 0 {
				lo = i
			}
			hi = i
		}
	}
	if lo < 0 {
		return nil
	}

	if err := m.cli.WriteBlock(m.baseAddr()+uint16(lo), regs[lo:hi+1]); err != nil {
		m.drop()
		return fmt.Errorf("slots %d-%d write failed: %w", lo, hi, err)
	}
	m.last = regs
	return nil
}

// drop discards the client; any failure introduces doubt, so the next
// successful connection re-asserts the full block.
func (m *ModbusSink) drop() {
	if m.cli != nil {
		_ = m.cli.Close()
	}
	m.cli = nil
	m.needFull = true
}

// Close releases the connection, if any.
func (m *ModbusSink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cli == nil {
		return nil
	}
	err := m.cli.Close()
	m.cli = nil
	return err
}
