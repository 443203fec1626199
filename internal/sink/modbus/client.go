// internal/sink/modbus/client.go
package modbus

import (
	"encoding/binary"
	"errors"
	"time"

	"github.com/goburrow/modbus"
)

// Conn is one Modbus TCP connection bound to a single unit.
// Not safe for concurrent use; the status sink serializes its writes.
type Conn struct {
	handler *modbus.TCPClientHandler
	client  modbus.Client
}

// Dial connects to endpoint (host:port) and addresses unitID on every request.
func Dial(endpoint string, unitID uint8, timeout time.Duration) (*Conn, error) {
	if endpoint == "" {
		return nil, errors.New("sink modbus: endpoint required")
	}

	h := modbus.NewTCPClientHandler(endpoint)
	h.Timeout = timeout
	h.SlaveId = unitID
	if err := h.Connect(); err != nil {
		return nil, err
	}
	return &Conn{handler: h, client: modbus.NewClient(h)}, nil
}

// WriteBlock writes regs as holding registers starting at addr (FC16).
// The library rejects a response whose quantity differs from the request.
func (c *Conn) WriteBlock(addr uint16, regs []uint16) error {
	_, err := c.client.WriteMultipleRegisters(addr, uint16(len(regs)), payload(regs))
	return err
}

func (c *Conn) Close() error {
	return c.handler.Close()
}

// payload lays registers out in wire order.
func payload(regs []uint16) []byte {
	b := make([]byte, 2*len(regs))
	for i, r := range regs {
		binary.BigEndian.PutUint16(b[2*i:], r)
	}
	return b
}
