// internal/scanner/gatt_linux.go
//go:build linux

package scanner

import (
	"strings"
	"sync"

	"github.com/paypal/gatt"
	log "github.com/sirupsen/logrus"

	"github.com/tamzrod/beacon-reporter/internal/fault"
	"github.com/tamzrod/beacon-reporter/internal/proximity"
)

// GattSource scans with the local HCI adapter through paypal/gatt.
// A fresh device is opened on every Start because gatt closes the HCI
// socket on Stop.
type GattSource struct {
	cfg GattConfig

	mu       sync.Mutex
	dev      gatt.Device
	cb       Callbacks
	stopping bool
}

// NewGattSource builds a source for the configured adapter.
func NewGattSource(cfg GattConfig) *GattSource {
	return &GattSource{cfg: cfg}
}

func (s *GattSource) options() []gatt.Option {
	return []gatt.Option{
		gatt.LnxMaxConnections(1),
		gatt.LnxDeviceID(s.cfg.DeviceID, true),
	}
}

func (s *GattSource) Start(cb Callbacks) error {
	s.mu.Lock()
	if s.dev != nil {
		s.mu.Unlock()
		return nil
	}

	d, err := gatt.NewDevice(s.options()...)
	if err != nil {
		s.mu.Unlock()
		return fault.New(fault.KindScanHardwareUnavailable, "gatt open", err)
	}

	s.cb = cb
	s.stopping = false
	s.dev = d
	s.mu.Unlock()

	// gatt may invoke the state handler before Init returns; s.mu must not be held.
	d.Handle(gatt.PeripheralDiscovered(s.onDiscovered))
	if err := d.Init(s.onStateChanged); err != nil {
		s.mu.Lock()
		if s.dev == d {
			s.dev = nil
		}
		s.mu.Unlock()
		return fault.New(fault.KindScanStartFailure, "gatt init", err)
	}

	return nil
}

func (s *GattSource) Stop() error {
	s.mu.Lock()
	d := s.dev
	s.dev = nil
	s.stopping = true
	s.mu.Unlock()

	return release(d)
}

// closer is implemented by the Linux HCI device but not declared on
// gatt.Device.
type closer interface {
	Stop() error
}

// release stops scanning and closes the HCI socket so a later Start can
// open the adapter again.
func release(d gatt.Device) error {
	if d == nil {
		return nil
	}
	d.StopScanning()
	if c, ok := d.(closer); ok {
		return c.Stop()
	}
	return nil
}

func (s *GattSource) onStateChanged(d gatt.Device, st gatt.State) {
	s.mu.Lock()
	stopping := s.stopping
	cb := s.cb
	s.mu.Unlock()

	log.WithField("state", st.String()).Debug("gatt state changed")

	switch st {
	case gatt.StatePoweredOn:
		// Duplicates on: each advertisement carries a fresh RSSI reading.
		d.Scan([]gatt.UUID{}, true)
	default:
		if stopping {
			return
		}
		d.StopScanning()
		cb.scanError(fault.New(
			fault.KindScanHardwareUnavailable,
			"gatt state",
			errAdapterState(st),
		))
	}
}

func (s *GattSource) onDiscovered(p gatt.Peripheral, a *gatt.Advertisement, rssi int) {
	if s.cfg.ManufacturerID != 0 && !MatchesManufacturer(a.ManufacturerData, s.cfg.ManufacturerID) {
		return
	}

	s.mu.Lock()
	cb := s.cb
	s.mu.Unlock()

	addr := strings.ToUpper(p.ID())
	if b, err := ParseIBeacon(a.ManufacturerData); err == nil {
		log.WithFields(log.Fields{
			"address": addr,
			"uuid":    b.UUID,
			"major":   b.Major,
			"minor":   b.Minor,
		}).Debug("ibeacon advertisement")
	}

	cb.observation(proximity.Observation{Address: addr, RSSI: rssi})
}

type errAdapterState gatt.State

func (e errAdapterState) Error() string {
	return "adapter left powered-on state: " + gatt.State(e).String()
}
