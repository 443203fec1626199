// internal/scanner/gatt_linux_test.go
//go:build linux

package scanner

import (
	"errors"
	"testing"

	"github.com/paypal/gatt"
)

// fakeDevice satisfies gatt.Device through the embedded nil interface;
// only the methods release touches are implemented.
type fakeDevice struct {
	gatt.Device
	scanStops int
	closes    int
	closeErr  error
}

func (f *fakeDevice) StopScanning() { f.scanStops++ }

func (f *fakeDevice) Stop() error {
	f.closes++
	return f.closeErr
}

// scanOnlyDevice has no Stop method.
type scanOnlyDevice struct {
	gatt.Device
	scanStops int
}

func (f *scanOnlyDevice) StopScanning() { f.scanStops++ }

func TestRelease_ClosesHCIDevice(t *testing.T) {
	d := &fakeDevice{}
	if err := release(d); err != nil {
		t.Fatalf("release err=%v", err)
	}
	if d.scanStops != 1 || d.closes != 1 {
		t.Fatalf("expected scan stop + close, got stops=%d closes=%d", d.scanStops, d.closes)
	}

	d.closeErr = errors.New("hci busy")
	if err := release(d); err == nil {
		t.Fatalf("close error should be returned")
	}
}

func TestRelease_DeviceWithoutStop(t *testing.T) {
	d := &scanOnlyDevice{}
	if err := release(d); err != nil {
		t.Fatalf("release err=%v", err)
	}
	if d.scanStops != 1 {
		t.Fatalf("expected scan stop, got %d", d.scanStops)
	}
	if err := release(nil); err != nil {
		t.Fatalf("release(nil) err=%v", err)
	}
}

func TestGattSource_StopAllowsNextStart(t *testing.T) {
	d := &fakeDevice{}
	s := NewGattSource(GattConfig{DeviceID: -1})
	s.dev = d

	if err := s.Stop(); err != nil {
		t.Fatalf("stop err=%v", err)
	}
	if d.closes != 1 {
		t.Fatalf("device not closed on stop")
	}
	if s.dev != nil {
		t.Fatalf("device still held after stop; next Start would be a no-op")
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("second stop err=%v", err)
	}
	if d.closes != 1 {
		t.Fatalf("second stop closed again")
	}
}
