// internal/scanner/gatt_other.go
//go:build !linux

package scanner

import (
	"errors"

	"github.com/tamzrod/beacon-reporter/internal/fault"
)

// GattSource is unavailable off Linux; Start always fails.
type GattSource struct {
	cfg GattConfig
}

func NewGattSource(cfg GattConfig) *GattSource {
	return &GattSource{cfg: cfg}
}

func (s *GattSource) Start(Callbacks) error {
	return fault.New(
		fault.KindScanHardwareUnavailable,
		"gatt open",
		errors.New("HCI scanning is only supported on linux"),
	)
}

func (s *GattSource) Stop() error { return nil }
