// internal/scanner/builder.go
package scanner

import (
	"fmt"
	"time"

	cfg "github.com/tamzrod/beacon-reporter/internal/config"
)

// GattConfig is the minimal adapter config.
type GattConfig struct {
	DeviceID       int    // HCI device index; -1 picks the first available
	ManufacturerID uint16 // company ID filter; 0 accepts every advertisement
}

// Build constructs the configured scan source.
// Assumes config has already passed Validate and Normalize.
func Build(c cfg.ScanConfig) (Source, error) {
	switch c.Source {
	case cfg.SourceGatt:
		var mfr uint16
		if c.ManufacturerID != nil {
			mfr = *c.ManufacturerID
		}
		dev := -1
		if c.HCIDevice != nil {
			dev = *c.HCIDevice
		}
		return NewGattSource(GattConfig{
			DeviceID:       dev,
			ManufacturerID: mfr,
		}), nil

	case cfg.SourceReplay:
		return NewReplayFile(c.ReplayPath, time.Duration(c.ReplayPaceMs)*time.Millisecond), nil

	default:
		return nil, fmt.Errorf("scanner: unknown source %q", c.Source)
	}
}
