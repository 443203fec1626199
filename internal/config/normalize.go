// internal/config/normalize.go
package config

import (
	"strings"

	"github.com/tamzrod/beacon-reporter/internal/proximity"
	"github.com/tamzrod/beacon-reporter/internal/status"
)

// Defaults.
const (
	DefaultIntervalMs      = 5000
	DefaultMaxAddresses    = 3
	DefaultBroadcastName   = "BEACON_STATUS"
	DefaultObserverHost    = "192.168.1.3"
	DefaultObserverPort    = 53737
	DefaultObserverMethod  = "GET"
	DefaultHTTPTimeoutMs   = 10000
	DefaultModbusTimeoutMs = 2000
	DefaultHistoryPath     = "beacons.db"
	DefaultManufacturerID  = uint16(0x004C)
	DefaultHCIDevice       = -1
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)

	r := &cfg.Reporter
	if r.IntervalMs == 0 {
		r.IntervalMs = DefaultIntervalMs
	}
	if r.MaxAddresses == 0 {
		r.MaxAddresses = DefaultMaxAddresses
	}

	d := &cfg.Distance
	if d.ReferenceDBm == nil {
		v := proximity.DefaultReferenceDBm
		d.ReferenceDBm = &v
	}
	if d.PathLossExponent == 0 {
		d.PathLossExponent = proximity.DefaultPathLossExponent
	}
	if d.IgnoreThresholdM == 0 {
		d.IgnoreThresholdM = proximity.DefaultIgnoreThresholdM
	}

	s := &cfg.Scan
	if s.Source == "" {
		s.Source = SourceGatt
	}
	if s.HCIDevice == nil {
		v := DefaultHCIDevice
		s.HCIDevice = &v
	}
	if s.ManufacturerID == nil {
		v := DefaultManufacturerID
		s.ManufacturerID = &v
	}

	// ------------------------------------------------------------
	// SINKS (ui, broadcast and observer are on unless disabled)
	// ------------------------------------------------------------

	sk := &cfg.Sinks
	defaultToggle(&sk.UI.Enabled, true)
	defaultToggle(&sk.Broadcast.Enabled, true)
	defaultToggle(&sk.Observer.Enabled, true)
	defaultToggle(&sk.Modbus.Enabled, false)
	defaultToggle(&sk.History.Enabled, false)

	if sk.Broadcast.Name == "" {
		sk.Broadcast.Name = DefaultBroadcastName
	}

	o := &sk.Observer
	if o.Host == "" {
		o.Host = DefaultObserverHost
	}
	if o.Port == 0 {
		o.Port = DefaultObserverPort
	}
	if o.Method == "" {
		o.Method = DefaultObserverMethod
	}
	o.Method = strings.ToUpper(o.Method)
	// POST exists to carry the payload; GET keeps the bodiless wire form unless asked.
	defaultToggle(&o.SendBody, o.Method == "POST")
	if o.ConnectTimeoutMs == 0 {
		o.ConnectTimeoutMs = DefaultHTTPTimeoutMs
	}
	if o.ReadTimeoutMs == 0 {
		o.ReadTimeoutMs = DefaultHTTPTimeoutMs
	}

	m := &sk.Modbus
	if m.TimeoutMs == 0 {
		m.TimeoutMs = DefaultModbusTimeoutMs
	}
	// Normalize station_name:
	// - ASCII already validated
	// - Truncate to max 16 characters
	if len(m.StationName) > status.StationNameMaxChars {
		m.StationName = m.StationName[:status.StationNameMaxChars]
	}

	if sk.History.Path == "" {
		sk.History.Path = DefaultHistoryPath
	}
}

func defaultToggle(p **bool, def bool) {
	if *p == nil {
		v := def
		*p = &v
	}
}
