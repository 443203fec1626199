// internal/config/validate.go
package config

import (
	"fmt"
	"strings"

	"github.com/tamzrod/beacon-reporter/internal/status"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
// Zero values mean "use default" and are accepted here.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil")
	}

	// ------------------------------------------------------------
	// LOG
	// ------------------------------------------------------------

	switch strings.ToLower(cfg.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q: must be debug, info, warn or error", cfg.Log.Level)
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format %q: must be text or json", cfg.Log.Format)
	}

	// ------------------------------------------------------------
	// REPORTER + DISTANCE MODEL
	// ------------------------------------------------------------

	r := cfg.Reporter
	if r.IntervalMs < 0 {
		return fmt.Errorf("reporter.interval_ms must be >= 0, got %d", r.IntervalMs)
	}
	if r.MaxAddresses < 0 {
		return fmt.Errorf("reporter.max_addresses must be >= 0, got %d", r.MaxAddresses)
	}
	if r.WindowWarnSize < 0 {
		return fmt.Errorf("reporter.window_warn_size must be >= 0, got %d", r.WindowWarnSize)
	}

	d := cfg.Distance
	if d.PathLossExponent < 0 {
		return fmt.Errorf("distance.path_loss_exponent must be > 0, got %v", d.PathLossExponent)
	}
	if d.IgnoreThresholdM < 0 {
		return fmt.Errorf("distance.ignore_threshold_m must be > 0, got %v", d.IgnoreThresholdM)
	}

	// ------------------------------------------------------------
	// SCAN SOURCE
	// ------------------------------------------------------------

	s := cfg.Scan
	switch s.Source {
	case "", SourceGatt:
	case SourceReplay:
		if s.ReplayPath == "" {
			return fmt.Errorf("scan.source is %q but scan.replay_path is empty", SourceReplay)
		}
	default:
		return fmt.Errorf("scan.source %q: must be %q or %q", s.Source, SourceGatt, SourceReplay)
	}
	if s.ReplayPaceMs < 0 {
		return fmt.Errorf("scan.replay_pace_ms must be >= 0, got %d", s.ReplayPaceMs)
	}
	if s.HCIDevice != nil && *s.HCIDevice < -1 {
		return fmt.Errorf("scan.hci_device must be >= -1, got %d", *s.HCIDevice)
	}

	// ------------------------------------------------------------
	// SINKS
	// ------------------------------------------------------------

	o := cfg.Sinks.Observer
	if strings.ContainsAny(o.Host, "/ \t") || strings.Contains(o.Host, "://") {
		return fmt.Errorf("sinks.observer.host %q: must be a bare host name or IP", o.Host)
	}
	if o.Port < 0 || o.Port > 65535 {
		return fmt.Errorf("sinks.observer.port %d out of range", o.Port)
	}
	switch strings.ToUpper(o.Method) {
	case "", "GET", "POST":
	default:
		return fmt.Errorf("sinks.observer.method %q: must be GET or POST", o.Method)
	}
	if o.ConnectTimeoutMs < 0 || o.ReadTimeoutMs < 0 {
		return fmt.Errorf("sinks.observer timeouts must be >= 0")
	}

	m := cfg.Sinks.Modbus
	if On(m.Enabled) && m.Endpoint == "" {
		return fmt.Errorf("sinks.modbus is enabled but no endpoint is defined")
	}
	// The whole block must fit in the 16-bit register space.
	if end := uint32(m.BaseSlot)*status.SlotsPerStation + status.SlotsPerStation; end > 1<<16 {
		return fmt.Errorf("sinks.modbus.base_slot %d: status block would end at register %d, past 65535", m.BaseSlot, end-1)
	}
	// station_name sanity (ASCII only)
	for i := 0; i < len(m.StationName); i++ {
		if m.StationName[i] > 0x7F {
			return fmt.Errorf("sinks.modbus.station_name must contain ASCII characters only")
		}
	}
	if m.TimeoutMs < 0 {
		return fmt.Errorf("sinks.modbus.timeout_ms must be >= 0, got %d", m.TimeoutMs)
	}

	return nil
}
