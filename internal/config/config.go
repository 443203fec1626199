// internal/config/config.go
package config

type Config struct {
	Log      LogConfig      `yaml:"log"`
	Reporter ReporterConfig `yaml:"reporter"`
	Distance DistanceConfig `yaml:"distance"`
	Scan     ScanConfig     `yaml:"scan"`
	Sinks    SinksConfig    `yaml:"sinks"`
}

// ---- LOG ----

type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// ---- REPORTER ----

type ReporterConfig struct {
	IntervalMs     int `yaml:"interval_ms"`
	MaxAddresses   int `yaml:"max_addresses"`
	WindowWarnSize int `yaml:"window_warn_size"` // 0 disables the warning
}

// ---- DISTANCE MODEL ----

type DistanceConfig struct {
	ReferenceDBm     *float64 `yaml:"reference_dbm"`
	PathLossExponent float64  `yaml:"path_loss_exponent"`
	IgnoreThresholdM float64  `yaml:"ignore_threshold_m"`
}

// ---- SCAN SOURCE ----

const (
	SourceGatt   = "gatt"
	SourceReplay = "replay"
)

type ScanConfig struct {
	Source         string  `yaml:"source"`
	HCIDevice      *int    `yaml:"hci_device"`      // -1 = first available
	ManufacturerID *uint16 `yaml:"manufacturer_id"` // 0 disables the filter
	ReplayPath     string  `yaml:"replay_path"`
	ReplayPaceMs   int     `yaml:"replay_pace_ms"`
	RestartOnError bool    `yaml:"restart_on_error"`
}

// ---- SINKS ----

type SinksConfig struct {
	UI        UISinkConfig        `yaml:"ui"`
	Broadcast BroadcastSinkConfig `yaml:"broadcast"`
	Observer  ObserverSinkConfig  `yaml:"observer"`
	Modbus    ModbusSinkConfig    `yaml:"modbus"`
	History   HistorySinkConfig   `yaml:"history"`
}

type UISinkConfig struct {
	Enabled        *bool `yaml:"enabled"`
	ShowDetections bool  `yaml:"show_detections"` // one line per accepted observation
}

type BroadcastSinkConfig struct {
	Enabled *bool  `yaml:"enabled"`
	Name    string `yaml:"name"`
}

type ObserverSinkConfig struct {
	Enabled          *bool  `yaml:"enabled"`
	Host             string `yaml:"host"`
	Port             int    `yaml:"port"`
	Method           string `yaml:"method"`    // GET | POST
	SendBody         *bool  `yaml:"send_body"` // carry the JSON status payload
	ConnectTimeoutMs int    `yaml:"connect_timeout_ms"`
	ReadTimeoutMs    int    `yaml:"read_timeout_ms"`
}

type ModbusSinkConfig struct {
	Enabled     *bool  `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	UnitID      uint8  `yaml:"unit_id"`
	BaseSlot    uint16 `yaml:"base_slot"`
	StationName string `yaml:"station_name"`
	TimeoutMs   int    `yaml:"timeout_ms"`
}

type HistorySinkConfig struct {
	Enabled *bool  `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// On reports whether an optional toggle is set. Nil means off;
// Normalize replaces nil toggles with their defaults.
func On(b *bool) bool { return b != nil && *b }
