// internal/config/validate_test.go
package config

import "testing"

func boolPtr(b bool) *bool { return &b }

// ---- tests ----

func TestValidate_EmptyConfigAccepted(t *testing.T) {
	if err := Validate(&Config{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_NilRejected(t *testing.T) {
	if err := Validate(nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestValidate_Rejects(t *testing.T) {
	hci := -2

	cases := map[string]Config{
		"negative interval":   {Reporter: ReporterConfig{IntervalMs: -1}},
		"negative max":        {Reporter: ReporterConfig{MaxAddresses: -1}},
		"negative warn size":  {Reporter: ReporterConfig{WindowWarnSize: -5}},
		"negative exponent":   {Distance: DistanceConfig{PathLossExponent: -2}},
		"negative threshold":  {Distance: DistanceConfig{IgnoreThresholdM: -1}},
		"unknown source":      {Scan: ScanConfig{Source: "usb"}},
		"replay without path": {Scan: ScanConfig{Source: SourceReplay}},
		"bad hci device":      {Scan: ScanConfig{HCIDevice: &hci}},
		"host with scheme":    {Sinks: SinksConfig{Observer: ObserverSinkConfig{Host: "http://10.0.0.1"}}},
		"host with path":      {Sinks: SinksConfig{Observer: ObserverSinkConfig{Host: "10.0.0.1/x"}}},
		"port out of range":   {Sinks: SinksConfig{Observer: ObserverSinkConfig{Port: 70000}}},
		"bad method":          {Sinks: SinksConfig{Observer: ObserverSinkConfig{Method: "PUT"}}},
		"modbus no endpoint":  {Sinks: SinksConfig{Modbus: ModbusSinkConfig{Enabled: boolPtr(true)}}},
		"station not ascii":   {Sinks: SinksConfig{Modbus: ModbusSinkConfig{StationName: "hallé"}}},
		"base slot too high":  {Sinks: SinksConfig{Modbus: ModbusSinkConfig{BaseSlot: 3276}}},
		"bad log level":       {Log: LogConfig{Level: "trace"}},
		"bad log format":      {Log: LogConfig{Format: "xml"}},
	}

	for name, cfg := range cases {
		cfg := cfg
		t.Run(name, func(t *testing.T) {
			if err := Validate(&cfg); err == nil {
				t.Fatalf("expected error, got nil")
			}
		})
	}
}

func TestValidate_DoesNotMutate(t *testing.T) {
	cfg := &Config{Sinks: SinksConfig{Observer: ObserverSinkConfig{Method: "post"}}}
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Sinks.Observer.Method != "post" || cfg.Sinks.Observer.Enabled != nil {
		t.Fatalf("Validate mutated config: %+v", cfg.Sinks.Observer)
	}
}

func TestValidate_LastStationBlockFits(t *testing.T) {
	// 3275*20 .. 3275*20+19 = 65500..65519
	c := &Config{Sinks: SinksConfig{Modbus: ModbusSinkConfig{
		Enabled:  boolPtr(true),
		Endpoint: "127.0.0.1:502",
		BaseSlot: 3275,
	}}}
	if err := Validate(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
