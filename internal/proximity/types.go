// internal/proximity/types.go
package proximity

// Observation is one raw scan report.
// Ephemeral: consumed by the filter and never stored.
type Observation struct {
	Address string // opaque device address, e.g. "AA:BB:CC:DD:EE:FF"
	RSSI    int    // dBm
}

// DetectionEvent is an observation that passed the distance gate.
type DetectionEvent struct {
	Address   string
	RSSI      int
	DistanceM float64
}
