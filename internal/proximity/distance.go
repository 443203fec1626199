// internal/proximity/distance.go
package proximity

import "math"

// Default calibration constants (BlueCharm iBeacon class devices).
const (
	DefaultReferenceDBm     = -65.0
	DefaultPathLossExponent = 2.0
)

// Estimator converts RSSI to an estimated distance using the
// log-distance path loss model:
//
//	d = 10 ^ ((ReferenceDBm - rssi) / (10 * PathLossExponent))
//
// ReferenceDBm is the RSSI measured at 1 m. Both constants are device-specific.
type Estimator struct {
	ReferenceDBm     float64
	PathLossExponent float64
}

// DefaultEstimator returns an Estimator with the default constants.
func DefaultEstimator() Estimator {
	return Estimator{
		ReferenceDBm:     DefaultReferenceDBm,
		PathLossExponent: DefaultPathLossExponent,
	}
}

// Estimate returns the estimated distance in meters.
// Pure. No error conditions.
func (e Estimator) Estimate(rssi int) float64 {
	return math.Pow(10, (e.ReferenceDBm-float64(rssi))/(10*e.PathLossExponent))
}
