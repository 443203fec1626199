// internal/proximity/filter.go
package proximity

// DefaultIgnoreThresholdM is the distance at or beyond which observations are dropped.
const DefaultIgnoreThresholdM = 5.0

// Filter is the single gate between raw observations and detections.
// It has no memory and performs no deduplication.
type Filter struct {
	est       Estimator
	threshold float64
}

// NewFilter builds a filter. Observations whose estimated distance is
// >= ignoreThresholdM are discarded.
func NewFilter(est Estimator, ignoreThresholdM float64) *Filter {
	return &Filter{est: est, threshold: ignoreThresholdM}
}

// Threshold returns the configured ignore distance in meters.
func (f *Filter) Threshold() float64 { return f.threshold }

// Accept returns a DetectionEvent when obs is closer than the threshold.
func (f *Filter) Accept(obs Observation) (DetectionEvent, bool) {
	d := f.est.Estimate(obs.RSSI)
	if d >= f.threshold {
		return DetectionEvent{}, false
	}
	return DetectionEvent{
		Address:   obs.Address,
		RSSI:      obs.RSSI,
		DistanceM: d,
	}, true
}
