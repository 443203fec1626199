// internal/scanner/types.go
package scanner

import "github.com/tamzrod/beacon-reporter/internal/proximity"

// Callbacks receive the output of a scan source. Both may be called from
// any goroutine, concurrently.
type Callbacks struct {
	OnObservation func(obs proximity.Observation)
	OnScanError   func(err error)
}

func (c Callbacks) observation(obs proximity.Observation) {
	if c.OnObservation != nil {
		c.OnObservation(obs)
	}
}

func (c Callbacks) scanError(err error) {
	if c.OnScanError != nil && err != nil {
		c.OnScanError(err)
	}
}

// Source is a radio (or stand-in) producing raw observations.
// Start on a running source and Stop on a stopped source are no-ops.
type Source interface {
	Start(cb Callbacks) error
	Stop() error
}
