// internal/sink/types.go
package sink

import (
	"context"

	"github.com/tamzrod/beacon-reporter/internal/fault"
	"github.com/tamzrod/beacon-reporter/internal/status"
)

// Sink is the delivery-only contract for one reporting consumer.
// It receives a snapshot and delivers it. Failures are returned as a Result,
// never as a panic or error past the sink boundary.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, s status.Snapshot) Result
}

// Result is the outcome of one delivery. Logged and discarded.
type Result struct {
	Sink    string
	Success bool
	Kind    fault.Kind
	Err     error
}

func ok(name string) Result {
	return Result{Sink: name, Success: true}
}

func failed(name string, err error) Result {
	return Result{Sink: name, Kind: fault.Classify(err), Err: err}
}
