// internal/sink/broadcast.go
package sink

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/tamzrod/beacon-reporter/internal/broadcast"
	"github.com/tamzrod/beacon-reporter/internal/fault"
	"github.com/tamzrod/beacon-reporter/internal/status"
)

// BroadcastSink publishes {"deviceAddresses": [...]} on the process-local bus.
// Fire-and-forget: no subscriber acknowledgment is awaited.
type BroadcastSink struct {
	bus  *broadcast.Bus
	name string
}

func NewBroadcastSink(bus *broadcast.Bus, name string) *BroadcastSink {
	return &BroadcastSink{bus: bus, name: name}
}

func (b *BroadcastSink) Name() string { return "broadcast" }

func (b *BroadcastSink) Deliver(_ context.Context, s status.Snapshot) Result {
	payload, err := status.EncodeJSON(s)
	if err != nil {
		return failed(b.Name(), fault.New(fault.KindRenderFailure, "broadcast encode", err))
	}

	delivered, dropped := b.bus.Publish(broadcast.Message{Name: b.name, Payload: payload})
	if dropped > 0 {
		log.WithFields(log.Fields{
			"message": b.name,
			"dropped": dropped,
		}).Debug("broadcast subscribers not keeping up")
	}
	log.WithFields(log.Fields{
		"message":   b.name,
		"delivered": delivered,
	}).Trace("broadcast published")

	return ok(b.Name())
}
