// Package broadcast provides a process-local publish/subscribe channel for
// named messages. Delivery is fire-and-forget: a subscriber that is not
// keeping up misses messages rather than stalling the publisher.
package broadcast

import (
	crand "crypto/rand"
	"encoding/hex"
	"sync"
)

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 8

// Message is one named event with an opaque payload.
type Message struct {
	Name    string
	Payload []byte
}

// Bus fans published messages out to every subscriber of the same name.
// An empty subscription name receives every message.
type Bus struct {
	mu     sync.Mutex
	subs   map[string]subscription
	closed bool
}

type subscription struct {
	name string
	ch   chan Message
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string]subscription)}
}

// randomID generates a random subscription ID (8 byte random hex encoded value)
func randomID() string {
	b := make([]byte, 8)
	_, _ = crand.Read(b)
	return hex.EncodeToString(b)
}

// Subscribe registers interest in messages called name. The returned ID is
// used to unsubscribe. The channel is closed on Unsubscribe or Close.
func (b *Bus) Subscribe(name string) (string, <-chan Message) {
	id := randomID()
	ch := make(chan Message, DefaultBuffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return id, ch
	}
	b.subs[id] = subscription{name: name, ch: ch}
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.subs[id]; ok {
		close(s.ch)
		delete(b.subs, id)
	}
}

// Publish delivers msg to matching subscribers without blocking.
// It returns how many subscribers received the message and how many dropped it.
func (b *Bus) Publish(msg Message) (delivered, dropped int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, s := range b.subs {
		if s.name != "" && s.name != msg.Name {
			continue
		}
		select {
		case s.ch <- msg:
			delivered++
		default:
			dropped++
		}
	}
	return delivered, dropped
}

// Close closes all subscriber channels. Later publishes are no-ops.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, s := range b.subs {
		close(s.ch)
		delete(b.subs, id)
	}
}
