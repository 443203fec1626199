package broadcast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_NamedDelivery(t *testing.T) {
	b := NewBus()
	_, status := b.Subscribe("BEACON_STATUS")
	_, other := b.Subscribe("OTHER")
	_, all := b.Subscribe("")

	delivered, dropped := b.Publish(Message{Name: "BEACON_STATUS", Payload: []byte("x")})
	assert.Equal(t, 2, delivered)
	assert.Equal(t, 0, dropped)

	require.Len(t, status, 1)
	msg := <-status
	assert.Equal(t, "x", string(msg.Payload))
	assert.Len(t, all, 1)
	assert.Len(t, other, 0)
}

func TestBus_SlowSubscriberDrops(t *testing.T) {
	b := NewBus()
	_, ch := b.Subscribe("S")

	for i := 0; i < DefaultBuffer; i++ {
		d, _ := b.Publish(Message{Name: "S"})
		require.Equal(t, 1, d)
	}
	d, dropped := b.Publish(Message{Name: "S"})
	assert.Equal(t, 0, d)
	assert.Equal(t, 1, dropped)
	assert.Len(t, ch, DefaultBuffer)
}

func TestBus_UnsubscribeClosesChannel(t *testing.T) {
	b := NewBus()
	id, ch := b.Subscribe("S")
	b.Unsubscribe(id)
	b.Unsubscribe(id)

	_, ok := <-ch
	assert.False(t, ok)

	d, _ := b.Publish(Message{Name: "S"})
	assert.Equal(t, 0, d)
}

func TestBus_Close(t *testing.T) {
	b := NewBus()
	_, ch := b.Subscribe("S")
	b.Close()
	b.Close()

	_, ok := <-ch
	assert.False(t, ok)

	_, late := b.Subscribe("S")
	_, ok = <-late
	assert.False(t, ok)
}
