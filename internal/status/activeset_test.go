// internal/status/activeset_test.go
package status

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActiveSet_FirstSeenOrderAndDedup(t *testing.T) {
	a := NewActiveSet()
	a.Record("AA:BB")
	a.Record("AA:BB")
	a.Record("CC:DD")
	a.Record("AA:BB")

	at := time.Unix(1700000000, 0)
	got := a.SnapshotAndClear(3, at)

	want := Snapshot{Count: 2, Addresses: []string{"AA:BB", "CC:DD"}, TakenAt: at}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(Snapshot{}, "ID")); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
	assert.NotEmpty(t, got.ID)
}

func TestActiveSet_RecordIdempotent(t *testing.T) {
	a := NewActiveSet()
	assert.True(t, a.Record("AA:BB"))
	assert.False(t, a.Record("AA:BB"))

	s := a.SnapshotAndClear(0, time.Now())
	assert.Equal(t, 1, s.Count)
	assert.Equal(t, []string{"AA:BB"}, s.Addresses)
}

func TestActiveSet_SecondSnapshotEmpty(t *testing.T) {
	a := NewActiveSet()
	a.Record("AA:BB")

	first := a.SnapshotAndClear(3, time.Now())
	second := a.SnapshotAndClear(3, time.Now())

	assert.Equal(t, 1, first.Count)
	assert.Equal(t, 0, second.Count)
	assert.Empty(t, second.Addresses)
	assert.True(t, second.Empty())
	assert.NotEqual(t, first.ID, second.ID)
}

func TestActiveSet_TruncatesNotSamples(t *testing.T) {
	a := NewActiveSet()
	for i := 0; i < 10; i++ {
		a.Record(fmt.Sprintf("dev-%02d", i))
	}

	s := a.SnapshotAndClear(3, time.Now())
	assert.Equal(t, 10, s.Count)
	assert.Equal(t, []string{"dev-00", "dev-01", "dev-02"}, s.Addresses)
}

func TestActiveSet_SnapshotIsIndependentCopy(t *testing.T) {
	a := NewActiveSet()
	a.Record("AA:BB")
	s := a.SnapshotAndClear(0, time.Now())

	a.Record("CC:DD")
	require.Len(t, s.Addresses, 1)
	assert.Equal(t, "AA:BB", s.Addresses[0])
}

// Every recorded address lands in exactly one snapshot while records race
// with snapshots.
func TestActiveSet_ConcurrentRecordExactlyOnce(t *testing.T) {
	a := NewActiveSet()

	const writers = 8
	const perWriter = 2000

	var wg sync.WaitGroup
	stop := make(chan struct{})
	snaps := make(chan Snapshot, 1024)

	var snapWG sync.WaitGroup
	snapWG.Add(1)
	go func() {
		defer snapWG.Done()
		for {
			select {
			case <-stop:
				snaps <- a.SnapshotAndClear(0, time.Now())
				close(snaps)
				return
			default:
				snaps <- a.SnapshotAndClear(0, time.Now())
				time.Sleep(50 * time.Microsecond)
			}
		}
	}()

	counts := make(map[string]int)
	var collectWG sync.WaitGroup
	collectWG.Add(1)
	go func() {
		defer collectWG.Done()
		for s := range snaps {
			assert.Equal(t, s.Count, len(s.Addresses))
			for _, addr := range s.Addresses {
				counts[addr]++
			}
		}
	}()

	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				a.Record(fmt.Sprintf("w%d-%d", w, i))
			}
		}(w)
	}

	wg.Wait()
	close(stop)
	snapWG.Wait()
	collectWG.Wait()

	require.Len(t, counts, writers*perWriter)
	for addr, n := range counts {
		if n != 1 {
			t.Fatalf("address %s appeared in %d snapshots", addr, n)
		}
	}
}
