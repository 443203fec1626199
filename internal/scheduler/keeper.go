// internal/scheduler/keeper.go
package scheduler

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// HostKeeper is the daemon's Keeper. A headless host has no wake lock to
// take, so it records the session hold and logs how long it lasted.
type HostKeeper struct {
	now func() time.Time

	mu    sync.Mutex
	since time.Time
	held  bool
}

func NewHostKeeper() *HostKeeper {
	return &HostKeeper{now: time.Now}
}

// Acquire marks the hold. The returned release is safe to call more than once.
func (k *HostKeeper) Acquire() func() {
	k.mu.Lock()
	k.held = true
	k.since = k.now()
	k.mu.Unlock()

	log.Debug("keeper: session hold acquired")

	var once sync.Once
	return func() {
		once.Do(func() {
			k.mu.Lock()
			held := k.now().Sub(k.since)
			k.held = false
			k.mu.Unlock()

			log.WithField("held", held.Round(time.Millisecond)).Debug("keeper: session hold released")
		})
	}
}

// Held reports whether a session currently holds the keeper.
func (k *HostKeeper) Held() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.held
}
