package kiosk

import (
	"sync"
	"time"
)

// loopTimer is the session timer. Expirations are posted to the event
// loop as the generation they were started with; the machine drops stale
// generations.
type loopTimer struct {
	ticks chan<- uint64
	done  <-chan struct{}

	mu sync.Mutex
	t  *time.Timer
}

func newLoopTimer(ticks chan<- uint64, done <-chan struct{}) *loopTimer {
	return &loopTimer{ticks: ticks, done: done}
}

// Start replaces any pending expiration.
func (lt *loopTimer) Start(d time.Duration, gen uint64) {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	if lt.t != nil {
		lt.t.Stop()
	}
	lt.t = time.AfterFunc(d, func() {
		select {
		case lt.ticks <- gen:
		case <-lt.done:
		}
	})
}

// Stop cancels a pending expiration. A tick already posted is left for the
// machine to reject as stale.
func (lt *loopTimer) Stop() {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	if lt.t != nil {
		lt.t.Stop()
		lt.t = nil
	}
}
