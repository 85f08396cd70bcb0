// File: process/loop.go
// Author: momentics <momentics@gmail.com>
//
// A single-goroutine, channel-driven tick loop matching the cooperative
// shape spec.md §5 requires: one goroutine runs Run() with a quit/stopped
// channel pair, ticking at a fixed cadence while the caller's step function
// does all the work. No ring-buffered batching or spin-wait backoff, since
// the generic reactor that would feed this loop events is out of scope
// (spec.md §1).

package process

import "time"

// Loop runs one step function repeatedly at tickInterval until Stop is
// called. step always runs on the loop's own goroutine (spec.md §5, §9);
// state that other goroutines also touch (WorkerContext's connection maps,
// tunnel.Dispatcher mailboxes) carries its own lock.
type Loop struct {
	tickInterval time.Duration
	quit         chan struct{}
	stopped      chan struct{}
}

// NewLoop builds a loop with the given tick cadence.
func NewLoop(tickInterval time.Duration) *Loop {
	return &Loop{
		tickInterval: tickInterval,
		quit:         make(chan struct{}),
		stopped:      make(chan struct{}),
	}
}

// Run blocks, invoking step once per tick, until Stop is called.
func (l *Loop) Run(step func(now time.Time)) {
	ticker := time.NewTicker(l.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-l.quit:
			close(l.stopped)
			return
		case now := <-ticker.C:
			step(now)
		}
	}
}

// Stop signals the loop to exit and waits for it to do so.
func (l *Loop) Stop() {
	close(l.quit)
	<-l.stopped
}
