// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.
package capture

import (
	"sync"
	"sync/atomic"
	"time"
)

// deadline is the single recording-deadline abstraction: one wall-clock
// ceiling that fires onExpire exactly once, plus a periodic recomputation of
// the remaining seconds for display. Stop clears both timers and is safe to
// call from any stop path any number of times.
type deadline struct {
	clock     func() time.Time
	startedAt time.Time
	limit     time.Duration

	remaining atomic.Int64

	mu      sync.Mutex
	timer   *time.Timer
	ticker  *time.Ticker
	done    chan struct{}
	stopped bool
}

func newDeadline(limit time.Duration, clock func() time.Time, onExpire func()) *deadline {
	d := &deadline{
		clock:     clock,
		startedAt: clock(),
		limit:     limit,
		done:      make(chan struct{}),
	}
	d.remaining.Store(int64(limit / time.Second))
	d.timer = time.AfterFunc(limit, onExpire)
	d.ticker = time.NewTicker(time.Second)
	go d.tickLoop()
	return d
}

func (d *deadline) tickLoop() {
	for {
		select {
		case <-d.done:
			return
		case <-d.ticker.C:
			left := d.limit - d.clock().Sub(d.startedAt)
			if left < 0 {
				left = 0
			}
			d.remaining.Store(int64((left + time.Second/2) / time.Second))
		}
	}
}

// RemainingSeconds reports the seconds left before the ceiling forces a stop.
func (d *deadline) RemainingSeconds() int {
	return int(d.remaining.Load())
}

// Stop cancels the ceiling and the display ticker. Idempotent.
func (d *deadline) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.stopped = true
	d.timer.Stop()
	d.ticker.Stop()
	close(d.done)
}
