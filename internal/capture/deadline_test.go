// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.
package capture

import (
	"sync"
	"testing"
	"time"
)

func TestDeadlineFiresOnce(t *testing.T) {
	var mu sync.Mutex
	fired := 0
	d := newDeadline(20*time.Millisecond, time.Now, func() {
		mu.Lock()
		fired++
		mu.Unlock()
	})
	defer d.Stop()

	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if fired != 1 {
		t.Fatalf("expected exactly one expiry, got %d", fired)
	}
}

func TestDeadlineStopPreventsExpiry(t *testing.T) {
	fired := make(chan struct{}, 1)
	d := newDeadline(30*time.Millisecond, time.Now, func() { fired <- struct{}{} })
	d.Stop()

	select {
	case <-fired:
		t.Fatalf("expiry fired after stop")
	case <-time.After(80 * time.Millisecond):
	}
}

func TestDeadlineStopIsIdempotent(t *testing.T) {
	d := newDeadline(time.Minute, time.Now, func() {})
	d.Stop()
	d.Stop()
}

func TestDeadlineInitialRemaining(t *testing.T) {
	d := newDeadline(10*time.Minute, time.Now, func() {})
	defer d.Stop()
	if got := d.RemainingSeconds(); got != 600 {
		t.Fatalf("expected 600 seconds remaining, got %d", got)
	}
}
