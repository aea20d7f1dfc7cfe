// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.

// Package permission tracks microphone permission state. The platform probe
// sits behind the Probe interface so tests can simulate denial, missing
// hardware and out-of-band revocation.
package permission

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/meetmind/meetmind/internal/fault"
	"github.com/meetmind/meetmind/pkg/commons"
)

// Status is the tri-state permission value: unknown until probed, then
// granted or denied.
type Status int

const (
	StatusUnknown Status = iota
	StatusGranted
	StatusDenied
	// StatusPrompt means the platform would ask the user on the next
	// access attempt.
	StatusPrompt
)

func (s Status) String() string {
	switch s {
	case StatusGranted:
		return "granted"
	case StatusDenied:
		return "denied"
	case StatusPrompt:
		return "prompt"
	default:
		return "unknown"
	}
}

// ErrWatchUnsupported is returned by probes that cannot deliver out-of-band
// permission change notifications.
var ErrWatchUnsupported = errors.New("permission watching not supported")

// Probe is the narrow platform contract for microphone permission.
type Probe interface {
	// Query inspects permission without prompting. A probe failure is
	// tolerated by the gate and treated as unknown.
	Query(ctx context.Context) (Status, error)
	// Request performs the actual access attempt, opening and immediately
	// closing the capture device. A nil return means access is granted.
	Request(ctx context.Context) error
	// Watch subscribes to out-of-band permission changes. The returned
	// function cancels the subscription. Probes without change
	// notifications return ErrWatchUnsupported.
	Watch(onChange func(Status)) (func(), error)
}

// Gate owns the shared tri-state permission value and fans out change
// notifications. It never touches ProcessingState; the controller reads the
// gate's results and transitions accordingly.
type Gate struct {
	logger commons.Logger
	probe  Probe

	mu          sync.Mutex
	status      Status
	observers   []func(Status)
	cancelWatch func()
}

func NewGate(logger commons.Logger, probe Probe) *Gate {
	return &Gate{logger: logger, probe: probe, status: StatusUnknown}
}

// Status returns the last observed permission state.
func (g *Gate) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

// Granted reports whether permission is known-true.
func (g *Gate) Granted() bool { return g.Status() == StatusGranted }

// Query probes the platform without prompting. Probe failures degrade to
// StatusUnknown rather than erroring.
func (g *Gate) Query(ctx context.Context) Status {
	status, err := g.probe.Query(ctx)
	if err != nil {
		g.logger.Warnf("permission query failed, treating as unknown: %v", err)
		status = StatusUnknown
	}
	g.set(status)
	return status
}

// Request performs the access attempt when probing says "ask". It resolves
// the tri-state to granted or denied and returns the failure cause for
// user-facing mapping.
func (g *Gate) Request(ctx context.Context) error {
	switch g.Query(ctx) {
	case StatusGranted:
		return nil
	case StatusDenied:
		g.set(StatusDenied)
		return fault.ErrPermissionDenied
	}

	if err := g.probe.Request(ctx); err != nil {
		g.set(StatusDenied)
		return fmt.Errorf("requesting microphone access: %w", err)
	}
	g.set(StatusGranted)
	return nil
}

// StartWatching subscribes to the platform's permission change feed when
// supported. Platforms without one are fine; the gate just stays passive.
func (g *Gate) StartWatching() {
	cancel, err := g.probe.Watch(func(status Status) {
		g.set(status)
	})
	if err != nil {
		if !errors.Is(err, ErrWatchUnsupported) {
			g.logger.Warnf("permission watch unavailable: %v", err)
		}
		return
	}
	g.mu.Lock()
	g.cancelWatch = cancel
	g.mu.Unlock()
}

// StopWatching cancels the platform subscription, if any.
func (g *Gate) StopWatching() {
	g.mu.Lock()
	cancel := g.cancelWatch
	g.cancelWatch = nil
	g.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// OnChange registers an observer invoked whenever the tri-state changes
// value. Observers run synchronously on the updating goroutine.
func (g *Gate) OnChange(fn func(Status)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.observers = append(g.observers, fn)
}

func (g *Gate) set(status Status) {
	g.mu.Lock()
	if g.status == status {
		g.mu.Unlock()
		return
	}
	g.status = status
	observers := make([]func(Status), len(g.observers))
	copy(observers, g.observers)
	g.mu.Unlock()

	g.logger.Infof("microphone permission changed: %s", status)
	for _, fn := range observers {
		fn(status)
	}
}

// Reason maps a request failure to a specific user-facing explanation, with
// a generic fallback for causes the probe could not identify.
func Reason(err error) string {
	switch {
	case errors.Is(err, fault.ErrPermissionDenied), errors.Is(err, fault.ErrPermissionRevoked):
		return "Microphone access was denied. Enable microphone permissions to record audio."
	case errors.Is(err, fault.ErrNoDevice):
		return "No microphone found. Connect a microphone and try again."
	case errors.Is(err, fault.ErrDeviceBusy):
		return "Microphone is already in use or cannot be accessed. Close other apps using the mic."
	default:
		return "Could not access the microphone. Check your audio settings and try again."
	}
}
