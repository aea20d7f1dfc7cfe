// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.
package permission

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetmind/meetmind/internal/fault"
	"github.com/meetmind/meetmind/pkg/commons"
)

func newTestLogger(t *testing.T) commons.Logger {
	t.Helper()
	logger, err := commons.NewApplicationLogger(commons.Name("test-permission"))
	require.NoError(t, err)
	return logger
}

// fakeProbe scripts the platform's permission behavior.
type fakeProbe struct {
	queryStatus Status
	queryErr    error
	requestErr  error
	watchFeed   func(Status)
	watchErr    error
	cancelled   bool
}

func (p *fakeProbe) Query(context.Context) (Status, error) { return p.queryStatus, p.queryErr }
func (p *fakeProbe) Request(context.Context) error         { return p.requestErr }
func (p *fakeProbe) Watch(onChange func(Status)) (func(), error) {
	if p.watchErr != nil {
		return nil, p.watchErr
	}
	p.watchFeed = onChange
	return func() { p.cancelled = true }, nil
}

func TestQueryFailureDegradesToUnknown(t *testing.T) {
	probe := &fakeProbe{queryErr: errors.New("probing unsupported")}
	gate := NewGate(newTestLogger(t), probe)

	assert.Equal(t, StatusUnknown, gate.Query(context.Background()))
	assert.False(t, gate.Granted())
}

func TestRequestGrants(t *testing.T) {
	probe := &fakeProbe{queryStatus: StatusPrompt}
	gate := NewGate(newTestLogger(t), probe)

	require.NoError(t, gate.Request(context.Background()))
	assert.True(t, gate.Granted())
}

func TestRequestShortCircuitsWhenAlreadyGranted(t *testing.T) {
	probe := &fakeProbe{queryStatus: StatusGranted, requestErr: errors.New("should not be called")}
	gate := NewGate(newTestLogger(t), probe)

	assert.NoError(t, gate.Request(context.Background()))
}

func TestRequestDeniedByProbe(t *testing.T) {
	probe := &fakeProbe{queryStatus: StatusDenied}
	gate := NewGate(newTestLogger(t), probe)

	err := gate.Request(context.Background())
	assert.ErrorIs(t, err, fault.ErrPermissionDenied)
	assert.Equal(t, StatusDenied, gate.Status())
}

func TestRequestFailureMapsToDenied(t *testing.T) {
	probe := &fakeProbe{queryStatus: StatusPrompt, requestErr: fault.ErrDeviceBusy}
	gate := NewGate(newTestLogger(t), probe)

	err := gate.Request(context.Background())
	assert.ErrorIs(t, err, fault.ErrDeviceBusy)
	assert.Equal(t, StatusDenied, gate.Status())
}

func TestWatchFansOutToObservers(t *testing.T) {
	probe := &fakeProbe{queryStatus: StatusPrompt}
	gate := NewGate(newTestLogger(t), probe)

	var seen []Status
	gate.OnChange(func(s Status) { seen = append(seen, s) })
	gate.StartWatching()
	require.NotNil(t, probe.watchFeed)

	probe.watchFeed(StatusGranted)
	probe.watchFeed(StatusGranted) // same value, no duplicate event
	probe.watchFeed(StatusDenied)

	assert.Equal(t, []Status{StatusGranted, StatusDenied}, seen)

	gate.StopWatching()
	assert.True(t, probe.cancelled)
}

func TestWatchUnsupportedIsQuiet(t *testing.T) {
	probe := &fakeProbe{watchErr: ErrWatchUnsupported}
	gate := NewGate(newTestLogger(t), probe)

	gate.StartWatching()
	gate.StopWatching()
	assert.Equal(t, StatusUnknown, gate.Status())
}

func TestReasonMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"denied", fault.ErrPermissionDenied, "denied"},
		{"revoked", fault.ErrPermissionRevoked, "denied"},
		{"no device", fault.ErrNoDevice, "No microphone found"},
		{"busy", fault.ErrDeviceBusy, "already in use"},
		{"generic", errors.New("weird platform"), "Check your audio settings"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, Reason(tt.err), tt.want)
		})
	}
}
