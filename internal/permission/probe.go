// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.
package permission

import (
	"context"
	"fmt"

	"github.com/gordonklaus/portaudio"

	"github.com/meetmind/meetmind/internal/fault"
)

// DeviceProbe implements Probe against the host audio stack. Desktop
// platforms have no queryable microphone permission registry, so Query can
// only distinguish "hardware present" from "no input device"; the definitive
// answer comes from Request actually opening a stream.
type DeviceProbe struct {
	SampleRate int
	Channels   int
}

func NewDeviceProbe(sampleRate, channels int) *DeviceProbe {
	return &DeviceProbe{SampleRate: sampleRate, Channels: channels}
}

func (p *DeviceProbe) Query(ctx context.Context) (Status, error) {
	if err := portaudio.Initialize(); err != nil {
		return StatusUnknown, fmt.Errorf("initializing audio host: %w", err)
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return StatusUnknown, fmt.Errorf("listing audio devices: %w", err)
	}
	for _, device := range devices {
		if device.MaxInputChannels > 0 {
			// Hardware is there; whether the OS lets us open it is only
			// knowable by trying.
			return StatusPrompt, nil
		}
	}
	return StatusUnknown, fault.ErrNoDevice
}

func (p *DeviceProbe) Request(ctx context.Context) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing audio host: %w", err)
	}
	defer portaudio.Terminate()

	device, err := portaudio.DefaultInputDevice()
	if err != nil {
		return fault.ErrNoDevice
	}

	buffer := make([]int16, 256)
	stream, err := portaudio.OpenDefaultStream(p.Channels, 0, float64(p.SampleRate), len(buffer), buffer)
	if err != nil {
		return fmt.Errorf("%w: opening %q: %v", fault.ErrDeviceBusy, device.Name, err)
	}
	return stream.Close()
}

func (p *DeviceProbe) Watch(onChange func(Status)) (func(), error) {
	return nil, ErrWatchUnsupported
}
