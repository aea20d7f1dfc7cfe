// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.
package capture

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/meetmind/meetmind/internal/fault"
	"github.com/meetmind/meetmind/pkg/commons"
)

const defaultFlushInterval = time.Second

// PortAudioDevice captures LINEAR16 mono/stereo PCM from the default host
// input device. It only speaks raw PCM, so format negotiation always falls
// back to the WAV platform default regardless of the preference list.
type PortAudioDevice struct {
	logger        commons.Logger
	sampleRate    int
	channels      int
	flushInterval time.Duration

	mu          sync.Mutex
	stream      *portaudio.Stream
	pending     []byte
	onChunk     func([]byte)
	initialized bool
	started     bool
	closed      bool
	flushDone   chan struct{}
}

func NewPortAudioDevice(logger commons.Logger, sampleRate, channels int) *PortAudioDevice {
	return &PortAudioDevice{
		logger:        logger,
		sampleRate:    sampleRate,
		channels:      channels,
		flushInterval: defaultFlushInterval,
	}
}

func (d *PortAudioDevice) Open(preferred []string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := portaudio.Initialize(); err != nil {
		return "", fmt.Errorf("%w: initializing audio host: %v", fault.ErrDeviceBusy, err)
	}
	d.initialized = true

	if _, err := portaudio.DefaultInputDevice(); err != nil {
		return "", fault.ErrNoDevice
	}

	for _, mime := range preferred {
		if mime == MimeTypeWAV {
			break
		}
		d.logger.Debugf("capture format %q not supported by host device, trying next", mime)
	}

	stream, err := portaudio.OpenDefaultStream(d.channels, 0, float64(d.sampleRate), 0, d.record)
	if err != nil {
		return "", fmt.Errorf("%w: opening input stream: %v", fault.ErrDeviceBusy, err)
	}
	d.stream = stream
	d.logger.Infof("capture device open: %d Hz, %d channel(s), %s", d.sampleRate, d.channels, MimeTypeWAV)
	return MimeTypeWAV, nil
}

// record is the portaudio delivery callback; it must not block.
func (d *PortAudioDevice) record(in []int16) {
	buf := make([]byte, len(in)*2)
	for i, sample := range in {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(sample))
	}
	d.mu.Lock()
	d.pending = append(d.pending, buf...)
	d.mu.Unlock()
}

func (d *PortAudioDevice) Start(onChunk func([]byte)) error {
	d.mu.Lock()
	if d.stream == nil {
		d.mu.Unlock()
		return fmt.Errorf("capture device is not open")
	}
	if d.started {
		d.mu.Unlock()
		return fmt.Errorf("capture device already started")
	}
	d.onChunk = onChunk
	d.started = true
	d.flushDone = make(chan struct{})
	stream := d.stream
	d.mu.Unlock()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("%w: starting input stream: %v", fault.ErrDeviceBusy, err)
	}
	go d.flushLoop()
	return nil
}

func (d *PortAudioDevice) flushLoop() {
	ticker := time.NewTicker(d.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-d.flushDone:
			return
		case <-ticker.C:
			d.flush()
		}
	}
}

func (d *PortAudioDevice) flush() {
	d.mu.Lock()
	chunk := d.pending
	d.pending = nil
	onChunk := d.onChunk
	d.mu.Unlock()
	if len(chunk) > 0 && onChunk != nil {
		d.logger.Debugf("flushing %.2fs of audio (%d bytes)",
			PCMSeconds(len(chunk), d.sampleRate, d.channels), len(chunk))
		onChunk(chunk)
	}
}

func (d *PortAudioDevice) Stop() error {
	d.mu.Lock()
	if !d.started {
		d.mu.Unlock()
		return nil
	}
	d.started = false
	close(d.flushDone)
	stream := d.stream
	d.mu.Unlock()

	var stopErr error
	if stream != nil {
		stopErr = stream.Stop()
	}
	d.flush()
	return stopErr
}

func (d *PortAudioDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	var err error
	if d.stream != nil {
		err = d.stream.Close()
		d.stream = nil
	}
	if d.initialized {
		portaudio.Terminate()
		d.initialized = false
	}
	return err
}
