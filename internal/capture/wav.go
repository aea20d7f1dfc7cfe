// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.
package capture

import (
	"bytes"
	"fmt"

	wav "github.com/youpy/go-wav"
)

const (
	// MimeTypeWAV is the platform-default container produced by the
	// portaudio device. Raw LINEAR16 chunks are wrapped on finalize.
	MimeTypeWAV = "audio/wav"

	bytesPerSample = 2 // LINEAR16
	bitsPerSample  = 16

	// riffHeaderLen is the smallest well-formed WAV: RIFF chunk descriptor,
	// fmt chunk and an empty data chunk.
	riffHeaderLen = 44
)

// EncodeWAV wraps little-endian LINEAR16 PCM in a WAV container.
func EncodeWAV(pcm []byte, sampleRate, channels int) ([]byte, error) {
	if len(pcm) == 0 {
		return nil, fmt.Errorf("no pcm data to encode")
	}
	numSamples := uint32(len(pcm) / bytesPerSample / channels)
	var buf bytes.Buffer
	writer := wav.NewWriter(&buf, numSamples, uint16(channels), uint32(sampleRate), bitsPerSample)
	if _, err := writer.Write(pcm); err != nil {
		return nil, fmt.Errorf("writing wav samples: %w", err)
	}
	return buf.Bytes(), nil
}

// WAVDuration reads the playback duration of a WAV payload in seconds.
// Returns an error for payloads that do not parse as WAV. The underlying
// RIFF reader panics on truncated chunks, so the parse is fenced: a header
// check rejects obvious garbage up front and a recover converts anything
// that slips past it into an error.
func WAVDuration(data []byte) (seconds float64, err error) {
	if len(data) < riffHeaderLen || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return 0, fmt.Errorf("payload is not a wav container")
	}
	defer func() {
		if r := recover(); r != nil {
			seconds = 0
			err = fmt.Errorf("malformed wav payload: %v", r)
		}
	}()
	reader := wav.NewReader(bytes.NewReader(data))
	duration, derr := reader.Duration()
	if derr != nil {
		return 0, fmt.Errorf("reading wav duration: %w", derr)
	}
	return duration.Seconds(), nil
}

// PCMSeconds converts a LINEAR16 byte count to seconds at the given rate.
func PCMSeconds(byteLen, sampleRate, channels int) float64 {
	bps := sampleRate * channels * bytesPerSample
	if bps == 0 {
		return 0
	}
	return float64(byteLen) / float64(bps)
}
