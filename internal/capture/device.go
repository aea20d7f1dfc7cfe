// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.

// Package capture owns the live recording pipeline: the capture device
// handle, chunk accumulation, the best-effort live-caption side-channel and
// the recording deadline. Platform specifics stay behind CaptureDevice and
// LiveCaptionSource so the pipeline is testable with fakes.
package capture

import "github.com/meetmind/meetmind/internal/entity"

// FormatPreference is the ordered encoding preference handed to the device;
// a device that supports none of these falls back to its platform default.
var FormatPreference = []string{
	"audio/webm;codecs=opus",
	"audio/ogg;codecs=opus",
	"audio/mp4",
}

// CaptureDevice is the live microphone input stream abstraction.
//
// Lifecycle: Open (format negotiation) → Start (chunk delivery begins) →
// Stop (flushes; no chunk callbacks after it returns) → Close (release).
// Close must be idempotent and safe after a failed Open.
type CaptureDevice interface {
	// Open acquires the device and negotiates an encoding from the ordered
	// preference list, falling back to the platform default when none is
	// supported. Returns the negotiated MIME type.
	Open(preferred []string) (string, error)
	// Start begins buffered chunk accumulation. onChunk is called from the
	// device's delivery goroutine with non-empty encoded chunks.
	Start(onChunk func([]byte)) error
	// Stop finalizes the stream, flushing any buffered audio through
	// onChunk before returning.
	Stop() error
	// Close releases the underlying device resources unconditionally.
	Close() error
}

// CaptionHandlers receive live-caption events. OnEnd signals a transient
// disconnect the pipeline may recover from by restarting the source; OnError
// is unrecoverable and aborts the whole capture.
type CaptionHandlers struct {
	OnResult func(text string, final bool)
	OnEnd    func()
	OnError  func(error)
}

// LiveCaptionSource is the best-effort real-time speech-to-text preview,
// independent of the final transcription stage. "No speech detected" is not
// an error and must never reach OnError.
type LiveCaptionSource interface {
	Start(language entity.RecordingLanguage, handlers CaptionHandlers) error
	// Feed pushes captured audio into the recognizer. Errors are advisory;
	// the pipeline drops them.
	Feed(audio []byte) error
	Stop() error
}
