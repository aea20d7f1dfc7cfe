// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.

// Package fault carries the error taxonomy shared by the capture, storage
// and analysis components. Callers classify with errors.Is against the
// sentinels or with Kind, and wrap causes with fmt.Errorf("...: %w", err).
package fault

import "errors"

// Kind buckets an error for state-transition decisions.
type Kind int

const (
	KindUnknown Kind = iota
	// KindPermission: microphone access denied, unknown or revoked.
	KindPermission
	// KindDevice: capture hardware missing, busy or format negotiation failed.
	KindDevice
	// KindData: empty audio, empty transcript or empty AI output.
	KindData
	// KindExternal: an AI or storage call failed outright.
	KindExternal
	// KindValidation: missing or malformed user input; never moves ProcessingState.
	KindValidation
)

// Permission failures.
var (
	ErrPermissionDenied  = errors.New("microphone access denied")
	ErrPermissionRevoked = errors.New("microphone access revoked")
	ErrPermissionUnknown = errors.New("microphone permission state unknown")
)

// Device failures.
var (
	ErrNoDevice           = errors.New("no capture device found")
	ErrDeviceBusy         = errors.New("capture device is busy or unreadable")
	ErrFormatUnsupported  = errors.New("no supported capture format")
	ErrCaptionUnsupported = errors.New("live captioning not available")
)

// Data failures.
var (
	ErrEmptyAudio      = errors.New("no audio data was captured")
	ErrEmptyTranscript = errors.New("transcription result was empty")
	ErrEmptyResult     = errors.New("model returned an empty result")
)

// Validation failures.
var (
	ErrMeetingNameRequired = errors.New("meeting name is required")
	ErrMeetingDateRequired = errors.New("meeting date is required")
	ErrNotAudio            = errors.New("file is not an audio file")
	ErrNoTranscript        = errors.New("no transcript available")
	ErrUnknownLanguage     = errors.New("language is not supported")
)

// Operational guards.
var (
	ErrBusy     = errors.New("another operation is already in progress")
	ErrNotFound = errors.New("recording not found")
)

// KindOf reports the taxonomy bucket of err. Unwrapped/foreign errors are
// KindExternal when non-nil.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrPermissionDenied),
		errors.Is(err, ErrPermissionRevoked),
		errors.Is(err, ErrPermissionUnknown):
		return KindPermission
	case errors.Is(err, ErrNoDevice),
		errors.Is(err, ErrDeviceBusy),
		errors.Is(err, ErrFormatUnsupported),
		errors.Is(err, ErrCaptionUnsupported):
		return KindDevice
	case errors.Is(err, ErrEmptyAudio),
		errors.Is(err, ErrEmptyTranscript),
		errors.Is(err, ErrEmptyResult):
		return KindData
	case errors.Is(err, ErrMeetingNameRequired),
		errors.Is(err, ErrMeetingDateRequired),
		errors.Is(err, ErrNotAudio),
		errors.Is(err, ErrNoTranscript),
		errors.Is(err, ErrUnknownLanguage):
		return KindValidation
	default:
		return KindExternal
	}
}
