// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.
package flows

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeAudioDataURIRoundTrip(t *testing.T) {
	payload := []byte{0x52, 0x49, 0x46, 0x46, 0x00, 0x01}
	uri := EncodeAudioDataURI("audio/wav", payload)

	mime, data, err := parseAudioDataURI(uri)
	assert.NoError(t, err)
	assert.Equal(t, "audio/wav", mime)
	assert.Equal(t, payload, data)
}

func TestParseAudioDataURIRejectsNonAudio(t *testing.T) {
	uri := "data:image/png;base64,aGVsbG8="
	_, _, err := parseAudioDataURI(uri)
	assert.Error(t, err)
}

func TestParseAudioDataURIRejectsMissingEncoding(t *testing.T) {
	_, _, err := parseAudioDataURI("data:audio/wav,plain-payload")
	assert.Error(t, err)
}

func TestParseAudioDataURIRejectsGarbage(t *testing.T) {
	for _, uri := range []string{"", "audio/wav", "data:audio/wav;base64,%%%"} {
		_, _, err := parseAudioDataURI(uri)
		assert.Error(t, err, "uri %q should not parse", uri)
	}
}
