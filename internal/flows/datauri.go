// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.
package flows

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// EncodeAudioDataURI renders an audio payload as a base64 data URI, the
// transport form every transcription call expects.
func EncodeAudioDataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// parseAudioDataURI splits a data URI back into MIME type and bytes. Only
// base64-encoded audio/* URIs are recognizable audio.
func parseAudioDataURI(uri string) (string, []byte, error) {
	if !strings.HasPrefix(uri, "data:audio/") {
		return "", nil, fmt.Errorf("data URI does not encode audio (got prefix %q)", head(uri, 16))
	}
	rest := strings.TrimPrefix(uri, "data:")
	meta, payload, found := strings.Cut(rest, ",")
	if !found {
		return "", nil, fmt.Errorf("malformed data URI: missing payload separator")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return "", nil, fmt.Errorf("malformed data URI: expected base64 encoding, got %q", meta)
	}
	mimeType := strings.TrimSuffix(meta, ";base64")

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decoding data URI payload: %w", err)
	}
	return mimeType, data, nil
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
