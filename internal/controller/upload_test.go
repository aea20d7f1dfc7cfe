// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.
package controller

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNameFromFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"team-sync.wav", "team sync"},
		{"board_review_notes.mp3", "board review notes"},
		{"/tmp/uploads/kickoff.ogg", "kickoff"},
		{"__--__.wav", "Uploaded Recording"},
		{"", "Uploaded Recording"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, nameFromFilename(tt.in), "filename %q", tt.in)
	}
}

func TestDateFromFilename(t *testing.T) {
	now := time.Date(2025, 8, 30, 10, 0, 0, 0, time.UTC)

	want := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{
		"standup_2025-03-10.wav",
		"standup_10-03-2025.wav",
		"standup 2025/03/10.wav",
		"standup 10/03/2025.wav",
		"standup_10-03-25.wav",
		"standup 10/03/25.wav",
	} {
		assert.Equal(t, want, dateFromFilename(in, now), "filename %q", in)
	}

	assert.Equal(t, now, dateFromFilename("standup.wav", now))
	assert.Equal(t, now, dateFromFilename("standup_2025-99-99.wav", now))
}
