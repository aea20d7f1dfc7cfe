// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.
package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/meetmind/meetmind/internal/fault"
)

func TestSessionValidate(t *testing.T) {
	sess := NewSession()
	assert.ErrorIs(t, sess.Validate(), fault.ErrMeetingNameRequired)

	sess.MeetingName = "   "
	assert.ErrorIs(t, sess.Validate(), fault.ErrMeetingNameRequired)

	sess.MeetingName = "planning"
	assert.NoError(t, sess.Validate())

	sess.MeetingDate = time.Time{}
	assert.ErrorIs(t, sess.Validate(), fault.ErrMeetingDateRequired)
}

func TestNewSessionDefaults(t *testing.T) {
	sess := NewSession()
	assert.Equal(t, DefaultRecordingLanguage, sess.RecordingLanguage)
	assert.Equal(t, DefaultAnalysisLanguage, sess.AnalysisLanguage)
	assert.False(t, sess.MeetingDate.IsZero())
}

func TestBusyStates(t *testing.T) {
	busy := []ProcessingState{
		StateCheckingPermission, StateRecording, StateStopping, StateTranscribing,
		StateSaving, StateLoadingRecording, StateProcessing, StateGeneratingExport,
	}
	for _, s := range busy {
		assert.True(t, s.Busy(), "state %s", s)
		assert.False(t, s.Terminal(), "state %s", s)
	}

	terminal := []ProcessingState{
		StateIdle, StateDone, StateExportReady, StateError, StatePermissionDenied,
	}
	for _, s := range terminal {
		assert.False(t, s.Busy(), "state %s", s)
		assert.True(t, s.Terminal(), "state %s", s)
	}
}
