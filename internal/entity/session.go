// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.
package entity

import (
	"strings"
	"time"

	"github.com/meetmind/meetmind/internal/fault"
)

// RecordingLanguage is the locale-style tag the capture side-channel speaks.
type RecordingLanguage string

// AnalysisLanguage is the two-letter code the analysis pipeline targets.
type AnalysisLanguage string

const (
	RecordingLanguageEnglishUS RecordingLanguage = "en-US"
	RecordingLanguageSwahiliTZ RecordingLanguage = "sw-TZ"

	AnalysisLanguageEnglish AnalysisLanguage = "en"
	AnalysisLanguageSwahili AnalysisLanguage = "sw"
)

// DefaultRecordingLanguage is applied to fresh sessions; the field is sticky
// across resets.
const DefaultRecordingLanguage = RecordingLanguageEnglishUS

// DefaultAnalysisLanguage is the assumed base language of transcripts.
const DefaultAnalysisLanguage = AnalysisLanguageEnglish

func (l RecordingLanguage) Valid() bool {
	return l == RecordingLanguageEnglishUS || l == RecordingLanguageSwahiliTZ
}

func (l AnalysisLanguage) Valid() bool {
	return l == AnalysisLanguageEnglish || l == AnalysisLanguageSwahili
}

// Session is the unit of work for one meeting. A recording cannot start
// without a non-empty name and a set date.
type Session struct {
	MeetingName       string
	MeetingDate       time.Time
	RecordingLanguage RecordingLanguage
	AnalysisLanguage  AnalysisLanguage
}

// NewSession returns a session with defaults: today's date, English
// recording and analysis languages, empty name.
func NewSession() Session {
	return Session{
		MeetingDate:       time.Now(),
		RecordingLanguage: DefaultRecordingLanguage,
		AnalysisLanguage:  DefaultAnalysisLanguage,
	}
}

// Validate checks the recording preconditions. The returned message is
// field-level and user-facing; an invalid session never changes
// ProcessingState.
func (s Session) Validate() error {
	if strings.TrimSpace(s.MeetingName) == "" {
		return fault.ErrMeetingNameRequired
	}
	if s.MeetingDate.IsZero() {
		return fault.ErrMeetingDateRequired
	}
	return nil
}
