// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.

// Package transcribe converts finished audio artifacts into plain text
// through the external transcription flow.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/meetmind/meetmind/internal/entity"
	"github.com/meetmind/meetmind/internal/fault"
	"github.com/meetmind/meetmind/internal/flows"
	"github.com/meetmind/meetmind/pkg/commons"
)

// ErrInFlight marks a Run attempted while another is in progress. The
// second call is a no-op: callers log and drop it rather than queueing or
// surfacing a failure.
var ErrInFlight = errors.New("transcription already in progress")

// Stage is the single-flight transcription stage. One instance admits one
// Run at a time; concurrent attempts are rejected with ErrInFlight.
type Stage struct {
	logger   commons.Logger
	ai       flows.Intelligence
	inFlight atomic.Bool
}

func NewStage(logger commons.Logger, ai flows.Intelligence) *Stage {
	return &Stage{logger: logger, ai: ai}
}

// Run transcribes one artifact. An empty artifact is a terminal data error
// and never reaches the external collaborator. sourceLabel is only used for
// logging.
func (s *Stage) Run(ctx context.Context, artifact entity.AudioArtifact, sourceLabel string) (string, error) {
	if artifact.Empty() {
		return "", fault.ErrEmptyAudio
	}

	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Warnf("transcription requested while one is running, dropping (source=%q)", sourceLabel)
		return "", ErrInFlight
	}
	defer s.inFlight.Store(false)

	s.logger.Infof("transcribing %d bytes of %s (source=%q)", len(artifact.Data), artifact.MimeType, sourceLabel)

	dataURI := flows.EncodeAudioDataURI(artifact.MimeType, artifact.Data)
	text, err := s.ai.Transcribe(ctx, dataURI)
	if err != nil {
		// Empty output and outright call failure surface as distinct causes.
		if errors.Is(err, fault.ErrEmptyTranscript) {
			return "", err
		}
		return "", fmt.Errorf("transcription call failed: %w", err)
	}
	// Collaborators are not trusted to enforce this themselves; a blank
	// transcript must never reach the controller as a success.
	if strings.TrimSpace(text) == "" {
		return "", fault.ErrEmptyTranscript
	}
	return text, nil
}
