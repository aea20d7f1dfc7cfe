// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.
package transcribe

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetmind/meetmind/internal/entity"
	"github.com/meetmind/meetmind/internal/fault"
	"github.com/meetmind/meetmind/internal/flows"
	"github.com/meetmind/meetmind/pkg/commons"
)

func newTestLogger(t *testing.T) commons.Logger {
	t.Helper()
	logger, err := commons.NewApplicationLogger(commons.Name("test-transcribe"))
	require.NoError(t, err)
	return logger
}

// fakeIntelligence implements flows.Intelligence for stage tests. Only
// Transcribe is exercised here.
type fakeIntelligence struct {
	mu         sync.Mutex
	calls      int
	transcript string
	err        error
	block      chan struct{}
}

func (f *fakeIntelligence) Transcribe(ctx context.Context, audioDataURI string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	return f.transcript, f.err
}

func (f *fakeIntelligence) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeIntelligence) Translate(context.Context, string, entity.AnalysisLanguage) (string, error) {
	return "", nil
}
func (f *fakeIntelligence) AnalyzeSentiment(context.Context, string) (*entity.SentimentResult, error) {
	return nil, nil
}
func (f *fakeIntelligence) DetectTopics(context.Context, string) ([]string, error) { return nil, nil }
func (f *fakeIntelligence) ExtractKeyPoints(context.Context, string) (*entity.KeyPoints, error) {
	return nil, nil
}
func (f *fakeIntelligence) GenerateExportContent(context.Context, flows.ExportContentInput) (string, error) {
	return "", nil
}

func artifact() entity.AudioArtifact {
	return entity.AudioArtifact{Data: []byte{1, 2, 3}, MimeType: "audio/wav", DurationSeconds: 1}
}

func TestRunReturnsTranscript(t *testing.T) {
	ai := &fakeIntelligence{transcript: "hello team"}
	stage := NewStage(newTestLogger(t), ai)

	text, err := stage.Run(context.Background(), artifact(), "test")
	require.NoError(t, err)
	assert.Equal(t, "hello team", text)
	assert.Equal(t, 1, ai.callCount())
}

func TestRunEmptyArtifactNeverCallsCollaborator(t *testing.T) {
	ai := &fakeIntelligence{transcript: "should not be seen"}
	stage := NewStage(newTestLogger(t), ai)

	_, err := stage.Run(context.Background(), entity.AudioArtifact{}, "test")
	assert.ErrorIs(t, err, fault.ErrEmptyAudio)
	assert.Equal(t, 0, ai.callCount())
}

func TestRunSingleFlight(t *testing.T) {
	ai := &fakeIntelligence{transcript: "slow", block: make(chan struct{})}
	stage := NewStage(newTestLogger(t), ai)

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		_, err := stage.Run(context.Background(), artifact(), "first")
		assert.NoError(t, err)
	}()

	// Wait for the first run to reach the collaborator, then race a second.
	for ai.callCount() == 0 {
		time.Sleep(time.Millisecond)
	}
	_, err := stage.Run(context.Background(), artifact(), "second")
	assert.ErrorIs(t, err, ErrInFlight)

	close(ai.block)
	<-firstDone
	assert.Equal(t, 1, ai.callCount())
}

func TestRunRejectsBlankCollaboratorOutput(t *testing.T) {
	for _, blank := range []string{"", "   \n\t"} {
		ai := &fakeIntelligence{transcript: blank}
		stage := NewStage(newTestLogger(t), ai)

		text, err := stage.Run(context.Background(), artifact(), "blank")
		assert.ErrorIs(t, err, fault.ErrEmptyTranscript, "transcript %q", blank)
		assert.Empty(t, text)
	}
}

func TestRunDistinguishesEmptyResultFromCallFailure(t *testing.T) {
	empty := &fakeIntelligence{err: fault.ErrEmptyTranscript}
	stage := NewStage(newTestLogger(t), empty)
	_, err := stage.Run(context.Background(), artifact(), "empty")
	assert.ErrorIs(t, err, fault.ErrEmptyTranscript)

	boom := &fakeIntelligence{err: errors.New("upstream 500")}
	stage = NewStage(newTestLogger(t), boom)
	_, err = stage.Run(context.Background(), artifact(), "failed")
	require.Error(t, err)
	assert.NotErrorIs(t, err, fault.ErrEmptyTranscript)
	assert.Contains(t, err.Error(), "call failed")
}
