// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.
package analysis

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetmind/meetmind/internal/entity"
	"github.com/meetmind/meetmind/internal/fault"
	"github.com/meetmind/meetmind/internal/flows"
	"github.com/meetmind/meetmind/pkg/commons"
)

func newTestLogger(t *testing.T) commons.Logger {
	t.Helper()
	logger, err := commons.NewApplicationLogger(commons.Name("test-analysis"))
	require.NoError(t, err)
	return logger
}

// scriptedIntelligence counts calls per flow and fails where told to.
type scriptedIntelligence struct {
	mu    sync.Mutex
	calls map[string]int

	translation  string
	translateErr error
	sentimentErr error
	topicsErr    error
	keyPointsErr error
}

func newScripted() *scriptedIntelligence {
	return &scriptedIntelligence{calls: map[string]int{}, translation: "tafsiri"}
}

func (s *scriptedIntelligence) record(flow string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[flow]++
}

func (s *scriptedIntelligence) count(flow string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[flow]
}

func (s *scriptedIntelligence) Transcribe(context.Context, string) (string, error) {
	s.record("transcribe")
	return "", nil
}

func (s *scriptedIntelligence) Translate(_ context.Context, _ string, _ entity.AnalysisLanguage) (string, error) {
	s.record("translate")
	return s.translation, s.translateErr
}

func (s *scriptedIntelligence) AnalyzeSentiment(context.Context, string) (*entity.SentimentResult, error) {
	s.record("sentiment")
	if s.sentimentErr != nil {
		return nil, s.sentimentErr
	}
	return &entity.SentimentResult{Sentiment: entity.SentimentPositive, Confidence: 0.9}, nil
}

func (s *scriptedIntelligence) DetectTopics(context.Context, string) ([]string, error) {
	s.record("topics")
	if s.topicsErr != nil {
		return nil, s.topicsErr
	}
	return []string{"roadmap", "hiring"}, nil
}

func (s *scriptedIntelligence) ExtractKeyPoints(context.Context, string) (*entity.KeyPoints, error) {
	s.record("keypoints")
	if s.keyPointsErr != nil {
		return nil, s.keyPointsErr
	}
	return &entity.KeyPoints{Summary: "short sync"}, nil
}

func (s *scriptedIntelligence) GenerateExportContent(context.Context, flows.ExportContentInput) (string, error) {
	s.record("export")
	return "", nil
}

func TestRunEnglishSkipsTranslation(t *testing.T) {
	ai := newScripted()
	p := NewPipeline(newTestLogger(t), ai)

	result, err := p.Run(context.Background(), "we agreed to ship monday", entity.AnalysisLanguageEnglish)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Empty(t, result.TranslatedTranscript)
	assert.Equal(t, 0, ai.count("translate"))
	assert.Equal(t, 1, ai.count("sentiment"))
	assert.Equal(t, 1, ai.count("topics"))
	assert.Equal(t, 1, ai.count("keypoints"))
	assert.True(t, result.Complete())
}

func TestRunSwahiliTranslatesFirst(t *testing.T) {
	ai := newScripted()
	p := NewPipeline(newTestLogger(t), ai)

	result, err := p.Run(context.Background(), "we agreed to ship monday", entity.AnalysisLanguageSwahili)
	require.NoError(t, err)
	assert.Equal(t, "tafsiri", result.TranslatedTranscript)
	assert.Equal(t, 1, ai.count("translate"))
}

func TestRunEmptyTranslationAbortsBeforeFanOut(t *testing.T) {
	ai := newScripted()
	ai.translation = "   "
	p := NewPipeline(newTestLogger(t), ai)

	result, err := p.Run(context.Background(), "original text", entity.AnalysisLanguageSwahili)
	require.Error(t, err)
	assert.ErrorIs(t, err, fault.ErrEmptyResult)
	assert.Nil(t, result)
	assert.Equal(t, 0, ai.count("sentiment"))
	assert.Equal(t, 0, ai.count("topics"))
	assert.Equal(t, 0, ai.count("keypoints"))
}

func TestRunAtomicOnKeyPointFailure(t *testing.T) {
	ai := newScripted()
	ai.keyPointsErr = errors.New("model refused")
	p := NewPipeline(newTestLogger(t), ai)

	result, err := p.Run(context.Background(), "transcript", entity.AnalysisLanguageEnglish)
	require.Error(t, err)
	assert.Nil(t, result, "no partial aggregate may escape")
	assert.Equal(t, 1, ai.count("sentiment"))
	assert.Equal(t, 1, ai.count("topics"))
}

func TestRunSentimentFailureAborts(t *testing.T) {
	ai := newScripted()
	ai.sentimentErr = errors.New("quota exceeded")
	p := NewPipeline(newTestLogger(t), ai)

	result, err := p.Run(context.Background(), "transcript", entity.AnalysisLanguageEnglish)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, 0, ai.count("keypoints"))
}

func TestRunBlankTranscriptRejected(t *testing.T) {
	p := NewPipeline(newTestLogger(t), newScripted())
	_, err := p.Run(context.Background(), "  \n ", entity.AnalysisLanguageEnglish)
	assert.ErrorIs(t, err, fault.ErrNoTranscript)
}
