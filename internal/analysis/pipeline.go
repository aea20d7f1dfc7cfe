// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.

// Package analysis runs the post-transcription pipeline: optional
// translation, concurrent sentiment and topic detection, then key-point
// extraction. The result is all-or-nothing.
package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/meetmind/meetmind/internal/entity"
	"github.com/meetmind/meetmind/internal/fault"
	"github.com/meetmind/meetmind/internal/flows"
	"github.com/meetmind/meetmind/pkg/commons"
)

type Pipeline struct {
	logger commons.Logger
	ai     flows.Intelligence
}

func NewPipeline(logger commons.Logger, ai flows.Intelligence) *Pipeline {
	return &Pipeline{logger: logger, ai: ai}
}

// Run analyzes one transcript in the given target language. On any stage
// failure it returns a nil result: partial aggregates never escape.
func (p *Pipeline) Run(ctx context.Context, transcript string, language entity.AnalysisLanguage) (*entity.AnalysisResult, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, fault.ErrNoTranscript
	}
	if !language.Valid() {
		return nil, fmt.Errorf("%w: analysis language %q", fault.ErrUnknownLanguage, language)
	}

	runID := uuid.NewString()
	p.logger.Infof("analysis run %s started (language=%s, transcript=%d chars)", runID, language, len(transcript))

	result := &entity.AnalysisResult{}
	text := transcript

	// Translation gates everything else: analysis on the untranslated text
	// would not match the language the user asked for.
	if language != entity.DefaultAnalysisLanguage {
		translated, err := p.ai.Translate(ctx, transcript, language)
		if err != nil {
			return nil, fmt.Errorf("analysis run %s: translate: %w", runID, err)
		}
		if strings.TrimSpace(translated) == "" {
			return nil, fmt.Errorf("analysis run %s: translate: %w", runID, fault.ErrEmptyResult)
		}
		result.TranslatedTranscript = translated
		text = translated
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sentiment, err := p.ai.AnalyzeSentiment(gctx, text)
		if err != nil {
			return fmt.Errorf("sentiment: %w", err)
		}
		result.Sentiment = sentiment
		return nil
	})
	g.Go(func() error {
		topics, err := p.ai.DetectTopics(gctx, text)
		if err != nil {
			return fmt.Errorf("topics: %w", err)
		}
		result.Topics = topics
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analysis run %s: %w", runID, err)
	}

	keyPoints, err := p.ai.ExtractKeyPoints(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("analysis run %s: key points: %w", runID, err)
	}
	result.KeyPoints = keyPoints

	p.logger.Infof("analysis run %s finished (sentiment=%s, topics=%d)", runID, result.Sentiment.Sentiment, len(result.Topics))
	return result, nil
}
