// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.

// Package flows holds the external AI collaborators: transcription,
// translation, sentiment, topic detection, key-point extraction and export
// content generation. Each is an opaque call with a fixed input/output
// contract; the pipeline stages never see provider specifics.
package flows

import (
	"context"

	"github.com/meetmind/meetmind/internal/entity"
)

// ExportContentInput carries everything the export content generator needs.
type ExportContentInput struct {
	Result               *entity.AnalysisResult
	Format               entity.ExportFormat
	OriginalTranscript   string
	TranslatedTranscript string
	Language             entity.AnalysisLanguage
}

// Intelligence is the aggregate contract for all AI flows. Implementations
// must return fault.ErrEmptyResult-wrapped errors for empty model output so
// callers can distinguish "empty result" from "call failed".
type Intelligence interface {
	// Transcribe converts an audio data URI into plain text.
	Transcribe(ctx context.Context, audioDataURI string) (string, error)
	// Translate renders the transcript into the target language.
	Translate(ctx context.Context, transcript string, target entity.AnalysisLanguage) (string, error)
	// AnalyzeSentiment labels the overall tone of the transcript.
	AnalyzeSentiment(ctx context.Context, transcript string) (*entity.SentimentResult, error)
	// DetectTopics lists the main topics discussed, most prominent first.
	DetectTopics(ctx context.Context, transcript string) ([]string, error)
	// ExtractKeyPoints pulls the summary, decisions, tasks, questions and
	// deadlines out of the transcript.
	ExtractKeyPoints(ctx context.Context, transcript string) (*entity.KeyPoints, error)
	// GenerateExportContent formats the aggregate for the requested export
	// format as structured markdown.
	GenerateExportContent(ctx context.Context, in ExportContentInput) (string, error)
}
