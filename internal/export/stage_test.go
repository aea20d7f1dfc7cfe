// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.
package export

import (
	"context"
	"errors"
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
	logger, err := commons.NewApplicationLogger(commons.Name("test-export"))
	require.NoError(t, err)
	return logger
}

type stubGenerator struct {
	content string
	err     error
	lastIn  flows.ExportContentInput
}

func (s *stubGenerator) Transcribe(context.Context, string) (string, error) { return "", nil }
func (s *stubGenerator) Translate(context.Context, string, entity.AnalysisLanguage) (string, error) {
	return "", nil
}
func (s *stubGenerator) AnalyzeSentiment(context.Context, string) (*entity.SentimentResult, error) {
	return nil, nil
}
func (s *stubGenerator) DetectTopics(context.Context, string) ([]string, error) { return nil, nil }
func (s *stubGenerator) ExtractKeyPoints(context.Context, string) (*entity.KeyPoints, error) {
	return nil, nil
}
func (s *stubGenerator) GenerateExportContent(_ context.Context, in flows.ExportContentInput) (string, error) {
	s.lastIn = in
	return s.content, s.err
}

type recordingPrinter struct {
	html  string
	title string
	calls int
	err   error
}

func (p *recordingPrinter) Print(_ context.Context, html string, title string) error {
	p.calls++
	p.html = html
	p.title = title
	return p.err
}

func completeResult() *entity.AnalysisResult {
	return &entity.AnalysisResult{
		Sentiment: &entity.SentimentResult{Sentiment: entity.SentimentNeutral, Confidence: 0.5},
		Topics:    []string{"budget"},
		KeyPoints: &entity.KeyPoints{Summary: "quarterly review"},
	}
}

func input(format entity.ExportFormat) flows.ExportContentInput {
	return flows.ExportContentInput{
		Result:             completeResult(),
		Format:             format,
		OriginalTranscript: "we reviewed the budget",
		Language:           entity.AnalysisLanguageEnglish,
	}
}

func meta() ReportMeta {
	return ReportMeta{
		MeetingName: "Q3 Review",
		MeetingDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestRunDocxYieldsArtifact(t *testing.T) {
	ai := &stubGenerator{content: "# Minutes\n\n- decided things"}
	printer := &recordingPrinter{}
	stage := NewStage(newTestLogger(t), ai, printer)

	artifact, printed, err := stage.Run(context.Background(), input(entity.ExportFormatDocx), meta())
	require.NoError(t, err)
	assert.False(t, printed)
	assert.Equal(t, entity.ExportFormatDocx, artifact.Format)
	assert.Equal(t, ai.content, artifact.Content)
	assert.Equal(t, 0, printer.calls, "non-print formats never reach the printer")
}

func TestRunPdfRendersAndPrints(t *testing.T) {
	ai := &stubGenerator{content: "# Report\n\nAll good."}
	printer := &recordingPrinter{}
	stage := NewStage(newTestLogger(t), ai, printer)

	_, printed, err := stage.Run(context.Background(), input(entity.ExportFormatPdf), meta())
	require.NoError(t, err)
	assert.True(t, printed)
	assert.Equal(t, 1, printer.calls)
	assert.Contains(t, printer.html, "<h1>Q3 Review</h1>")
	assert.Contains(t, printer.html, "2025-07-01")
	assert.Contains(t, printer.html, "All good.")
}

func TestRunPrinterFailureSurfaces(t *testing.T) {
	ai := &stubGenerator{content: "content"}
	printer := &recordingPrinter{err: errors.New("spooler offline")}
	stage := NewStage(newTestLogger(t), ai, printer)

	_, _, err := stage.Run(context.Background(), input(entity.ExportFormatPdf), meta())
	assert.ErrorContains(t, err, "spooler offline")
}

func TestRunRejectsInvalidFormat(t *testing.T) {
	stage := NewStage(newTestLogger(t), &stubGenerator{content: "x"}, &recordingPrinter{})
	_, _, err := stage.Run(context.Background(), input(entity.ExportFormat("csv")), meta())
	assert.ErrorIs(t, err, fault.ErrFormatUnsupported)
}

func TestRunRejectsIncompleteAggregate(t *testing.T) {
	stage := NewStage(newTestLogger(t), &stubGenerator{content: "x"}, &recordingPrinter{})
	in := input(entity.ExportFormatDocx)
	in.Result = &entity.AnalysisResult{}
	_, _, err := stage.Run(context.Background(), in, meta())
	assert.ErrorIs(t, err, fault.ErrEmptyResult)
}

func TestRunEmptyContentIsDataError(t *testing.T) {
	stage := NewStage(newTestLogger(t), &stubGenerator{content: "  "}, &recordingPrinter{})
	_, _, err := stage.Run(context.Background(), input(entity.ExportFormatPptx), meta())
	assert.ErrorIs(t, err, fault.ErrEmptyResult)
}

func TestRenderReportDefaultsTitle(t *testing.T) {
	html, err := RenderReport("body text", ReportMeta{GeneratedAt: time.Now()})
	require.NoError(t, err)
	assert.Contains(t, html, "Meeting Report")
}
