// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.
package entity

// Sentiment is the overall tone label of a meeting transcript.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// SentimentResult is the outcome of sentiment analysis on one transcript.
// Confidence is in [0,1].
type SentimentResult struct {
	Sentiment  Sentiment `json:"sentiment"`
	Confidence float64   `json:"confidence"`
	Reasoning  string    `json:"reasoning,omitempty"`
}

// KeyPoints is the structured outcome of key-point extraction.
type KeyPoints struct {
	Summary   string   `json:"summary,omitempty"`
	Decisions []string `json:"decisions,omitempty"`
	Tasks     []string `json:"tasks,omitempty"`
	Questions []string `json:"questions,omitempty"`
	Deadlines []string `json:"deadlines,omitempty"`
}

// AnalysisResult aggregates one analysis run. All fields start unset and are
// filled monotonically within a single run; a failed run leaves the whole
// aggregate cleared, never a partial one.
type AnalysisResult struct {
	TranslatedTranscript string
	Sentiment            *SentimentResult
	Topics               []string
	KeyPoints            *KeyPoints
}

// Complete reports whether every analysis stage produced output.
func (r *AnalysisResult) Complete() bool {
	return r != nil && r.Sentiment != nil && r.Topics != nil && r.KeyPoints != nil
}

// ExportFormat selects the target shape of generated export content.
type ExportFormat string

const (
	ExportFormatDocx ExportFormat = "docx"
	ExportFormatPptx ExportFormat = "pptx"
	ExportFormatPdf  ExportFormat = "pdf"
)

func (f ExportFormat) Valid() bool {
	return f == ExportFormatDocx || f == ExportFormatPptx || f == ExportFormatPdf
}

// Print reports whether the format is delivered through the platform print
// flow instead of a lingering export artifact.
func (f ExportFormat) Print() bool { return f == ExportFormatPdf }

// ExportArtifact is the ephemeral outcome of one export run. It is never
// persisted.
type ExportArtifact struct {
	Format  ExportFormat
	Content string
}
