// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.
package flows

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/meetmind/meetmind/internal/entity"
	"github.com/meetmind/meetmind/internal/fault"
	"github.com/meetmind/meetmind/pkg/commons"
)

const (
	transcribePrompt = "Transcribe the following audio accurately. Output only the transcribed text."

	translatePromptTemplate = "Translate the following meeting transcript into %s. " +
		"Preserve speaker turns and meaning; do not summarize. " +
		"Respond as JSON: {\"translation\": \"...\"}.\n\nTranscript:\n%s"

	sentimentPromptTemplate = "Analyze the overall sentiment of this meeting transcript. " +
		"Respond as JSON: {\"sentiment\": \"positive\"|\"negative\"|\"neutral\", " +
		"\"confidence\": <number between 0 and 1>, \"reasoning\": \"...\"}.\n\nTranscript:\n%s"

	topicsPromptTemplate = "Identify the main topics discussed in this meeting transcript, " +
		"most prominent first. Respond as JSON: {\"topics\": [\"...\"]}.\n\nTranscript:\n%s"

	keyPointsPromptTemplate = "Extract the key points from this meeting transcript. " +
		"Respond as JSON: {\"summary\": \"...\", \"decisions\": [\"...\"], \"tasks\": [\"...\"], " +
		"\"questions\": [\"...\"], \"deadlines\": [\"...\"]}. " +
		"Use empty lists for categories with no content.\n\nTranscript:\n%s"
)

var languageNames = map[entity.AnalysisLanguage]string{
	entity.AnalysisLanguageEnglish: "English",
	entity.AnalysisLanguageSwahili: "Swahili",
}

// GeminiIntelligence implements every flow against the Gemini API.
type GeminiIntelligence struct {
	logger commons.Logger
	client *genai.Client
	model  string
}

func NewGeminiIntelligence(ctx context.Context, logger commons.Logger, apiKey, model string) (*GeminiIntelligence, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing gemini client: %w", err)
	}
	return &GeminiIntelligence{logger: logger, client: client, model: model}, nil
}

func (g *GeminiIntelligence) generate(ctx context.Context, contents []*genai.Content, jsonOut bool) (string, error) {
	var config *genai.GenerateContentConfig
	if jsonOut {
		config = &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("model call failed: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

func (g *GeminiIntelligence) Transcribe(ctx context.Context, audioDataURI string) (string, error) {
	mimeType, data, err := parseAudioDataURI(audioDataURI)
	if err != nil {
		return "", fmt.Errorf("invalid transcription input: %w", err)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(transcribePrompt),
			genai.NewPartFromBytes(data, mimeType),
		}, genai.RoleUser),
	}

	text, err := g.generate(ctx, contents, false)
	if err != nil {
		return "", fmt.Errorf("transcribing audio: %w", err)
	}
	if text == "" {
		return "", fault.ErrEmptyTranscript
	}
	g.logger.Debugf("transcription produced %d characters", len(text))
	return text, nil
}

func (g *GeminiIntelligence) Translate(ctx context.Context, transcript string, target entity.AnalysisLanguage) (string, error) {
	name, ok := languageNames[target]
	if !ok {
		name = string(target)
	}
	prompt := fmt.Sprintf(translatePromptTemplate, name, transcript)

	raw, err := g.generate(ctx, genai.Text(prompt), true)
	if err != nil {
		return "", fmt.Errorf("translating transcript: %w", err)
	}

	var out struct {
		Translation string `json:"translation"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return "", fmt.Errorf("parsing translation response: %w", err)
	}
	if strings.TrimSpace(out.Translation) == "" {
		return "", fmt.Errorf("%w: translation", fault.ErrEmptyResult)
	}
	return out.Translation, nil
}

func (g *GeminiIntelligence) AnalyzeSentiment(ctx context.Context, transcript string) (*entity.SentimentResult, error) {
	prompt := fmt.Sprintf(sentimentPromptTemplate, transcript)

	raw, err := g.generate(ctx, genai.Text(prompt), true)
	if err != nil {
		return nil, fmt.Errorf("analyzing sentiment: %w", err)
	}

	var out entity.SentimentResult
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("parsing sentiment response: %w", err)
	}
	switch out.Sentiment {
	case entity.SentimentPositive, entity.SentimentNegative, entity.SentimentNeutral:
	default:
		return nil, fmt.Errorf("%w: sentiment label %q", fault.ErrEmptyResult, out.Sentiment)
	}
	if out.Confidence < 0 {
		out.Confidence = 0
	}
	if out.Confidence > 1 {
		out.Confidence = 1
	}
	return &out, nil
}

func (g *GeminiIntelligence) DetectTopics(ctx context.Context, transcript string) ([]string, error) {
	prompt := fmt.Sprintf(topicsPromptTemplate, transcript)

	raw, err := g.generate(ctx, genai.Text(prompt), true)
	if err != nil {
		return nil, fmt.Errorf("detecting topics: %w", err)
	}

	var out struct {
		Topics []string `json:"topics"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("parsing topics response: %w", err)
	}
	if len(out.Topics) == 0 {
		return nil, fmt.Errorf("%w: topics", fault.ErrEmptyResult)
	}
	return out.Topics, nil
}

func (g *GeminiIntelligence) ExtractKeyPoints(ctx context.Context, transcript string) (*entity.KeyPoints, error) {
	prompt := fmt.Sprintf(keyPointsPromptTemplate, transcript)

	raw, err := g.generate(ctx, genai.Text(prompt), true)
	if err != nil {
		return nil, fmt.Errorf("extracting key points: %w", err)
	}

	var out entity.KeyPoints
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("parsing key points response: %w", err)
	}
	if out.Summary == "" && len(out.Decisions) == 0 && len(out.Tasks) == 0 &&
		len(out.Questions) == 0 && len(out.Deadlines) == 0 {
		return nil, fmt.Errorf("%w: key points", fault.ErrEmptyResult)
	}
	return &out, nil
}

func (g *GeminiIntelligence) GenerateExportContent(ctx context.Context, in ExportContentInput) (string, error) {
	prompt := buildExportPrompt(in)

	text, err := g.generate(ctx, genai.Text(prompt), false)
	if err != nil {
		return "", fmt.Errorf("generating export content: %w", err)
	}
	if text == "" {
		return "", fmt.Errorf("%w: export content", fault.ErrEmptyResult)
	}
	return text, nil
}

// buildExportPrompt flattens the aggregate into a prompt tailored to the
// target format: document sections for docx, slide outlines for pptx, a
// print-ready report for pdf.
func buildExportPrompt(in ExportContentInput) string {
	var b strings.Builder
	b.WriteString("You format meeting analysis results for export. Produce well-structured Markdown ")
	switch in.Format {
	case entity.ExportFormatPptx:
		b.WriteString("organized as presentation slides: one '## ' heading per slide with short bullet points.")
	case entity.ExportFormatPdf:
		b.WriteString("as a print-ready report with a title, section headings and bullet lists.")
	default:
		b.WriteString("as a document with a title, section headings, and bullet lists.")
	}
	b.WriteString(" Output only the Markdown content.\n\n")

	if name, ok := languageNames[in.Language]; ok {
		fmt.Fprintf(&b, "Analysis language: %s\n\n", name)
	}

	if r := in.Result; r != nil {
		if r.KeyPoints != nil {
			fmt.Fprintf(&b, "Summary: %s\n", orNA(r.KeyPoints.Summary))
			fmt.Fprintf(&b, "Decisions:\n%s\n", listOrNone(r.KeyPoints.Decisions))
			fmt.Fprintf(&b, "Tasks:\n%s\n", listOrNone(r.KeyPoints.Tasks))
			fmt.Fprintf(&b, "Questions:\n%s\n", listOrNone(r.KeyPoints.Questions))
			fmt.Fprintf(&b, "Deadlines:\n%s\n", listOrNone(r.KeyPoints.Deadlines))
		}
		if r.Sentiment != nil {
			fmt.Fprintf(&b, "Sentiment: %s (confidence %.2f) %s\n",
				r.Sentiment.Sentiment, r.Sentiment.Confidence, r.Sentiment.Reasoning)
		}
		if len(r.Topics) > 0 {
			fmt.Fprintf(&b, "Topics:\n%s\n", listOrNone(r.Topics))
		}
	}

	if in.TranslatedTranscript != "" {
		fmt.Fprintf(&b, "\nTranslated transcript:\n%s\n", in.TranslatedTranscript)
	}
	if in.OriginalTranscript != "" {
		fmt.Fprintf(&b, "\nOriginal transcript:\n%s\n", in.OriginalTranscript)
	}
	return b.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	var b strings.Builder
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
