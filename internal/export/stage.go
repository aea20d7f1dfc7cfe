// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.

// Package export generates shareable content from a finished analysis and,
// for the print format, renders and dispatches a printable report.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/meetmind/meetmind/internal/entity"
	"github.com/meetmind/meetmind/internal/fault"
	"github.com/meetmind/meetmind/internal/flows"
	"github.com/meetmind/meetmind/pkg/commons"
)

// Printer dispatches a rendered HTML report to whatever the platform uses
// for printing. Failures abort the export.
type Printer interface {
	Print(ctx context.Context, html string, title string) error
}

// Stage turns an analysis aggregate into export content.
type Stage struct {
	logger  commons.Logger
	ai      flows.Intelligence
	printer Printer
	now     func() time.Time
}

func NewStage(logger commons.Logger, ai flows.Intelligence, printer Printer) *Stage {
	return &Stage{logger: logger, ai: ai, printer: printer, now: time.Now}
}

// Run generates content for the requested format. The second return value
// reports whether the artifact was handed to the printer instead of being
// kept for download.
func (s *Stage) Run(ctx context.Context, in flows.ExportContentInput, meta ReportMeta) (*entity.ExportArtifact, bool, error) {
	if !in.Format.Valid() {
		return nil, false, fmt.Errorf("%w: export format %q", fault.ErrFormatUnsupported, in.Format)
	}
	if in.Result == nil || !in.Result.Complete() {
		return nil, false, fault.ErrEmptyResult
	}

	s.logger.Infof("generating %s export for %q", in.Format, meta.MeetingName)

	content, err := s.ai.GenerateExportContent(ctx, in)
	if err != nil {
		return nil, false, fmt.Errorf("generate %s content: %w", in.Format, err)
	}
	if strings.TrimSpace(content) == "" {
		return nil, false, fmt.Errorf("generate %s content: %w", in.Format, fault.ErrEmptyResult)
	}

	artifact := &entity.ExportArtifact{Format: in.Format, Content: content}

	if in.Format.Print() {
		doc, err := RenderReport(content, ReportMeta{
			MeetingName: meta.MeetingName,
			MeetingDate: meta.MeetingDate,
			GeneratedAt: s.now(),
		})
		if err != nil {
			return nil, false, err
		}
		if err := s.printer.Print(ctx, doc, meta.MeetingName); err != nil {
			return nil, false, fmt.Errorf("print report: %w", err)
		}
		return artifact, true, nil
	}
	return artifact, false, nil
}

// FilePrinter implements Printer by writing the report next to the
// application data so the user can open and print it from a browser.
type FilePrinter struct {
	Logger commons.Logger
	Dir    string
}

func (p *FilePrinter) Print(_ context.Context, html string, title string) error {
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	name := fmt.Sprintf("%s-%d.html", sanitizeTitle(title), time.Now().UnixMilli())
	path := filepath.Join(p.Dir, name)
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	p.Logger.Infof("report written to %s", path)
	return nil
}

func sanitizeTitle(title string) string {
	title = strings.TrimSpace(strings.ToLower(title))
	if title == "" {
		return "report"
	}
	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteByte('-')
		}
	}
	return b.String()
}
