// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.

package export

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// ReportMeta carries the header fields of a printable report.
type ReportMeta struct {
	MeetingName string
	MeetingDate time.Time
	GeneratedAt time.Time
}

var markdown = goldmark.New(
	goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
)

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Georgia, serif; max-width: 48rem; margin: 2rem auto; color: #1a1a1a; }
h1 { border-bottom: 2px solid #1a1a1a; padding-bottom: 0.3rem; }
.meta { color: #555; font-size: 0.9rem; margin-bottom: 2rem; }
@media print { body { margin: 0; } }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="meta">Meeting date: {{.Date}} &middot; Generated: {{.Generated}}</div>
{{.Body}}
</body>
</html>
`))

// RenderReport converts the export content (markdown) into a standalone
// printable HTML document.
func RenderReport(content string, meta ReportMeta) (string, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(content), &body); err != nil {
		return "", fmt.Errorf("render report body: %w", err)
	}

	title := meta.MeetingName
	if title == "" {
		title = "Meeting Report"
	}

	var out bytes.Buffer
	err := reportTemplate.Execute(&out, struct {
		Title     string
		Date      string
		Generated string
		Body      template.HTML
	}{
		Title:     title,
		Date:      meta.MeetingDate.Format("2006-01-02"),
		Generated: meta.GeneratedAt.Format("2006-01-02 15:04"),
		Body:      template.HTML(body.String()),
	})
	if err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return out.String(), nil
}
