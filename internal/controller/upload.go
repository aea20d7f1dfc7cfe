// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.

package controller

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/meetmind/meetmind/internal/capture"
)

// Date fragments accepted in uploaded filenames, most specific first. The
// two-digit-year form is tried last so it never shadows a full year.
var filenameDatePatterns = []struct {
	re     *regexp.Regexp
	layout string
}{
	{regexp.MustCompile(`\d{4}[-/]\d{2}[-/]\d{2}`), "2006-01-02"},
	{regexp.MustCompile(`\d{2}[-/]\d{2}[-/]\d{4}`), "02-01-2006"},
	{regexp.MustCompile(`\d{2}[-/]\d{2}[-/]\d{2}`), "02-01-06"},
}

// nameFromFilename strips the extension and tidies separators so an
// uploaded "team-sync_2025-03-10.wav" becomes a usable meeting name.
func nameFromFilename(filename string) string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	base = strings.Join(strings.Fields(base), " ")
	if base == "" {
		return "Uploaded Recording"
	}
	return base
}

// dateFromFilename extracts a YYYY-MM-DD, DD-MM-YYYY or DD-MM-YY fragment
// (dash or slash separated) from the filename, falling back to now when
// absent or unparsable. Matching runs on the raw filename: a slash-separated
// date would not survive filepath.Base.
func dateFromFilename(filename string, now time.Time) time.Time {
	for _, p := range filenameDatePatterns {
		match := p.re.FindString(filename)
		if match == "" {
			continue
		}
		match = strings.ReplaceAll(match, "/", "-")
		if parsed, err := time.Parse(p.layout, match); err == nil {
			return parsed
		}
	}
	return now
}

// probeDuration inspects formats we can cheaply parse; other containers
// report zero and keep their stored duration unknown.
func probeDuration(mimeType string, data []byte) float64 {
	if mimeType == capture.MimeTypeWAV || strings.HasPrefix(mimeType, "audio/wav") {
		if seconds, err := capture.WAVDuration(data); err == nil {
			return seconds
		}
	}
	return 0
}
