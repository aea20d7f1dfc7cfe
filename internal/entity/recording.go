// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.
package entity

import "time"

// AudioArtifact is an opaque finished audio payload. It is produced once by
// the capture pipeline or a file upload and never mutated afterwards.
type AudioArtifact struct {
	Data            []byte
	MimeType        string
	DurationSeconds float64
}

// Empty reports whether the artifact carries no audio bytes. Empty artifacts
// are a terminal data error for downstream stages.
func (a AudioArtifact) Empty() bool {
	return len(a.Data) == 0
}

// RecordingRecord is the persisted unit for one captured or uploaded audio
// artifact. The id is store-assigned, unique and never reused after delete.
//
// RecordingLanguage and AnalysisLanguage are stored explicitly; earlier
// revisions guessed the language from the MIME string, which broke for
// every container that does not embed a language hint.
type RecordingRecord struct {
	ID                int64             `gorm:"primaryKey;autoIncrement"`
	Name              string            `gorm:"not null"`
	TimestampMs       int64             `gorm:"index;not null"`
	DurationSeconds   float64           `gorm:"not null"`
	MimeType          string            `gorm:"not null"`
	RecordingLanguage RecordingLanguage `gorm:"not null;default:en-US"`
	AnalysisLanguage  AnalysisLanguage  `gorm:"not null;default:en"`
	Audio             []byte            `gorm:"type:blob"`
	CreatedAt         time.Time
}

func (RecordingRecord) TableName() string { return "recordings" }

// Metadata is the listing view of a RecordingRecord: every field except the
// raw audio bytes.
type Metadata struct {
	ID                int64
	Name              string
	TimestampMs       int64
	DurationSeconds   float64
	MimeType          string
	RecordingLanguage RecordingLanguage
	AnalysisLanguage  AnalysisLanguage
}

// Meta strips the audio payload off a full record.
func (r RecordingRecord) Meta() Metadata {
	return Metadata{
		ID:                r.ID,
		Name:              r.Name,
		TimestampMs:       r.TimestampMs,
		DurationSeconds:   r.DurationSeconds,
		MimeType:          r.MimeType,
		RecordingLanguage: r.RecordingLanguage,
		AnalysisLanguage:  r.AnalysisLanguage,
	}
}

// Artifact reconstructs the immutable audio artifact stored in the record.
func (r RecordingRecord) Artifact() AudioArtifact {
	return AudioArtifact{
		Data:            r.Audio,
		MimeType:        r.MimeType,
		DurationSeconds: r.DurationSeconds,
	}
}
