// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.
package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetmind/meetmind/internal/entity"
	"github.com/meetmind/meetmind/internal/fault"
	"github.com/meetmind/meetmind/pkg/commons"
)

func newTestStore(t *testing.T) RecordingStore {
	t.Helper()
	logger, err := commons.NewApplicationLogger(commons.Name("test-store"))
	require.NoError(t, err)
	s, err := Open(logger, filepath.Join(t.TempDir(), "meetmind.db"))
	require.NoError(t, err)
	return s
}

func sampleRecord(name string, timestampMs int64) *entity.RecordingRecord {
	return &entity.RecordingRecord{
		Name:              name,
		TimestampMs:       timestampMs,
		DurationSeconds:   12.5,
		MimeType:          "audio/wav",
		RecordingLanguage: entity.RecordingLanguageEnglishUS,
		AnalysisLanguage:  entity.AnalysisLanguageSwahili,
		Audio:             []byte{0x52, 0x49, 0x46, 0x46, 0x10, 0x00},
	}
}

func TestSaveThenGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := sampleRecord("standup", 1700000000000)
	id, err := s.Save(ctx, in)
	require.NoError(t, err)
	require.NotZero(t, id)

	out, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, out.ID)
	assert.Equal(t, in.Name, out.Name)
	assert.Equal(t, in.TimestampMs, out.TimestampMs)
	assert.Equal(t, in.DurationSeconds, out.DurationSeconds)
	assert.Equal(t, in.MimeType, out.MimeType)
	assert.Equal(t, in.RecordingLanguage, out.RecordingLanguage)
	assert.Equal(t, in.AnalysisLanguage, out.AnalysisLanguage)
	assert.Equal(t, in.Audio, out.Audio)
}

func TestListMetadataNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, ts := range []int64{100, 300, 200} {
		_, err := s.Save(ctx, sampleRecord("meeting", ts))
		require.NoError(t, err)
	}

	records, err := s.ListMetadata(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, int64(300), records[0].TimestampMs)
	assert.Equal(t, int64(200), records[1].TimestampMs)
	assert.Equal(t, int64(100), records[2].TimestampMs)
}

func TestGetUnknownIDIsNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), 12345)
	assert.ErrorIs(t, err, fault.ErrNotFound)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Save(ctx, sampleRecord("to-delete", 42))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, id))
	_, err = s.Get(ctx, id)
	assert.ErrorIs(t, err, fault.ErrNotFound)

	assert.ErrorIs(t, s.Delete(ctx, id), fault.ErrNotFound)
}

func TestIDsNotReusedAfterDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Save(ctx, sampleRecord("first", 1))
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, first))

	second, err := s.Save(ctx, sampleRecord("second", 2))
	require.NoError(t, err)
	assert.Greater(t, second, first)
}
