// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.

// Package store persists finished audio artifacts with their metadata. The
// controller treats every operation as potentially failing I/O.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/meetmind/meetmind/internal/entity"
	"github.com/meetmind/meetmind/internal/fault"
	"github.com/meetmind/meetmind/pkg/commons"
)

// RecordingStore is the persistence contract for captured recordings. Ids
// are store-assigned, unique and monotonically increasing; a deleted id is
// never handed out again within one database.
type RecordingStore interface {
	// Save stores a record (id ignored on input) and returns the assigned id.
	Save(ctx context.Context, record *entity.RecordingRecord) (int64, error)
	// ListMetadata returns all records newest-first by timestamp, with the
	// audio bytes excluded.
	ListMetadata(ctx context.Context) ([]entity.Metadata, error)
	// Get returns the full record including audio bytes, or fault.ErrNotFound.
	Get(ctx context.Context, id int64) (*entity.RecordingRecord, error)
	// Delete removes a record, or returns fault.ErrNotFound.
	Delete(ctx context.Context, id int64) error
}

type sqliteStore struct {
	db     *gorm.DB
	logger commons.Logger
}

// Open opens (creating if needed) the sqlite database at path and migrates
// the recordings table.
func Open(logger commons.Logger, path string) (RecordingStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening recording store %q: %w", path, err)
	}
	if err := db.AutoMigrate(&entity.RecordingRecord{}); err != nil {
		return nil, fmt.Errorf("migrating recording store: %w", err)
	}
	return &sqliteStore{db: db, logger: logger}, nil
}

func (s *sqliteStore) Save(ctx context.Context, record *entity.RecordingRecord) (int64, error) {
	record.ID = 0
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return 0, fmt.Errorf("saving recording %q: %w", record.Name, err)
	}
	s.logger.Infof("recording saved: id=%d, name=%q, duration=%.1fs, %d bytes",
		record.ID, record.Name, record.DurationSeconds, len(record.Audio))
	return record.ID, nil
}

func (s *sqliteStore) ListMetadata(ctx context.Context) ([]entity.Metadata, error) {
	var records []entity.RecordingRecord
	err := s.db.WithContext(ctx).
		Omit("audio").
		Order("timestamp_ms DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("listing recordings: %w", err)
	}

	metadata := make([]entity.Metadata, 0, len(records))
	for _, record := range records {
		metadata = append(metadata, record.Meta())
	}
	return metadata, nil
}

func (s *sqliteStore) Get(ctx context.Context, id int64) (*entity.RecordingRecord, error) {
	var record entity.RecordingRecord
	err := s.db.WithContext(ctx).First(&record, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: id=%d", fault.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading recording %d: %w", id, err)
	}
	return &record, nil
}

func (s *sqliteStore) Delete(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&entity.RecordingRecord{}, id)
	if result.Error != nil {
		return fmt.Errorf("deleting recording %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: id=%d", fault.ErrNotFound, id)
	}
	s.logger.Infof("recording deleted: id=%d", id)
	return nil
}
