// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.

// Package httpapi exposes the meeting workflow over HTTP: session fields,
// recording control, uploads, stored recordings, analysis and export.
package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/meetmind/meetmind/config"
	"github.com/meetmind/meetmind/internal/controller"
	"github.com/meetmind/meetmind/internal/entity"
	"github.com/meetmind/meetmind/internal/fault"
	"github.com/meetmind/meetmind/pkg/commons"
)

type MeetingApi struct {
	cfg        *config.AppConfig
	logger     commons.Logger
	controller *controller.Controller
}

func New(cfg *config.AppConfig, logger commons.Logger, ctl *controller.Controller) *MeetingApi {
	return &MeetingApi{cfg: cfg, logger: logger, controller: ctl}
}

func (a *MeetingApi) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": a.cfg.Version})
}

func (a *MeetingApi) Readiness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// State returns the observable snapshot the UI polls.
func (a *MeetingApi) State(c *gin.Context) {
	c.JSON(http.StatusOK, a.controller.Snapshot())
}

type sessionRequest struct {
	MeetingName       *string `json:"meetingName"`
	MeetingDate       *string `json:"meetingDate"`
	RecordingLanguage *string `json:"recordingLanguage"`
	AnalysisLanguage  *string `json:"analysisLanguage"`
}

// UpdateSession applies partial session-field edits.
func (a *MeetingApi) UpdateSession(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.MeetingName != nil {
		a.controller.SetMeetingName(*req.MeetingName)
	}
	if req.MeetingDate != nil {
		date, err := time.Parse("2006-01-02", *req.MeetingDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "meetingDate must be YYYY-MM-DD"})
			return
		}
		a.controller.SetMeetingDate(date)
	}
	if req.RecordingLanguage != nil {
		if err := a.controller.SetRecordingLanguage(entity.RecordingLanguage(*req.RecordingLanguage)); err != nil {
			a.fail(c, err)
			return
		}
	}
	if req.AnalysisLanguage != nil {
		if err := a.controller.SetAnalysisLanguage(entity.AnalysisLanguage(*req.AnalysisLanguage)); err != nil {
			a.fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, a.controller.Snapshot())
}

func (a *MeetingApi) StartRecording(c *gin.Context) {
	if err := a.controller.StartRecording(c.Request.Context()); err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a.controller.Snapshot())
}

func (a *MeetingApi) StopRecording(c *gin.Context) {
	if err := a.controller.StopRecording(c.Request.Context()); err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a.controller.Snapshot())
}

// Upload ingests a multipart audio file in place of a live recording.
func (a *MeetingApi) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
		return
	}
	mimeType := fileHeader.Header.Get("Content-Type")
	if err := a.controller.Upload(c.Request.Context(), fileHeader.Filename, mimeType, data); err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a.controller.Snapshot())
}

func (a *MeetingApi) ListRecordings(c *gin.Context) {
	records, err := a.controller.Recordings(c.Request.Context())
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recordings": records})
}

func (a *MeetingApi) SelectRecording(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recording id"})
		return
	}
	if err := a.controller.SelectRecording(c.Request.Context(), id); err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a.controller.Snapshot())
}

func (a *MeetingApi) DeleteRecording(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recording id"})
		return
	}
	if err := a.controller.DeleteRecording(c.Request.Context(), id); err != nil {
		a.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type transcriptRequest struct {
	Transcript string `json:"transcript"`
}

func (a *MeetingApi) SetTranscript(c *gin.Context) {
	var req transcriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := a.controller.SetTranscript(req.Transcript); err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a.controller.Snapshot())
}

func (a *MeetingApi) Process(c *gin.Context) {
	if err := a.controller.Process(c.Request.Context()); err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a.controller.Snapshot())
}

type exportRequest struct {
	Format string `json:"format" binding:"required"`
}

func (a *MeetingApi) Export(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format is required"})
		return
	}
	format := entity.ExportFormat(req.Format)
	if !format.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be docx, pptx or pdf"})
		return
	}
	if err := a.controller.Export(c.Request.Context(), format); err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a.controller.Snapshot())
}

// DownloadExport streams the generated export content.
func (a *MeetingApi) DownloadExport(c *gin.Context) {
	snap := a.controller.Snapshot()
	if snap.Export == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no export available"})
		return
	}
	c.Header("Content-Disposition", "attachment; filename=meeting-export."+string(snap.Export.Format)+".md")
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(snap.Export.Content))
}

func (a *MeetingApi) Reset(c *gin.Context) {
	if err := a.controller.Reset(); err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a.controller.Snapshot())
}

func (a *MeetingApi) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, fault.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, fault.ErrBusy):
		status = http.StatusConflict
	default:
		switch fault.KindOf(err) {
		case fault.KindValidation, fault.KindData:
			status = http.StatusBadRequest
		case fault.KindPermission, fault.KindDevice:
			status = http.StatusForbidden
		case fault.KindExternal:
			status = http.StatusBadGateway
		}
	}
	c.JSON(status, gin.H{"error": err.Error(), "state": a.controller.State()})
}
