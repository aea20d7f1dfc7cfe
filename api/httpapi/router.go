// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.

package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/meetmind/meetmind/config"
	"github.com/meetmind/meetmind/internal/controller"
	"github.com/meetmind/meetmind/pkg/commons"
)

// NewEngine builds the gin engine with CORS and logging middleware.
func NewEngine(cfg *config.AppConfig, logger commons.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		MaxAge:          12 * time.Hour,
	}))
	return engine
}

// MeetingApiRoutes wires the meeting workflow endpoints onto the engine.
func MeetingApiRoutes(cfg *config.AppConfig, engine *gin.Engine, logger commons.Logger, ctl *controller.Controller) {
	logger.Info("Meeting routes added to engine.")
	api := New(cfg, logger, ctl)

	engine.GET("/healthz", api.Healthz)
	engine.GET("/readiness", api.Readiness)

	apiv1 := engine.Group("/api/v1")
	{
		apiv1.GET("/state", api.State)
		apiv1.PUT("/session", api.UpdateSession)
		apiv1.POST("/recording/start", api.StartRecording)
		apiv1.POST("/recording/stop", api.StopRecording)
		apiv1.POST("/recordings/upload", api.Upload)
		apiv1.GET("/recordings", api.ListRecordings)
		apiv1.POST("/recordings/:id/select", api.SelectRecording)
		apiv1.DELETE("/recordings/:id", api.DeleteRecording)
		apiv1.PUT("/transcript", api.SetTranscript)
		apiv1.POST("/process", api.Process)
		apiv1.POST("/export", api.Export)
		apiv1.GET("/export", api.DownloadExport)
		apiv1.POST("/reset", api.Reset)
	}
}
