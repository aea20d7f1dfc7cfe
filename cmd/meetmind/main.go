// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/meetmind/meetmind/api/httpapi"
	"github.com/meetmind/meetmind/config"
	"github.com/meetmind/meetmind/internal/analysis"
	"github.com/meetmind/meetmind/internal/capture"
	"github.com/meetmind/meetmind/internal/controller"
	"github.com/meetmind/meetmind/internal/export"
	"github.com/meetmind/meetmind/internal/flows"
	"github.com/meetmind/meetmind/internal/permission"
	"github.com/meetmind/meetmind/internal/store"
	"github.com/meetmind/meetmind/internal/transcribe"
	"github.com/meetmind/meetmind/pkg/commons"
)

func main() {
	v, err := config.InitConfig()
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}
	cfg, err := config.GetApplicationConfig(v)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, err := commons.NewApplicationLogger(
		commons.Name(cfg.Name),
		commons.Level(cfg.LogLevel),
		commons.Path(cfg.LogPath),
	)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Errorf("exited with error: %v", err)
	}
}

func run(ctx context.Context, cfg *config.AppConfig, logger commons.Logger) error {
	recordings, err := store.Open(logger, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening recording store: %w", err)
	}

	ai, err := flows.NewGeminiIntelligence(ctx, logger, cfg.GeminiApiKey, cfg.GeminiModel)
	if err != nil {
		return fmt.Errorf("creating intelligence client: %w", err)
	}

	gate := permission.NewGate(logger, &permission.DeviceProbe{
		SampleRate: cfg.SampleRate,
		Channels:   cfg.Channels,
	})
	gate.StartWatching()
	defer gate.StopWatching()

	device := capture.NewPortAudioDevice(logger, cfg.SampleRate, cfg.Channels)
	captions := capture.NewWebsocketCaptionSource(logger, cfg.CaptionEndpoint)
	pipeline := capture.NewPipeline(logger, device, captions,
		capture.WithLimit(time.Duration(cfg.RecordingLimitSeconds)*time.Second),
		capture.WithAudioConfig(cfg.SampleRate, cfg.Channels),
	)

	printer := &export.FilePrinter{
		Logger: logger,
		Dir:    filepath.Join(filepath.Dir(cfg.DatabasePath), "reports"),
	}

	ctl := controller.New(
		logger,
		gate,
		pipeline,
		recordings,
		transcribe.NewStage(logger, ai),
		analysis.NewPipeline(logger, ai),
		export.NewStage(logger, ai, printer),
	)

	engine := httpapi.NewEngine(cfg, logger)
	httpapi.MeetingApiRoutes(cfg, engine, logger, ctl)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("%s %s listening on %s", cfg.Name, cfg.Version, srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	if ctl.State().Busy() {
		logger.Warn("shutdown requested while an operation is in flight")
	}
	_ = ctl.StopRecording(context.Background())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
