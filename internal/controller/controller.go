// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.

// Package controller owns the processing state machine and orchestrates the
// capture, transcription, analysis and export stages. Only the controller
// transitions ProcessingState; every other component reports results back
// through return values or callbacks.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/meetmind/meetmind/internal/capture"
	"github.com/meetmind/meetmind/internal/entity"
	"github.com/meetmind/meetmind/internal/export"
	"github.com/meetmind/meetmind/internal/fault"
	"github.com/meetmind/meetmind/internal/flows"
	"github.com/meetmind/meetmind/internal/permission"
	"github.com/meetmind/meetmind/internal/store"
	"github.com/meetmind/meetmind/internal/transcribe"
	"github.com/meetmind/meetmind/pkg/commons"
)

// CapturePipeline is the slice of the capture package the controller uses.
type CapturePipeline interface {
	Start(sess entity.Session, cb capture.Callbacks) error
	Stop() (*entity.AudioArtifact, error)
	Abort()
	Recording() bool
	LiveCaption() string
	RemainingSeconds() (int, bool)
}

// TranscriptionStage converts an artifact to text, single-flight.
type TranscriptionStage interface {
	Run(ctx context.Context, artifact entity.AudioArtifact, sourceLabel string) (string, error)
}

// AnalysisPipeline produces the full analysis aggregate or nothing.
type AnalysisPipeline interface {
	Run(ctx context.Context, transcript string, language entity.AnalysisLanguage) (*entity.AnalysisResult, error)
}

// ExportStage generates export content; the bool reports the print path.
type ExportStage interface {
	Run(ctx context.Context, in flows.ExportContentInput, meta export.ReportMeta) (*entity.ExportArtifact, bool, error)
}

// PermissionGate is the slice of the permission package the controller uses.
type PermissionGate interface {
	Status() permission.Status
	Granted() bool
	Request(ctx context.Context) error
	OnChange(fn func(permission.Status))
}

// Controller drives one meeting workflow end to end.
type Controller struct {
	logger   commons.Logger
	gate     PermissionGate
	pipeline CapturePipeline
	store    store.RecordingStore
	stage    TranscriptionStage
	analysis AnalysisPipeline
	export   ExportStage
	notifier Notifier
	now      func() time.Time

	mu          sync.Mutex
	state       entity.ProcessingState
	session     entity.Session
	transcript  string
	liveCaption string
	loadedID    *int64
	result      *entity.AnalysisResult
	artifact    *entity.ExportArtifact
	lastError   string
}

type Option func(*Controller)

// WithNotifier replaces the default log-backed notifier.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func New(
	logger commons.Logger,
	gate PermissionGate,
	pipeline CapturePipeline,
	recordings store.RecordingStore,
	stage TranscriptionStage,
	analysisPipeline AnalysisPipeline,
	exportStage ExportStage,
	opts ...Option,
) *Controller {
	c := &Controller{
		logger:   logger,
		gate:     gate,
		pipeline: pipeline,
		store:    recordings,
		stage:    stage,
		analysis: analysisPipeline,
		export:   exportStage,
		notifier: &LogNotifier{Logger: logger},
		now:      time.Now,
		state:    entity.StateIdle,
		session:  entity.NewSession(),
	}
	for _, opt := range opts {
		opt(c)
	}
	gate.OnChange(c.permissionChanged)
	return c
}

// ============================================================
// Session field mutation
// ============================================================

func (c *Controller) SetMeetingName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.MeetingName = name
}

func (c *Controller) SetMeetingDate(date time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.MeetingDate = date
}

func (c *Controller) SetRecordingLanguage(lang entity.RecordingLanguage) error {
	if !lang.Valid() {
		return fmt.Errorf("%w: recording language %q", fault.ErrUnknownLanguage, lang)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == entity.StateRecording {
		return fault.ErrBusy
	}
	c.session.RecordingLanguage = lang
	return nil
}

func (c *Controller) SetAnalysisLanguage(lang entity.AnalysisLanguage) error {
	if !lang.Valid() {
		return fmt.Errorf("%w: analysis language %q", fault.ErrUnknownLanguage, lang)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.AnalysisLanguage = lang
	return nil
}

// ============================================================
// Recording
// ============================================================

// StartRecording validates the session, secures microphone permission and
// starts the capture pipeline. Validation failures never change state.
func (c *Controller) StartRecording(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Busy() {
		c.mu.Unlock()
		c.notifier.Notify(LevelWarn, "Busy", "Another operation is in progress.")
		return fault.ErrBusy
	}
	sess := c.session
	if err := sess.Validate(); err != nil {
		c.mu.Unlock()
		c.notifier.Notify(LevelWarn, "Cannot Start", err.Error())
		return err
	}
	c.setStateLocked(entity.StateCheckingPermission)
	c.mu.Unlock()

	if !c.gate.Granted() {
		if err := c.gate.Request(ctx); err != nil {
			c.fail(entity.StatePermissionDenied, "Microphone Access", err)
			return err
		}
	}

	err := c.pipeline.Start(sess, capture.Callbacks{
		OnAutoStop: func() {
			c.notifier.Notify(LevelInfo, "Time Limit Reached", "Recording stopped automatically.")
			if stopErr := c.StopRecording(context.Background()); stopErr != nil {
				c.logger.Warnf("auto-stop: %v", stopErr)
			}
		},
		OnFatal:   c.captureFailed,
		OnCaption: c.setLiveCaption,
	})
	if err != nil {
		switch fault.KindOf(err) {
		case fault.KindPermission:
			c.fail(entity.StatePermissionDenied, "Microphone Access", err)
		default:
			c.fail(entity.StateError, "Recording Failed", err)
		}
		return err
	}

	c.mu.Lock()
	c.transcript = ""
	c.liveCaption = ""
	c.lastError = ""
	c.setStateLocked(entity.StateRecording)
	c.mu.Unlock()
	c.notifier.Notify(LevelInfo, "Recording Started", "Capturing meeting audio.")
	return nil
}

// StopRecording finalizes the capture, persists the artifact and runs
// transcription. Calling it while not recording is a no-op.
func (c *Controller) StopRecording(ctx context.Context) error {
	c.mu.Lock()
	if c.state != entity.StateRecording {
		c.mu.Unlock()
		return nil
	}
	c.setStateLocked(entity.StateStopping)
	sess := c.session
	c.mu.Unlock()

	artifact, err := c.pipeline.Stop()
	if err != nil {
		// Zero captured audio is a data-loss failure: nothing to keep.
		c.fail(entity.StateError, "Recording Failed", err)
		return err
	}
	if artifact == nil {
		return nil
	}

	c.mu.Lock()
	c.setStateLocked(entity.StateSaving)
	c.mu.Unlock()

	record := &entity.RecordingRecord{
		Name:              sess.MeetingName,
		TimestampMs:       sess.MeetingDate.UnixMilli(),
		DurationSeconds:   artifact.DurationSeconds,
		MimeType:          artifact.MimeType,
		RecordingLanguage: sess.RecordingLanguage,
		AnalysisLanguage:  sess.AnalysisLanguage,
		Audio:             artifact.Data,
	}
	id, err := c.store.Save(ctx, record)
	if err != nil {
		c.fail(entity.StateError, "Save Failed", err)
		return err
	}
	c.logger.Infof("recording %q saved as #%d (%.1fs)", sess.MeetingName, id, artifact.DurationSeconds)
	c.notifier.Notify(LevelInfo, "Recording Saved", fmt.Sprintf("%.0f seconds of audio stored.", artifact.DurationSeconds))

	// The fresh transcript belongs to the record just written; deleting that
	// record later must detach the link.
	c.mu.Lock()
	c.loadedID = &id
	c.mu.Unlock()

	return c.transcribe(ctx, *artifact, sess.MeetingName)
}

func (c *Controller) captureFailed(err error) {
	c.pipeline.Abort()
	switch fault.KindOf(err) {
	case fault.KindPermission:
		c.fail(entity.StatePermissionDenied, "Recording Interrupted", err)
	default:
		c.fail(entity.StateError, "Recording Interrupted", err)
	}
}

func (c *Controller) setLiveCaption(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.liveCaption = text
}

func (c *Controller) permissionChanged(status permission.Status) {
	c.mu.Lock()
	wasRecording := c.state == entity.StateRecording
	c.mu.Unlock()

	switch status {
	case permission.StatusDenied:
		if wasRecording {
			c.pipeline.Abort()
			c.fail(entity.StatePermissionDenied, "Recording Interrupted", fault.ErrPermissionRevoked)
			return
		}
		c.mu.Lock()
		if !c.state.Busy() {
			c.setStateLocked(entity.StatePermissionDenied)
		}
		c.mu.Unlock()
	case permission.StatusGranted:
		c.mu.Lock()
		if c.state == entity.StatePermissionDenied {
			c.lastError = ""
			c.setStateLocked(entity.StateIdle)
		}
		c.mu.Unlock()
	}
}

// ============================================================
// Upload and past recordings
// ============================================================

// Upload ingests an audio file the user provides instead of recording.
// The meeting name comes from the filename and the date from a date
// fragment in it, when present.
func (c *Controller) Upload(ctx context.Context, filename, mimeType string, data []byte) error {
	c.mu.Lock()
	if c.state.Busy() {
		c.mu.Unlock()
		c.notifier.Notify(LevelWarn, "Busy", "Another operation is in progress.")
		return fault.ErrBusy
	}
	if !strings.HasPrefix(mimeType, "audio/") {
		c.mu.Unlock()
		c.notifier.Notify(LevelWarn, "Invalid File", "Please choose an audio file.")
		return fmt.Errorf("%w: %q", fault.ErrNotAudio, mimeType)
	}
	if len(data) == 0 {
		c.mu.Unlock()
		c.notifier.Notify(LevelWarn, "Invalid File", "The selected file is empty.")
		return fault.ErrEmptyAudio
	}

	name := nameFromFilename(filename)
	date := dateFromFilename(filename, c.now())
	c.session.MeetingName = name
	c.session.MeetingDate = date
	sess := c.session
	c.setStateLocked(entity.StateSaving)
	c.mu.Unlock()

	artifact := entity.AudioArtifact{
		Data:            data,
		MimeType:        mimeType,
		DurationSeconds: probeDuration(mimeType, data),
	}
	record := &entity.RecordingRecord{
		Name:              name,
		TimestampMs:       date.UnixMilli(),
		DurationSeconds:   artifact.DurationSeconds,
		MimeType:          mimeType,
		RecordingLanguage: sess.RecordingLanguage,
		AnalysisLanguage:  sess.AnalysisLanguage,
		Audio:             data,
	}
	id, err := c.store.Save(ctx, record)
	if err != nil {
		c.fail(entity.StateError, "Save Failed", err)
		return err
	}
	c.logger.Infof("uploaded %q saved as #%d", name, id)

	c.mu.Lock()
	c.loadedID = &id
	c.mu.Unlock()

	return c.transcribe(ctx, artifact, name)
}

// SelectRecording loads a stored recording and re-transcribes it.
func (c *Controller) SelectRecording(ctx context.Context, id int64) error {
	c.mu.Lock()
	if c.state.Busy() {
		c.mu.Unlock()
		c.notifier.Notify(LevelWarn, "Busy", "Another operation is in progress.")
		return fault.ErrBusy
	}
	c.setStateLocked(entity.StateLoadingRecording)
	c.mu.Unlock()

	record, err := c.store.Get(ctx, id)
	if err != nil {
		c.fail(entity.StateError, "Load Failed", err)
		return err
	}

	c.mu.Lock()
	c.session.MeetingName = record.Name
	c.session.MeetingDate = time.UnixMilli(record.TimestampMs)
	if record.RecordingLanguage.Valid() {
		c.session.RecordingLanguage = record.RecordingLanguage
	}
	if record.AnalysisLanguage.Valid() {
		c.session.AnalysisLanguage = record.AnalysisLanguage
	}
	c.loadedID = &record.ID
	c.mu.Unlock()

	return c.transcribe(ctx, record.Artifact(), record.Name)
}

// Recordings lists stored recording metadata, newest first.
func (c *Controller) Recordings(ctx context.Context) ([]entity.Metadata, error) {
	return c.store.ListMetadata(ctx)
}

// DeleteRecording removes a stored recording. A currently loaded recording
// being deleted detaches the link but keeps the transcript.
func (c *Controller) DeleteRecording(ctx context.Context, id int64) error {
	if err := c.store.Delete(ctx, id); err != nil {
		c.notifier.Notify(LevelWarn, "Delete Failed", err.Error())
		return err
	}
	c.mu.Lock()
	if c.loadedID != nil && *c.loadedID == id {
		c.loadedID = nil
	}
	c.mu.Unlock()
	c.notifier.Notify(LevelInfo, "Recording Deleted", fmt.Sprintf("Recording #%d removed.", id))
	return nil
}

// ============================================================
// Transcription, analysis, export
// ============================================================

// transcribe is the shared tail of stop, upload and select. A fresh
// transcript replaces any previous one; derived results are cleared.
func (c *Controller) transcribe(ctx context.Context, artifact entity.AudioArtifact, label string) error {
	c.mu.Lock()
	c.transcript = ""
	c.result = nil
	c.artifact = nil
	c.setStateLocked(entity.StateTranscribing)
	c.mu.Unlock()

	text, err := c.stage.Run(ctx, artifact, label)
	if err != nil {
		if errors.Is(err, transcribe.ErrInFlight) {
			// Already being handled by the first caller; drop quietly.
			return nil
		}
		c.fail(entity.StateError, "Transcription Failed", err)
		return err
	}

	c.mu.Lock()
	c.transcript = text
	c.liveCaption = ""
	c.lastError = ""
	c.setStateLocked(entity.StateIdle)
	c.mu.Unlock()
	c.notifier.Notify(LevelInfo, "Transcription Complete", "The transcript is ready for analysis.")
	return nil
}

// Process runs the analysis pipeline over the current transcript.
func (c *Controller) Process(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Busy() {
		c.mu.Unlock()
		c.notifier.Notify(LevelWarn, "Busy", "Another operation is in progress.")
		return fault.ErrBusy
	}
	if strings.TrimSpace(c.transcript) == "" {
		c.mu.Unlock()
		c.notifier.Notify(LevelWarn, "No Transcript", "Record or upload a meeting first.")
		return fault.ErrNoTranscript
	}
	transcript := c.transcript
	language := c.session.AnalysisLanguage
	c.result = nil
	c.artifact = nil
	c.setStateLocked(entity.StateProcessing)
	c.mu.Unlock()

	result, err := c.analysis.Run(ctx, transcript, language)
	if err != nil {
		c.fail(entity.StateError, "Analysis Failed", err)
		return err
	}

	c.mu.Lock()
	c.result = result
	c.lastError = ""
	c.setStateLocked(entity.StateDone)
	c.mu.Unlock()
	c.notifier.Notify(LevelInfo, "Analysis Complete", "Sentiment, topics and key points are ready.")
	return nil
}

// Export generates content in the requested format from the current
// analysis aggregate. The print format dispatches a report and returns to
// done; other formats hold the artifact in export_ready.
func (c *Controller) Export(ctx context.Context, format entity.ExportFormat) error {
	c.mu.Lock()
	if c.state.Busy() {
		c.mu.Unlock()
		c.notifier.Notify(LevelWarn, "Busy", "Another operation is in progress.")
		return fault.ErrBusy
	}
	if c.result == nil || !c.result.Complete() {
		c.mu.Unlock()
		c.notifier.Notify(LevelWarn, "Analysis Not Ready", "Run the analysis before exporting.")
		return fault.ErrEmptyResult
	}
	in := flows.ExportContentInput{
		Result:               c.result,
		Format:               format,
		OriginalTranscript:   c.transcript,
		TranslatedTranscript: c.result.TranslatedTranscript,
		Language:             c.session.AnalysisLanguage,
	}
	meta := export.ReportMeta{MeetingName: c.session.MeetingName, MeetingDate: c.session.MeetingDate}
	c.setStateLocked(entity.StateGeneratingExport)
	c.mu.Unlock()

	artifact, printed, err := c.export.Run(ctx, in, meta)
	if err != nil {
		c.fail(entity.StateError, "Export Failed", err)
		return err
	}

	c.mu.Lock()
	c.artifact = artifact
	c.lastError = ""
	if printed {
		c.setStateLocked(entity.StateDone)
	} else {
		c.setStateLocked(entity.StateExportReady)
	}
	c.mu.Unlock()
	if printed {
		c.notifier.Notify(LevelInfo, "Report Sent", "The report was dispatched for printing.")
	} else {
		c.notifier.Notify(LevelInfo, "Export Ready", fmt.Sprintf("The %s export is ready to download.", format))
	}
	return nil
}

// ============================================================
// Transcript edits and reset
// ============================================================

// SetTranscript applies a manual edit, allowed only once the current run
// has reached a terminal state. Any edit invalidates derived data: the
// analysis aggregate and export artifact are cleared, the loaded recording
// link is detached, and the controller returns to idle.
func (c *Controller) SetTranscript(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.Terminal() {
		return fault.ErrBusy
	}
	c.transcript = text
	c.result = nil
	c.artifact = nil
	c.loadedID = nil
	c.lastError = ""
	c.setStateLocked(entity.StateIdle)
	return nil
}

// Reset clears the session and all derived data. The recording language is
// deliberately sticky. Recording must be stopped first.
func (c *Controller) Reset() error {
	c.mu.Lock()
	if c.state == entity.StateRecording {
		c.mu.Unlock()
		c.notifier.Notify(LevelWarn, "Recording Active", "Stop the recording before resetting.")
		return fault.ErrBusy
	}
	kept := c.session.RecordingLanguage
	c.session = entity.NewSession()
	c.session.RecordingLanguage = kept
	c.transcript = ""
	c.liveCaption = ""
	c.loadedID = nil
	c.result = nil
	c.artifact = nil
	c.lastError = ""
	if c.gate.Status() == permission.StatusDenied {
		c.setStateLocked(entity.StatePermissionDenied)
	} else {
		c.setStateLocked(entity.StateIdle)
	}
	c.mu.Unlock()
	c.pipeline.Abort()
	c.notifier.Notify(LevelInfo, "Reset Complete", "Ready for a new meeting.")
	return nil
}

// ============================================================
// Observation
// ============================================================

// Snapshot is the externally observable state at one instant.
type Snapshot struct {
	State             entity.ProcessingState   `json:"state"`
	MeetingName       string                   `json:"meetingName"`
	MeetingDate       time.Time                `json:"meetingDate"`
	RecordingLanguage entity.RecordingLanguage `json:"recordingLanguage"`
	AnalysisLanguage  entity.AnalysisLanguage  `json:"analysisLanguage"`
	Transcript        string                   `json:"transcript"`
	LiveCaption       string                   `json:"liveCaption"`
	RemainingSeconds  int                      `json:"remainingSeconds"`
	Recording         bool                     `json:"recording"`
	LoadedRecordingID *int64                   `json:"loadedRecordingId,omitempty"`
	Result            *entity.AnalysisResult   `json:"result,omitempty"`
	Export            *entity.ExportArtifact   `json:"export,omitempty"`
	LastError         string                   `json:"lastError,omitempty"`
	Permission        string                   `json:"permission"`
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	caption := c.liveCaption
	if live := c.pipeline.LiveCaption(); live != "" {
		caption = live
	}
	remaining, _ := c.pipeline.RemainingSeconds()
	var loaded *int64
	if c.loadedID != nil {
		id := *c.loadedID
		loaded = &id
	}
	return Snapshot{
		State:             c.state,
		MeetingName:       c.session.MeetingName,
		MeetingDate:       c.session.MeetingDate,
		RecordingLanguage: c.session.RecordingLanguage,
		AnalysisLanguage:  c.session.AnalysisLanguage,
		Transcript:        c.transcript,
		LiveCaption:       caption,
		RemainingSeconds:  remaining,
		Recording:         c.pipeline.Recording(),
		LoadedRecordingID: loaded,
		Result:            c.result,
		Export:            c.artifact,
		LastError:         c.lastError,
		Permission:        c.gate.Status().String(),
	}
}

// State returns the current processing state.
func (c *Controller) State() entity.ProcessingState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ============================================================
// Internals
// ============================================================

func (c *Controller) setStateLocked(next entity.ProcessingState) {
	if c.state == next {
		return
	}
	c.logger.Debugf("state %s -> %s", c.state, next)
	c.state = next
}

// fail records a terminal failure: one state transition, one stored cause,
// one user notification.
func (c *Controller) fail(state entity.ProcessingState, title string, err error) {
	reason := reasonFor(err)
	c.mu.Lock()
	c.lastError = reason
	c.setStateLocked(state)
	c.mu.Unlock()
	c.logger.Errorf("%s: %v", title, err)
	c.notifier.Notify(LevelError, title, reason)
}

// reasonFor picks the user-facing explanation: permission and device
// failures get the dedicated microphone wording, everything else the
// wrapped cause message.
func reasonFor(err error) string {
	switch fault.KindOf(err) {
	case fault.KindPermission, fault.KindDevice:
		return permission.Reason(err)
	default:
		return err.Error()
	}
}
