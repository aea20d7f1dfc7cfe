// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.
package capture

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/meetmind/meetmind/internal/entity"
	"github.com/meetmind/meetmind/internal/fault"
	"github.com/meetmind/meetmind/pkg/commons"
)

// DefaultRecordingLimit is the hard wall-clock ceiling on one recording.
const DefaultRecordingLimit = 10 * time.Minute

type phase int

const (
	phaseIdle phase = iota
	phaseRecording
	phaseStopping
)

// Callbacks are invoked by the pipeline's internal goroutines. OnAutoStop
// fires once when the recording ceiling is reached; OnFatal fires once on an
// unrecoverable mid-recording failure (e.g. permission revoked on the
// caption stream, unsupported language).
type Callbacks struct {
	OnAutoStop func()
	OnFatal    func(error)
	// OnCaption is invoked with the updated live-preview string.
	OnCaption func(string)
}

// Pipeline owns the capture device handle and the live-caption subscription
// for the lifetime of one recording. Device resources and the side-channel
// are released exactly once per Start regardless of the stop path.
type Pipeline struct {
	logger   commons.Logger
	device   CaptureDevice
	captions LiveCaptionSource

	limit      time.Duration
	clock      func() time.Time
	preference []string
	sampleRate int
	channels   int

	mu            sync.Mutex
	phase         phase
	mimeType      string
	chunks        [][]byte
	totalBytes    int
	startedAt     time.Time
	released      bool
	captionFinal  strings.Builder
	captionText   string
	captionLang   entity.RecordingLanguage
	callbacks     Callbacks
	deadline      *deadline
	captionActive bool
}

type PipelineOption func(*Pipeline)

// WithLimit overrides the recording ceiling.
func WithLimit(limit time.Duration) PipelineOption {
	return func(p *Pipeline) { p.limit = limit }
}

// WithClock injects a fake clock for tests.
func WithClock(clock func() time.Time) PipelineOption {
	return func(p *Pipeline) { p.clock = clock }
}

// WithFormatPreference overrides the encoding preference list.
func WithFormatPreference(preferred []string) PipelineOption {
	return func(p *Pipeline) { p.preference = preferred }
}

// WithAudioConfig sets the PCM geometry used when finalizing WAV artifacts.
func WithAudioConfig(sampleRate, channels int) PipelineOption {
	return func(p *Pipeline) {
		p.sampleRate = sampleRate
		p.channels = channels
	}
}

// NewPipeline builds a capture pipeline. captions may be nil on platforms
// without a continuous recognizer; captures then run without a preview.
func NewPipeline(logger commons.Logger, device CaptureDevice, captions LiveCaptionSource, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		logger:     logger,
		device:     device,
		captions:   captions,
		limit:      DefaultRecordingLimit,
		clock:      time.Now,
		preference: FormatPreference,
		sampleRate: 16000,
		channels:   1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start validates the session, acquires the device and begins chunk
// accumulation plus the caption side-channel. Precondition checks
// (permission) belong to the caller; the pipeline reports device failures
// through its error return.
func (p *Pipeline) Start(sess entity.Session, cb Callbacks) error {
	if err := sess.Validate(); err != nil {
		return err
	}

	p.mu.Lock()
	if p.phase != phaseIdle {
		p.mu.Unlock()
		return fmt.Errorf("%w: capture already running", fault.ErrBusy)
	}
	p.phase = phaseRecording
	p.callbacks = cb
	p.captionLang = sess.RecordingLanguage
	p.chunks = nil
	p.totalBytes = 0
	p.captionFinal.Reset()
	p.captionText = ""
	p.released = false
	p.startedAt = p.clock()
	p.mu.Unlock()

	mimeType, err := p.device.Open(p.preference)
	if err != nil {
		p.abortLocked(fmt.Errorf("opening capture device: %w", err))
		return fmt.Errorf("opening capture device: %w", err)
	}

	p.mu.Lock()
	p.mimeType = mimeType
	p.mu.Unlock()

	if err := p.device.Start(p.appendChunk); err != nil {
		p.abortLocked(fmt.Errorf("starting capture device: %w", err))
		return fmt.Errorf("starting capture device: %w", err)
	}

	p.startCaptions()

	p.mu.Lock()
	p.deadline = newDeadline(p.limit, p.clock, func() {
		p.logger.Infof("recording ceiling of %s reached, forcing stop", p.limit)
		if cb.OnAutoStop != nil {
			cb.OnAutoStop()
		}
	})
	p.mu.Unlock()

	p.logger.Infof("recording started: language=%s, format=%s, limit=%s",
		sess.RecordingLanguage, mimeType, p.limit)
	return nil
}

// startCaptions connects the side-channel. Failure to start is not a capture
// failure; the preview just stays unavailable.
func (p *Pipeline) startCaptions() {
	if p.captions == nil {
		return
	}

	p.mu.Lock()
	lang := p.captionLang
	p.mu.Unlock()

	handlers := CaptionHandlers{
		OnResult: p.captionResult,
		OnEnd:    p.captionEnded,
		OnError:  p.captionFailed,
	}
	if err := p.captions.Start(lang, handlers); err != nil {
		p.logger.Warnf("live captions unavailable: %v", err)
		p.setCaption("(live caption preview not available)")
		return
	}
	p.mu.Lock()
	p.captionActive = true
	p.mu.Unlock()
}

func (p *Pipeline) captionResult(text string, final bool) {
	p.mu.Lock()
	if final {
		p.captionFinal.WriteString(text)
		p.captionFinal.WriteString(" ")
		p.captionText = p.captionFinal.String()
	} else {
		p.captionText = p.captionFinal.String() + text
	}
	preview := p.captionText
	onCaption := p.callbacks.OnCaption
	p.mu.Unlock()

	if onCaption != nil {
		onCaption(preview)
	}
}

// captionEnded handles a transient recognizer disconnect: restart while the
// capture is still recording, stay quiet otherwise.
func (p *Pipeline) captionEnded() {
	p.mu.Lock()
	recording := p.phase == phaseRecording
	p.captionActive = false
	p.mu.Unlock()

	if !recording {
		return
	}
	p.logger.Debugf("caption stream ended mid-recording, restarting")
	p.startCaptions()
}

// captionFailed propagates an unrecoverable side-channel error as a capture
// failure.
func (p *Pipeline) captionFailed(err error) {
	p.mu.Lock()
	recording := p.phase == phaseRecording
	onFatal := p.callbacks.OnFatal
	p.captionActive = false
	p.mu.Unlock()

	if !recording {
		return
	}
	p.logger.Errorf("caption stream failed, stopping capture: %v", err)
	if onFatal != nil {
		onFatal(err)
	}
}

// appendChunk accumulates one encoded chunk and forwards it to the caption
// side-channel best-effort.
func (p *Pipeline) appendChunk(chunk []byte) {
	if len(chunk) == 0 {
		return
	}

	p.mu.Lock()
	if p.phase == phaseIdle {
		p.mu.Unlock()
		return
	}
	buf := make([]byte, len(chunk))
	copy(buf, chunk)
	p.chunks = append(p.chunks, buf)
	p.totalBytes += len(buf)
	feed := p.captionActive
	p.mu.Unlock()

	if feed && p.captions != nil {
		if err := p.captions.Feed(chunk); err != nil {
			p.logger.Debugf("caption feed dropped: %v", err)
		}
	}
}

// Stop finalizes the capture and yields the finished artifact. A Stop while
// not recording is an idempotent no-op returning (nil, nil); zero captured
// chunks is a data error. Device resources are released on every path.
func (p *Pipeline) Stop() (*entity.AudioArtifact, error) {
	p.mu.Lock()
	if p.phase != phaseRecording {
		p.mu.Unlock()
		return nil, nil
	}
	p.phase = phaseStopping
	elapsed := p.clock().Sub(p.startedAt)
	p.mu.Unlock()

	p.teardown()

	if err := p.device.Stop(); err != nil {
		p.logger.Warnf("capture device stop reported: %v", err)
	}
	p.release()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.phase = phaseIdle
	if p.totalBytes == 0 {
		return nil, fault.ErrEmptyAudio
	}

	data := make([]byte, 0, p.totalBytes)
	for _, chunk := range p.chunks {
		data = append(data, chunk...)
	}
	p.chunks = nil

	mimeType := p.mimeType
	if mimeType == MimeTypeWAV {
		encoded, err := EncodeWAV(data, p.sampleRate, p.channels)
		if err != nil {
			return nil, fmt.Errorf("finalizing wav artifact: %w", err)
		}
		data = encoded
	}

	duration := elapsed.Seconds()
	if ceiling := p.limit.Seconds(); duration > ceiling {
		duration = ceiling
	}

	p.logger.Infof("recording finished: %d bytes, %.1fs, %s", len(data), duration, mimeType)
	return &entity.AudioArtifact{
		Data:            data,
		MimeType:        mimeType,
		DurationSeconds: duration,
	}, nil
}

// Abort discards the in-flight recording without producing an artifact,
// releasing all resources. Used on permission revocation and reset.
func (p *Pipeline) Abort() {
	p.mu.Lock()
	if p.phase == phaseIdle {
		p.mu.Unlock()
		return
	}
	p.phase = phaseStopping
	p.mu.Unlock()

	p.teardown()
	if err := p.device.Stop(); err != nil {
		p.logger.Debugf("capture device stop during abort: %v", err)
	}
	p.release()

	p.mu.Lock()
	p.phase = phaseIdle
	p.chunks = nil
	p.totalBytes = 0
	p.mu.Unlock()
	p.logger.Infof("recording aborted")
}

// abortLocked is the failure path out of Start before recording began.
func (p *Pipeline) abortLocked(cause error) {
	p.teardown()
	p.release()
	p.mu.Lock()
	p.phase = phaseIdle
	p.chunks = nil
	p.totalBytes = 0
	p.mu.Unlock()
	p.logger.Errorf("capture start failed: %v", cause)
}

// teardown clears the deadline timers and the caption subscription.
func (p *Pipeline) teardown() {
	p.mu.Lock()
	dl := p.deadline
	p.deadline = nil
	active := p.captionActive
	p.captionActive = false
	p.mu.Unlock()

	if dl != nil {
		dl.Stop()
	}
	if active && p.captions != nil {
		if err := p.captions.Stop(); err != nil {
			p.logger.Debugf("caption stop reported: %v", err)
		}
	}
}

// release closes the device exactly once per Start.
func (p *Pipeline) release() {
	p.mu.Lock()
	if p.released {
		p.mu.Unlock()
		return
	}
	p.released = true
	p.mu.Unlock()

	if err := p.device.Close(); err != nil {
		p.logger.Warnf("capture device close reported: %v", err)
	}
}

// Recording reports whether a capture is in flight.
func (p *Pipeline) Recording() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase == phaseRecording
}

// LiveCaption returns the current best-effort preview string.
func (p *Pipeline) LiveCaption() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.captionText
}

func (p *Pipeline) setCaption(text string) {
	p.mu.Lock()
	p.captionText = text
	p.mu.Unlock()
}

// RemainingSeconds reports seconds until the forced stop, and false when no
// recording is active.
func (p *Pipeline) RemainingSeconds() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.phase != phaseRecording || p.deadline == nil {
		return 0, false
	}
	return p.deadline.RemainingSeconds(), true
}
