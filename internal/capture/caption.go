// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.
package capture

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/meetmind/meetmind/internal/entity"
	"github.com/meetmind/meetmind/internal/fault"
	"github.com/meetmind/meetmind/pkg/commons"
)

// captionMessage is one frame from the streaming recognizer.
type captionMessage struct {
	Text    string `json:"text"`
	IsFinal bool   `json:"is_final"`
	Error   string `json:"error,omitempty"`
}

// Recognizer error codes. "no_speech" is by contract not an error and is
// dropped before it reaches any handler.
const (
	captionErrNoSpeech    = "no_speech"
	captionErrNotAllowed  = "not_allowed"
	captionErrBadLanguage = "language_not_supported"
)

// WebsocketCaptionSource streams captured audio to an external continuous
// speech-to-text endpoint over a websocket and relays interim/final results.
// One Start corresponds to one connection; the pipeline restarts the source
// after transient disconnects while it is still recording.
type WebsocketCaptionSource struct {
	logger   commons.Logger
	endpoint string

	mu       sync.Mutex
	conn     *websocket.Conn
	stopping bool
}

func NewWebsocketCaptionSource(logger commons.Logger, endpoint string) *WebsocketCaptionSource {
	return &WebsocketCaptionSource{logger: logger, endpoint: endpoint}
}

func (s *WebsocketCaptionSource) Start(language entity.RecordingLanguage, handlers CaptionHandlers) error {
	if s.endpoint == "" {
		return fault.ErrCaptionUnsupported
	}

	u, err := url.Parse(s.endpoint)
	if err != nil {
		return fmt.Errorf("%w: bad caption endpoint: %v", fault.ErrCaptionUnsupported, err)
	}
	q := u.Query()
	q.Set("language", string(language))
	q.Set("interim_results", "true")
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("connecting caption stream: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.stopping = false
	s.mu.Unlock()

	go s.readLoop(conn, handlers)
	s.logger.Infof("caption stream connected: language=%s", language)
	return nil
}

func (s *WebsocketCaptionSource) readLoop(conn *websocket.Conn, handlers CaptionHandlers) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			deliberate := s.stopping
			s.mu.Unlock()
			if deliberate {
				return
			}
			// Transient disconnect: the pipeline decides whether to
			// reconnect based on its own state.
			s.logger.Debugf("caption stream disconnected: %v", err)
			if handlers.OnEnd != nil {
				handlers.OnEnd()
			}
			return
		}

		var result captionMessage
		if err := json.Unmarshal(msg, &result); err != nil {
			s.logger.Debugf("dropping malformed caption frame: %v", err)
			continue
		}

		if result.Error != "" {
			switch result.Error {
			case captionErrNoSpeech:
				// Silence is normal in a meeting.
				continue
			case captionErrNotAllowed:
				s.fail(handlers, fault.ErrPermissionRevoked)
				return
			case captionErrBadLanguage:
				s.fail(handlers, fmt.Errorf("%w: language not supported by recognizer", fault.ErrCaptionUnsupported))
				return
			default:
				s.fail(handlers, fmt.Errorf("caption stream error: %s", result.Error))
				return
			}
		}

		if result.Text != "" && handlers.OnResult != nil {
			handlers.OnResult(result.Text, result.IsFinal)
		}
	}
}

func (s *WebsocketCaptionSource) fail(handlers CaptionHandlers, err error) {
	_ = s.Stop()
	if handlers.OnError != nil {
		handlers.OnError(err)
	}
}

func (s *WebsocketCaptionSource) Feed(audio []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return fmt.Errorf("caption stream is not connected")
	}
	if err := s.conn.WriteMessage(websocket.BinaryMessage, audio); err != nil {
		return fmt.Errorf("sending caption audio: %w", err)
	}
	return nil
}

func (s *WebsocketCaptionSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopping = true
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	if err != nil {
		return fmt.Errorf("closing caption stream: %w", err)
	}
	return nil
}
