// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.

package controller

import "github.com/meetmind/meetmind/pkg/commons"

// Level grades a notification for display purposes.
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Notifier receives user-facing notices. Every failure produces exactly one
// notice; transient side-channel hiccups produce none.
type Notifier interface {
	Notify(level Level, title, description string)
}

// LogNotifier is the default Notifier, writing notices to the application
// log.
type LogNotifier struct {
	Logger commons.Logger
}

func (n *LogNotifier) Notify(level Level, title, description string) {
	switch level {
	case LevelError:
		n.Logger.Errorf("notice: %s: %s", title, description)
	case LevelWarn:
		n.Logger.Warnf("notice: %s: %s", title, description)
	default:
		n.Logger.Infof("notice: %s: %s", title, description)
	}
}
