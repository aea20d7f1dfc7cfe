// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.
package entity

// ProcessingState is the single source of truth for what the system is doing.
// Exactly one value holds at any instant; only the controller writes it.
type ProcessingState string

const (
	StateIdle               ProcessingState = "idle"
	StateCheckingPermission ProcessingState = "checking_permission"
	StatePermissionDenied   ProcessingState = "permission_denied"
	StateRecording          ProcessingState = "recording"
	StateStopping           ProcessingState = "stopping"
	StateTranscribing       ProcessingState = "transcribing"
	StateSaving             ProcessingState = "saving"
	StateLoadingRecording   ProcessingState = "loading_recording"
	StateProcessing         ProcessingState = "processing"
	StateGeneratingExport   ProcessingState = "generating_export"
	StateDone               ProcessingState = "done"
	StateExportReady        ProcessingState = "export_ready"
	StateError              ProcessingState = "error"
)

// Busy reports whether a primary operation is in flight. Operations that
// need a clean slate must no-op while this holds.
func (s ProcessingState) Busy() bool {
	switch s {
	case StateCheckingPermission, StateRecording, StateStopping, StateTranscribing,
		StateSaving, StateLoadingRecording, StateProcessing, StateGeneratingExport:
		return true
	}
	return false
}

// Terminal reports whether the state marks the end of a run (successful or
// not) from which a user-initiated operation may start again.
func (s ProcessingState) Terminal() bool {
	switch s {
	case StateIdle, StateDone, StateExportReady, StateError, StatePermissionDenied:
		return true
	}
	return false
}
