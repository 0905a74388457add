// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package uploader implements the multi-step theme submission workflow.
// Each submitter walks a strict linear dialog: file, name, description,
// visibility. Drafts are transient in-process state; a theme row is
// persisted in exactly one atomic store call after rendering succeeds.
package uploader

import (
	"time"

	"themehub/internal/themecfg"
)

// Stage identifies the step a submission draft is waiting on. Stages
// advance strictly forward; the only way back is a full restart.
type Stage int

const (
	StageAwaitingFile Stage = iota
	StageAwaitingName
	StageAwaitingDescription
	StageAwaitingVisibility
)

// String returns the stage name for logging and API responses.
func (s Stage) String() string {
	switch s {
	case StageAwaitingFile:
		return "awaiting_file"
	case StageAwaitingName:
		return "awaiting_name"
	case StageAwaitingDescription:
		return "awaiting_description"
	case StageAwaitingVisibility:
		return "awaiting_visibility"
	}
	return "unknown"
}

// Draft accumulates submission fields across dialog steps. The raw
// uploaded bytes are not retained: after hashing and validation only the
// stored artifact key, the content hash, and the parsed config remain.
type Draft struct {
	OwnerID     string
	Stage       Stage
	ContentKey  string
	ContentHash string
	Config      *themecfg.Config
	Name        string
	Description string
	StartedAt   time.Time
}
