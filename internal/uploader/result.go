// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package uploader

import "themehub/internal/models"

// Code classifies the outcome of a workflow operation. Recoverable
// validation failures leave the draft unchanged so the submitter can
// retry; terminal codes mean the draft was discarded.
type Code string

const (
	CodeOK               Code = "ok"
	CodeQuotaExceeded    Code = "quota_exceeded"
	CodeInvalidFormat    Code = "invalid_format"
	CodeTooLarge         Code = "too_large"
	CodeDuplicateContent Code = "duplicate_content"
	CodeInvalidStructure Code = "invalid_structure"
	CodeEmptyName        Code = "empty_name"
	CodeInvalidChoice    Code = "invalid_choice"
	CodeRenderFailed     Code = "render_failed"
	CodeStorageConflict  Code = "storage_conflict"
	CodeNoActiveUpload   Code = "no_active_upload"
	CodeWrongStage       Code = "wrong_stage"
	CodeInternal         Code = "internal"
)

// Result is the typed outcome of a workflow operation. Validation
// failures never cross this boundary as Go errors; the dialog continues
// based on the code.
type Result struct {
	Code   Code
	Reason string // human-readable detail for validation failures
	Stage  Stage  // draft stage after the call, when a draft exists

	// RemainingSlots is set by SubmitFile on acceptance: how many more
	// themes the owner can store after this submission completes.
	RemainingSlots int

	// Theme and Preview are set only when finalization completes.
	Theme   *models.Theme
	Preview []byte
}

// OK reports whether the operation was accepted.
func (r Result) OK() bool { return r.Code == CodeOK }

func accepted(stage Stage) Result {
	return Result{Code: CodeOK, Stage: stage}
}

func rejected(code Code, stage Stage, reason string) Result {
	return Result{Code: code, Stage: stage, Reason: reason}
}
