// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"themehub/internal/middleware"
	"themehub/internal/uploader"
)

// Uploads exposes the submission dialog over HTTP. Each endpoint maps to
// one state machine operation; the typed outcome decides the status code
// so the dialog client can react to every rejection.
type Uploads struct {
	svc          *uploader.Service
	blobs        BlobStore
	browse       CatalogCache // may be nil
	shareBaseURL string
	maxFileSize  int64
}

// NewUploads creates the upload dialog handlers.
func NewUploads(svc *uploader.Service, blobs BlobStore, browse CatalogCache, shareBaseURL string, maxFileSize int64) *Uploads {
	return &Uploads{
		svc:          svc,
		blobs:        blobs,
		browse:       browse,
		shareBaseURL: shareBaseURL,
		maxFileSize:  maxFileSize,
	}
}

// Start opens a new submission dialog.
// POST /uploads
func (h *Uploads) Start(w http.ResponseWriter, r *http.Request) {
	res := h.svc.Start(r.Context(), middleware.AccountID(r.Context()))
	h.writeOutcome(w, res, http.StatusCreated)
}

// SubmitFile accepts the theme artifact as a multipart upload.
// POST /uploads/file
func (h *Uploads) SubmitFile(w http.ResponseWriter, r *http.Request) {
	// Cap the request body; overhead covers the multipart framing.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+1024)
	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			writeError(w, http.StatusBadRequest, "expected a multipart upload")
			return
		}
		writeError(w, http.StatusRequestEntityTooLarge, "file exceeds the size limit")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read file")
		return
	}

	res := h.svc.SubmitFile(r.Context(), middleware.AccountID(r.Context()), header.Filename, data)
	h.writeOutcome(w, res, http.StatusOK)
}

// SubmitName stores the theme name.
// POST /uploads/name
func (h *Uploads) SubmitName(w http.ResponseWriter, r *http.Request) {
	text, ok := readText(w, r)
	if !ok {
		return
	}
	res := h.svc.SubmitName(middleware.AccountID(r.Context()), text)
	h.writeOutcome(w, res, http.StatusOK)
}

// SubmitDescription stores the theme description.
// POST /uploads/description
func (h *Uploads) SubmitDescription(w http.ResponseWriter, r *http.Request) {
	text, ok := readText(w, r)
	if !ok {
		return
	}
	res := h.svc.SubmitDescription(middleware.AccountID(r.Context()), text)
	h.writeOutcome(w, res, http.StatusOK)
}

// SubmitVisibility finalizes the submission.
// POST /uploads/visibility
func (h *Uploads) SubmitVisibility(w http.ResponseWriter, r *http.Request) {
	text, ok := readText(w, r)
	if !ok {
		return
	}

	res := h.svc.SubmitVisibility(r.Context(), middleware.AccountID(r.Context()), text)
	if !res.OK() {
		h.writeOutcome(w, res, http.StatusOK)
		return
	}

	// A new theme may appear in the public catalog.
	if h.browse != nil {
		h.browse.InvalidateAll(r.Context())
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"code":        string(res.Code),
		"public_id":   res.Theme.PublicID,
		"share_url":   h.shareBaseURL + "/themes/" + res.Theme.PublicID,
		"preview_url": h.blobs.PreviewURL(res.Theme.PreviewKey),
		"visibility":  string(res.Theme.Visibility),
	})
}

// Cancel discards the active draft.
// DELETE /uploads
func (h *Uploads) Cancel(w http.ResponseWriter, r *http.Request) {
	if !h.svc.Cancel(r.Context(), middleware.AccountID(r.Context())) {
		writeError(w, http.StatusNotFound, "no upload in progress")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// writeOutcome maps a state machine result onto an HTTP response.
// okStatus is used when the operation was accepted.
func (h *Uploads) writeOutcome(w http.ResponseWriter, res uploader.Result, okStatus int) {
	if res.OK() {
		body := map[string]any{
			"code":  string(res.Code),
			"stage": res.Stage.String(),
		}
		if res.RemainingSlots > 0 {
			body["remaining_slots"] = res.RemainingSlots
		}
		writeJSON(w, okStatus, body)
		return
	}

	writeJSON(w, statusFor(res.Code), map[string]any{
		"code":  string(res.Code),
		"error": res.Reason,
		"stage": res.Stage.String(),
	})
}

// statusFor maps outcome codes to HTTP status codes.
func statusFor(code uploader.Code) int {
	switch code {
	case uploader.CodeQuotaExceeded:
		return http.StatusForbidden
	case uploader.CodeTooLarge:
		return http.StatusRequestEntityTooLarge
	case uploader.CodeInvalidFormat, uploader.CodeInvalidStructure,
		uploader.CodeEmptyName, uploader.CodeInvalidChoice:
		return http.StatusUnprocessableEntity
	case uploader.CodeDuplicateContent, uploader.CodeStorageConflict,
		uploader.CodeWrongStage:
		return http.StatusConflict
	case uploader.CodeNoActiveUpload:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// readText decodes the {"text": "..."} request body used by the dialog
// text steps. Reports false after writing the error response.
func readText(w http.ResponseWriter, r *http.Request) (string, bool) {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return "", false
	}
	return body.Text, true
}
