// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"themehub/internal/middleware"
	"themehub/internal/preview"
	"themehub/internal/uploader"
)

const uploadMaxSize = 1 << 20

var dialogTheme = []byte(`{"bgColor1":"#101820","font":"Roboto","bgImage":"none"}`)

type uploadsFixture struct {
	db     *fakeDB
	blobs  *fakeBlobs
	cache  *fakeCache
	router http.Handler
}

// newUploadsFixture wires the dialog handlers with a real state machine
// and renderer over in-memory stores.
func newUploadsFixture(t *testing.T) *uploadsFixture {
	t.Helper()
	f := &uploadsFixture{db: newFakeDB(), blobs: newFakeBlobs(), cache: newFakeCache()}

	cfg := preview.DefaultRenderConfig()
	cfg.Width, cfg.Height = 160, 90 // keep tests fast
	svc := uploader.New(f.db, f.db, f.blobs, preview.New(cfg), uploadMaxSize)
	h := NewUploads(svc, f.blobs, f.cache, "https://hub.test", uploadMaxSize)

	r := chi.NewRouter()
	r.Use(middleware.NewIdentity(f.db).Middleware)
	r.Post("/uploads", h.Start)
	r.Delete("/uploads", h.Cancel)
	r.Post("/uploads/file", h.SubmitFile)
	r.Post("/uploads/name", h.SubmitName)
	r.Post("/uploads/description", h.SubmitDescription)
	r.Post("/uploads/visibility", h.SubmitVisibility)
	f.router = r
	return f
}

func (f *uploadsFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *uploadsFixture) mustStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) map[string]any {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status: got %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
	return decodeBody(t, rec)
}

func TestUploadDialogEndToEnd(t *testing.T) {
	f := newUploadsFixture(t)
	f.db.addUser("alice", 10)

	body := f.mustStatus(t, f.do(jsonRequest(http.MethodPost, "/uploads", "alice", nil)), http.StatusCreated)
	if body["stage"] != "awaiting_file" {
		t.Errorf("stage after start: %v", body["stage"])
	}

	body = f.mustStatus(t, f.do(fileRequest(t, "/uploads/file", "alice", "neon.fptheme", dialogTheme)), http.StatusOK)
	if body["stage"] != "awaiting_name" {
		t.Errorf("stage after file: %v", body["stage"])
	}
	if body["remaining_slots"].(float64) != 9 {
		t.Errorf("remaining slots: %v", body["remaining_slots"])
	}

	f.mustStatus(t, f.do(jsonRequest(http.MethodPost, "/uploads/name", "alice", map[string]string{"text": "Cyberpunk Neon"})), http.StatusOK)
	f.mustStatus(t, f.do(jsonRequest(http.MethodPost, "/uploads/description", "alice", map[string]string{"text": "Neon city vibes"})), http.StatusOK)

	body = f.mustStatus(t, f.do(jsonRequest(http.MethodPost, "/uploads/visibility", "alice", map[string]string{"text": "public"})), http.StatusCreated)
	publicID, _ := body["public_id"].(string)
	if publicID == "" {
		t.Fatal("expected public id in completion response")
	}
	if body["share_url"] != "https://hub.test/themes/"+publicID {
		t.Errorf("share url: %v", body["share_url"])
	}
	if !strings.HasPrefix(body["preview_url"].(string), "https://cdn.test/previews/") {
		t.Errorf("preview url: %v", body["preview_url"])
	}

	if count, _ := f.db.CountThemesOwnedBy("alice"); count != 1 {
		t.Errorf("owned count: got %d", count)
	}
	// Artifact plus rendered preview stored.
	if len(f.blobs.objects) != 2 {
		t.Errorf("stored objects: got %d, want 2", len(f.blobs.objects))
	}
	// The catalog changed, so the cache was dropped.
	if f.cache.invalidated == 0 {
		t.Error("catalog cache not invalidated on completion")
	}
}

func TestUploadQuotaExceeded(t *testing.T) {
	f := newUploadsFixture(t)
	f.db.addUser("carol", 1)
	f.db.addTheme("carol", "Only One", "private")

	rec := f.do(jsonRequest(http.MethodPost, "/uploads", "carol", nil))
	body := f.mustStatus(t, rec, http.StatusForbidden)
	if body["code"] != "quota_exceeded" {
		t.Errorf("code: %v", body["code"])
	}
}

func TestUploadRejectionsKeepDialog(t *testing.T) {
	f := newUploadsFixture(t)
	f.db.addUser("alice", 10)
	f.do(jsonRequest(http.MethodPost, "/uploads", "alice", nil))

	rec := f.do(fileRequest(t, "/uploads/file", "alice", "theme.zip", dialogTheme))
	body := f.mustStatus(t, rec, http.StatusUnprocessableEntity)
	if body["code"] != "invalid_format" {
		t.Errorf("code: %v", body["code"])
	}

	rec = f.do(fileRequest(t, "/uploads/file", "alice", "broken.fptheme", []byte(`{"font":"Roboto"}`)))
	body = f.mustStatus(t, rec, http.StatusUnprocessableEntity)
	if body["code"] != "invalid_structure" {
		t.Errorf("code: %v", body["code"])
	}

	// Still at the file step; a valid retry is accepted.
	rec = f.do(fileRequest(t, "/uploads/file", "alice", "ok.fptheme", dialogTheme))
	f.mustStatus(t, rec, http.StatusOK)
}

func TestUploadDuplicateContent(t *testing.T) {
	f := newUploadsFixture(t)
	f.db.addUser("alice", 10)
	f.db.addUser("bob", 10)

	runDialog := func(account string) *httptest.ResponseRecorder {
		f.do(jsonRequest(http.MethodPost, "/uploads", account, nil))
		rec := f.do(fileRequest(t, "/uploads/file", account, "same.fptheme", dialogTheme))
		if rec.Code != http.StatusOK {
			return rec
		}
		f.do(jsonRequest(http.MethodPost, "/uploads/name", account, map[string]string{"text": "Same"}))
		f.do(jsonRequest(http.MethodPost, "/uploads/description", account, map[string]string{"text": ""}))
		return f.do(jsonRequest(http.MethodPost, "/uploads/visibility", account, map[string]string{"text": "public"}))
	}

	if rec := runDialog("alice"); rec.Code != http.StatusCreated {
		t.Fatalf("first dialog: %d (%s)", rec.Code, rec.Body.String())
	}

	rec := runDialog("bob")
	body := f.mustStatus(t, rec, http.StatusConflict)
	if body["code"] != "duplicate_content" {
		t.Errorf("code: %v", body["code"])
	}
}

func TestUploadStepsOutOfOrder(t *testing.T) {
	f := newUploadsFixture(t)
	f.db.addUser("alice", 10)

	rec := f.do(jsonRequest(http.MethodPost, "/uploads/name", "alice", map[string]string{"text": "Early"}))
	body := f.mustStatus(t, rec, http.StatusNotFound)
	if body["code"] != "no_active_upload" {
		t.Errorf("code: %v", body["code"])
	}

	f.do(jsonRequest(http.MethodPost, "/uploads", "alice", nil))
	rec = f.do(jsonRequest(http.MethodPost, "/uploads/visibility", "alice", map[string]string{"text": "public"}))
	body = f.mustStatus(t, rec, http.StatusConflict)
	if body["code"] != "wrong_stage" {
		t.Errorf("code: %v", body["code"])
	}
}

func TestUploadCancel(t *testing.T) {
	f := newUploadsFixture(t)
	f.db.addUser("alice", 10)

	rec := f.do(jsonRequest(http.MethodDelete, "/uploads", "alice", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("cancel without draft: got %d", rec.Code)
	}

	f.do(jsonRequest(http.MethodPost, "/uploads", "alice", nil))
	f.do(fileRequest(t, "/uploads/file", "alice", "neon.fptheme", dialogTheme))

	rec = f.do(jsonRequest(http.MethodDelete, "/uploads", "alice", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel: got %d", rec.Code)
	}
	if len(f.blobs.objects) != 0 {
		t.Errorf("artifact not removed on cancel: %d objects", len(f.blobs.objects))
	}
}

func TestUploadBannedAccountBlocked(t *testing.T) {
	f := newUploadsFixture(t)
	f.db.addUser("mallory", 10)
	f.db.users["mallory"].IsBanned = true

	rec := f.do(jsonRequest(http.MethodPost, "/uploads", "mallory", nil))
	if rec.Code != http.StatusForbidden {
		t.Errorf("banned account: got %d, want 403", rec.Code)
	}
}

func TestUploadMissingFileField(t *testing.T) {
	f := newUploadsFixture(t)
	f.db.addUser("alice", 10)
	f.do(jsonRequest(http.MethodPost, "/uploads", "alice", nil))

	req := jsonRequest(http.MethodPost, "/uploads/file", "alice", map[string]string{"oops": "no file"})
	rec := f.do(req)
	if rec.Code != http.StatusRequestEntityTooLarge && rec.Code != http.StatusBadRequest {
		t.Errorf("missing file: got %d", rec.Code)
	}
}
