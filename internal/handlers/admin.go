// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Admin serves the moderation and billing endpoints. Both route groups
// are guarded by static tokens; the callers are trusted internal systems,
// not end users.
type Admin struct {
	users  UserStore
	themes ThemeStore
	blobs  BlobStore    // may be nil
	browse CatalogCache // may be nil
}

// NewAdmin creates the admin handlers.
func NewAdmin(users UserStore, themes ThemeStore, blobs BlobStore, browse CatalogCache) *Admin {
	return &Admin{users: users, themes: themes, blobs: blobs, browse: browse}
}

// Ban blocks a user from the service.
// POST /admin/users/{id}/ban
func (a *Admin) Ban(w http.ResponseWriter, r *http.Request) {
	a.setBan(w, r, true)
}

// Unban lifts a user's ban.
// POST /admin/users/{id}/unban
func (a *Admin) Unban(w http.ResponseWriter, r *http.Request) {
	a.setBan(w, r, false)
}

func (a *Admin) setBan(w http.ResponseWriter, r *http.Request, banned bool) {
	id := chi.URLParam(r, "id")

	user, err := a.users.GetUser(id)
	if err != nil {
		slog.Error("user lookup failed", "user", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	if err := a.users.SetBanStatus(id, banned); err != nil {
		slog.Error("ban update failed", "user", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	slog.Info("ban status changed", "user", id, "banned", banned)
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "banned": banned})
}

// DeleteTheme removes any theme without an ownership check.
// DELETE /admin/themes/{id}
func (a *Admin) DeleteTheme(w http.ResponseWriter, r *http.Request) {
	id, ok := themeID(w, r)
	if !ok {
		return
	}

	deleted, err := a.themes.AdminDeleteTheme(id)
	if err != nil {
		slog.Error("admin theme delete failed", "theme", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if deleted == nil {
		writeError(w, http.StatusNotFound, "theme not found")
		return
	}

	// Blob cleanup is best effort, like the owner-facing delete.
	if a.blobs != nil {
		ctx := r.Context()
		if err := a.blobs.DeleteArtifact(ctx, deleted.ContentKey); err != nil {
			slog.Warn("artifact delete failed", "key", deleted.ContentKey, "error", err)
		}
		if err := a.blobs.DeletePreview(ctx, deleted.PreviewKey); err != nil {
			slog.Warn("preview delete failed", "key", deleted.PreviewKey, "error", err)
		}
	}
	if a.browse != nil {
		a.browse.InvalidateAll(r.Context())
	}

	slog.Info("theme removed by admin", "theme", id, "owner", deleted.OwnerID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GrantSlots raises a user's theme quota. Invoked by the billing system
// on confirmed payment; the count is additive with no upper bound.
// POST /billing/users/{id}/slots
func (a *Admin) GrantSlots(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Count <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "count must be positive")
		return
	}

	user, err := a.users.GetUser(id)
	if err != nil {
		slog.Error("user lookup failed", "user", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	if err := a.users.GrantSlots(id, body.Count); err != nil {
		slog.Error("slot grant failed", "user", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	slog.Info("theme slots granted", "user", id, "count", body.Count)
	writeJSON(w, http.StatusOK, map[string]any{
		"id":          id,
		"theme_slots": user.ThemeSlots + body.Count,
	})
}
