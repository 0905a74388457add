// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"themehub/internal/cache"
	"themehub/internal/middleware"
	"themehub/internal/models"
)

const (
	// presignExpiry is how long a presigned artifact URL stays valid.
	presignExpiry = 1 * time.Hour

	// qrSize is the pixel size of generated share QR codes.
	qrSize = 256
)

// Themes serves theme management and the public catalog.
type Themes struct {
	themes       ThemeStore
	blobs        BlobStore    // may be nil when storage is not configured
	browse       CatalogCache // may be nil
	pageSize     int
	shareBaseURL string
}

// NewThemes creates the theme handlers.
func NewThemes(themes ThemeStore, blobs BlobStore, browse CatalogCache, pageSize int, shareBaseURL string) *Themes {
	return &Themes{
		themes:       themes,
		blobs:        blobs,
		browse:       browse,
		pageSize:     pageSize,
		shareBaseURL: shareBaseURL,
	}
}

// ownedView is the JSON shape of a theme in the owner's list.
type ownedView struct {
	ID         int64  `json:"id"`
	PublicID   string `json:"public_id"`
	Name       string `json:"name"`
	Visibility string `json:"visibility"`
	PreviewURL string `json:"preview_url,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// ListOwned returns the caller's themes, most recent first.
// GET /themes
func (h *Themes) ListOwned(w http.ResponseWriter, r *http.Request) {
	owner := middleware.AccountID(r.Context())
	themes, err := h.themes.ListThemesOwnedBy(owner)
	if err != nil {
		slog.Error("owned listing failed", "owner", owner, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	views := make([]ownedView, 0, len(themes))
	for _, t := range themes {
		views = append(views, ownedView{
			ID:         t.ID,
			PublicID:   t.PublicID,
			Name:       t.Name,
			Visibility: string(t.Visibility),
			PreviewURL: h.previewURL(t.PreviewKey),
			CreatedAt:  t.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"themes": views})
}

// catalogView is the JSON shape of a public catalog entry.
type catalogView struct {
	PublicID    string `json:"public_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	OwnerName   string `json:"owner_name"`
	PreviewURL  string `json:"preview_url,omitempty"`
}

// Browse returns a page of the public catalog.
// GET /browse?page=N (1-based)
func (h *Themes) Browse(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid page")
			return
		}
		page = n
	}

	ctx := r.Context()
	if h.browse != nil {
		if payload, ok := h.browse.Get(ctx, cache.PageKey(page)); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write(payload)
			return
		}
	}

	themes, err := h.themes.ListPublicThemes((page-1)*h.pageSize, h.pageSize)
	if err != nil {
		slog.Error("catalog listing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	total, err := h.themes.CountPublicThemes()
	if err != nil {
		slog.Error("catalog count failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	views := make([]catalogView, 0, len(themes))
	for _, t := range themes {
		views = append(views, catalogView{
			PublicID:    t.PublicID,
			Name:        t.Name,
			Description: t.Description,
			OwnerName:   t.OwnerName,
			PreviewURL:  h.previewURL(t.PreviewKey),
		})
	}

	payload, err := json.Marshal(map[string]any{
		"themes":   views,
		"page":     page,
		"has_next": page*h.pageSize < total,
		"has_prev": page > 1,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if h.browse != nil {
		h.browse.Set(ctx, cache.PageKey(page), payload)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

// Get returns a theme by its share identifier. Private themes are served
// too: knowing the unguessable id is the capability.
// GET /themes/{publicID}
func (h *Themes) Get(w http.ResponseWriter, r *http.Request) {
	theme, ok := h.themeByPublicID(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"public_id":   theme.PublicID,
		"name":        theme.Name,
		"description": theme.Description,
		"visibility":  string(theme.Visibility),
		"preview_url": h.previewURL(theme.PreviewKey),
		"share_url":   h.shareBaseURL + "/themes/" + theme.PublicID,
		"created_at":  theme.CreatedAt.Format(time.RFC3339),
	})
}

// Download redirects to a time-limited presigned URL for the artifact.
// GET /themes/{publicID}/download
func (h *Themes) Download(w http.ResponseWriter, r *http.Request) {
	theme, ok := h.themeByPublicID(w, r)
	if !ok {
		return
	}
	if h.blobs == nil {
		writeError(w, http.StatusServiceUnavailable, "storage not configured")
		return
	}

	url, err := h.blobs.ArtifactURL(r.Context(), theme.ContentKey, presignExpiry)
	if err != nil {
		slog.Error("presign failed", "key", theme.ContentKey, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

// QR returns a PNG QR code encoding the theme's share link.
// GET /themes/{publicID}/qr
func (h *Themes) QR(w http.ResponseWriter, r *http.Request) {
	theme, ok := h.themeByPublicID(w, r)
	if !ok {
		return
	}

	png, err := qrcode.Encode(h.shareBaseURL+"/themes/"+theme.PublicID, qrcode.Medium, qrSize)
	if err != nil {
		slog.Error("qr encode failed", "public_id", theme.PublicID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// SetVisibility toggles a theme between public and private, owner only.
// PATCH /themes/{id}/visibility
func (h *Themes) SetVisibility(w http.ResponseWriter, r *http.Request) {
	id, ok := themeID(w, r)
	if !ok {
		return
	}

	var body struct {
		Visibility string `json:"visibility"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	visibility, err := models.ParseVisibility(body.Visibility)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "visibility must be public or private")
		return
	}

	owner := middleware.AccountID(r.Context())
	matched, err := h.themes.SetVisibility(id, owner, visibility)
	if err != nil {
		slog.Error("visibility update failed", "theme", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !matched {
		// Not found and not owned are indistinguishable on purpose.
		writeError(w, http.StatusNotFound, "theme not found")
		return
	}

	if h.browse != nil {
		h.browse.InvalidateAll(r.Context())
	}
	writeJSON(w, http.StatusOK, map[string]string{"visibility": string(visibility)})
}

// Delete removes the caller's theme and its stored blobs.
// DELETE /themes/{id}
func (h *Themes) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := themeID(w, r)
	if !ok {
		return
	}

	owner := middleware.AccountID(r.Context())
	deleted, err := h.themes.DeleteTheme(id, owner)
	if err != nil {
		slog.Error("theme delete failed", "theme", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if deleted == nil {
		writeError(w, http.StatusNotFound, "theme not found")
		return
	}

	h.cleanupBlobs(r, deleted)
	if h.browse != nil {
		h.browse.InvalidateAll(r.Context())
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// cleanupBlobs removes a deleted theme's stored objects, best effort.
func (h *Themes) cleanupBlobs(r *http.Request, t *models.Theme) {
	if h.blobs == nil {
		return
	}
	ctx := r.Context()
	if err := h.blobs.DeleteArtifact(ctx, t.ContentKey); err != nil {
		slog.Warn("artifact delete failed", "key", t.ContentKey, "error", err)
	}
	if err := h.blobs.DeletePreview(ctx, t.PreviewKey); err != nil {
		slog.Warn("preview delete failed", "key", t.PreviewKey, "error", err)
	}
}

// previewURL resolves a preview key, tolerating unconfigured storage.
func (h *Themes) previewURL(key string) string {
	if h.blobs == nil || key == "" {
		return ""
	}
	return h.blobs.PreviewURL(key)
}

// themeByPublicID resolves the {publicID} route param. Reports false
// after writing the error response.
func (h *Themes) themeByPublicID(w http.ResponseWriter, r *http.Request) (*models.Theme, bool) {
	publicID := chi.URLParam(r, "publicID")
	theme, err := h.themes.GetThemeByPublicID(publicID)
	if err != nil {
		slog.Error("theme lookup failed", "public_id", publicID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	if theme == nil {
		writeError(w, http.StatusNotFound, "theme not found")
		return nil, false
	}
	return theme, true
}

// themeID parses the numeric {id} route param.
func themeID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid theme id")
		return 0, false
	}
	return id, true
}
