// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON API surface of the theme service:
// the submission dialog, theme management, the public catalog, and the
// admin/billing endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"themehub/internal/models"
)

// ThemeStore is the subset of theme persistence the handlers need.
type ThemeStore interface {
	ListThemesOwnedBy(ownerID string) ([]models.Theme, error)
	GetThemeByID(id int64) (*models.Theme, error)
	GetThemeByPublicID(publicID string) (*models.Theme, error)
	DeleteTheme(id int64, ownerID string) (*models.Theme, error)
	AdminDeleteTheme(id int64) (*models.Theme, error)
	SetVisibility(id int64, ownerID string, v models.Visibility) (bool, error)
	ListPublicThemes(offset, limit int) ([]models.PublicTheme, error)
	CountPublicThemes() (int, error)
}

// UserStore is the subset of user persistence the admin surface needs.
type UserStore interface {
	GetUser(id string) (*models.User, error)
	SetBanStatus(id string, banned bool) error
	GrantSlots(id string, count int) error
}

// BlobStore resolves stored objects to URLs and removes them.
type BlobStore interface {
	PreviewURL(key string) string
	ArtifactURL(ctx context.Context, key string, expires time.Duration) (string, error)
	DeleteArtifact(ctx context.Context, key string) error
	DeletePreview(ctx context.Context, key string) error
}

// CatalogCache caches serialized public catalog pages.
type CatalogCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, payload []byte)
	InvalidateAll(ctx context.Context)
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
