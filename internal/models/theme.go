// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"time"
)

// Visibility controls whether a theme is listed in the public catalog.
// Private themes stay reachable through their share link.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// ParseVisibility converts user input into a Visibility value.
func ParseVisibility(s string) (Visibility, error) {
	switch Visibility(s) {
	case VisibilityPublic, VisibilityPrivate:
		return Visibility(s), nil
	}
	return "", fmt.Errorf("invalid visibility %q", s)
}

// Theme represents a stored theme configuration. The original artifact and
// the rendered preview live in object storage; ContentKey and PreviewKey are
// their object keys. PublicID is the random share identifier — it is never
// derived from the serial ID so rows cannot be enumerated from a link.
type Theme struct {
	ID          int64      `json:"id"`
	PublicID    string     `json:"public_id"`
	OwnerID     string     `json:"owner_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Visibility  Visibility `json:"visibility"`
	ContentKey  string     `json:"content_key"`
	ContentHash string     `json:"content_hash"`
	PreviewKey  string     `json:"preview_key"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsPublic returns true if the theme is listed in the public catalog.
func (t *Theme) IsPublic() bool {
	return t.Visibility == VisibilityPublic
}

// PublicTheme is a catalog row joined with the owner's display name,
// as returned by the browse listing.
type PublicTheme struct {
	ID          int64  `json:"id"`
	PublicID    string `json:"public_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	OwnerName   string `json:"owner_display_name"`
	PreviewKey  string `json:"preview_key"`
}
