// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the persistent entities of the theme service.
package models

import "time"

// DefaultThemeSlots is the quota granted to every new user.
const DefaultThemeSlots = 10

// User represents an account known to the service. The ID is the external
// account identifier assigned by the command channel (e.g. the chat
// platform); users are created lazily on first interaction and never deleted.
type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name,omitempty"`
	ThemeSlots  int       `json:"theme_slots"`
	IsBanned    bool      `json:"is_banned"`
	CreatedAt   time.Time `json:"created_at"`
}
