// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
)

// contextKey is a private type for request context values.
type contextKey string

const accountIDKey contextKey = "accountID"

// AccountStore is the subset of user persistence the identity
// middleware needs.
type AccountStore interface {
	UpsertUser(id, displayName string) error
	IsBanned(id string) (bool, error)
}

// Identity authenticates requests from the trusted transport in front of
// this service. The transport has already verified the caller and passes
// the account in headers: X-Account-ID (required) and X-Display-Name
// (optional, recorded on first contact).
type Identity struct {
	users AccountStore
}

// NewIdentity creates the identity middleware backed by the user store.
func NewIdentity(users AccountStore) *Identity {
	return &Identity{users: users}
}

// Middleware resolves the caller's account, creating the user row on
// first interaction, and rejects banned accounts. The account id is
// placed in the request context for handlers.
func (i *Identity) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID := r.Header.Get("X-Account-ID")
		if accountID == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		if err := i.users.UpsertUser(accountID, r.Header.Get("X-Display-Name")); err != nil {
			slog.Error("user upsert failed", "account", accountID, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		banned, err := i.users.IsBanned(accountID)
		if err != nil {
			slog.Error("ban check failed", "account", accountID, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if banned {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), accountIDKey, accountID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AccountID returns the authenticated account id from the request
// context, or "" if the identity middleware did not run.
func AccountID(ctx context.Context) string {
	id, _ := ctx.Value(accountIDKey).(string)
	return id
}
