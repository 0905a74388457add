// Package router sets up all HTTP routes and middleware chains for the
// theme service. It organizes routes into public, authenticated, and
// token-guarded groups with appropriate middleware stacks.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"themehub/internal/handlers"
	"themehub/internal/middleware"
)

// Options carries the pieces the router wires together.
type Options struct {
	Identity     *middleware.Identity
	Uploads      *handlers.Uploads
	Themes       *handlers.Themes
	Admin        *handlers.Admin
	AdminToken   string
	BillingToken string
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	rateLimiter := middleware.NewRateLimiter(120, 1*time.Minute)
	r.Use(rateLimiter.Middleware)

	// Health check — no auth.
	r.Get("/health", healthHandler)

	// Public surface: the catalog and share links. Knowing a public id
	// is the access capability, so no identity is required here.
	r.Get("/browse", opts.Themes.Browse)
	r.Get("/themes/{publicID}", opts.Themes.Get)
	r.Get("/themes/{publicID}/download", opts.Themes.Download)
	r.Get("/themes/{publicID}/qr", opts.Themes.QR)

	// Authenticated surface: requests arrive from the trusted transport
	// carrying the caller's account headers.
	r.Group(func(r chi.Router) {
		r.Use(opts.Identity.Middleware)

		// Submission dialog.
		r.Route("/uploads", func(r chi.Router) {
			r.Post("/", opts.Uploads.Start)
			r.Delete("/", opts.Uploads.Cancel)
			r.Post("/file", opts.Uploads.SubmitFile)
			r.Post("/name", opts.Uploads.SubmitName)
			r.Post("/description", opts.Uploads.SubmitDescription)
			r.Post("/visibility", opts.Uploads.SubmitVisibility)
		})

		// Theme management.
		r.Get("/themes", opts.Themes.ListOwned)
		r.Patch("/themes/{id}/visibility", opts.Themes.SetVisibility)
		r.Delete("/themes/{id}", opts.Themes.Delete)
	})

	// Moderation, token-guarded.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireToken(opts.AdminToken))
		r.Post("/users/{id}/ban", opts.Admin.Ban)
		r.Post("/users/{id}/unban", opts.Admin.Unban)
		r.Delete("/themes/{id}", opts.Admin.DeleteTheme)
	})

	// Billing hook, token-guarded separately from moderation.
	r.Route("/billing", func(r chi.Router) {
		r.Use(middleware.RequireToken(opts.BillingToken))
		r.Post("/users/{id}/slots", opts.Admin.GrantSlots)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
