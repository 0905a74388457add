// Package main is the entry point for the theme service.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"themehub/internal/cache"
	"themehub/internal/config"
	"themehub/internal/database"
	"themehub/internal/handlers"
	"themehub/internal/middleware"
	"themehub/internal/preview"
	"themehub/internal/router"
	"themehub/internal/storage"
	"themehub/internal/store"
	"themehub/internal/uploader"
)

func main() {
	// Structured logger — outputs text with debug level everywhere for now.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Connect to Valkey (Redis-compatible cache).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	themeStore := store.NewThemeStore(db)

	// Connect to S3-compatible object storage (optional — the catalog
	// works without it, but uploads are disabled).
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3ArtifactsBucket, cfg.S3PreviewsBucket, cfg.S3PublicURL,
	)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		slog.Info("s3 storage connected",
			"endpoint", cfg.S3Endpoint,
			"artifacts_bucket", cfg.S3ArtifactsBucket,
			"previews_bucket", cfg.S3PreviewsBucket,
		)
	} else {
		slog.Warn("s3 storage not configured — theme uploads disabled")
	}

	// Keep the interfaces nil when storage is unconfigured; a typed nil
	// *storage.Client would defeat the handlers' nil checks.
	var uploadBlobs uploader.BlobStore
	var handlerBlobs handlers.BlobStore
	if storageClient != nil {
		uploadBlobs = storageClient
		handlerBlobs = storageClient
	}

	// Preview renderer and the submission state machine.
	renderer := preview.New(preview.DefaultRenderConfig())
	uploadSvc := uploader.New(themeStore, userStore, uploadBlobs, renderer, cfg.MaxThemeSizeBytes())

	// Catalog page cache in Valkey.
	browseCache := cache.NewBrowseCache(valkeyClient, cache.DefaultBrowseTTL)

	// Create handler groups with their dependencies.
	uploadHandlers := handlers.NewUploads(uploadSvc, handlerBlobs, browseCache, cfg.ShareBaseURL, cfg.MaxThemeSizeBytes())
	themeHandlers := handlers.NewThemes(themeStore, handlerBlobs, browseCache, cfg.BrowsePageSize, cfg.ShareBaseURL)
	adminHandlers := handlers.NewAdmin(userStore, themeStore, handlerBlobs, browseCache)

	// Set up the Chi router with all middleware and routes.
	r := router.New(router.Options{
		Identity:     middleware.NewIdentity(userStore),
		Uploads:      uploadHandlers,
		Themes:       themeHandlers,
		Admin:        adminHandlers,
		AdminToken:   cfg.AdminToken,
		BillingToken: cfg.BillingToken,
	})

	// Create the HTTP server with sensible timeouts. WriteTimeout must
	// accommodate preview rendering with remote background image fetches.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
