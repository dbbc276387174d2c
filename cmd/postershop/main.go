// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the poster shop API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"postershop/internal/auth"
	"postershop/internal/backend"
	"postershop/internal/cache"
	"postershop/internal/catalog"
	"postershop/internal/config"
	"postershop/internal/database"
	"postershop/internal/gate"
	"postershop/internal/handlers"
	"postershop/internal/middleware"
	"postershop/internal/router"
	"postershop/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON everywhere else.
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"store", cfg.StoreDriver,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	be, err := backend.Open(ctx, cfg)
	if err != nil {
		slog.Error("failed to open catalog store", "error", err)
		os.Exit(1)
	}
	defer be.Close()

	posters := catalog.NewManager(be.Store)
	orders := catalog.NewOrderBook(be.Store, be.Store)

	// The collection catalog is static; make sure every record exists.
	if _, err := database.SeedCollections(ctx, posters); err != nil {
		slog.Error("failed to seed collections", "error", err)
		os.Exit(1)
	}

	// Valkey is optional. Without it public reads go straight to the store.
	var browse *cache.BrowseCache
	if cfg.ValkeyHost != "" {
		valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			slog.Warn("valkey unavailable, browse cache disabled", "error", err)
		} else {
			defer valkeyClient.Close()
			browse = cache.NewBrowseCache(valkeyClient, cache.DefaultBrowseTTL, be.Log)
		}
	}

	// Connect to S3-compatible object storage (optional, the API works without it).
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3BucketPublic, cfg.S3PublicURL,
	)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3BucketPublic)
	} else {
		slog.Warn("s3 storage not configured, image uploads disabled")
	}
	images := storage.NewImages(storageClient)

	rpcLimiter := middleware.NewRateLimiter(cfg.RPCRateLimit, time.Minute,
		middleware.WithLimitHandler(handlers.RPCRateLimited))
	defer rpcLimiter.Stop()

	r := router.New(router.Deps{
		Verifier:    auth.NewVerifier(cfg.JWTSecret),
		Public:      handlers.NewPublic(posters, browse),
		Seller:      handlers.NewSeller(posters, orders, images, browse),
		Admin:       handlers.NewAdmin(posters, orders, images, browse),
		RPC:         handlers.NewRPC(gate.New(posters), browse),
		RPCLimiter:  rpcLimiter,
		CORSOrigins: cfg.CORSOrigins,
	})

	// WriteTimeout has to cover a 20 MB image upload relayed to S3.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown signal received")

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
