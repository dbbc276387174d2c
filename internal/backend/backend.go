// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package backend opens the catalog store selected by STORE_DRIVER. The
// server and the maintenance CLI share it so both talk to the same data.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"postershop/internal/cache"
	"postershop/internal/catalog"
	"postershop/internal/config"
	"postershop/internal/database"
	"postershop/internal/store"
	"postershop/internal/store/memory"
	"postershop/internal/store/sqlite"
)

// ErrNoCacheLog is returned when the selected driver keeps no invalidation log.
var ErrNoCacheLog = errors.New("cache invalidation log requires the postgres driver")

// Store is a catalog store that also keeps the order book.
type Store interface {
	catalog.Store
	catalog.OrderStore
}

// Backend is an opened catalog store.
type Backend struct {
	Store Store
	// Log records browse cache invalidations. Nil unless the driver is postgres.
	Log cache.InvalidationLog

	cacheLog *store.CacheLogStore
	close    func()
}

// Open connects to the store named by cfg.StoreDriver and brings its schema
// up to date.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := database.Connect(ctx, cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := database.Migrate(pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		slog.Info("catalog store opened", "driver", cfg.StoreDriver, "host", cfg.DBHost, "database", cfg.DBName)
		cacheLog := store.NewCacheLogStore(pool)
		return &Backend{
			Store:    store.New(pool),
			Log:      cacheLog,
			cacheLog: cacheLog,
			close:    pool.Close,
		}, nil

	case config.DriverSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		slog.Info("catalog store opened", "driver", cfg.StoreDriver, "path", cfg.SQLitePath)
		return &Backend{
			Store: s,
			close: func() {
				if err := s.Close(); err != nil {
					slog.Warn("sqlite close failed", "error", err)
				}
			},
		}, nil

	case config.DriverMemory:
		slog.Warn("catalog store is in memory, data is lost on exit")
		return &Backend{Store: memory.New(), close: func() {}}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// RecentInvalidations returns the newest browse cache invalidations. Only the
// postgres driver keeps an invalidation log.
func (b *Backend) RecentInvalidations(ctx context.Context, limit int) ([]store.CacheLogEntry, error) {
	if b.cacheLog == nil {
		return nil, ErrNoCacheLog
	}
	return b.cacheLog.RecentEntries(ctx, limit)
}

// Close releases the store's connections.
func (b *Backend) Close() {
	b.close()
}
