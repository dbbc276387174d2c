// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postershop/internal/catalog"
	"postershop/internal/config"
	"postershop/internal/database"
	"postershop/internal/models"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
	}{
		{"memory", config.Config{StoreDriver: config.DriverMemory}},
		{"sqlite", config.Config{StoreDriver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "shop.db")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			b, err := Open(ctx, &tt.cfg)
			require.NoError(t, err)
			defer b.Close()
			assert.Nil(t, b.Log)
			_, err = b.RecentInvalidations(ctx, 10)
			assert.ErrorIs(t, err, ErrNoCacheLog)

			m := catalog.NewManager(b.Store)
			created, err := database.SeedCollections(ctx, m)
			require.NoError(t, err)
			assert.Equal(t, len(database.Collections), created)

			groups, err := m.Groups(ctx, models.KindCollection)
			require.NoError(t, err)
			assert.Len(t, groups, len(database.Collections))
		})
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{StoreDriver: "mongo"})
	assert.ErrorContains(t, err, "unknown store driver")
}
