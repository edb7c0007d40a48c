package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thali/internal/config"
	"thali/internal/core"
	applog "thali/internal/log"
)

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	_, err = FromAppConfig(&config.Config{StoreBackend: "sheets"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be one of [sqlite badger memory]")

	cfg, err := FromAppConfig(&config.Config{
		StoreBackend:       "badger",
		BadgerPath:         "/tmp/b",
		KeyPrefix:          "p_",
		AggregateCacheSize: 8,
		AggregateCacheTTL:  time.Minute,
	})
	require.NoError(t, err)
	assert.Equal(t, BadgerBackend, cfg.Type)
	assert.Equal(t, "/tmp/b", cfg.BadgerPath)
	assert.Equal(t, "p_", cfg.KeyPrefix)
	assert.Equal(t, 8, cfg.CacheSize)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite with path", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"badger without path", Config{Type: BadgerBackend}, true},
		{"unknown type", Config{Type: "sheets"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetBackendTypeStrings(t *testing.T) {
	assert.Equal(t, []string{"sqlite", "badger", "memory"}, GetBackendTypeStrings())
	for _, name := range GetBackendTypeStrings() {
		assert.True(t, BackendType(name).IsValid(), name)
	}
	assert.Contains(t, Config{Type: "sheets"}.Validate().Error(), "[sqlite badger memory]")
}

func TestCreateBackendEachMedium(t *testing.T) {
	dir := t.TempDir()
	configs := []Config{
		{Type: MemoryBackend},
		{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "thali.db")},
		{Type: BadgerBackend, BadgerPath: filepath.Join(dir, "badger")},
	}

	f := NewFactory(applog.Discard())
	for _, cfg := range configs {
		t.Run(cfg.Type.String(), func(t *testing.T) {
			ctx := context.Background()
			res, err := f.CreateBackend(ctx, cfg)
			require.NoError(t, err)
			t.Cleanup(func() { assert.NoError(t, res.Cleanup()) })

			_, err = res.Tracker.ToggleEvening(ctx, "2024-01-10")
			require.NoError(t, err)
			commit, err := res.Tracker.Commit(ctx, "2024-01-10")
			require.NoError(t, err)
			assert.True(t, commit.Record.Evening)

			rec, found, err := res.Store.Get(ctx, "2024-01-10")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, core.Selections{Evening: true}, rec.Selections())
		})
	}
}

func TestCreateBackendRejectsInvalidConfig(t *testing.T) {
	_, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SQLiteBackend})
	assert.Error(t, err)
}
