package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, SequencePostgres, cfg.SequenceBackend)
	assert.Equal(t, "file://migrations", cfg.MigrationsPath)
	assert.True(t, cfg.RunMigrations)
	assert.Equal(t, 8, cfg.BulkConcurrency)
	assert.True(t, decimal.RequireFromString("0.01").Equal(cfg.BalanceTolerance))
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "MEMORY")
	t.Setenv("SEQUENCE_BACKEND", "redis")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("BULK_CONCURRENCY", "0")
	t.Setenv("BALANCE_TOLERANCE", "0.005")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, SequenceRedis, cfg.SequenceBackend)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 8, cfg.BulkConcurrency)
	assert.True(t, decimal.RequireFromString("0.005").Equal(cfg.BalanceTolerance))
}

func TestLoad_MemoryStorageUsesOwnCounters(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := load(viper.New())
	require.NoError(t, err)
	assert.Empty(t, cfg.SequenceBackend)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown storage driver", "STORAGE_DRIVER", "mongo"},
		{"unknown sequence backend", "SEQUENCE_BACKEND", "etcd"},
		{"bad tolerance", "BALANCE_TOLERANCE", "abc"},
		{"negative tolerance", "BALANCE_TOLERANCE", "-1"},
		{"default secret in production", "IS_PRODUCTION", "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := load(viper.New())
			assert.Error(t, err)
		})
	}
}
