package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadWithLookuper(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, StorageMongo, cfg.Storage)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, "taskflow-identity", cfg.JWT.Issuer)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 4, cfg.Notifier.Workers)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := LoadWithLookuper(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":     "s3cret",
		"JWT_TTL":        "90m",
		"STORAGE_DRIVER": "memory",
		"CORS_ORIGINS":   "http://localhost:5173,https://app.example.com",
		"ENV":            "production",
	}))
	require.NoError(t, err)

	assert.Equal(t, 90*time.Minute, cfg.JWT.TTL)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, []string{"http://localhost:5173", "https://app.example.com"}, cfg.CORSOrigins)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_RequiresSecret(t *testing.T) {
	_, err := LoadWithLookuper(context.Background(), envconfig.MapLookuper(map[string]string{}))
	assert.Error(t, err)
}

func TestLoad_RejectsUnknownStorage(t *testing.T) {
	_, err := LoadWithLookuper(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":     "s3cret",
		"STORAGE_DRIVER": "postgres",
	}))
	assert.Error(t, err)
}
