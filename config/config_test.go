package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvironmentOnly(t *testing.T) {
	t.Setenv("CURIO_JWT_SECRET", "env-secret")
	t.Setenv("CURIO_HTTP_PORT", "9090")
	t.Setenv("CURIO_DATABASE_DRIVER", "sqlite")
	t.Setenv("CURIO_STORAGE_IMAGEPATH", "/var/lib/curio/images")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/var/lib/curio/images", cfg.Storage.ImagePath)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CURIO_JWT_SECRET", "env-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, "uploads/images", cfg.Storage.ImagePath)
	assert.Equal(t, 5.0, cfg.RateLimit.RPS)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "jwt.secret is required")
}
