package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("defaults apply when the environment is empty", func(t *testing.T) {
		cfg, err := New()
		require.NoError(t, err)

		assert.Equal(t, 5000, cfg.Server.Port)
		assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
		assert.Equal(t, "clinic", cfg.Mongo.Database)
		assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
		assert.Equal(t, int64(5*1024*1024), cfg.Uploads.MaxFileSize)
		assert.Equal(t, 1, cfg.Uploads.MaxFiles)
		assert.Equal(t, "image", cfg.Uploads.FieldName)
		assert.Equal(t, "uploads", cfg.Uploads.Dir)
	})

	t.Run("environment variables override defaults", func(t *testing.T) {
		t.Setenv("PORT", "8080")
		t.Setenv("MONGODB_DATABASE", "clinic_test")
		t.Setenv("TOKEN_TTL", "1h")
		t.Setenv("LOG_LEVEL", "debug")

		cfg, err := New()
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, "clinic_test", cfg.Mongo.Database)
		assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
		assert.Equal(t, "debug", cfg.Observability.LogLevel)
	})

	t.Run("development falls back to the dev signing secret", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "development")
		t.Setenv("JWT_SECRET", "")

		cfg, err := New()
		require.NoError(t, err)
		assert.NotEmpty(t, cfg.Auth.JWTSecret)
	})

	t.Run("production requires an explicit signing secret", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "production")
		t.Setenv("JWT_SECRET", "")

		_, err := New()
		assert.Error(t, err)
	})

	t.Run("malformed numeric value falls back to the default", func(t *testing.T) {
		t.Setenv("BCRYPT_COST", "lots")

		cfg, err := New()
		require.NoError(t, err)
		assert.Equal(t, 10, cfg.Auth.BcryptCost)
	})
}

func TestServerAddress(t *testing.T) {
	cfg := ServerConfig{Host: "127.0.0.1", Port: 9000}
	assert.Equal(t, "127.0.0.1:9000", cfg.Address())
}
