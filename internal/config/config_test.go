package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DevelopmentDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/lf")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@db:5432/lf", cfg.DatabaseURL)
	assert.Equal(t, StorageLocal, cfg.StorageDriver)
	assert.Equal(t, int64(10), cfg.MaxUploadSizeMB)
	assert.Equal(t, int64(5), cfg.MaxChatImageMB)
	assert.Equal(t, 1.0, cfg.MatchDistanceKm)
	assert.Equal(t, time.Minute, cfg.RateLimitPeriod)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.NotEmpty(t, cfg.AllowedOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_ProductionRequiresSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "short")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com , https://b.example.com,")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
}

func TestLoad_StorageDriver(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("STORAGE_DRIVER", "s3")
	t.Setenv("S3_BUCKET_NAME", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("S3_BUCKET_NAME", "lostfound-media")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageS3, cfg.StorageDriver)

	t.Setenv("STORAGE_DRIVER", "ftp")
	_, err = Load()
	assert.Error(t, err)
}

func TestGetDatabaseURL_FromParts(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRESQL_HOST", "db")
	t.Setenv("POSTGRESQL_USER", "app")
	t.Setenv("POSTGRESQL_PASSWORD", "p@ss")
	t.Setenv("POSTGRESQL_DBNAME", "lostfound")

	assert.Equal(t, "postgres://app:p%40ss@db:5432/lostfound?sslmode=disable", getDatabaseURL())
}
