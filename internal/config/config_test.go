package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(4000), cfg.HTTP.Port)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, 5, cfg.Database.MaxTxAttempts)
	assert.Equal(t, 5*time.Second, cfg.Database.BusyTimeout)
	assert.Equal(t, MediaProviderLocal, cfg.Media.Provider)
	assert.Equal(t, 720*time.Hour, cfg.Auth.TokenExpiry)
	assert.True(t, cfg.Recount.Enabled)
	assert.Equal(t, "30 3 * * *", cfg.Recount.Schedule)
	assert.False(t, cfg.Demo.Enabled)
	assert.Empty(t, cfg.Auth.AdminIDs)
	assert.Equal(t, int64(32<<20), cfg.Media.MaxUploadBytes)
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_MAX_TX_ATTEMPTS", "2")
	t.Setenv("MEDIA_PROVIDER", "gcs")
	t.Setenv("MEDIA_GCS_BUCKET", "songs-bucket")
	t.Setenv("RECOUNT_ENABLED", "false")
	t.Setenv("DEMO_MODE", "true")
	t.Setenv("AUTH_ADMIN_IDS", "1, 7,bogus,0")
	t.Setenv("MEDIA_MAX_UPLOAD_BYTES", "1024")

	cfg := NewConfig()

	assert.Equal(t, int32(9090), cfg.HTTP.Port)
	assert.Equal(t, 2, cfg.Database.MaxTxAttempts)
	assert.Equal(t, MediaProviderGCS, cfg.Media.Provider)
	assert.Equal(t, "songs-bucket", cfg.Media.GCSBucket)
	assert.False(t, cfg.Recount.Enabled)
	assert.True(t, cfg.Demo.Enabled)
	assert.Equal(t, []uint{1, 7}, cfg.Auth.AdminIDs)
	assert.Equal(t, int64(1024), cfg.Media.MaxUploadBytes)
}
