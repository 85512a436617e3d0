package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 2*time.Second, cfg.SubmitDelay)
	assert.Equal(t, "INR", cfg.Currency)
	assert.InDelta(t, -1.286389, cfg.DefaultLat, 1e-9)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SUBMIT_DELAY", "150ms")
	t.Setenv("REDIS_CACHE_DB", "4")
	t.Setenv("CURRENCY", "KES")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 150*time.Millisecond, cfg.SubmitDelay)
	assert.Equal(t, 4, cfg.RedisCacheDB)
	assert.Equal(t, "KES", cfg.Currency)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsBadCoordinates(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DEFAULT_LAT", "123")

	_, err := Load()
	assert.Error(t, err)
}
