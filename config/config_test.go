package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("REDIS_HOST", "")
	t.Setenv("ORDER_PREFIX", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "ACS", cfg.Store.OrderPrefix)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 168*time.Hour, cfg.Redis.CartTTL)
	assert.Equal(t, int64(5<<20), cfg.Storage.MaxImageSize)
	assert.Equal(t, "0 9 * * *", cfg.Scheduler.DigestCron)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("ORDER_PREFIX", "hnd")
	t.Setenv("ALLOWED_ORIGINS", "https://shop.example.com, https://admin.example.com")
	t.Setenv("TELEGRAM_CHAT_ID", "-100200300")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "cache.internal:6380", cfg.Redis.Addr())
	assert.Equal(t, "HND", cfg.Store.OrderPrefix)
	assert.Equal(t, []string{"https://shop.example.com", "https://admin.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, int64(-100200300), cfg.Notify.TelegramChatID)
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, 15*time.Minute, parseDuration("bogus", 15*time.Minute))
	assert.Equal(t, 2*time.Hour, parseDuration("2h", time.Minute))
	assert.Equal(t, 7, parseInt("x", 7))
	assert.Equal(t, 42, parseInt(" 42 ", 0))
	assert.Empty(t, parseSlice(""))
	assert.Equal(t, []string{"a", "b"}, parseSlice("a,,b"))
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "h", Port: "1", User: "u", Password: "p", DBName: "d", SSLMode: "disable"}
	assert.Equal(t, "host=h port=1 user=u password=p dbname=d sslmode=disable", db.DSN())
}
