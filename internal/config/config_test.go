package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func setRequired(t *testing.T) {
	t.Helper()
	for k, v := range map[string]string{
		"APP_ENV":                "test",
		"APP_PORT":               "8080",
		"DB_USER":                "hotel",
		"DB_HOST":                "127.0.0.1",
		"DB_PORT":                "3306",
		"DB_NAME":                "hotel_booking",
		"JWT_SECRET":             "s3cret",
		"ACCESS_TOKEN_TTL_MIN":   "15",
		"REFRESH_TOKEN_TTL_DAYS": "7",
		"BCRYPT_COST":            "4",
	} {
		t.Setenv(k, v)
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15, cfg.AccessTTLMin)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.False(t, cfg.CancelReleasesRooms)
	assert.False(t, cfg.AutoMigrate)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "booking.events", cfg.Events.Exchange)
	assert.Equal(t, time.Hour, cfg.NoShow.Interval)
	assert.Equal(t, "system", cfg.NoShow.ActorID)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("CANCEL_RELEASES_ROOMS", "true")
	t.Setenv("DB_AUTO_MIGRATE", "1")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("NO_SHOW_SWEEP_INTERVAL", "15m")
	t.Setenv("EVENTS_ENABLED", "off")

	cfg := Load()

	assert.True(t, cfg.CancelReleasesRooms)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
	assert.Equal(t, 15*time.Minute, cfg.NoShow.Interval)
	assert.False(t, cfg.Events.Enabled)
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()

	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, 10*time.Second, cfg.TTL)
}

func TestLoadRateLimitConfigBurst(t *testing.T) {
	t.Setenv("RATE_LIMIT_BURST", "50")

	assert.Equal(t, 50, LoadRateLimitConfig().Capacity)
}

func TestLoadIdempotencyConfig(t *testing.T) {
	t.Setenv("IDEMPOTENCY_TTL", "-1s")
	t.Setenv("IDEMPOTENCY_PREFIX", "idem-test")

	cfg := LoadIdempotencyConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.TTL)
	assert.Equal(t, "idem-test", cfg.Prefix)
	assert.Equal(t, 64<<10, cfg.MaxBodyBytes)
}

func TestEnvHelpersFallBack(t *testing.T) {
	t.Setenv("X_BOOL", "maybe")
	t.Setenv("X_INT", "ten")
	t.Setenv("X_DUR", "soon")

	assert.True(t, envBool("X_BOOL", true))
	assert.Equal(t, 7, envInt("X_INT", 7))
	assert.Equal(t, time.Minute, envDur("X_DUR", time.Minute))
	assert.Equal(t, "d", envStr("X_UNSET_FOR_TEST", "d"))
}
