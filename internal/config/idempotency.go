package config

import "time"

// IdempotencyConfig controls replay of POST /v1/bookings responses for
// requests carrying the same Idempotency-Key.
type IdempotencyConfig struct {
	Enabled bool
	// TTL is how long a stored response is replayed.
	TTL time.Duration
	// LockTTL bounds how long an in-flight request holds its key.
	LockTTL      time.Duration
	Prefix       string
	MaxBodyBytes int
}

func LoadIdempotencyConfig() IdempotencyConfig {
	cfg := IdempotencyConfig{
		Enabled:      envBool("IDEMPOTENCY_ENABLED", true),
		TTL:          envDur("IDEMPOTENCY_TTL", 24*time.Hour),
		LockTTL:      envDur("IDEMPOTENCY_LOCK_TTL", 30*time.Second),
		Prefix:       envStr("IDEMPOTENCY_PREFIX", "idem"),
		MaxBodyBytes: envInt("IDEMPOTENCY_MAX_BODY_BYTES", 64<<10),
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Second
	}
	return cfg
}
