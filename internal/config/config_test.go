package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "PORT", "DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
		"DB_CONNECTION_LIMIT", "DB_TIMEZONE", "DB_QUERY_TIMEOUT", "REDIS_ADDR", "REDIS_HOST", "REDIS_PORT",
		"CACHE_ENABLED", "RATE_LIMIT_ENABLED"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.False(t, cfg.Production())
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, "3306", cfg.DB.Port)
	assert.Equal(t, "leisure", cfg.DB.Name)
	assert.Equal(t, 4, cfg.DB.ConnectionLimit)
	assert.Equal(t, 10*time.Second, cfg.DB.QueryTimeout)
	assert.Equal(t, "", cfg.Redis.Addr)
	assert.False(t, cfg.Cache.Enabled)
	assert.False(t, cfg.RateLimit.Enabled)

	_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, cfg.DB.Location).Zone()
	assert.Equal(t, 8*3600, offset)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("PORT", "8080")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("DB_CONNECTION_LIMIT", "12")
	t.Setenv("DB_TIMEZONE", "-05:30")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Production())
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, "3307", cfg.DB.Port)
	assert.Equal(t, 12, cfg.DB.ConnectionLimit)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)

	_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, cfg.DB.Location).Zone()
	assert.Equal(t, -(5*3600 + 30*60), offset)
}

func TestLoad_BadTimezone(t *testing.T) {
	t.Setenv("DB_TIMEZONE", "eight")

	_, err := Load()
	assert.Error(t, err)
}

func TestApplyPortArg(t *testing.T) {
	tests := []struct {
		name string
		env  int
		arg  string
		want int
	}{
		{name: "argument wins", env: 8080, arg: "9090", want: 9090},
		{name: "empty argument keeps env", env: 8080, arg: "", want: 8080},
		{name: "non-numeric argument keeps env", env: 8080, arg: "abc", want: 8080},
		{name: "zero keeps env", env: 8080, arg: "0", want: 8080},
		{name: "default when nothing set", env: DefaultPort, arg: "", want: 3000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Port: tt.env}
			cfg.ApplyPortArg(tt.arg)
			assert.Equal(t, tt.want, cfg.Port)
		})
	}
}

func TestParseOffset(t *testing.T) {
	loc, err := ParseOffset("UTC")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	loc, err = ParseOffset("+08:00")
	require.NoError(t, err)
	assert.Equal(t, "+08:00", loc.String())

	_, err = ParseOffset("+8")
	assert.Error(t, err)
}

func TestLoadRateLimitConfig_Clamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	rl := LoadRateLimitConfig()
	assert.Equal(t, 1, rl.Capacity)
	assert.Equal(t, 10*time.Second, rl.TTL)
}
