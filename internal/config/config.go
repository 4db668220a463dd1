package config // package config loads application configuration from environment variables

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultPort is used when neither the command line nor PORT supply one.
const DefaultPort = 3000

// DBConfig holds everything needed to open the MySQL connection pool.  It is
// built once at startup and never changes afterwards.
type DBConfig struct {
	Host            string         // database host address
	Port            string         // database port number
	Name            string         // schema holding the tv_shows table
	User            string         // database username
	Password        string         // database password (optional)
	ConnectionLimit int            // maximum number of open connections
	Location        *time.Location // fixed zone used to interpret DATETIME columns
	QueryTimeout    time.Duration  // deadline applied to each acquire+query
}

// Config holds all runtime configuration values.  Each field corresponds to
// one or more environment variables.
type Config struct {
	Env       string // application environment ("dev", "prod"); prod redacts error details
	Port      int    // HTTP port to listen on
	LogLevel  string // slog level name
	DB        DBConfig
	Redis     RedisConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

// Load reads configuration values from the environment.  Every value has a
// default so a bare environment still yields a usable (local) setup; only a
// malformed timezone offset is rejected.
func Load() (Config, error) {
	loc, err := ParseOffset(getenv("DB_TIMEZONE", "+08:00"))
	if err != nil {
		return Config{}, fmt.Errorf("DB_TIMEZONE: %w", err)
	}
	limit := envInt("DB_CONNECTION_LIMIT", 4)
	if limit < 1 {
		limit = 4
	}
	cfg := Config{
		Env:      getenv("APP_ENV", "dev"),
		Port:     portOr(os.Getenv("PORT"), DefaultPort),
		LogLevel: getenv("LOG_LEVEL", "info"),
		DB: DBConfig{
			Host:            getenv("DB_HOST", "localhost"),
			Port:            portString(os.Getenv("DB_PORT"), "3306"),
			Name:            getenv("DB_NAME", "leisure"),
			User:            os.Getenv("DB_USER"),
			Password:        os.Getenv("DB_PASSWORD"),
			ConnectionLimit: limit,
			Location:        loc,
			QueryTimeout:    envDur("DB_QUERY_TIMEOUT", 10*time.Second),
		},
		Redis:     LoadRedisConfig(),
		Cache:     LoadCacheConfig(),
		RateLimit: LoadRateLimitConfig(),
	}
	return cfg, nil
}

// Production reports whether error details must be hidden from clients.
func (c Config) Production() bool {
	return strings.EqualFold(c.Env, "prod") || strings.EqualFold(c.Env, "production")
}

// ApplyPortArg lets a positional command line argument override the port.
// Anything that is not a positive integer is ignored so PORT (or the
// default) stays in effect.
func (c *Config) ApplyPortArg(arg string) {
	c.Port = portOr(arg, c.Port)
}

// ParseOffset turns "+08:00" style offsets into a fixed time zone.  "Z" and
// "UTC" map to time.UTC.
func ParseOffset(s string) (*time.Location, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "Z") || strings.EqualFold(s, "UTC") {
		return time.UTC, nil
	}
	t, err := time.Parse("-07:00", s)
	if err != nil {
		return nil, fmt.Errorf("invalid offset %q", s)
	}
	_, secs := t.Zone()
	return time.FixedZone(s, secs), nil
}

func portOr(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func portString(s, def string) string {
	if n := portOr(s, 0); n > 0 {
		return strconv.Itoa(n)
	}
	return def
}

// Helper functions shared by cache.go, redis.go and ratelimit.go.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(k string, d bool) bool {
	switch strings.ToLower(os.Getenv(k)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
