package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	DBMaxOpenConns int
	DBMaxIdleConns int

	// Transaction bounds: time to get a connection slot, and total run time.
	TxMaxWait time.Duration
	TxTimeout time.Duration

	// Cache
	RedisURL       string
	RedisExpire    time.Duration
	CacheKeyPrefix string

	// Sales rollups are bucketed by midnight in this zone.
	SalesTimeZone string

	// JWT (issued by the external session provider)
	JWTSecret string

	// Server
	Port        string
	CORSOrigins string

	// Logging
	LogLevel         string
	LogRetentionDays int

	// Sentry
	SentryDSN string
	AppEnv    string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", "stockroom_db"),
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),
		DBMaxOpenConns: parseInt(getEnv("DB_MAX_OPEN_CONNS", "50"), 50),
		DBMaxIdleConns: parseInt(getEnv("DB_MAX_IDLE_CONNS", "25"), 25),

		TxMaxWait: parseDuration(getEnv("TX_MAX_WAIT", "5s"), 5*time.Second),
		TxTimeout: parseDuration(getEnv("TX_TIMEOUT", "20s"), 20*time.Second),

		RedisURL:       getEnv("REDIS_URL", ""),
		RedisExpire:    parseSeconds(getEnv("REDIS_EXPIRE", "0")),
		CacheKeyPrefix: getEnv("CACHE_KEY_PREFIX", "stockroom"),

		SalesTimeZone: getEnv("SALES_TIMEZONE", "Local"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogRetentionDays: parseInt(getEnv("LOG_RETENTION_DAYS", "30"), 30),

		SentryDSN: getEnv("SENTRY_DSN", ""),
		AppEnv:    getEnv("APP_ENV", "development"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// Location resolves SalesTimeZone, falling back to the process zone.
func (c *Config) Location() *time.Location {
	if c.SalesTimeZone == "" || c.SalesTimeZone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.SalesTimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// parseSeconds accepts either a bare number of seconds (REDIS_EXPIRE=3600)
// or a Go duration string (REDIS_EXPIRE=1h). Zero disables expiry.
func parseSeconds(s string) time.Duration {
	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return 0
		}
		return time.Duration(n) * time.Second
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
