package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port           string
	Environment    string
	DatabaseURL    string
	StorageBackend string // "postgres" or "memory"
	RedisURL       string // Empty keeps share tokens in memory
	CORSOrigins    string
	TablePrefix    string
	AuthJWKSURL    string // Empty disables token verification
	// Client core
	AutosaveInterval   time.Duration
	PersistenceTimeout time.Duration
	OpQueueDepth       int
	// Executor
	ExecutorTimeout   time.Duration
	ExecutorRateLimit float64 // requests per second
	// Retention
	HistoryMaxEntries   int
	HistoryMaxBodyBytes int
	ShareDefaultTTL     time.Duration
	// Logging
	LogDir      string
	LogMaxFiles int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:                getEnv("PORT", "8080"),
		Environment:         env,
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		StorageBackend:      getEnv("STORAGE_BACKEND", "postgres"),
		RedisURL:            getEnv("REDIS_URL", ""),
		CORSOrigins:         getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:         getTablePrefix(env),
		AuthJWKSURL:         getEnv("AUTH_JWKS_URL", ""),
		AutosaveInterval:    getEnvDuration("AUTOSAVE_INTERVAL", 5*time.Second),
		PersistenceTimeout:  getEnvDuration("PERSISTENCE_TIMEOUT", 10*time.Second),
		OpQueueDepth:        getEnvInt("OP_QUEUE_DEPTH", 8),
		ExecutorTimeout:     getEnvDuration("EXECUTOR_TIMEOUT", 30*time.Second),
		ExecutorRateLimit:   getEnvFloat("EXECUTOR_RATE_LIMIT", 10),
		HistoryMaxEntries:   getEnvInt("HISTORY_MAX_ENTRIES", DefaultHistoryMaxEntries),
		HistoryMaxBodyBytes: getEnvInt("HISTORY_MAX_BODY_BYTES", DefaultHistoryMaxBodyBytes),
		ShareDefaultTTL:     getEnvDuration("SHARE_DEFAULT_TTL", 0),
		LogDir:              getEnv("LOG_DIR", ""),
		LogMaxFiles:         getEnvInt("LOG_MAX_FILES", 10),
	}
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	f, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return f
}

// getEnvDuration accepts Go duration strings ("5s", "250ms")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return d
}
