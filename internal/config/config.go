package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported values for DB_DRIVER.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// Config holds all application configuration.
type Config struct {
	ServerPort  string
	GinMode     string
	LogLevel    string
	LogFormat   string
	DBDriver    string
	DatabaseURL string
	MaxDBConns  int
	AutoMigrate bool
	RedisURL    string
	StatsTTL    time.Duration
	UploadDir   string
	// MaxUploadBytes caps the whole request body, not only the file part.
	MaxUploadBytes int64
	UploadRate     int
	SeedFile       string
	// AllowedOrigins controls HTTP CORS.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "5000"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "pretty"),
		DBDriver:       getEnv("DB_DRIVER", DriverSQLite),
		DatabaseURL:    getEnv("DATABASE_URL", "faculty.db"),
		MaxDBConns:     getEnvInt("MAX_DB_CONNS", 16),
		AutoMigrate:    getEnvBool("AUTO_MIGRATE", true),
		RedisURL:       getEnv("REDIS_URL", ""),
		StatsTTL:       time.Duration(getEnvInt("STATS_CACHE_TTL_SECONDS", 30)) * time.Second,
		UploadDir:      getEnv("UPLOAD_DIR", "static/uploads"),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_SIZE_MB", 16)) * 1024 * 1024,
		UploadRate:     getEnvInt("UPLOAD_RATE_PER_MINUTE", 30),
		SeedFile:       getEnv("SEED_FILE", ""),
		AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
