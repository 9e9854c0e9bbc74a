package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort          string
	PostgresDSN       string
	DBDriver          string
	JWTSecret         string
	RedisURL          string
	LogLevel          string
	AccessTokenTTL    time.Duration
	RefreshTokenTTL   time.Duration
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxIdle     time.Duration
	DBConnMaxLife     time.Duration
	RequestTimeout    time.Duration
	AutoMigrate       bool
	AdminEmail        string
	AdminPassword     string
	MailRelayURL      string
	MailRelayKey      string
	MailFrom          string
	PostHogAPIKey     string
	PostHogEndpoint   string
	WorkerConcurrency int
}

// Load reads the environment, after merging an optional .env file.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("could not load .env file: %v", err)
	}
	cfg := &Config{
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		PostgresDSN:       getEnv("DATABASE_URL", ""),
		DBDriver:          getEnv("DB_DRIVER", "postgres"),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		RedisURL:          getEnv("REDIS_URL", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		AccessTokenTTL:    getDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:   getDuration("REFRESH_TOKEN_TTL", 30*24*time.Hour),
		DBMaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 10),
		DBConnMaxIdle:     getDuration("DB_CONN_MAX_IDLE", 5*time.Minute),
		DBConnMaxLife:     getDuration("DB_CONN_MAX_LIFE", 30*time.Minute),
		RequestTimeout:    getDuration("REQUEST_TIMEOUT", 10*time.Second),
		AutoMigrate:       getBool("AUTO_MIGRATE", true),
		AdminEmail:        strings.TrimSpace(getEnv("ADMIN_EMAIL", "")),
		AdminPassword:     getEnv("ADMIN_PASSWORD", ""),
		MailRelayURL:      strings.TrimSpace(getEnv("MAIL_RELAY_URL", "")),
		MailRelayKey:      getEnv("MAIL_RELAY_KEY", ""),
		MailFrom:          getEnv("MAIL_FROM", "placement-cell@localhost"),
		PostHogAPIKey:     strings.TrimSpace(getEnv("POSTHOG_API_KEY", "")),
		PostHogEndpoint:   getEnv("POSTHOG_ENDPOINT", "https://eu.i.posthog.com"),
		WorkerConcurrency: getInt("WORKER_CONCURRENCY", 5),
	}

	if cfg.PostgresDSN == "" {
		log.Fatal("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	if cfg.DBDriver != "postgres" && cfg.DBDriver != "pgx" {
		log.Fatalf("DB_DRIVER must be postgres or pgx, got %q", cfg.DBDriver)
	}
	if cfg.AdminEmail != "" && len(cfg.AdminPassword) < 6 {
		log.Fatal("ADMIN_PASSWORD must be at least 6 characters when ADMIN_EMAIL is set")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseBool(strings.TrimSpace(value))
		if err == nil {
			return parsed
		}
	}
	return fallback
}
