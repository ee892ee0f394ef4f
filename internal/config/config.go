// Package config loads the process configuration from the environment once
// at startup. The resulting struct is immutable and handed to the managers
// and handlers explicitly, so no core logic reads environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const envFile = ".env"

// Config holds every tunable the server needs.
type Config struct {
	Port        string
	Environment string
	LogLevel    string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	KeyPairPath     string
	JWTExpire       time.Duration
	CookieExpire    int // days
	DefaultPageSize int
	MaxPageSize     int

	MailgunDomain string
	MailgunAPIKey string
	FromEmail     string
	FromName      string
}

// Load reads the .env file if present, then builds the configuration from
// the environment with defaults for everything that is safe to default.
func Load() (*Config, error) {
	if err := godotenv.Load(envFile); err != nil {
		log.Info("No .env file found, using environment variables from system")
	} else {
		log.Info("Loaded environment variables from .env file")
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "INFO"),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASS"),
		DBName:     os.Getenv("DB_NAME"),

		KeyPairPath:     getEnv("KEY_PAIR_PATH", "keypair.bin"),
		JWTExpire:       getEnvDuration("JWT_EXPIRE", 30*24*time.Hour),
		CookieExpire:    getEnvInt("JWT_COOKIE_EXPIRE", 30),
		DefaultPageSize: getEnvInt("DEFAULT_PAGE_SIZE", 25),
		MaxPageSize:     getEnvInt("MAX_PAGE_SIZE", 100),

		MailgunDomain: os.Getenv("MAILGUN_DOMAIN"),
		MailgunAPIKey: os.Getenv("MAILGUN_API_KEY"),
		FromEmail:     getEnv("FROM_EMAIL", "noreply@camphub.dev"),
		FromName:      getEnv("FROM_NAME", "CampHub"),
	}

	if cfg.DefaultPageSize < 1 {
		return nil, fmt.Errorf("DEFAULT_PAGE_SIZE must be positive, got %d", cfg.DefaultPageSize)
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		return nil, fmt.Errorf("MAX_PAGE_SIZE %d is smaller than DEFAULT_PAGE_SIZE %d", cfg.MaxPageSize, cfg.DefaultPageSize)
	}

	return cfg, nil
}

// DatabaseURL renders the pgx connection string.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

// IsProduction reports whether the server runs with production hardening
// (secure cookies, real mail delivery).
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			log.Warnf("Invalid integer for %s: %q, using default %d", key, value, fallback)
			return fallback
		}
		return parsed
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			log.Warnf("Invalid duration for %s: %q, using default %s", key, value, fallback)
			return fallback
		}
		return parsed
	}
	return fallback
}
