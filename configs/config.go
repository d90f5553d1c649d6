package configs

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort      int
	DBHost       string
	DBPort       int
	DBUser       string
	DBPassword   string
	DBName       string
	DBSSLMode    string
	RedisHost    string
	RedisPort    int
	RedisPass    string
	RedisDB      int
	JWTSecret    string
	TokenTTL     time.Duration
	Location     *time.Location
	LogDir       string
	RateLimitMax int
	CORSOrigins  string
}

func LoadConfig() (Config, error) {
	// Muat file .env
	if err := godotenv.Load(); err != nil {
		// Hanya log jika tidak dalam mode test
		if os.Getenv("GO_ENV") != "test" {
			log.Println("No .env file found, using environment values")
		}
	}

	cfg := Config{
		AppPort:      envInt("APP_PORT", 3004),
		DBHost:       envString("DB_HOST", "localhost"),
		DBPort:       envInt("DB_PORT", 5432),
		DBUser:       os.Getenv("DB_USER"),
		DBPassword:   os.Getenv("DB_PASSWORD"),
		DBName:       os.Getenv("DB_NAME"),
		DBSSLMode:    envString("DB_SSLMODE", "disable"),
		RedisHost:    envString("REDIS_HOST", "localhost"),
		RedisPort:    envInt("REDIS_PORT", 6379),
		RedisPass:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:      envInt("REDIS_DB", 0),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		TokenTTL:     24 * time.Hour,
		Location:     time.Local,
		LogDir:       envString("LOG_DIR", "logs"),
		RateLimitMax: envInt("RATE_LIMIT_MAX", 100),
		CORSOrigins:  envString("CORS_ORIGINS", "*"),
	}

	if raw := os.Getenv("TOKEN_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return Config{}, errors.New("TOKEN_TTL must be a positive Go duration such as 24h")
		}
		cfg.TokenTTL = ttl
	}

	if tz := os.Getenv("APP_TIMEZONE"); tz != "" && !strings.EqualFold(tz, "local") {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return Config{}, err
		}
		cfg.Location = loc
	}

	if cfg.JWTSecret == "" {
		if os.Getenv("GO_ENV") != "test" {
			return Config{}, errors.New("JWT_SECRET environment variable is not set")
		}
		cfg.JWTSecret = "test-secret"
	}

	return cfg, nil
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
