package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// SecretKey signs access and refresh tokens. It is set by Load.
var SecretKey []byte

type Config struct {
	Port           string
	DatabaseURL    string
	MigrationsPath string

	RedisAddr       string
	RedisPassword   string
	CatalogCacheTTL time.Duration
	CartTTL         time.Duration
	IdempotencyTTL  time.Duration

	DeliveryFeeCents           int64
	FreeDeliveryThresholdCents int64

	AMQPURL string

	LLMAPIKey  string
	LLMModel   string
	LLMBaseURL string

	LogLevel  string
	LogFormat string

	// The first admin is seeded at startup when both are set.
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// Load reads .env when present and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	secret := os.Getenv("JWT_SECRET_KEY")
	if secret == "" {
		return Config{}, errors.New("JWT secret key not set")
	}
	SecretKey = []byte(secret)

	cfg := Config{
		Port:           listenAddr(getEnv("PORT", ":8080")),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "database/migrations"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		AMQPURL:        os.Getenv("AMQP_URL"),
		LLMAPIKey:      os.Getenv("LLM_API_KEY"),
		LLMModel:       getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMBaseURL:     os.Getenv("LLM_BASE_URL"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
		AdminName:      getEnv("ADMIN_NAME", "Admin"),
		AdminEmail:     strings.TrimSpace(os.Getenv("ADMIN_EMAIL")),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL not set")
	}
	if (cfg.AdminEmail == "") != (cfg.AdminPassword == "") {
		return Config{}, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	if cfg.AdminPassword != "" && len(cfg.AdminPassword) < 8 {
		return Config{}, errors.New("ADMIN_PASSWORD must be at least 8 characters")
	}

	var err error
	if cfg.CatalogCacheTTL, err = getDuration("CATALOG_CACHE_TTL", 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.CartTTL, err = getDuration("CART_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = getDuration("IDEMPOTENCY_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.DeliveryFeeCents, err = getCents("DELIVERY_FEE_CENTS", 0); err != nil {
		return Config{}, err
	}
	if cfg.FreeDeliveryThresholdCents, err = getCents("FREE_DELIVERY_THRESHOLD_CENTS", 0); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SeedAdmin reports whether a first admin account is configured.
func (c Config) SeedAdmin() bool {
	return c.AdminEmail != "" && c.AdminPassword != ""
}

// listenAddr accepts a bare port number as well as host:port.
func listenAddr(port string) string {
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getCents(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s: must be a non-negative integer amount of cents", key)
	}
	return n, nil
}
