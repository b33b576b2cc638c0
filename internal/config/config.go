package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"MyGens/internal/i18n"
	"MyGens/internal/repo"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	TLSCert string
	TLSKey  string

	DatabaseDriver string
	DatabaseURL    string

	TokenKey          string
	AdminLogin        string
	AdminPasswordHash string

	CatalogFile string
	DefaultLang i18n.Lang

	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigin     string

	TokenBot    string
	AdminPeerID int64

	LogLevel  string
	LogFormat string
}

// AdminEnabled reports whether the back office should be mounted.
func (c *Config) AdminEnabled() bool {
	return c.TokenKey != "" && c.AdminLogin != "" && c.AdminPasswordHash != ""
}

func (c *Config) TelegramEnabled() bool {
	return c.TokenBot != "" && c.AdminPeerID != 0
}

func (c *Config) TLSEnabled() bool {
	return c.TLSCert != ""
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		TLSCert:           os.Getenv("TLS_CERT"),
		TLSKey:            os.Getenv("TLS_KEY"),
		DatabaseDriver:    strings.ToLower(getEnv("DATABASE_DRIVER", repo.DriverNone)),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		TokenKey:          os.Getenv("TOKEN_KEY"),
		AdminLogin:        os.Getenv("ADMIN_LOGIN"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		CatalogFile:       os.Getenv("CATALOG_FILE"),
		CORSOrigin:        getEnv("CORS_ORIGIN", "*"),
		TokenBot:          os.Getenv("TOKEN_BOT"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
	}

	lang, ok := i18n.Parse(getEnv("DEFAULT_LANG", string(i18n.Fallback)))
	if !ok {
		return nil, fmt.Errorf("DEFAULT_LANG: unsupported language %q", os.Getenv("DEFAULT_LANG"))
	}
	cfg.DefaultLang = lang

	var err error
	if cfg.RateLimitRPS, err = getEnvFloat("RATE_LIMIT_RPS", 1); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getEnvInt("RATE_LIMIT_BURST", 5); err != nil {
		return nil, err
	}
	if cfg.AdminPeerID, err = getEnvInt64("ADMIN_PEER_ID", 0); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case repo.DriverNone:
	case repo.DriverPostgres, repo.DriverSQLite:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for driver %q", c.DatabaseDriver)
		}
	default:
		return fmt.Errorf("DATABASE_DRIVER: unknown driver %q", c.DatabaseDriver)
	}
	if c.TLSCert != "" && c.TLSKey == "" {
		return fmt.Errorf("TLS_KEY is required when TLS_CERT is set")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("rate limit must be positive, got %v rps burst %d", c.RateLimitRPS, c.RateLimitBurst)
	}
	if (c.AdminLogin != "" || c.AdminPasswordHash != "") && c.TokenKey == "" {
		return fmt.Errorf("TOKEN_KEY is required when admin credentials are set")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}
