package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

type Config struct {
	DBPath       string
	OutputDir    string
	TaxonomyPath string

	ExportLanguage string
	LogLevel       string
	HTTPAddr       string
	HTTPTimeout    time.Duration

	TradeItemBaseURL      string
	TradeItemTokenURL     string
	TradeItemClientID     string
	TradeItemClientSecret string
	TradeItemUsername     string
	TradeItemPassword     string
	TradeItemScope        string
	TradeItemRateLimitRPS int
	TradeItemTimeoutMs    int
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:       getEnv("DB_PATH", filepath.Join(cwd, "data", "cin.db")),
		OutputDir:    getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		TaxonomyPath: getEnv("TAXONOMY_PATH", filepath.Join(cwd, "data", "gpc_codes.json")),

		ExportLanguage: getEnv("EXPORT_LANGUAGE", "sv"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		HTTPAddr:       getEnv("HTTP_ADDR", "127.0.0.1:8080"),
		HTTPTimeout:    getEnvDuration("HTTP_TIMEOUT", 15*time.Second),

		TradeItemBaseURL:      getEnv("TRADEITEM_BASE_URL", "https://services.validoo.se/tradeitem.api"),
		TradeItemTokenURL:     getEnv("TRADEITEM_TOKEN_URL", "https://identity.validoo.se/connect/token"),
		TradeItemClientID:     getEnv("TRADEITEM_CLIENT_ID", ""),
		TradeItemClientSecret: getEnv("TRADEITEM_CLIENT_SECRET", ""),
		TradeItemUsername:     getEnv("TRADEITEM_USERNAME", ""),
		TradeItemPassword:     getEnv("TRADEITEM_PASSWORD", ""),
		TradeItemScope:        getEnv("TRADEITEM_SCOPE", "tradeitem.api"),
		TradeItemRateLimitRPS: getEnvInt("TRADEITEM_RATE_LIMIT_RPS", 5),
		TradeItemTimeoutMs:    getEnvInt("TRADEITEM_TIMEOUT_MS", 30000),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that have no usable fallback.
func (c Config) Validate() error {
	if err := ValidateLanguage(c.ExportLanguage); err != nil {
		return fmt.Errorf("EXPORT_LANGUAGE: %w", err)
	}
	if c.TradeItemRateLimitRPS <= 0 {
		return fmt.Errorf("TRADEITEM_RATE_LIMIT_RPS must be positive")
	}
	if c.TradeItemTimeoutMs <= 0 {
		return fmt.Errorf("TRADEITEM_TIMEOUT_MS must be positive")
	}
	return nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

// ValidateLanguage accepts well-formed BCP 47 tags. The code itself is
// used verbatim for matching; parsing only rejects typos.
func ValidateLanguage(code string) error {
	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("language code is empty")
	}
	if _, err := language.Parse(code); err != nil {
		return fmt.Errorf("invalid language code %q: %w", code, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(getEnv(key, ""))
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
