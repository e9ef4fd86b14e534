package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrMissingEnv = errors.New("missing required environment variable")

type Config struct {
	TelegramToken  string
	MistralAPIKey  string
	MistralModel   string
	MistralBaseURL string
	MistralTimeout time.Duration
	SQLiteFile     string
	SupabaseURL    string
	SupabaseKey    string
	CurrencySymbol string
	LogLevel       slog.Level
}

// UseSupabase сообщает, выбрано ли хранилище Supabase вместо SQLite
func (c *Config) UseSupabase() bool {
	return c.SupabaseURL != "" && c.SupabaseKey != ""
}

// LoadConfig читает .env (если он есть) и переменные окружения.
// Токен Telegram обязателен только при requireTelegram.
func LoadConfig(requireTelegram bool) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		TelegramToken:  firstEnv("TELEGRAM_TOKEN", "API_TOKEN"),
		MistralAPIKey:  os.Getenv("MISTRAL_API_KEY"),
		MistralModel:   envOr("MISTRAL_MODEL", "mistral-large-latest"),
		MistralBaseURL: envOr("MISTRAL_BASE_URL", "https://api.mistral.ai"),
		SQLiteFile:     envOr("SQLITE_FILE", "expenses.db"),
		SupabaseURL:    os.Getenv("SUPABASE_URL"),
		SupabaseKey:    os.Getenv("SUPABASE_KEY"),
		CurrencySymbol: envOr("CURRENCY_SYMBOL", "₹"),
	}

	if requireTelegram && cfg.TelegramToken == "" {
		return nil, fmt.Errorf("%w: TELEGRAM_TOKEN", ErrMissingEnv)
	}
	if cfg.MistralAPIKey == "" {
		return nil, fmt.Errorf("%w: MISTRAL_API_KEY", ErrMissingEnv)
	}
	if (cfg.SupabaseURL == "") != (cfg.SupabaseKey == "") {
		return nil, fmt.Errorf("%w: SUPABASE_URL and SUPABASE_KEY must be set together", ErrMissingEnv)
	}

	if raw := os.Getenv("MISTRAL_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("invalid MISTRAL_TIMEOUT %q", raw)
		}
		cfg.MistralTimeout = d
	}

	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(strings.ToUpper(raw))); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", raw, err)
		}
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}
