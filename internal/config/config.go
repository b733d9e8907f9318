// Package config loads settings for the client SDK and the development
// backend from a .env file, an optional config.yml, and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/fashionpolice/fashion-police/internal/api"
)

// Config holds every tunable. Environment variables use the mapstructure
// names.
type Config struct {
	// Client SDK
	APIBaseURL string        `mapstructure:"API_BASE_URL"`
	APITimeout time.Duration `mapstructure:"API_TIMEOUT"`
	PageSize   int           `mapstructure:"PAGE_SIZE"`

	// Development backend
	Port      int    `mapstructure:"PORT"`
	DBPath    string `mapstructure:"DB_PATH"`
	JWTSecret string `mapstructure:"JWT_SECRET"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
}

// Options controls where Load looks.
type Options struct {
	EnvFile    string   // default ".env"
	ConfigName string   // default "config"
	ConfigDirs []string // default ["."]
}

// Load reads configuration. A missing .env or config.yml is not an error;
// a malformed one is.
func Load(opts Options) (*Config, error) {
	if opts.EnvFile == "" {
		opts.EnvFile = ".env"
	}
	if opts.ConfigName == "" {
		opts.ConfigName = "config"
	}
	if len(opts.ConfigDirs) == 0 {
		opts.ConfigDirs = []string{"."}
	}

	if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: loading %s: %w", opts.EnvFile, err)
	}

	v := viper.New()
	v.SetConfigName(opts.ConfigName)
	v.SetConfigType("yml")
	for _, dir := range opts.ConfigDirs {
		v.AddConfigPath(dir)
	}
	v.AutomaticEnv()

	v.SetDefault("API_BASE_URL", "http://localhost:8080")
	v.SetDefault("API_TIMEOUT", "15s")
	v.SetDefault("PAGE_SIZE", 5)
	v.SetDefault("PORT", 8080)
	v.SetDefault("DB_PATH", "data/fashionpolice.db")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("LOG_LEVEL", "info")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}

	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("config: PAGE_SIZE must be positive, got %d", cfg.PageSize)
	}
	// The backend clamps larger pages, and a clamped page would look short
	// and end the feed early.
	if cfg.PageSize > api.MaxPageSize {
		return nil, fmt.Errorf("config: PAGE_SIZE must be at most %d, got %d", api.MaxPageSize, cfg.PageSize)
	}
	if cfg.APITimeout <= 0 {
		return nil, fmt.Errorf("config: API_TIMEOUT must be positive, got %s", cfg.APITimeout)
	}

	return &cfg, nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to Info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
