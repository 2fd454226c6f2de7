// Package config loads server settings from the environment, optionally
// backed by a .env file in the working directory.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Port            int    `mapstructure:"PORT"`
	DBPath          string `mapstructure:"DB_PATH"`
	DatabaseURL     string `mapstructure:"DATABASE_URL"` // when set, Postgres replaces SQLite
	JWTSecret       string `mapstructure:"JWT_SECRET"`   // empty disables token issuing
	CreatorUsername string `mapstructure:"CREATOR_USERNAME"`
	CreatorPassword string `mapstructure:"CREATOR_PASSWORD"`
	LogLevel        string `mapstructure:"LOG_LEVEL"`
	BaseURL         string `mapstructure:"BASE_URL"`
	BcryptCost      int    `mapstructure:"BCRYPT_COST"`
}

var defaults = map[string]any{
	"PORT":             8080,
	"DB_PATH":          "data/programmers.db",
	"DATABASE_URL":     "",
	"JWT_SECRET":       "",
	"CREATOR_USERNAME": "weaverryan",
	"CREATOR_PASSWORD": "foo",
	"LOG_LEVEL":        "debug",
	"BASE_URL":         "http://localhost:8080",
	"BCRYPT_COST":      12,
}

// Load reads configuration from the environment. A .env file in any of
// paths (default ".") is read first; environment variables override it. A
// missing .env file is not an error.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: reading .env: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("config: invalid PORT %d", cfg.Port)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &cfg, nil
}

// SlogLevel maps LOG_LEVEL onto a slog level. Unknown values mean debug.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelDebug
}
