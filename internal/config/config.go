package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	API  APIConfig
	Chat ChatConfig
	Log  LogConfig
	UI   UIConfig
}

type APIConfig struct {
	BaseURL string
	Timeout string
}

type ChatConfig struct {
	Endpoint string
}

type LogConfig struct {
	Level string
}

type UIConfig struct {
	NoColor bool
}

const defaultTimeout = 30 * time.Second

func defaults() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://localhost:5000",
			Timeout: defaultTimeout.String(),
		},
		Chat: ChatConfig{
			Endpoint: "/api/chat",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration in increasing precedence: defaults, the JSON
// config file at path (ConfigFilePath() when empty), a .env file in the
// working directory, and DOGDIET_* environment variables.
func Load(path string) (Config, error) {
	if path == "" {
		path = ConfigFilePath()
	}
	return loadWith(newFileBackend(path), ".env")
}

func loadWith(b ConfigBackend, envFile string) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	if envFile != "" {
		// godotenv never overrides variables already set in the environment.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}
	applyEnvOverrides(&cfg)

	if strings.TrimSpace(cfg.API.BaseURL) == "" {
		return Config{}, fmt.Errorf("missing required config: api.base_url. " +
			"Set it with `dogdiet config set api.base_url <url>` or DOGDIET_API_BASE_URL")
	}

	return cfg, nil
}

// RequestTimeout parses API.Timeout, falling back to the default on a bad value.
func (c Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil || d <= 0 {
		slog.Warn("invalid api timeout, using default", "value", c.API.Timeout, "default", defaultTimeout, "error", err)
		return defaultTimeout
	}
	return d
}

// LogLevel maps Log.Level onto slog levels; unknown names mean info.
func (c Config) LogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
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
