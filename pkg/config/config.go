package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Store backends
const (
	BackendMemory = "memory"
	BackendSQL    = "sql"
	BackendRedis  = "redis"
)

type Config struct {
	AppEnv  string `envconfig:"APP_ENV" default:"dev"`
	Port    string `envconfig:"PORT" default:"8000"`
	GinMode string `envconfig:"GIN_MODE"`

	Store struct {
		Backend     string `envconfig:"STORE_BACKEND"`
		DatabaseURL string `envconfig:"DATABASE_URL"`
		DataPath    string `envconfig:"DATA_PATH" default:"odysai.db"`
		RedisURL    string `envconfig:"REDIS_URL"`
		// KVURL is the hosted key-value URL some platforms inject instead of REDIS_URL
		KVURL       string `envconfig:"KV_URL"`
		VoteRetries int    `envconfig:"VOTE_RETRIES" default:"5"`
	} `envconfig:""`

	CORSOrigins []string `envconfig:"CORS_ORIGINS"`
}

// LoadDotEnv loads the first .env found in the working directory or its parents
func LoadDotEnv() {
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}
}

// Load reads the configuration from the environment
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if _, err := cfg.StoreBackend(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// RedisAddr returns REDIS_URL, falling back to KV_URL
func (c Config) RedisAddr() string {
	if c.Store.RedisURL != "" {
		return c.Store.RedisURL
	}
	return c.Store.KVURL
}

// StoreBackend resolves the backend, preferring Redis when a URL is present
func (c Config) StoreBackend() (string, error) {
	backend := strings.ToLower(strings.TrimSpace(c.Store.Backend))
	switch backend {
	case "":
		if c.RedisAddr() != "" {
			return BackendRedis, nil
		}
		return BackendSQL, nil
	case BackendMemory, BackendSQL:
		return backend, nil
	case BackendRedis:
		if c.RedisAddr() == "" {
			return "", fmt.Errorf("STORE_BACKEND=redis requires REDIS_URL or KV_URL")
		}
		return backend, nil
	default:
		return "", fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}
}
