package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/frankfika/gitlab-issuehelper/core/db"
)

type Config struct {
	OTel     OTelConfig
	LLM      LLMConfig
	Store    StoreConfig
	Redis    RedisConfig
	DB       db.Config
	Env      string
	Port     string
	LogLevel string
	NodeID   int64
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
	// Component tells the server and CLI apart under one service name.
	Component   string
	SampleRatio float64
}

// LLMConfig points at an OpenAI-compatible chat-completion endpoint.
type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
}

type StoreConfig struct {
	Backends []string // priority order, e.g. ["file", "local"]
	Dir      string
	TTL      time.Duration
}

type RedisConfig struct {
	URL       string
	KeyPrefix string
}

type ServiceType string

const (
	ServiceTypeServer ServiceType = "server"
	ServiceTypeCLI    ServiceType = "cli"
)

const (
	DefaultLLMBaseURL = "https://api.siliconflow.cn/v1"
	DefaultLLMModel   = "deepseek-ai/DeepSeek-V3"
)

// Load loads configuration from environment variables.
// In development, it loads from service-specific .env files:
//   - .env.server for the HTTP API
//   - .env.cli for the command-line tool
//
// Falls back to .env if service-specific file doesn't exist.
func Load(serviceType ServiceType) (Config, error) {
	if getEnv("ISSUEHELPER_ENV", "development") == "development" {
		envFile := fmt.Sprintf(".env.%s", serviceType)
		if err := godotenv.Load(envFile); err != nil {
			_ = godotenv.Load(".env")
		}
	}

	cfg := Config{
		Env:      getEnv("ISSUEHELPER_ENV", "development"),
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", ""),
		NodeID:   getEnvInt64("NODE_ID", 1),
		DB: db.Config{
			DSN:      getEnv("DATABASE_URL", ""),
			MaxConns: getEnvInt32("DB_MAX_CONNS", 4),
			MinConns: getEnvInt32("DB_MIN_CONNS", 1),
		},
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "gitlab-issuehelper"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			Component:      string(serviceType),
			SampleRatio:    getEnvFloat("OTEL_TRACES_SAMPLE_RATIO", 1),
		},
		LLM: LLMConfig{
			APIKey:      getEnv("LLM_API_KEY", ""),
			BaseURL:     getEnv("LLM_BASE_URL", DefaultLLMBaseURL),
			Model:       getEnv("LLM_MODEL", DefaultLLMModel),
			Temperature: getEnvFloat("LLM_TEMPERATURE", 0.7),
			MaxTokens:   getEnvInt("LLM_MAX_TOKENS", 2000),
		},
		Store: StoreConfig{
			Backends: splitList(getEnv("STORE_BACKENDS", "file,local")),
			Dir:      getEnv("STORE_DIR", defaultStoreDir()),
			TTL:      time.Duration(getEnvInt("STORE_TTL_DAYS", 365)) * 24 * time.Hour,
		},
		Redis: RedisConfig{
			URL:       getEnv("REDIS_URL", ""),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "issuehelper:"),
		},
	}

	if len(cfg.Store.Backends) == 0 {
		return Config{}, fmt.Errorf("STORE_BACKENDS must name at least one backend")
	}

	for _, b := range cfg.Store.Backends {
		switch b {
		case "redis":
			if !cfg.Redis.Enabled() {
				return Config{}, fmt.Errorf("REDIS_URL is required when STORE_BACKENDS includes redis")
			}
		case "postgres":
			if cfg.DB.DSN == "" {
				return Config{}, fmt.Errorf("DATABASE_URL is required when STORE_BACKENDS includes postgres")
			}
		}
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c LLMConfig) Enabled() bool {
	return c.APIKey != ""
}

func (c RedisConfig) Enabled() bool {
	return c.URL != ""
}

// defaultStoreDir follows XDG: $XDG_CONFIG_HOME/gitlab-issuehelper, else ~/.config/gitlab-issuehelper.
func defaultStoreDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gitlab-issuehelper")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gitlab-issuehelper"
	}
	return filepath.Join(home, ".config", "gitlab-issuehelper")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt32(key string, fallback int32) int32 {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(i)
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}
