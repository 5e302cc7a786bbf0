package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server  ServerConfig
	Logger  LoggerConfig
	Catalog CatalogConfig
	Session SessionConfig
}

type ServerConfig struct {
	AppEnv         string
	Port           string
	AllowedOrigins []string
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type CatalogConfig struct {
	APIURL           string
	Limit            int
	DelayMillis      int
	Timeout          time.Duration
	PlaceholderImage string
}

type SessionConfig struct {
	SearchDebounce time.Duration
	TTL            time.Duration
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:         getEnv("APP_ENV", "development"),
			Port:           getEnv("PORT", "8080"),
			AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", nil),
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOGGER_LEVEL", "info"),
			Encoding: getEnv("LOGGER_ENCODING", "console"),
		},
		Catalog: CatalogConfig{
			APIURL:           getEnv("CATALOG_API_URL", "https://api.daaif.net/products"),
			Limit:            getEnvInt("CATALOG_API_LIMIT", 200),
			DelayMillis:      getEnvInt("CATALOG_API_DELAY_MS", 0),
			Timeout:          getEnvDuration("CATALOG_API_TIMEOUT", 30*time.Second),
			PlaceholderImage: getEnv("PLACEHOLDER_IMAGE_URL", "https://placehold.co/600x400?text=No+Image"),
		},
		Session: SessionConfig{
			SearchDebounce: getEnvDuration("SEARCH_DEBOUNCE", 300*time.Millisecond),
			TTL:            getEnvDuration("SESSION_TTL", 30*time.Minute),
		},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
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

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	out := make([]string, 0)
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
