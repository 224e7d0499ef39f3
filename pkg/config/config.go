// Package config reads the server configuration from the environment once at
// process start.
package config

import (
	"os"
	"time"
)

type AppConfig struct {
	Port           string
	Environment    string
	DatabaseURL    string
	DatabasePath   string
	RedisURL       string
	OTLPEndpoint   string
	ServiceName    string
	ServiceVersion string

	RateLimitEnabled bool
	RateLimitConfigs map[string]RateLimitConfig

	ListCacheTTL time.Duration
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

func GetDefaultConfig() *AppConfig {
	return &AppConfig{
		Port:           "8080",
		Environment:    "development",
		ServiceName:    "todopop",
		ServiceVersion: "1.0.0",
		OTLPEndpoint:   "localhost:4317",

		RateLimitEnabled: true,
		RateLimitConfigs: map[string]RateLimitConfig{
			"GET /fn/todos.list": {
				Requests: 120,
				Window:   time.Minute,
			},
			"POST /fn/todos.add": {
				Requests: 30,
				Window:   time.Minute,
			},
			"POST /fn/todos.toggle": {
				Requests: 60,
				Window:   time.Minute,
			},
			"POST /fn/todos.remove": {
				Requests: 30,
				Window:   time.Minute,
			},
			"default": {
				Requests: 60,
				Window:   time.Minute,
			},
		},

		ListCacheTTL: 3 * time.Second,
	}
}

// FromEnv layers environment values over the defaults.
func FromEnv() *AppConfig {
	cfg := GetDefaultConfig()

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.DatabasePath = os.Getenv("DATABASE_PATH")
	cfg.RedisURL = os.Getenv("REDIS_URL")

	if endpoint := os.Getenv("OTLP_ENDPOINT"); endpoint != "" {
		cfg.OTLPEndpoint = endpoint
	}

	if os.Getenv("GIN_MODE") == "release" {
		cfg.Environment = "production"
	}

	return cfg
}
