package main

import (
	"log/slog"
	"strings"

	env "github.com/Netflix/go-env"
)

// Config is populated from the environment, optionally seeded from a .env
// file at boot.
type Config struct {
	Addr              string `env:"ADDR,default=:8080"`
	DatabaseURL       string `env:"DB_URL,required=true"`
	RedisURL          string `env:"REDIS_URL,required=true"`
	WorkerConcurrency int    `env:"WORKER_CONCURRENCY,default=10"`
	LogLevel          string `env:"LOG_LEVEL,default=info"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	return cfg, err
}

func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
