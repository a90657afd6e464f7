package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StoreBackendPostgres = "postgres"
	StoreBackendMemory   = "memory"
)

var ErrPostgresDSNRequired = errors.New("POSTGRES_DSN is required when STORE_BACKEND=postgres")

type ServerConfig struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	BaseURL  string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	StoreBackend string `env:"STORE_BACKEND" envDefault:"postgres"`
	PostgresDSN  string `env:"POSTGRES_DSN"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	RoomTTL         time.Duration `env:"ROOM_TTL" envDefault:"24h"`
	JanitorInterval time.Duration `env:"JANITOR_INTERVAL" envDefault:"10m"`
	WSSendBuffer    int           `env:"WS_SEND_BUFFER" envDefault:"16"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
	StaticDir       string        `env:"STATIC_DIR" envDefault:"web/dist"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	switch cfg.StoreBackend {
	case StoreBackendPostgres:
		if strings.TrimSpace(cfg.PostgresDSN) == "" {
			return cfg, ErrPostgresDSNRequired
		}
	case StoreBackendMemory:
	default:
		return cfg, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	if cfg.WSSendBuffer <= 0 {
		cfg.WSSendBuffer = 16
	}
	return cfg, nil
}
