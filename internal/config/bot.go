package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type BotConfig struct {
	WSURL     string        `env:"WS_URL" envDefault:"ws://localhost:8080/ws"`
	RoomID    string        `env:"ROOM_ID,required,notEmpty"`
	Name      string        `env:"BOT_NAME" envDefault:"bot"`
	MoveDelay time.Duration `env:"MOVE_DELAY" envDefault:"500ms"`
}

func LoadBot() (BotConfig, error) {
	var cfg BotConfig
	err := env.Parse(&cfg)
	return cfg, err
}
