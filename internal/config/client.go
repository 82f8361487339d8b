package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type ClientConfig struct {
	WSURL          string        `env:"WS_URL" envDefault:"ws://localhost:8080/ws"`
	PlayerName     string        `env:"PLAYER_NAME"`
	InitialBalance int64         `env:"INITIAL_BALANCE" envDefault:"10"`
	SlotCount      int           `env:"SLOT_COUNT" envDefault:"9"`
	ReconnectDelay time.Duration `env:"RECONNECT_DELAY" envDefault:"3s"`

	Autoplay      bool  `env:"AUTOPLAY" envDefault:"false"`
	AutoplayStake int64 `env:"AUTOPLAY_STAKE" envDefault:"1"`
}

func LoadClient() (ClientConfig, error) {
	var cfg ClientConfig
	err := env.Parse(&cfg)
	return cfg, err
}
