package config

import "github.com/caarlos0/env/v11"

type StoreConfig struct {
	Driver      string `env:"STORE_DRIVER" envDefault:"file"`
	StateDir    string `env:"STATE_DIR" envDefault:".mines-client"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:".mines-client/state.db"`
	RedisAddr   string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass   string `env:"REDIS_PASSWORD"`
	RedisDB     int    `env:"REDIS_DB" envDefault:"0"`
	KeyPrefix   string `env:"STORE_KEY_PREFIX" envDefault:"mines"`
	PostgresDSN string `env:"POSTGRES_DSN"`
}

func LoadStore() (StoreConfig, error) {
	var cfg StoreConfig
	err := env.Parse(&cfg)
	return cfg, err
}
