package config

import "github.com/caarlos0/env/v11"

type HTTPConfig struct {
	Addr    string `env:"HTTP_ADDR" envDefault:"127.0.0.1:8090"`
	Enabled bool   `env:"HTTP_ENABLED" envDefault:"true"`
}

func LoadHTTP() (HTTPConfig, error) {
	var cfg HTTPConfig
	err := env.Parse(&cfg)
	return cfg, err
}
