package config

import "github.com/caarlos0/env/v11"

type PushConfig struct {
	Enabled        bool   `env:"RESULT_PUSH_ENABLED" envDefault:"false"`
	ConfigPath     string `env:"RESULT_PUSH_CONFIG_PATH"`
	ConfigReloadMS int    `env:"RESULT_PUSH_CONFIG_RELOAD_MS" envDefault:"1000"`
	Workers        int    `env:"RESULT_PUSH_WORKERS" envDefault:"2"`
	RetryMax       int    `env:"RESULT_PUSH_RETRY_MAX" envDefault:"3"`
	RetryBaseMS    int    `env:"RESULT_PUSH_RETRY_BASE_MS" envDefault:"500"`
	NATSURL        string `env:"NATS_URL"`
}

func LoadPush() (PushConfig, error) {
	var cfg PushConfig
	err := env.Parse(&cfg)
	return cfg, err
}
