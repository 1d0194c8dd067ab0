package config

import "github.com/caarlos0/env/v11"

// TestConfig points store tests at a scratch Postgres. Each test gets its own
// schema named SchemaPrefix plus a timestamp; KeepSchema leaves it behind for
// inspection after a failing run.
type TestConfig struct {
	PostgresDSN  string `env:"TEST_POSTGRES_DSN,required,notEmpty"`
	SchemaPrefix string `env:"TEST_SCHEMA_PREFIX" envDefault:"arcade_test"`
	KeepSchema   bool   `env:"TEST_KEEP_SCHEMA" envDefault:"false"`
}

func LoadTest() (TestConfig, error) {
	var cfg TestConfig
	err := env.Parse(&cfg)
	return cfg, err
}
