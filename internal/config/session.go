package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// SessionConfig drives the solo session lifecycle and the featured game rotation.
type SessionConfig struct {
	Duration         time.Duration `env:"SESSION_DURATION" envDefault:"30m"`
	RotationInterval time.Duration `env:"ROTATION_INTERVAL" envDefault:"10m"`
	RotationGames    []string      `env:"ROTATION_GAMES" envSeparator:"," envDefault:"terminal-artillery,flappy-bird,snake"`
	EntryFee         string        `env:"SESSION_ENTRY_FEE" envDefault:"0.1"`
	MaxPlayers       int           `env:"SESSION_MAX_PLAYERS" envDefault:"50"`
	DefaultPayout    string        `env:"SESSION_DEFAULT_PAYOUT_POOL" envDefault:"1.0"`
	SweepInterval    time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"30s"`
}

func LoadSession() (SessionConfig, error) {
	var cfg SessionConfig
	err := env.Parse(&cfg)
	return cfg, err
}
