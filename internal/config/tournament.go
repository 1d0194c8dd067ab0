package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type TournamentConfig struct {
	GameQueue      []string      `env:"TOURNAMENT_GAME_QUEUE" envSeparator:"," envDefault:"snake,flappy-bird,terminal-artillery"`
	MaxPlayers     int           `env:"TOURNAMENT_MAX_PLAYERS" envDefault:"4"`
	MinPlayers     int           `env:"TOURNAMENT_MIN_PLAYERS" envDefault:"2"`
	AutoStartDelay time.Duration `env:"TOURNAMENT_AUTO_START_DELAY" envDefault:"2s"`
	CountdownTicks int           `env:"TOURNAMENT_COUNTDOWN_TICKS" envDefault:"3"`
	RoundDuration  time.Duration `env:"TOURNAMENT_ROUND_DURATION" envDefault:"120s"`
	ResultsDelay   time.Duration `env:"TOURNAMENT_RESULTS_DELAY" envDefault:"5s"`
	ResetDelay     time.Duration `env:"TOURNAMENT_RESET_DELAY" envDefault:"30s"`
	EventBuffer    int           `env:"TOURNAMENT_EVENT_BUFFER" envDefault:"500"`
}

func LoadTournament() (TournamentConfig, error) {
	var cfg TournamentConfig
	err := env.Parse(&cfg)
	return cfg, err
}
