package tournament

import (
	"time"

	"arcade-tournament/internal/config"

	"github.com/google/uuid"
)

var DefaultGameQueue = []string{"snake", "flappy-bird", "terminal-artillery"}

type Options struct {
	GameQueue      []string
	MaxPlayers     int
	MinPlayers     int
	AutoStartDelay time.Duration
	CountdownTicks int
	TickInterval   time.Duration
	RoundDuration  time.Duration
	ResultsDelay   time.Duration
	ResetDelay     time.Duration
	BufferSize     int
	Clock          Clock
	NewID          func() string
}

func DefaultOptions() Options {
	return Options{
		GameQueue:      DefaultGameQueue,
		MaxPlayers:     4,
		MinPlayers:     2,
		AutoStartDelay: 2 * time.Second,
		CountdownTicks: 3,
		TickInterval:   time.Second,
		RoundDuration:  120 * time.Second,
		ResultsDelay:   5 * time.Second,
		ResetDelay:     30 * time.Second,
		BufferSize:     500,
		Clock:          SystemClock,
		NewID:          uuid.NewString,
	}
}

func OptionsFromConfig(cfg config.TournamentConfig) Options {
	opts := DefaultOptions()
	if len(cfg.GameQueue) > 0 {
		opts.GameQueue = cfg.GameQueue
	}
	if cfg.MaxPlayers > 0 {
		opts.MaxPlayers = cfg.MaxPlayers
	}
	if cfg.MinPlayers > 0 {
		opts.MinPlayers = cfg.MinPlayers
	}
	if cfg.AutoStartDelay > 0 {
		opts.AutoStartDelay = cfg.AutoStartDelay
	}
	if cfg.CountdownTicks > 0 {
		opts.CountdownTicks = cfg.CountdownTicks
	}
	if cfg.RoundDuration > 0 {
		opts.RoundDuration = cfg.RoundDuration
	}
	if cfg.ResultsDelay > 0 {
		opts.ResultsDelay = cfg.ResultsDelay
	}
	if cfg.ResetDelay > 0 {
		opts.ResetDelay = cfg.ResetDelay
	}
	if cfg.EventBuffer > 0 {
		opts.BufferSize = cfg.EventBuffer
	}
	return opts
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if len(o.GameQueue) == 0 {
		o.GameQueue = d.GameQueue
	}
	if o.MaxPlayers <= 0 {
		o.MaxPlayers = d.MaxPlayers
	}
	if o.MinPlayers <= 0 {
		o.MinPlayers = d.MinPlayers
	}
	if o.CountdownTicks <= 0 {
		o.CountdownTicks = d.CountdownTicks
	}
	if o.TickInterval <= 0 {
		o.TickInterval = d.TickInterval
	}
	if o.AutoStartDelay <= 0 {
		o.AutoStartDelay = d.AutoStartDelay
	}
	if o.RoundDuration <= 0 {
		o.RoundDuration = d.RoundDuration
	}
	if o.ResultsDelay <= 0 {
		o.ResultsDelay = d.ResultsDelay
	}
	if o.ResetDelay <= 0 {
		o.ResetDelay = d.ResetDelay
	}
	if o.BufferSize <= 0 {
		o.BufferSize = d.BufferSize
	}
	if o.Clock == nil {
		o.Clock = d.Clock
	}
	if o.NewID == nil {
		o.NewID = d.NewID
	}
	return o
}
