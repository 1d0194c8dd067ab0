// Package rotation derives the featured mini-game from elapsed session time.
// Nothing here holds state: callers recompute a Slot on every tick.
package rotation

import (
	"errors"
	"time"
)

const DefaultInterval = 600 * time.Second

// DefaultGames is the featured game order used by solo sessions.
var DefaultGames = []string{"terminal-artillery", "flappy-bird", "snake"}

var (
	ErrNoGames         = errors.New("no_games")
	ErrInvalidInterval = errors.New("invalid_interval")
)

type Slot struct {
	Index              int    `json:"index"`
	Game               string `json:"game"`
	NextGame           string `json:"next_game"`
	Rotation           int64  `json:"rotation"`
	SecondsUntilSwitch int64  `json:"seconds_until_switch"`
}

// FeaturedGame maps elapsed time onto games. Elapsed is truncated to whole
// seconds; SecondsUntilSwitch is in (0, interval] and equals interval exactly
// on a boundary.
func FeaturedGame(elapsed, interval time.Duration, games []string) (Slot, error) {
	if len(games) == 0 {
		return Slot{}, ErrNoGames
	}
	step := int64(interval / time.Second)
	if step <= 0 {
		return Slot{}, ErrInvalidInterval
	}
	secs := int64(elapsed / time.Second)
	if secs < 0 {
		secs = 0
	}
	rotation := secs / step
	n := int64(len(games))
	idx := int(rotation % n)
	return Slot{
		Index:              idx,
		Game:               games[idx],
		NextGame:           games[int((rotation+1)%n)],
		Rotation:           rotation,
		SecondsUntilSwitch: step - secs%step,
	}, nil
}

// Since is FeaturedGame for a session that started at start.
func Since(start, now time.Time, interval time.Duration, games []string) (Slot, error) {
	return FeaturedGame(now.Sub(start), interval, games)
}
