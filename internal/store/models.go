package store

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SessionActive = "active"
	SessionEnded  = "ended"
)

type GameSession struct {
	ID         string
	Status     string
	StartTime  time.Time
	EndTime    *time.Time
	EntryFee   decimal.Decimal
	PrizePool  decimal.Decimal
	MaxPlayers int
}

// NewSession holds the creation-time fields of a session. Status is always
// active and start time is supplied by the caller's clock.
type NewSession struct {
	StartTime  time.Time
	EntryFee   decimal.Decimal
	PrizePool  decimal.Decimal
	MaxPlayers int
}

type Player struct {
	ID            string
	WalletAddress string
	Username      string
	CreatedAt     time.Time
}

type Score struct {
	ID            string
	SessionID     string
	PlayerID      string
	WalletAddress string
	Username      string
	Score         int64
	Verified      bool
	Timestamp     time.Time
}
