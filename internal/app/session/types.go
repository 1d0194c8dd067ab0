package session

import (
	"time"

	"arcade-tournament/internal/prize"
	"arcade-tournament/internal/rotation"
	"arcade-tournament/internal/store"

	"github.com/shopspring/decimal"
)

type SessionView struct {
	ID           string         `json:"id"`
	Status       string         `json:"status"`
	StartTime    time.Time      `json:"start_time"`
	EndTime      *time.Time     `json:"end_time,omitempty"`
	EntryFee     float64        `json:"entry_fee"`
	PrizePool    float64        `json:"prize_pool"`
	MaxPlayers   int            `json:"max_players"`
	Players      int            `json:"players"`
	TimeLeft     int64          `json:"timeLeft"`
	FeaturedGame *rotation.Slot `json:"featured_game,omitempty"`
}

type TopScore struct {
	Rank          int    `json:"rank"`
	WalletAddress string `json:"wallet_address"`
	Username      string `json:"username"`
	Score         int64  `json:"score"`
}

// PayoutReport is the computed prize split for a session. It never implies a
// transfer happened.
type PayoutReport struct {
	SessionID string          `json:"session_id"`
	PrizePool decimal.Decimal `json:"prize_pool"`
	TopScores []TopScore      `json:"top_scores"`
	Awards    []prize.Award   `json:"awards"`
}

const (
	RotationExpired = "expired"
	RotationForced  = "forced"
)

// Rotation describes one session replacing another.
type Rotation struct {
	Reason string
	Ended  []string
	Next   *store.GameSession
	Payout *PayoutReport
}
