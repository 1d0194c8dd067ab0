package score

import "time"

type SubmitInput struct {
	WalletAddress string
	Username      string
	Score         float64
	SessionID     string
}

type SubmitResult struct {
	ScoreID  string `json:"scoreId"`
	Updated  bool   `json:"updated,omitempty"`
	Existing bool   `json:"existing,omitempty"`
}

type LeaderboardEntry struct {
	ID            string    `json:"id"`
	WalletAddress string    `json:"wallet_address"`
	Username      string    `json:"username"`
	Score         int64     `json:"score"`
	Rank          int       `json:"rank"`
	Timestamp     time.Time `json:"timestamp"`
}

type LeaderboardResult struct {
	SessionID   string             `json:"session_id"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	TotalScores int                `json:"totalScores"`
}
