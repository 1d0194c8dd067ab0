package tournament

import "time"

const leaderboardPreview = 10

// State is the full tournament snapshot broadcast as tournament-state.
type State struct {
	ID               string      `json:"id,omitempty"`
	Status           Status      `json:"status"`
	GameQueue        []string    `json:"gameQueue"`
	CurrentGameIndex int         `json:"currentGameIndex"`
	CurrentSession   *RoundState `json:"currentSession"`
	Leaderboard      []Result    `json:"leaderboard"`
	Timestamp        int64       `json:"timestamp"`
}

type RoundState struct {
	ID         string        `json:"id"`
	GameType   string        `json:"gameType"`
	Status     RoundStatus   `json:"status"`
	Players    []Participant `json:"players"`
	StartTime  *time.Time    `json:"startTime"`
	EndTime    *time.Time    `json:"endTime"`
	Duration   int           `json:"duration"`
	MaxPlayers int           `json:"maxPlayers"`
	Countdown  int           `json:"countdown,omitempty"`
	Results    []Result      `json:"results"`
}

type RoundCreated struct {
	GameType  string `json:"gameType"`
	SessionID string `json:"sessionId"`
}

type GameStarted struct {
	GameType  string `json:"gameType"`
	Duration  int    `json:"duration"`
	SessionID string `json:"sessionId"`
}

type GameEnded struct {
	Results     []Result `json:"results"`
	Leaderboard []Result `json:"leaderboard"`
}

type NextGamePrompt struct {
	HasNextGame      bool    `json:"hasNextGame"`
	NextGameType     *string `json:"nextGameType"`
	CurrentGameIndex int     `json:"currentGameIndex"`
	TotalGames       int     `json:"totalGames"`
}

type Finished struct {
	FinalLeaderboard []Result `json:"finalLeaderboard"`
}

func snapshotRound(r *round) *RoundState {
	if r == nil {
		return nil
	}
	rs := &RoundState{
		ID:         r.id,
		GameType:   r.gameType,
		Status:     r.phase.Status(),
		Players:    make([]Participant, 0, len(r.players)),
		Duration:   int(r.duration / time.Second),
		MaxPlayers: r.maxPlayers,
		Results:    []Result{},
	}
	for _, p := range r.players {
		rs.Players = append(rs.Players, copyParticipant(p))
	}
	switch ph := r.phase.(type) {
	case Countdown:
		rs.Countdown = ph.Remaining
	case Playing:
		start := ph.StartedAt
		rs.StartTime = &start
	case Results:
		start, end := ph.StartedAt, ph.EndedAt
		rs.StartTime = &start
		rs.EndTime = &end
		rs.Results = append(rs.Results, ph.Ranking...)
	}
	return rs
}

func copyParticipant(p *Participant) Participant {
	cp := *p
	if p.CompletedAt != nil {
		at := *p.CompletedAt
		cp.CompletedAt = &at
	}
	return cp
}

func head(results []Result, n int) []Result {
	if len(results) > n {
		results = results[:n]
	}
	out := make([]Result, len(results))
	copy(out, results)
	return out
}
