package tournament

import "time"

type Status string

const (
	StatusIdle         Status = "idle"
	StatusActive       Status = "active"
	StatusBetweenGames Status = "between-games"
	StatusFinished     Status = "finished"
)

type RoundStatus string

const (
	RoundWaiting   RoundStatus = "waiting"
	RoundCountdown RoundStatus = "countdown"
	RoundPlaying   RoundStatus = "playing"
	RoundResults   RoundStatus = "results"
)

// Phase is one of Waiting, Countdown, Playing or Results. Each variant
// carries only the fields valid in that phase.
type Phase interface {
	Status() RoundStatus
	isPhase()
}

type Waiting struct{}

type Countdown struct {
	Remaining int
}

type Playing struct {
	StartedAt time.Time
	EndsAt    time.Time
}

type Results struct {
	StartedAt time.Time
	EndedAt   time.Time
	Ranking   []Result
}

func (Waiting) Status() RoundStatus   { return RoundWaiting }
func (Countdown) Status() RoundStatus { return RoundCountdown }
func (Playing) Status() RoundStatus   { return RoundPlaying }
func (Results) Status() RoundStatus   { return RoundResults }

func (Waiting) isPhase()   {}
func (Countdown) isPhase() {}
func (Playing) isPhase()   {}
func (Results) isPhase()   {}

type Participant struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Score       int64      `json:"score"`
	IsActive    bool       `json:"isActive"`
	JoinedAt    time.Time  `json:"joinedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type Result struct {
	PlayerID   string    `json:"playerId"`
	PlayerName string    `json:"playerName"`
	Score      int64     `json:"score"`
	Rank       int       `json:"rank"`
	GameType   string    `json:"gameType"`
	RoundID    string    `json:"roundId"`
	RecordedAt time.Time `json:"completedAt"`
}

type round struct {
	id         string
	gameType   string
	gameIndex  int
	players    []*Participant
	maxPlayers int
	duration   time.Duration
	phase      Phase
}

func (r *round) participant(id string) *Participant {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *round) byName(name string) *Participant {
	for _, p := range r.players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// allActiveCompleted is true when at least one participant is active and
// every active one has completed.
func (r *round) allActiveCompleted() bool {
	active := 0
	for _, p := range r.players {
		if !p.IsActive {
			continue
		}
		active++
		if p.CompletedAt == nil {
			return false
		}
	}
	return active > 0
}
