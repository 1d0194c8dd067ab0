package ws

import (
	"encoding/json"
	"errors"
	"math"
	"strings"

	"arcade-tournament/internal/tournament"
)

// Client to server message types.
const (
	TypeJoin     = "join-tournament"
	TypeScore    = "update-score"
	TypeComplete = "game-complete"
	TypeRetry    = "retry-game"
	TypeStart    = "start-tournament"
	TypeNextGame = "next-game"
)

// Server to client message types not produced by the engine.
const (
	TypeJoined = "tournament-joined"
	TypeError  = tournament.EventError
)

var (
	errBadFrame    = errors.New("invalid_message")
	errUnknownType = errors.New("unknown_message_type")
)

// Frame is the inbound envelope.
type Frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// OutFrame is the outbound envelope; Data is any engine payload.
type OutFrame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type JoinData struct {
	Name string `json:"name"`
}

type ScoreData struct {
	Score float64 `json:"score"`
}

type CompleteData struct {
	FinalScore float64 `json:"finalScore"`
}

type JoinedData struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

type ErrorData struct {
	Message string `json:"message"`
}

// decodeName accepts either a bare string or {"name": "..."}.
func decodeName(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var d JoinData
	if err := json.Unmarshal(raw, &d); err != nil {
		return "", errBadFrame
	}
	return d.Name, nil
}

func decodeInto(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errBadFrame
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errBadFrame
	}
	return nil
}

// maxWireScore is the largest integer a JSON number carries exactly.
const maxWireScore = 1 << 53

// toScore floors a client supplied score.
func toScore(v float64) (int64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > maxWireScore {
		return 0, tournament.ErrInvalidScore
	}
	return int64(math.Floor(v)), nil
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, errBadFrame):
		return "Invalid message"
	case errors.Is(err, errUnknownType):
		return "Unknown message type"
	default:
		return tournament.Message(err)
	}
}

func normalizeType(t string) string {
	return strings.TrimSpace(strings.ToLower(t))
}
