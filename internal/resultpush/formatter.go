package resultpush

import (
	"fmt"
	"strings"

	appsession "arcade-tournament/internal/app/session"
	"arcade-tournament/internal/resultpush/platforms"
	"arcade-tournament/internal/tournament"
)

type rotationPayload struct {
	Reason        string                   `json:"reason"`
	EndedSessions []string                 `json:"ended_sessions"`
	NextSessionID string                   `json:"next_session_id,omitempty"`
	NextStartTime int64                    `json:"next_start_time,omitempty"`
	Payout        *appsession.PayoutReport `json:"payout,omitempty"`
}

func rotationToPayload(r appsession.Rotation) rotationPayload {
	p := rotationPayload{Reason: r.Reason, EndedSessions: r.Ended, Payout: r.Payout}
	if r.Next != nil {
		p.NextSessionID = r.Next.ID
		p.NextStartTime = r.Next.StartTime.UnixMilli()
	}
	return p
}

// FormatMessage renders an event for delivery. ok is false for payloads no
// target should receive.
func FormatMessage(ev Event) (platforms.Message, bool) {
	msg := platforms.Message{EventID: ev.ID, Event: ev.Type, ServerTS: ev.ServerTS, Data: ev.Payload}
	switch p := ev.Payload.(type) {
	case tournament.GameEnded:
		msg.Title = "Round ended"
		msg.Summary = podium(p.Results)
	case tournament.Finished:
		msg.Title = "Tournament finished"
		msg.Summary = podium(p.FinalLeaderboard)
	case rotationPayload:
		msg.Title = "Session rotated"
		msg.Summary = fmt.Sprintf("%s: ended %s", p.Reason, strings.Join(p.EndedSessions, ", "))
		if p.NextSessionID != "" {
			msg.Summary += "; next " + p.NextSessionID
		}
	case appsession.PayoutReport:
		msg.Title = "Payouts processed"
		msg.Summary = fmt.Sprintf("session %s pool %s, %d awards", p.SessionID, p.PrizePool.String(), len(p.Awards))
	default:
		return platforms.Message{}, false
	}
	return msg, true
}

func podium(results []tournament.Result) string {
	if len(results) == 0 {
		return "no scores"
	}
	n := len(results)
	if n > 3 {
		n = 3
	}
	parts := make([]string, 0, n)
	for _, r := range results[:n] {
		parts = append(parts, fmt.Sprintf("#%d %s %d", r.Rank, r.PlayerName, r.Score))
	}
	return strings.Join(parts, ", ")
}
