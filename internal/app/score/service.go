package score

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"arcade-tournament/internal/store"

	"github.com/rs/zerolog/log"
)

const (
	MaxScore           = 10_000_000
	maxUsernameRunes   = 50
	defaultBoardLimit  = 10
	leaderboardMaxRows = 100
)

// Repository is the persistence the ledger needs. *store.Store satisfies it.
type Repository interface {
	GetSession(ctx context.Context, id string) (*store.GameSession, error)
	UpsertPlayer(ctx context.Context, wallet, username string) (*store.Player, error)
	GetScore(ctx context.Context, sessionID, wallet string) (*store.Score, error)
	InsertScore(ctx context.Context, sc store.Score) (*store.Score, error)
	RaiseScore(ctx context.Context, id string, value int64, at time.Time) (bool, error)
	ListLeaderboard(ctx context.Context, sessionID string, limit int) ([]store.Score, error)
	CountVerifiedScores(ctx context.Context, sessionID string) (int, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Submit records a score for (wallet, session), keeping the highest value.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	wallet := strings.TrimSpace(in.WalletAddress)
	username := strings.TrimSpace(in.Username)
	if wallet == "" || username == "" || in.SessionID == "" {
		return nil, ErrInvalidRequest
	}
	if !ValidWallet(wallet) {
		return nil, ErrInvalidWallet
	}
	if math.IsNaN(in.Score) || math.IsInf(in.Score, 0) || in.Score < 0 || in.Score > MaxScore {
		return nil, ErrScoreOutOfRange
	}
	value := int64(math.Floor(in.Score))
	username = truncateRunes(username, maxUsernameRunes)

	sess, err := s.repo.GetSession(ctx, in.SessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, storageErr(err)
	}
	if sess.Status != store.SessionActive {
		return nil, ErrSessionNotActive
	}

	existing, err := s.repo.GetScore(ctx, sess.ID, wallet)
	switch {
	case err == nil:
		return s.raise(ctx, existing, value)
	case !errors.Is(err, store.ErrNotFound):
		return nil, storageErr(err)
	}

	player, err := s.repo.UpsertPlayer(ctx, wallet, username)
	if err != nil {
		return nil, storageErr(err)
	}
	created, err := s.repo.InsertScore(ctx, store.Score{
		SessionID:     sess.ID,
		PlayerID:      player.ID,
		WalletAddress: wallet,
		Username:      username,
		Score:         value,
		Verified:      true,
		Timestamp:     s.now(),
	})
	if errors.Is(err, store.ErrSessionClosed) {
		return nil, ErrSessionNotActive
	}
	if errors.Is(err, store.ErrDuplicate) {
		log.Debug().Str("session_id", sess.ID).Str("wallet", wallet).Msg("score_insert_race_lost")
		existing, err := s.repo.GetScore(ctx, sess.ID, wallet)
		if err != nil {
			return nil, storageErr(err)
		}
		return s.raise(ctx, existing, value)
	}
	if err != nil {
		return nil, storageErr(err)
	}
	log.Info().Str("session_id", sess.ID).Str("score_id", created.ID).Int64("score", value).Msg("score_recorded")
	return &SubmitResult{ScoreID: created.ID}, nil
}

func (s *Service) raise(ctx context.Context, existing *store.Score, value int64) (*SubmitResult, error) {
	if value <= existing.Score {
		return &SubmitResult{ScoreID: existing.ID, Existing: true}, nil
	}
	changed, err := s.repo.RaiseScore(ctx, existing.ID, value, s.now())
	if errors.Is(err, store.ErrSessionClosed) {
		return nil, ErrSessionNotActive
	}
	if err != nil {
		return nil, storageErr(err)
	}
	if !changed {
		// a concurrent submission stored an equal or higher value first
		return &SubmitResult{ScoreID: existing.ID, Existing: true}, nil
	}
	log.Info().Str("score_id", existing.ID).Int64("score", value).Msg("score_raised")
	return &SubmitResult{ScoreID: existing.ID, Updated: true}, nil
}

// Leaderboard ranks verified scores for a session. limit is clamped to
// [1, 100] and defaults to 10.
func (s *Service) Leaderboard(ctx context.Context, sessionID string, limit int) (*LeaderboardResult, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrInvalidRequest
	}
	if _, err := s.repo.GetSession(ctx, sessionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, storageErr(err)
	}
	rows, err := s.repo.ListLeaderboard(ctx, sessionID, clampLimit(limit))
	if err != nil {
		return nil, storageErr(err)
	}
	total, err := s.repo.CountVerifiedScores(ctx, sessionID)
	if err != nil {
		return nil, storageErr(err)
	}
	out := make([]LeaderboardEntry, 0, len(rows))
	for i, r := range rows {
		out = append(out, LeaderboardEntry{
			ID:            r.ID,
			WalletAddress: r.WalletAddress,
			Username:      r.Username,
			Score:         r.Score,
			Rank:          i + 1,
			Timestamp:     r.Timestamp,
		})
	}
	return &LeaderboardResult{SessionID: sessionID, Leaderboard: out, TotalScores: total}, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultBoardLimit
	}
	if limit > leaderboardMaxRows {
		return leaderboardMaxRows
	}
	return limit
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
