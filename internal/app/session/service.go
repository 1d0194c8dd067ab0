package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"arcade-tournament/internal/config"
	"arcade-tournament/internal/prize"
	"arcade-tournament/internal/rotation"
	"arcade-tournament/internal/store"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Repository is the persistence the lifecycle needs. *store.Store satisfies it.
type Repository interface {
	GetActiveSession(ctx context.Context) (*store.GameSession, error)
	CreateSession(ctx context.Context, next store.NewSession) (*store.GameSession, error)
	RotateSession(ctx context.Context, expiredID string, endedAt time.Time, next store.NewSession) (*store.GameSession, error)
	ReplaceActiveSessions(ctx context.Context, endedAt time.Time, next store.NewSession) (*store.GameSession, int64, error)
	CountSessionPlayers(ctx context.Context, sessionID string) (int, error)
	ListLeaderboard(ctx context.Context, sessionID string, limit int) ([]store.Score, error)
}

// Notifier receives lifecycle side effects. Implementations must not block.
type Notifier interface {
	SessionRotated(ctx context.Context, r Rotation)
	PayoutsProcessed(ctx context.Context, r PayoutReport)
}

type Options struct {
	Duration         time.Duration
	RotationInterval time.Duration
	Games            []string
	EntryFee         decimal.Decimal
	DefaultPool      decimal.Decimal
	MaxPlayers       int
	Now              func() time.Time
}

func DefaultOptions() Options {
	return Options{
		Duration:         30 * time.Minute,
		RotationInterval: rotation.DefaultInterval,
		Games:            rotation.DefaultGames,
		EntryFee:         decimal.RequireFromString("0.1"),
		DefaultPool:      decimal.NewFromInt(1),
		MaxPlayers:       50,
		Now:              time.Now,
	}
}

func OptionsFromConfig(cfg config.SessionConfig) (Options, error) {
	opts := DefaultOptions()
	if cfg.Duration > 0 {
		opts.Duration = cfg.Duration
	}
	if cfg.RotationInterval > 0 {
		opts.RotationInterval = cfg.RotationInterval
	}
	if len(cfg.RotationGames) > 0 {
		opts.Games = cfg.RotationGames
	}
	if cfg.MaxPlayers > 0 {
		opts.MaxPlayers = cfg.MaxPlayers
	}
	if cfg.EntryFee != "" {
		fee, err := decimal.NewFromString(cfg.EntryFee)
		if err != nil || fee.IsNegative() {
			return Options{}, fmt.Errorf("invalid SESSION_ENTRY_FEE %q", cfg.EntryFee)
		}
		opts.EntryFee = fee
	}
	if cfg.DefaultPayout != "" {
		pool, err := decimal.NewFromString(cfg.DefaultPayout)
		if err != nil || pool.IsNegative() {
			return Options{}, fmt.Errorf("invalid SESSION_DEFAULT_PAYOUT_POOL %q", cfg.DefaultPayout)
		}
		opts.DefaultPool = pool
	}
	return opts, nil
}

// Service owns the single active session. Rotation within one process is
// serialized by mu; across processes the store's conditional end and the
// one-active index keep the invariant.
type Service struct {
	repo     Repository
	opts     Options
	notifier Notifier
	mu       sync.Mutex
}

func NewService(repo Repository, opts Options, notifier Notifier) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{repo: repo, opts: opts, notifier: notifier}
}

// GetOrCreateActive returns the active session, rotating it first when its
// duration has elapsed.
func (s *Service) GetOrCreateActive(ctx context.Context) (*SessionView, error) {
	now := s.opts.Now()
	cur, err := s.repo.GetActiveSession(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return s.createFirst(ctx, now)
	}
	if err != nil {
		return nil, storageErr(err)
	}
	if now.Sub(cur.StartTime) >= s.opts.Duration {
		return s.rotateExpired(ctx, cur, now)
	}
	players, err := s.repo.CountSessionPlayers(ctx, cur.ID)
	if err != nil {
		return nil, storageErr(err)
	}
	return s.view(cur, players, now), nil
}

// ForceNew ends every active session and opens a fresh one.
func (s *Service) ForceNew(ctx context.Context) (*SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.opts.Now()
	created, ended, err := s.repo.ReplaceActiveSessions(ctx, now, s.newSession(now))
	if errors.Is(err, store.ErrDuplicate) {
		// another process inserted between our end and insert
		created, ended, err = s.repo.ReplaceActiveSessions(ctx, now, s.newSession(now))
	}
	if err != nil {
		return nil, storageErr(err)
	}
	log.Info().Str("session_id", created.ID).Int64("ended", ended).Msg("session_forced")
	if s.notifier != nil {
		s.notifier.SessionRotated(ctx, Rotation{Reason: RotationForced, Next: created})
	}
	return s.view(created, 0, now), nil
}

// ProcessPayouts computes the prize split for the active session's top three.
func (s *Service) ProcessPayouts(ctx context.Context) (*PayoutReport, error) {
	cur, err := s.repo.GetActiveSession(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoActiveSession
	}
	if err != nil {
		return nil, storageErr(err)
	}
	report, err := s.payoutFor(ctx, cur)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.PayoutsProcessed(ctx, *report)
	}
	return report, nil
}

func (s *Service) createFirst(ctx context.Context, now time.Time) (*SessionView, error) {
	created, err := s.repo.CreateSession(ctx, s.newSession(now))
	if errors.Is(err, store.ErrDuplicate) {
		return s.reload(ctx, now)
	}
	if err != nil {
		return nil, storageErr(err)
	}
	log.Info().Str("session_id", created.ID).Msg("session_created")
	return s.view(created, 0, now), nil
}

func (s *Service) rotateExpired(ctx context.Context, cur *store.GameSession, now time.Time) (*SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created, err := s.repo.RotateSession(ctx, cur.ID, now, s.newSession(now))
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrDuplicate):
		return s.reload(ctx, now)
	case err != nil:
		return nil, storageErr(err)
	}
	// The ended session takes no more scores, so its leaderboard is final here.
	payout, err := s.payoutFor(ctx, cur)
	if err != nil {
		log.Warn().Err(err).Str("session_id", cur.ID).Msg("session_payout_compute_failed")
		payout = nil
	}
	log.Info().
		Str("ended_session_id", cur.ID).
		Str("session_id", created.ID).
		Msg("session_rotated")
	if s.notifier != nil {
		s.notifier.SessionRotated(ctx, Rotation{
			Reason: RotationExpired,
			Ended:  []string{cur.ID},
			Next:   created,
			Payout: payout,
		})
	}
	return s.view(created, 0, now), nil
}

// reload is taken by a caller that lost a create or rotate race.
func (s *Service) reload(ctx context.Context, now time.Time) (*SessionView, error) {
	cur, err := s.repo.GetActiveSession(ctx)
	if err != nil {
		return nil, storageErr(err)
	}
	players, err := s.repo.CountSessionPlayers(ctx, cur.ID)
	if err != nil {
		return nil, storageErr(err)
	}
	return s.view(cur, players, now), nil
}

func (s *Service) payoutFor(ctx context.Context, sess *store.GameSession) (*PayoutReport, error) {
	top, err := s.repo.ListLeaderboard(ctx, sess.ID, 3)
	if err != nil {
		return nil, storageErr(err)
	}
	pool := sess.PrizePool
	if pool.IsZero() {
		pool = s.opts.DefaultPool
	}
	winners := make([]prize.Winner, 0, len(top))
	scores := make([]TopScore, 0, len(top))
	for i, sc := range top {
		winners = append(winners, prize.Winner{WalletAddress: sc.WalletAddress, Username: sc.Username, Score: sc.Score})
		scores = append(scores, TopScore{Rank: i + 1, WalletAddress: sc.WalletAddress, Username: sc.Username, Score: sc.Score})
	}
	awards, err := prize.Allocate(pool, winners)
	if err != nil {
		return nil, err
	}
	return &PayoutReport{SessionID: sess.ID, PrizePool: pool, TopScores: scores, Awards: awards}, nil
}

func (s *Service) newSession(now time.Time) store.NewSession {
	return store.NewSession{
		StartTime:  now,
		EntryFee:   s.opts.EntryFee,
		PrizePool:  decimal.Zero,
		MaxPlayers: s.opts.MaxPlayers,
	}
}

func (s *Service) view(sess *store.GameSession, players int, now time.Time) *SessionView {
	elapsed := now.Sub(sess.StartTime)
	if elapsed < 0 {
		elapsed = 0
	}
	left := int64((s.opts.Duration - elapsed.Truncate(time.Second)) / time.Second)
	if left < 0 {
		left = 0
	}
	v := &SessionView{
		ID:         sess.ID,
		Status:     sess.Status,
		StartTime:  sess.StartTime,
		EndTime:    sess.EndTime,
		EntryFee:   sess.EntryFee.InexactFloat64(),
		PrizePool:  sess.PrizePool.InexactFloat64(),
		MaxPlayers: sess.MaxPlayers,
		Players:    players,
		TimeLeft:   left,
	}
	if slot, err := rotation.Since(sess.StartTime, now, s.opts.RotationInterval, s.opts.Games); err == nil {
		v.FeaturedGame = &slot
	}
	return v
}
