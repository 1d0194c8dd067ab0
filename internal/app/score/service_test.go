package score

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"arcade-tournament/internal/store"
)

const (
	walletA = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"
	walletB = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"
	walletC = "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T"
)

type memRepo struct {
	mu       sync.Mutex
	sessions map[string]*store.GameSession
	players  map[string]*store.Player
	scores   map[string]*store.Score
	seq      int
	// beforeInsert runs inside InsertScore before the session and uniqueness checks.
	beforeInsert func(m *memRepo, sc store.Score)
	beforeRaise  func(m *memRepo, id string)
}

func newMemRepo() *memRepo {
	return &memRepo{
		sessions: map[string]*store.GameSession{
			"live":  {ID: "live", Status: store.SessionActive},
			"ended": {ID: "ended", Status: store.SessionEnded},
		},
		players: map[string]*store.Player{},
		scores:  map[string]*store.Score{},
	}
}

func key(sessionID, wallet string) string { return sessionID + "/" + wallet }

func (m *memRepo) nextID(prefix string) string {
	m.seq++
	return prefix + strings.Repeat("x", m.seq)
}

func (m *memRepo) GetSession(_ context.Context, id string) (*store.GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memRepo) UpsertPlayer(_ context.Context, wallet, username string) (*store.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[wallet]
	if !ok {
		p = &store.Player{ID: m.nextID("p"), WalletAddress: wallet}
		m.players[wallet] = p
	}
	p.Username = username
	cp := *p
	return &cp, nil
}

func (m *memRepo) GetScore(_ context.Context, sessionID, wallet string) (*store.Score, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sc, ok := m.scores[key(sessionID, wallet)]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *sc
	return &cp, nil
}

func (m *memRepo) InsertScore(_ context.Context, sc store.Score) (*store.Score, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.beforeInsert != nil {
		hook := m.beforeInsert
		m.beforeInsert = nil
		hook(m, sc)
	}
	if sess, ok := m.sessions[sc.SessionID]; !ok || sess.Status != store.SessionActive {
		return nil, store.ErrSessionClosed
	}
	k := key(sc.SessionID, sc.WalletAddress)
	if _, ok := m.scores[k]; ok {
		return nil, store.ErrDuplicate
	}
	sc.ID = m.nextID("sc")
	m.scores[k] = &sc
	cp := sc
	return &cp, nil
}

func (m *memRepo) RaiseScore(_ context.Context, id string, value int64, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.beforeRaise != nil {
		hook := m.beforeRaise
		m.beforeRaise = nil
		hook(m, id)
	}
	for _, sc := range m.scores {
		if sc.ID == id {
			if m.sessions[sc.SessionID].Status != store.SessionActive {
				return false, store.ErrSessionClosed
			}
			if sc.Score >= value {
				return false, nil
			}
			sc.Score = value
			sc.Timestamp = at
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) ListLeaderboard(_ context.Context, sessionID string, limit int) ([]store.Score, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []store.Score{}
	for _, sc := range m.scores {
		if sc.SessionID == sessionID && sc.Verified {
			out = append(out, *sc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRepo) CountVerifiedScores(_ context.Context, sessionID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, sc := range m.scores {
		if sc.SessionID == sessionID && sc.Verified {
			n++
		}
	}
	return n, nil
}

func (m *memRepo) stored(sessionID, wallet string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scores[key(sessionID, wallet)].Score
}

func TestValidWallet(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{walletA, true},
		{"  " + walletB + "  ", true},
		{strings.Repeat("1", 32), true},
		{strings.Repeat("1", 31), false},
		{strings.Repeat("1", 45), false},
		{"0" + walletA[1:], false},
		{"O" + walletA[1:], false},
		{walletA[:40] + "Il0O", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidWallet(tt.addr); got != tt.want {
			t.Fatalf("ValidWallet(%q) = %v, want %v", tt.addr, got, tt.want)
		}
	}
}

func TestSubmitValidation(t *testing.T) {
	svc := NewService(newMemRepo())
	tests := []struct {
		name string
		in   SubmitInput
		want error
	}{
		{"missing wallet", SubmitInput{Username: "a", Score: 1, SessionID: "live"}, ErrInvalidRequest},
		{"missing name", SubmitInput{WalletAddress: walletA, Score: 1, SessionID: "live"}, ErrInvalidRequest},
		{"missing session", SubmitInput{WalletAddress: walletA, Username: "a", Score: 1}, ErrInvalidRequest},
		{"bad wallet", SubmitInput{WalletAddress: "not-a-wallet", Username: "a", Score: 1, SessionID: "live"}, ErrInvalidWallet},
		{"negative", SubmitInput{WalletAddress: walletA, Username: "a", Score: -1, SessionID: "live"}, ErrScoreOutOfRange},
		{"too high", SubmitInput{WalletAddress: walletA, Username: "a", Score: MaxScore + 1, SessionID: "live"}, ErrScoreOutOfRange},
		{"unknown session", SubmitInput{WalletAddress: walletA, Username: "a", Score: 1, SessionID: "nope"}, ErrSessionNotFound},
		{"ended session", SubmitInput{WalletAddress: walletA, Username: "a", Score: 1, SessionID: "ended"}, ErrSessionNotActive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), tt.in)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Submit() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSubmitKeepsMax(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()

	first, err := svc.Submit(ctx, SubmitInput{WalletAddress: walletA, Username: "ann", Score: 120.9, SessionID: "live"})
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if first.Updated || first.Existing || first.ScoreID == "" {
		t.Fatalf("first result = %+v", first)
	}
	if got := repo.stored("live", walletA); got != 120 {
		t.Fatalf("stored score = %d, want floor 120", got)
	}

	lower, err := svc.Submit(ctx, SubmitInput{WalletAddress: walletA, Username: "ann", Score: 50, SessionID: "live"})
	if err != nil {
		t.Fatalf("lower submit: %v", err)
	}
	if lower.Updated || !lower.Existing || lower.ScoreID != first.ScoreID {
		t.Fatalf("lower result = %+v", lower)
	}

	equal, _ := svc.Submit(ctx, SubmitInput{WalletAddress: walletA, Username: "ann", Score: 120, SessionID: "live"})
	if equal.Updated {
		t.Fatal("equal score must not update")
	}

	higher, err := svc.Submit(ctx, SubmitInput{WalletAddress: walletA, Username: "ann", Score: 300, SessionID: "live"})
	if err != nil {
		t.Fatalf("higher submit: %v", err)
	}
	if !higher.Updated || higher.ScoreID != first.ScoreID {
		t.Fatalf("higher result = %+v", higher)
	}
	if got := repo.stored("live", walletA); got != 300 {
		t.Fatalf("stored score = %d, want 300", got)
	}
}

func TestSubmitTruncatesUsername(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	long := strings.Repeat("é", 80)
	if _, err := svc.Submit(context.Background(), SubmitInput{WalletAddress: walletA, Username: long, Score: 1, SessionID: "live"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	got := repo.scores[key("live", walletA)].Username
	if n := len([]rune(got)); n != 50 {
		t.Fatalf("username runes = %d, want 50", n)
	}
}

func TestSubmitRaceLoserFallsBackToUpdate(t *testing.T) {
	repo := newMemRepo()
	repo.beforeInsert = func(m *memRepo, sc store.Score) {
		m.scores[key(sc.SessionID, sc.WalletAddress)] = &store.Score{
			ID: "winner", SessionID: sc.SessionID, WalletAddress: sc.WalletAddress, Score: 100, Verified: true,
		}
	}
	svc := NewService(repo)

	res, err := svc.Submit(context.Background(), SubmitInput{WalletAddress: walletA, Username: "ann", Score: 250, SessionID: "live"})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if res.ScoreID != "winner" || !res.Updated {
		t.Fatalf("result = %+v, want update of winner row", res)
	}
	if got := repo.stored("live", walletA); got != 250 {
		t.Fatalf("stored = %d, want 250", got)
	}
}

func TestSubmitRejectedWhenSessionEndsMidway(t *testing.T) {
	ctx := context.Background()
	endLive := func(m *memRepo) { m.sessions["live"].Status = store.SessionEnded }

	t.Run("first score", func(t *testing.T) {
		repo := newMemRepo()
		repo.beforeInsert = func(m *memRepo, _ store.Score) { endLive(m) }
		svc := NewService(repo)
		_, err := svc.Submit(ctx, SubmitInput{WalletAddress: walletA, Username: "ann", Score: 10, SessionID: "live"})
		if !errors.Is(err, ErrSessionNotActive) {
			t.Fatalf("Submit() error = %v, want ErrSessionNotActive", err)
		}
		if n, _ := repo.CountVerifiedScores(ctx, "live"); n != 0 {
			t.Fatalf("rows = %d, want 0", n)
		}
	})

	t.Run("raise", func(t *testing.T) {
		repo := newMemRepo()
		svc := NewService(repo)
		if _, err := svc.Submit(ctx, SubmitInput{WalletAddress: walletA, Username: "ann", Score: 10, SessionID: "live"}); err != nil {
			t.Fatalf("first submit: %v", err)
		}
		repo.beforeRaise = func(m *memRepo, _ string) { endLive(m) }
		_, err := svc.Submit(ctx, SubmitInput{WalletAddress: walletA, Username: "ann", Score: 99, SessionID: "live"})
		if !errors.Is(err, ErrSessionNotActive) {
			t.Fatalf("Submit() error = %v, want ErrSessionNotActive", err)
		}
		if got := repo.stored("live", walletA); got != 10 {
			t.Fatalf("stored = %d, want 10", got)
		}
	})
}

func TestSubmitConcurrentFirstSubmissions(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			if _, err := svc.Submit(ctx, SubmitInput{WalletAddress: walletB, Username: "bo", Score: float64(v * 10), SessionID: "live"}); err != nil {
				t.Errorf("Submit(%d) error = %v", v, err)
			}
		}(i)
	}
	wg.Wait()

	if n, _ := repo.CountVerifiedScores(ctx, "live"); n != 1 {
		t.Fatalf("rows = %d, want 1", n)
	}
	if got := repo.stored("live", walletB); got != 100 {
		t.Fatalf("stored = %d, want 100", got)
	}
}

func TestLeaderboardRanking(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, e := range []struct {
		wallet string
		score  float64
	}{{walletA, 400}, {walletB, 900}, {walletC, 400}} {
		svc.now = func() time.Time { return base.Add(time.Duration(i) * time.Second) }
		if _, err := svc.Submit(ctx, SubmitInput{WalletAddress: e.wallet, Username: "p", Score: e.score, SessionID: "live"}); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	res, err := svc.Leaderboard(ctx, "live", 0)
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}
	want := []string{walletB, walletA, walletC}
	if len(res.Leaderboard) != len(want) {
		t.Fatalf("len = %d, want %d", len(res.Leaderboard), len(want))
	}
	for i, w := range want {
		e := res.Leaderboard[i]
		if e.WalletAddress != w || e.Rank != i+1 {
			t.Fatalf("entry %d = %+v, want %s rank %d", i, e, w, i+1)
		}
		if i > 0 && e.Score > res.Leaderboard[i-1].Score {
			t.Fatalf("leaderboard not sorted at %d", i)
		}
	}
	if res.TotalScores != 3 {
		t.Fatalf("TotalScores = %d, want 3", res.TotalScores)
	}

	top, _ := svc.Leaderboard(ctx, "live", 1)
	if len(top.Leaderboard) != 1 || top.TotalScores != 3 {
		t.Fatalf("limited board = %+v", top)
	}
}

func TestLeaderboardErrors(t *testing.T) {
	svc := NewService(newMemRepo())
	if _, err := svc.Leaderboard(context.Background(), "", 10); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("error = %v, want ErrInvalidRequest", err)
	}
	if _, err := svc.Leaderboard(context.Background(), "missing", 10); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("error = %v, want ErrSessionNotFound", err)
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct{ in, want int }{{0, 10}, {-3, 10}, {5, 5}, {100, 100}, {500, 100}}
	for _, tt := range tests {
		if got := clampLimit(tt.in); got != tt.want {
			t.Fatalf("clampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
