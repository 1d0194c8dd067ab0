package tournament

import (
	"sort"
	"strings"
	"sync"
	"time"

	"arcade-tournament/internal/stream"

	"github.com/rs/zerolog/log"
)

const (
	EventTournamentState    = "tournament-state"
	EventRoundCreated       = "game-session-created"
	EventCountdown          = "countdown"
	EventGameStarted        = "game-started"
	EventGameEnded          = "game-ended"
	EventNextGamePrompt     = "show-next-game-prompt"
	EventTournamentFinished = "tournament-finished"
	EventTournamentReset    = "tournament-reset"
	EventError              = "error"
)

// Manager is the single writer of tournament state. Every mutation, whether
// from a client command or a timer, runs under mu and publishes its events
// to the buffer before the lock is released, so subscribers see them in
// mutation order.
type Manager struct {
	mu     sync.Mutex
	opts   Options
	clock  Clock
	events *stream.Buffer

	id          string
	status      Status
	gameIndex   int
	current     *round
	last        *round
	leaderboard []Result
	joinSeq     int

	timers   map[timerKind]pendingTimer
	timerSeq uint64
}

func NewManager(opts Options) *Manager {
	opts = opts.withDefaults()
	return &Manager{
		opts:   opts,
		clock:  opts.Clock,
		events: stream.NewBuffer(opts.BufferSize),
		status: StatusIdle,
		timers: map[timerKind]pendingTimer{},
	}
}

// Events is the ordered stream of everything the manager broadcasts.
func (m *Manager) Events() *stream.Buffer { return m.events }

// Close cancels pending timers and closes the event stream.
func (m *Manager) Close() {
	m.mu.Lock()
	m.cancelAll()
	m.mu.Unlock()
	m.events.Close()
}

func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

// SnapshotAt returns the current state with the id of the last event
// appended before it was taken. Events at or below that id are already
// reflected in the state.
func (m *Manager) SnapshotAt() (State, int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot(), m.events.LastID()
}

// Start opens a tournament with its first round waiting for players. A
// finished tournament may be restarted before its auto-reset fires.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status != StatusIdle && m.status != StatusFinished {
		return ErrAlreadyRunning
	}
	m.cancelAll()
	m.id = "tournament-" + m.opts.NewID()
	m.status = StatusActive
	m.gameIndex = 0
	m.leaderboard = nil
	m.last = nil
	metricTournamentsStarted.Add(1)
	log.Info().Str("tournament_id", m.id).Int("games", len(m.opts.GameQueue)).Msg("tournament_started")
	m.openRound(0)
	return nil
}

// Join admits name into the waiting round. A name already seated in the
// round is reactivated instead of added twice.
func (m *Manager) Join(name string) (Participant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Participant{}, ErrInvalidName
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.current
	if r == nil || r.phase.Status() != RoundWaiting {
		metricJoinsRejected.Add(1)
		return Participant{}, ErrNotJoinable
	}
	if p := r.byName(name); p != nil {
		p.IsActive = true
		log.Info().Str("round_id", r.id).Str("participant_id", p.ID).Msg("participant_rejoined")
		m.emitState()
		m.armAutoStart()
		return copyParticipant(p), nil
	}
	if len(r.players) >= r.maxPlayers {
		metricJoinsRejected.Add(1)
		return Participant{}, ErrRoomFull
	}
	m.joinSeq++
	p := &Participant{
		ID:       "player-" + m.opts.NewID(),
		Name:     name,
		IsActive: true,
		JoinedAt: m.clock.Now(),
	}
	r.players = append(r.players, p)
	log.Info().Str("round_id", r.id).Str("participant_id", p.ID).Int("players", len(r.players)).Msg("participant_joined")
	m.emitState()
	m.armAutoStart()
	return copyParticipant(p), nil
}

// UpdateScore raises a participant's score during play. Lower values are
// accepted and ignored.
func (m *Manager) UpdateScore(participantID string, score int64) error {
	if score < 0 {
		return ErrInvalidScore
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.playingParticipant(participantID)
	if err != nil {
		return err
	}
	if score > p.Score {
		p.Score = score
		m.emitState()
	}
	return nil
}

// Complete records a participant's final score and marks them done. The
// round ends early once every active participant has completed.
func (m *Manager) Complete(participantID string, finalScore int64) error {
	if finalScore < 0 {
		return ErrInvalidScore
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.playingParticipant(participantID)
	if err != nil {
		return err
	}
	if finalScore > p.Score {
		p.Score = finalScore
	}
	if p.CompletedAt == nil {
		at := m.clock.Now()
		p.CompletedAt = &at
	}
	m.emitState()
	if m.current.allActiveCompleted() {
		metricRoundsEndedEarly.Add(1)
		m.endRound()
	}
	return nil
}

// Disconnect marks a participant inactive. Their seat and score stay.
func (m *Manager) Disconnect(participantID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.current
	if r == nil {
		return
	}
	p := r.participant(participantID)
	if p == nil || !p.IsActive {
		return
	}
	p.IsActive = false
	log.Info().Str("round_id", r.id).Str("participant_id", p.ID).Msg("participant_disconnected")
	m.emitState()
	if r.phase.Status() == RoundPlaying && r.allActiveCompleted() {
		metricRoundsEndedEarly.Add(1)
		m.endRound()
	}
}

// NextGame advances the queue from between-games, finishing the tournament
// when no games remain.
func (m *Manager) NextGame() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status != StatusBetweenGames {
		return ErrNotBetweenGames
	}
	m.cancelAll()
	next := m.gameIndex + 1
	if next >= len(m.opts.GameQueue) {
		m.finish()
		return nil
	}
	m.gameIndex = next
	m.status = StatusActive
	m.openRound(next)
	return nil
}

// Retry replays the last played game. The replay is a fresh round with the
// same participants, scores cleared, and its earlier results are dropped from
// the tournament leaderboard.
func (m *Manager) Retry() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status != StatusBetweenGames && m.status != StatusFinished {
		return ErrRetryNotAllowed
	}
	prev := m.current
	if prev == nil {
		prev = m.last
	}
	if prev == nil {
		return ErrRetryNotAllowed
	}
	m.cancelAll()
	m.leaderboard = withoutRound(m.leaderboard, prev.id)

	r := m.newRound(prev.gameIndex)
	for _, p := range prev.players {
		cp := copyParticipant(p)
		cp.Score = 0
		cp.CompletedAt = nil
		r.players = append(r.players, &cp)
	}
	m.current = r
	m.last = nil
	m.gameIndex = prev.gameIndex
	m.status = StatusActive
	log.Info().Str("round_id", r.id).Str("replaces", prev.id).Msg("round_retry")
	m.emitState()
	m.events.Append(EventRoundCreated, m.id, RoundCreated{GameType: r.gameType, SessionID: r.id})
	m.armAutoStart()
	return nil
}

// Reset drops the tournament and every pending timer.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
}

func (m *Manager) reset() {
	m.cancelAll()
	prev := m.id
	m.id = ""
	m.status = StatusIdle
	m.gameIndex = 0
	m.current = nil
	m.last = nil
	m.leaderboard = nil
	log.Info().Str("tournament_id", prev).Msg("tournament_reset")
	m.emitState()
	m.events.Append(EventTournamentReset, prev, struct{}{})
}

func (m *Manager) newRound(index int) *round {
	return &round{
		id:         "session-" + m.opts.NewID(),
		gameType:   m.opts.GameQueue[index],
		gameIndex:  index,
		maxPlayers: m.opts.MaxPlayers,
		duration:   m.opts.RoundDuration,
		phase:      Waiting{},
	}
}

func (m *Manager) openRound(index int) {
	r := m.newRound(index)
	m.current = r
	log.Info().Str("round_id", r.id).Str("game_type", r.gameType).Msg("round_created")
	m.emitState()
	m.events.Append(EventRoundCreated, m.id, RoundCreated{GameType: r.gameType, SessionID: r.id})
}

func (m *Manager) armAutoStart() {
	r := m.current
	if r == nil || r.phase.Status() != RoundWaiting || len(r.players) < m.opts.MinPlayers {
		return
	}
	if m.pending(timerAutoStart) {
		return
	}
	roundID := r.id
	m.schedule(timerAutoStart, m.opts.AutoStartDelay, func() {
		if m.current == nil || m.current.id != roundID {
			return
		}
		m.beginCountdown()
	})
}

func (m *Manager) beginCountdown() {
	r := m.current
	if r == nil || r.phase.Status() != RoundWaiting {
		return
	}
	r.phase = Countdown{Remaining: m.opts.CountdownTicks}
	m.emitState()
	m.events.Append(EventCountdown, m.id, m.opts.CountdownTicks)
	m.schedule(timerCountdown, m.opts.TickInterval, m.tick)
}

func (m *Manager) tick() {
	r := m.current
	if r == nil {
		return
	}
	c, ok := r.phase.(Countdown)
	if !ok {
		return
	}
	remaining := c.Remaining - 1
	m.events.Append(EventCountdown, m.id, remaining)
	if remaining > 0 {
		r.phase = Countdown{Remaining: remaining}
		m.schedule(timerCountdown, m.opts.TickInterval, m.tick)
		return
	}
	m.startPlaying()
}

func (m *Manager) startPlaying() {
	r := m.current
	now := m.clock.Now()
	r.phase = Playing{StartedAt: now, EndsAt: now.Add(r.duration)}
	metricRoundsStarted.Add(1)
	log.Info().Str("round_id", r.id).Str("game_type", r.gameType).Int("players", len(r.players)).Msg("round_started")
	m.emitState()
	m.events.Append(EventGameStarted, m.id, GameStarted{
		GameType:  r.gameType,
		Duration:  int(r.duration / time.Second),
		SessionID: r.id,
	})
	roundID := r.id
	m.schedule(timerRoundEnd, r.duration, func() {
		if m.current == nil || m.current.id != roundID {
			return
		}
		m.endRound()
	})
}

// endRound moves playing to results. It is a no-op in any other phase, so a
// late timeout after an early finish changes nothing.
func (m *Manager) endRound() {
	r := m.current
	if r == nil {
		return
	}
	playing, ok := r.phase.(Playing)
	if !ok {
		return
	}
	m.cancel(timerRoundEnd)
	now := m.clock.Now()
	ranking := rank(r, now)
	r.phase = Results{StartedAt: playing.StartedAt, EndedAt: now, Ranking: ranking}
	m.leaderboard = mergeLeaderboard(m.leaderboard, ranking)
	m.status = StatusBetweenGames
	metricRoundsEnded.Add(1)
	log.Info().Str("round_id", r.id).Int("results", len(ranking)).Msg("round_ended")
	m.emitState()
	m.events.Append(EventGameEnded, m.id, GameEnded{
		Results:     head(ranking, len(ranking)),
		Leaderboard: head(m.leaderboard, leaderboardPreview),
	})
	m.schedule(timerPrompt, m.opts.ResultsDelay, m.prompt)
}

func (m *Manager) prompt() {
	if m.status != StatusBetweenGames {
		return
	}
	next := m.gameIndex + 1
	p := NextGamePrompt{
		HasNextGame:      next < len(m.opts.GameQueue),
		CurrentGameIndex: m.gameIndex,
		TotalGames:       len(m.opts.GameQueue),
	}
	if p.HasNextGame {
		game := m.opts.GameQueue[next]
		p.NextGameType = &game
	}
	m.events.Append(EventNextGamePrompt, m.id, p)
}

func (m *Manager) finish() {
	m.status = StatusFinished
	m.last = m.current
	m.current = nil
	log.Info().Str("tournament_id", m.id).Int("entries", len(m.leaderboard)).Msg("tournament_finished")
	m.emitState()
	m.events.Append(EventTournamentFinished, m.id, Finished{FinalLeaderboard: head(m.leaderboard, leaderboardPreview)})
	m.schedule(timerReset, m.opts.ResetDelay, m.reset)
}

func (m *Manager) playingParticipant(id string) (*Participant, error) {
	r := m.current
	if r == nil || r.phase.Status() != RoundPlaying {
		return nil, ErrNotPlaying
	}
	p := r.participant(id)
	if p == nil {
		return nil, ErrUnknownParticipant
	}
	return p, nil
}

func (m *Manager) emitState() {
	m.events.Append(EventTournamentState, m.id, m.snapshot())
}

func (m *Manager) snapshot() State {
	return State{
		ID:               m.id,
		Status:           m.status,
		GameQueue:        append([]string(nil), m.opts.GameQueue...),
		CurrentGameIndex: m.gameIndex,
		CurrentSession:   snapshotRound(m.current),
		Leaderboard:      head(m.leaderboard, len(m.leaderboard)),
		Timestamp:        m.clock.Now().UnixMilli(),
	}
}

// rank orders players by score, keeping join order on ties.
func rank(r *round, at time.Time) []Result {
	players := append([]*Participant(nil), r.players...)
	sort.SliceStable(players, func(i, j int) bool { return players[i].Score > players[j].Score })
	out := make([]Result, 0, len(players))
	for i, p := range players {
		out = append(out, Result{
			PlayerID:   p.ID,
			PlayerName: p.Name,
			Score:      p.Score,
			Rank:       i + 1,
			GameType:   r.gameType,
			RoundID:    r.id,
			RecordedAt: at,
		})
	}
	return out
}

func mergeLeaderboard(board, results []Result) []Result {
	out := make([]Result, 0, len(board)+len(results))
	out = append(out, board...)
	out = append(out, results...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func withoutRound(board []Result, roundID string) []Result {
	out := board[:0:0]
	for _, r := range board {
		if r.RoundID != roundID {
			out = append(out, r)
		}
	}
	return out
}
