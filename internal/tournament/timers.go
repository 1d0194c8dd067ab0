package tournament

import "time"

type timerKind int

const (
	timerAutoStart timerKind = iota
	timerCountdown
	timerRoundEnd
	timerPrompt
	timerReset
)

func (k timerKind) String() string {
	switch k {
	case timerAutoStart:
		return "auto_start"
	case timerCountdown:
		return "countdown"
	case timerRoundEnd:
		return "round_end"
	case timerPrompt:
		return "next_game_prompt"
	case timerReset:
		return "reset"
	default:
		return "unknown"
	}
}

type pendingTimer struct {
	seq   uint64
	timer Timer
}

// schedule arms at most one timer per kind, replacing any pending one. A
// callback that fires after being replaced or cancelled finds a different
// seq and does nothing. Caller holds m.mu.
func (m *Manager) schedule(kind timerKind, d time.Duration, fn func()) {
	m.cancel(kind)
	m.timerSeq++
	seq := m.timerSeq
	t := m.clock.AfterFunc(d, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		cur, ok := m.timers[kind]
		if !ok || cur.seq != seq {
			return
		}
		delete(m.timers, kind)
		fn()
	})
	m.timers[kind] = pendingTimer{seq: seq, timer: t}
}

func (m *Manager) pending(kind timerKind) bool {
	_, ok := m.timers[kind]
	return ok
}

func (m *Manager) cancel(kind timerKind) {
	if cur, ok := m.timers[kind]; ok {
		cur.timer.Stop()
		delete(m.timers, kind)
	}
}

func (m *Manager) cancelAll() {
	for kind := range m.timers {
		m.cancel(kind)
	}
}
