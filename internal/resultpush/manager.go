package resultpush

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	appsession "arcade-tournament/internal/app/session"
	"arcade-tournament/internal/resultpush/platforms"
	"arcade-tournament/internal/stream"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type breakerState struct {
	consecutiveFailures int
	openUntil           time.Time
}

// Manager fans results out to push targets. Publish never blocks: a full
// dispatch queue drops the job and counts it.
type Manager struct {
	cfg      Config
	router   Router
	adapters map[string]platforms.Adapter

	dispatchCh chan pushJob
	retryQ     *retryQueue
	done       chan struct{}
	doneOnce   sync.Once

	mu           sync.Mutex
	started      bool
	breakerByKey map[string]breakerState
}

func NewManager(cfg Config) *Manager {
	if cfg.DispatchBuffer <= 0 {
		cfg.DispatchBuffer = 1024
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 500 * time.Millisecond
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.CircuitOpenDuration <= 0 {
		cfg.CircuitOpenDuration = 30 * time.Second
	}

	client := platforms.NewHTTPClient(cfg.RequestTimeout)
	m := &Manager{
		cfg:          cfg,
		router:       Router{},
		adapters:     map[string]platforms.Adapter{},
		dispatchCh:   make(chan pushJob, cfg.DispatchBuffer),
		done:         make(chan struct{}),
		breakerByKey: map[string]breakerState{},
	}
	m.RegisterAdapter(platforms.NewWebhookAdapter(client))
	m.retryQ = newRetryQueue(m.dispatchCh, m.done)
	return m
}

// RegisterAdapter adds or replaces the adapter for a.Name(). Call before Start.
func (m *Manager) RegisterAdapter(a platforms.Adapter) {
	m.adapters[a.Name()] = a
}

func (m *Manager) Start(ctx context.Context) error {
	if !m.cfg.Enabled {
		return nil
	}

	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return nil
	}
	m.started = true
	m.mu.Unlock()

	for i := 0; i < m.cfg.Workers; i++ {
		go m.worker(ctx)
	}
	if m.cfg.ConfigPath != "" {
		go m.watchConfigLoop(ctx)
	}
	go func() {
		<-ctx.Done()
		m.stop()
	}()
	log.Info().Int("workers", m.cfg.Workers).Int("targets", len(m.currentTargets())).Msg("result_push_started")
	return nil
}

func (m *Manager) stop() {
	m.doneOnce.Do(func() { close(m.done) })
}

// Watch forwards matching events from buf until ctx ends or buf closes.
func (m *Manager) Watch(ctx context.Context, buf *stream.Buffer) {
	if !m.cfg.Enabled || buf == nil {
		return
	}
	ch := buf.SubscribeN(256)
	go func() {
		defer buf.Unsubscribe(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case <-m.done:
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				m.Publish(Event{ID: ev.EventID, Type: ev.Event, ServerTS: ev.ServerTS, Payload: ev.Data})
			}
		}
	}()
}

func (m *Manager) SessionRotated(_ context.Context, r appsession.Rotation) {
	m.Publish(Event{
		ID:       uuid.NewString(),
		Type:     EventSessionRotated,
		ServerTS: time.Now().UnixMilli(),
		Payload:  rotationToPayload(r),
	})
}

func (m *Manager) PayoutsProcessed(_ context.Context, r appsession.PayoutReport) {
	m.Publish(Event{
		ID:       uuid.NewString(),
		Type:     EventPayoutsProcessed,
		ServerTS: time.Now().UnixMilli(),
		Payload:  r,
	})
}

// Publish queues ev for every target that accepts its type.
func (m *Manager) Publish(ev Event) {
	if !m.cfg.Enabled || ev.Type == "" {
		return
	}
	targets := m.router.MatchTargets(m.currentTargets(), ev.Type)
	if len(targets) == 0 {
		return
	}
	if _, ok := FormatMessage(ev); !ok {
		return
	}
	for _, target := range targets {
		if !m.enqueue(pushJob{Target: target, Event: ev}) {
			metricPushDroppedTotal.Add(1)
		}
	}
}

func (m *Manager) enqueue(job pushJob) bool {
	select {
	case <-m.done:
		return false
	case m.dispatchCh <- job:
		metricPushQueuedTotal.Add(1)
		metricPushQueueLen.Set(int64(len(m.dispatchCh)))
		return true
	default:
		return false
	}
}

func (m *Manager) currentTargets() []Target {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Target, len(m.cfg.Targets))
	copy(out, m.cfg.Targets)
	return out
}

func (m *Manager) setTargets(targets []Target) {
	m.mu.Lock()
	m.cfg.Targets = targets
	m.mu.Unlock()
}

func (m *Manager) watchConfigLoop(ctx context.Context) {
	interval := m.cfg.ConfigReload
	if interval <= 0 {
		interval = time.Second
	}
	lastRaw := ""
	if raw, err := os.ReadFile(m.cfg.ConfigPath); err == nil {
		lastRaw = strings.TrimSpace(string(raw))
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case <-ticker.C:
			raw, err := os.ReadFile(m.cfg.ConfigPath)
			if err != nil {
				metricPushConfigReloadError.Add(1)
				continue
			}
			nextRaw := strings.TrimSpace(string(raw))
			if nextRaw == lastRaw {
				continue
			}
			targets, err := parseTargetsJSON(nextRaw)
			if err != nil {
				metricPushConfigReloadError.Add(1)
				log.Warn().Err(err).Str("path", m.cfg.ConfigPath).Msg("result_push_config_invalid")
				continue
			}
			m.setTargets(targets)
			lastRaw = nextRaw
			metricPushConfigReloadTotal.Add(1)
			log.Info().Int("targets", len(targets)).Msg("result_push_config_reloaded")
		}
	}
}
