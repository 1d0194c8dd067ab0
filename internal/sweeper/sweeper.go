package sweeper

import (
	"context"
	"expvar"
	"time"

	appsession "arcade-tournament/internal/app/session"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

var (
	metricSweepTotal  = expvar.NewInt("session_sweep_total")
	metricSweepErrors = expvar.NewInt("session_sweep_errors_total")
)

// ActiveSessioner is the part of the session service the sweep drives.
type ActiveSessioner interface {
	GetOrCreateActive(ctx context.Context) (*appsession.SessionView, error)
}

// Sweeper rotates expired sessions on a schedule so rotation and payouts
// happen without waiting for a request.
type Sweeper struct {
	sched    gocron.Scheduler
	sessions ActiveSessioner
	timeout  time.Duration
}

func New(sessions ActiveSessioner, interval time.Duration) (*Sweeper, error) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	s := &Sweeper{sched: sched, sessions: sessions, timeout: interval}
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.sweep),
		gocron.WithName("session_sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}
	return s, nil
}

func (s *Sweeper) Start() {
	s.sched.Start()
}

func (s *Sweeper) Shutdown() error {
	return s.sched.Shutdown()
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	metricSweepTotal.Add(1)
	view, err := s.sessions.GetOrCreateActive(ctx)
	if err != nil {
		metricSweepErrors.Add(1)
		log.Error().Err(err).Msg("session_sweep_failed")
		return
	}
	log.Debug().Str("session_id", view.ID).Int64("time_left", view.TimeLeft).Msg("session_sweep")
}
