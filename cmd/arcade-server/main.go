package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appscore "arcade-tournament/internal/app/score"
	appsession "arcade-tournament/internal/app/session"
	"arcade-tournament/internal/config"
	"arcade-tournament/internal/logging"
	"arcade-tournament/internal/mcpserver"
	"arcade-tournament/internal/resultpush"
	"arcade-tournament/internal/resultpush/platforms"
	"arcade-tournament/internal/store"
	"arcade-tournament/internal/sweeper"
	"arcade-tournament/internal/tournament"
	httptransport "arcade-tournament/internal/transport/http"
	"arcade-tournament/internal/ws"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	if err := logging.Init(logCfg); err != nil {
		panic(err)
	}
	cfg, err := config.LoadApp(logCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("load config failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.New(cfg.Server.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	defer st.Close()
	if err := st.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}

	pusher := newResultPush(ctx, cfg.Push)

	sessionOpts, err := appsession.OptionsFromConfig(cfg.Session)
	if err != nil {
		log.Fatal().Err(err).Msg("session config invalid")
	}
	sessions := appsession.NewService(st, sessionOpts, pusher)
	scores := appscore.NewService(st)

	engine := tournament.NewManager(tournament.OptionsFromConfig(cfg.Tournament))
	defer engine.Close()
	pusher.Watch(ctx, engine.Events())

	sockets := ws.NewServer(engine, cfg.Server.AllowedOrigins)
	go sockets.Run(ctx)

	sweep, err := sweeper.New(sessions, cfg.Session.SweepInterval)
	if err != nil {
		log.Fatal().Err(err).Msg("sweeper init failed")
	}
	sweep.Start()
	defer func() {
		if err := sweep.Shutdown(); err != nil {
			log.Warn().Err(err).Msg("sweeper shutdown failed")
		}
	}()

	r := httptransport.NewRouter(cfg.Server, httptransport.Deps{
		DB:         st,
		Sessions:   sessions,
		Scores:     scores,
		Tournament: engine,
		Sockets:    sockets,
		MCP:        mcpserver.New(sessions, scores, engine).Handler(),
	})
	httptransport.LogRoutes(r)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped")
}

// newResultPush builds the push manager. It is always returned, disabled when
// RESULT_PUSH_ENABLED is off, so callers can notify it unconditionally.
func newResultPush(ctx context.Context, cfg config.PushConfig) *resultpush.Manager {
	pushCfg, err := resultpush.ConfigFromEnv(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("result push config invalid")
	}
	m := resultpush.NewManager(pushCfg)
	if pushCfg.Enabled && cfg.NATSURL != "" {
		nc, err := platforms.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatal().Err(err).Str("url", cfg.NATSURL).Msg("nats connect failed")
		}
		go func() {
			<-ctx.Done()
			_ = nc.Drain()
		}()
		m.RegisterAdapter(platforms.NewNATSAdapter(nc))
	}
	if err := m.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("result push start failed")
	}
	return m
}
