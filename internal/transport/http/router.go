package httptransport

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"arcade-tournament/internal/config"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// Deps are the collaborators the router dispatches to. MCP and Sockets are
// optional.
type Deps struct {
	DB         Pinger
	Sessions   SessionService
	Scores     ScoreService
	Tournament TournamentEngine
	Sockets    SocketHub
	MCP        http.Handler
}

func NewRouter(cfg config.ServerConfig, deps Deps) *chi.Mux {
	sessionHandlers := NewSessionHandlers(deps.Sessions, cfg.AdminAPIKey)
	scoreHandlers := NewScoreHandlers(deps.Scores)
	tournamentHandlers := NewTournamentHandlers(deps.Tournament)
	adminHandlers := NewAdminHandlers(deps.DB, deps.Sockets)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", adminHandlers.Health())
	if deps.Sockets != nil {
		r.Get("/ws", deps.Sockets.HandleWS)
	}
	if deps.MCP != nil {
		r.With(APILogMiddleware()).MethodFunc(http.MethodOptions, "/mcp", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Allow", "POST, GET, DELETE, OPTIONS")
			w.WriteHeader(http.StatusNoContent)
		})
		r.With(APILogMiddleware()).Method(http.MethodPost, "/mcp", deps.MCP)
		r.With(APILogMiddleware()).Method(http.MethodGet, "/mcp", deps.MCP)
		r.With(APILogMiddleware()).Method(http.MethodDelete, "/mcp", deps.MCP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Get("/session/current", sessionHandlers.Current())
		r.Post("/session", sessionHandlers.Action())
		r.Get("/rotation", sessionHandlers.Rotation())
		r.Get("/leaderboard", scoreHandlers.Leaderboard())
		r.Post("/score", scoreHandlers.Submit())
		r.Get("/socket", adminHandlers.Socket())

		r.Get("/tournament/state", tournamentHandlers.State())
		r.Get("/tournament/events", tournamentHandlers.Events())

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminAPIKey))
			r.Post("/tournament/start", tournamentHandlers.Start())
			r.Post("/tournament/reset", tournamentHandlers.Reset())

			r.Route("/debug", func(r chi.Router) {
				r.Use(BodyCaptureMiddleware(4096))
				r.Get("/vars", expvar.Handler().ServeHTTP)
			})
		})
	})
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 32)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
