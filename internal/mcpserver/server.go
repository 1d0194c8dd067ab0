package mcpserver

import (
	"context"
	"net/http"

	appscore "arcade-tournament/internal/app/score"
	appsession "arcade-tournament/internal/app/session"
	"arcade-tournament/internal/tournament"

	"github.com/mark3labs/mcp-go/server"
)

type SessionReader interface {
	GetOrCreateActive(ctx context.Context) (*appsession.SessionView, error)
}

type LeaderboardReader interface {
	Leaderboard(ctx context.Context, sessionID string, limit int) (*appscore.LeaderboardResult, error)
}

type TournamentReader interface {
	Snapshot() tournament.State
}

// Server exposes read-only arcade state as MCP tools.
type Server struct {
	sessions   SessionReader
	scores     LeaderboardReader
	tournament TournamentReader

	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
}

func New(sessions SessionReader, scores LeaderboardReader, t TournamentReader) *Server {
	mcpSrv := server.NewMCPServer(
		"arcade-tournament",
		"0.1.0",
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s := &Server{
		sessions:   sessions,
		scores:     scores,
		tournament: t,
		mcpServer:  mcpSrv,
		httpServer: server.NewStreamableHTTPServer(mcpSrv, server.WithStateLess(true), server.WithDisableStreaming(true)),
	}
	s.registerTools()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer
}
