package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_current_session",
			mcp.WithDescription("Get the active play session, rotating it if expired"),
		),
		s.handleCurrentSession,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_leaderboard",
			mcp.WithDescription("Get verified scores for a session"),
			mcp.WithString("session_id", mcp.Description("Session id, defaults to the active session")),
			mcp.WithNumber("limit", mcp.Description("Entries to return, default 10, max 100")),
		),
		s.handleLeaderboard,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_featured_game",
			mcp.WithDescription("Get the game currently featured in the active session"),
		),
		s.handleFeaturedGame,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_tournament_state",
			mcp.WithDescription("Get the multiplayer tournament snapshot"),
		),
		s.handleTournamentState,
	)
}

func (s *Server) handleCurrentSession(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view, err := s.sessions.GetOrCreateActive(ctx)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(map[string]any{"session": view}), nil
}

func (s *Server) handleLeaderboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")
	if sessionID == "" {
		view, err := s.sessions.GetOrCreateActive(ctx)
		if err != nil {
			return mapDomainError(err), nil
		}
		sessionID = view.ID
	}
	limit := request.GetInt("limit", defaultLeaderboardLimit)
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}
	resp, err := s.scores.Leaderboard(ctx, sessionID, limit)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleFeaturedGame(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view, err := s.sessions.GetOrCreateActive(ctx)
	if err != nil {
		return mapDomainError(err), nil
	}
	if view.FeaturedGame == nil {
		return toolError("no_featured_game", "session has no featured game"), nil
	}
	return toolResult(map[string]any{"session_id": view.ID, "featured_game": view.FeaturedGame}), nil
}

func (s *Server) handleTournamentState(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return toolResult(s.tournament.Snapshot()), nil
}
