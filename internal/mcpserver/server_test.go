package mcpserver

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"sort"
	"testing"

	appscore "arcade-tournament/internal/app/score"
	appsession "arcade-tournament/internal/app/session"
	"arcade-tournament/internal/rotation"
	"arcade-tournament/internal/tournament"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

type stubSessions struct {
	view *appsession.SessionView
	err  error
}

func (s stubSessions) GetOrCreateActive(context.Context) (*appsession.SessionView, error) {
	return s.view, s.err
}

type stubScores struct {
	gotSession string
	gotLimit   int
	err        error
}

func (s *stubScores) Leaderboard(_ context.Context, sessionID string, limit int) (*appscore.LeaderboardResult, error) {
	s.gotSession = sessionID
	s.gotLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	return &appscore.LeaderboardResult{
		SessionID: sessionID,
		Leaderboard: []appscore.LeaderboardEntry{
			{ID: "sc-1", WalletAddress: "w1", Username: "neo", Score: 900, Rank: 1},
		},
		TotalScores: 1,
	}, nil
}

func newTestServer(t *testing.T, sessions SessionReader, scores LeaderboardReader) *client.Client {
	t.Helper()
	m := tournament.NewManager(tournament.DefaultOptions())
	t.Cleanup(m.Close)
	srv := New(sessions, scores, m)
	httpSrv := httptest.NewServer(srv.Handler())
	t.Cleanup(httpSrv.Close)

	c, closeClient := newMCPClient(t, httpSrv.URL+"/mcp")
	t.Cleanup(closeClient)
	return c
}

func activeView() *appsession.SessionView {
	slot, _ := rotation.FeaturedGame(0, rotation.DefaultInterval, rotation.DefaultGames)
	return &appsession.SessionView{ID: "sess-1", Status: "active", TimeLeft: 1800, FeaturedGame: &slot}
}

func TestMCPToolsList(t *testing.T) {
	c := newTestServer(t, stubSessions{view: activeView()}, &stubScores{})
	assertToolNames(t, mustListTools(t, c),
		"get_current_session",
		"get_leaderboard",
		"get_featured_game",
		"get_tournament_state",
	)
}

func TestMCPCurrentSessionAndFeaturedGame(t *testing.T) {
	c := newTestServer(t, stubSessions{view: activeView()}, &stubScores{})

	res := mustCallTool(t, c, "get_current_session", map[string]any{})
	if res.IsError {
		t.Fatalf("get_current_session error: %v", res.StructuredContent)
	}
	sess, _ := mapFromStructured(t, res)["session"].(map[string]any)
	if asString(sess["id"]) != "sess-1" {
		t.Fatalf("session = %v", sess)
	}

	res = mustCallTool(t, c, "get_featured_game", map[string]any{})
	if res.IsError {
		t.Fatalf("get_featured_game error: %v", res.StructuredContent)
	}
	slot, _ := mapFromStructured(t, res)["featured_game"].(map[string]any)
	if asString(slot["game"]) != rotation.DefaultGames[0] {
		t.Fatalf("featured_game = %v", slot)
	}
}

func TestMCPLeaderboardDefaultsToActiveSession(t *testing.T) {
	scores := &stubScores{}
	c := newTestServer(t, stubSessions{view: activeView()}, scores)

	res := mustCallTool(t, c, "get_leaderboard", map[string]any{"limit": 500})
	if res.IsError {
		t.Fatalf("get_leaderboard error: %v", res.StructuredContent)
	}
	if scores.gotSession != "sess-1" || scores.gotLimit != maxLeaderboardLimit {
		t.Fatalf("called with session=%q limit=%d", scores.gotSession, scores.gotLimit)
	}
	payload := mapFromStructured(t, res)
	if asFloat64(payload["totalScores"]) != 1 {
		t.Fatalf("payload = %v", payload)
	}

	mustCallTool(t, c, "get_leaderboard", map[string]any{"session_id": "other"})
	if scores.gotSession != "other" || scores.gotLimit != defaultLeaderboardLimit {
		t.Fatalf("called with session=%q limit=%d", scores.gotSession, scores.gotLimit)
	}
}

func TestMCPErrorsAreToolErrors(t *testing.T) {
	c := newTestServer(t, stubSessions{err: appsession.ErrStorage}, &stubScores{err: appscore.ErrSessionNotFound})

	res := mustCallTool(t, c, "get_current_session", map[string]any{})
	if !res.IsError || errorCode(t, res) != "storage_error" {
		t.Fatalf("get_current_session = %v, want storage_error", res.StructuredContent)
	}
	res = mustCallTool(t, c, "get_leaderboard", map[string]any{"session_id": "missing"})
	if !res.IsError || errorCode(t, res) != "session_not_found" {
		t.Fatalf("get_leaderboard = %v, want session_not_found", res.StructuredContent)
	}
}

func TestMCPTournamentState(t *testing.T) {
	c := newTestServer(t, stubSessions{view: activeView()}, &stubScores{})
	res := mustCallTool(t, c, "get_tournament_state", map[string]any{})
	if res.IsError {
		t.Fatalf("get_tournament_state error: %v", res.StructuredContent)
	}
	if st := asString(mapFromStructured(t, res)["status"]); st != string(tournament.StatusIdle) {
		t.Fatalf("status = %q, want idle", st)
	}
}

func newMCPClient(t *testing.T, endpoint string) (*client.Client, func()) {
	t.Helper()
	ctx := context.Background()
	trans, err := transport.NewStreamableHTTP(endpoint)
	if err != nil {
		t.Fatalf("new transport: %v", err)
	}
	if err := trans.Start(ctx); err != nil {
		t.Fatalf("transport start: %v", err)
	}
	c := client.NewClient(trans)
	_, err = c.Initialize(ctx, mcp.InitializeRequest{Params: mcp.InitializeParams{ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION}})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return c, func() { _ = trans.Close() }
}

func mustListTools(t *testing.T, c *client.Client) []mcp.Tool {
	t.Helper()
	res, err := c.ListTools(context.Background(), mcp.ListToolsRequest{})
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	return res.Tools
}

func assertToolNames(t *testing.T, tools []mcp.Tool, expected ...string) {
	t.Helper()
	got := make([]string, 0, len(tools))
	for _, tool := range tools {
		got = append(got, tool.Name)
	}
	sort.Strings(got)
	sort.Strings(expected)
	if len(got) != len(expected) {
		t.Fatalf("tool count mismatch got=%v expected=%v", got, expected)
	}
	for i := range got {
		if got[i] != expected[i] {
			t.Fatalf("tool list mismatch got=%v expected=%v", got, expected)
		}
	}
}

func mustCallTool(t *testing.T, c *client.Client, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := c.CallTool(context.Background(), mcp.CallToolRequest{Params: mcp.CallToolParams{Name: name, Arguments: args}})
	if err != nil {
		t.Fatalf("call tool %s: %v", name, err)
	}
	return res
}

func errorCode(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	e, _ := mapFromStructured(t, res)["error"].(map[string]any)
	return asString(e["code"])
}

func mapFromStructured(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	b, err := json.Marshal(res.StructuredContent)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal structured content: %v", err)
	}
	return out
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat64(v any) float64 {
	f, _ := v.(float64)
	return f
}
