package mcpserver

import (
	"errors"
	"fmt"

	appscore "arcade-tournament/internal/app/score"
	appsession "arcade-tournament/internal/app/session"

	"github.com/mark3labs/mcp-go/mcp"
)

func toolResult(data any) *mcp.CallToolResult {
	return mcp.NewToolResultStructuredOnly(data)
}

func toolError(code, message string) *mcp.CallToolResult {
	result := mcp.NewToolResultStructured(
		map[string]any{
			"error": map[string]any{
				"code":    code,
				"message": message,
			},
		},
		fmt.Sprintf("%s: %s", code, message),
	)
	result.IsError = true
	return result
}

func mapDomainError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return toolError("internal_error", "unknown error")
	case errors.Is(err, appscore.ErrInvalidRequest):
		return toolError("invalid_request", err.Error())
	case errors.Is(err, appscore.ErrSessionNotFound):
		return toolError("session_not_found", err.Error())
	case errors.Is(err, appsession.ErrNoActiveSession):
		return toolError("no_active_session", err.Error())
	case errors.Is(err, appsession.ErrStorage), errors.Is(err, appscore.ErrStorage):
		return toolError("storage_error", err.Error())
	default:
		return toolError("internal_error", err.Error())
	}
}
