package mcpserver

import (
	"errors"
	"fmt"

	"bingo-battle/internal/app/room"
	"bingo-battle/internal/game"

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
	case errors.Is(err, room.ErrInvalidRequest):
		return toolError("invalid_request", err.Error())
	case errors.Is(err, game.ErrNotFound):
		return toolError("room_not_found", err.Error())
	case game.IsRuleError(err):
		return toolError(err.Error(), err.Error())
	default:
		return toolError("internal_error", err.Error())
	}
}
