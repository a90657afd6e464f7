package mcpserver

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerRoomTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"create_room",
			mcp.WithDescription("Create an empty bingo room and return its code and share link"),
		),
		s.handleCreateRoom,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_room",
			mcp.WithDescription("Get the public snapshot of a room"),
			mcp.WithString("room_id", mcp.Required(), mcp.Description("Six character room code")),
		),
		s.handleGetRoom,
	)
}

func (s *Server) handleCreateRoom(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.rooms.Create(ctx)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(res), nil
}

func (s *Server) handleGetRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	roomID, err := request.RequireString("room_id")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	roomID = strings.ToUpper(strings.TrimSpace(roomID))
	if roomID == "" {
		return toolError("invalid_request", "room_id is required"), nil
	}
	view, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(view), nil
}
