package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"bingo-battle/internal/app/room"
	"bingo-battle/internal/game/viewmodel"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RoomService is what the MCP tools need from the room service.
type RoomService interface {
	Create(ctx context.Context) (*room.CreateResult, error)
	Get(ctx context.Context, roomID string) (*viewmodel.RoomView, error)
}

type Server struct {
	rooms RoomService

	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
}

func New(rooms RoomService) *Server {
	mcpSrv := server.NewMCPServer(
		"bingo-battle",
		"0.1.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
		server.WithResourceRecovery(),
	)
	s := &Server{
		rooms:      rooms,
		mcpServer:  mcpSrv,
		httpServer: server.NewStreamableHTTPServer(mcpSrv, server.WithStateLess(true), server.WithDisableStreaming(true)),
	}
	s.registerRoomTools()
	s.registerResources()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer
}

func (s *Server) registerResources() {
	s.mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"room://{room_id}/state",
			"room_state",
			mcp.WithTemplateDescription("Public room snapshot by room id; boards are never included"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			raw := request.Params.URI
			if !strings.HasPrefix(raw, "room://") || !strings.HasSuffix(raw, "/state") {
				return nil, nil
			}
			roomID := strings.TrimSuffix(strings.TrimPrefix(raw, "room://"), "/state")
			if roomID == "" {
				return nil, nil
			}
			view, err := s.rooms.Get(ctx, strings.ToUpper(roomID))
			if err != nil {
				return nil, err
			}
			payload, err := json.Marshal(view)
			if err != nil {
				return nil, err
			}
			return []mcp.ResourceContents{
				mcp.TextResourceContents{
					URI:      raw,
					MIMEType: "application/json",
					Text:     string(payload),
				},
			}, nil
		},
	)
}
