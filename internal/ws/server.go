package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"bingo-battle/internal/app/room"
	"bingo-battle/internal/game"
	"bingo-battle/internal/store"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 * 1024
	disconnectWait = 5 * time.Second
)

// RoomService is the subset of the room service the socket layer drives.
type RoomService interface {
	Join(ctx context.Context, roomID, name, connID string) (*room.Result, error)
	Finalize(ctx context.Context, roomID, connID string, board []int) (*room.Result, error)
	Move(ctx context.Context, roomID, connID string, index int) (*room.Result, error)
	Disconnect(ctx context.Context, connID string) error
}

type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

func (c *Client) ID() string { return c.id }

// trySend queues msg without blocking. It reports false when the buffer is
// full or the client is already closed.
func (c *Client) trySend(msg []byte) bool {
	select {
	case <-c.done:
		return true
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

type Server struct {
	svc        RoomService
	hub        *Hub
	upgrader   websocket.Upgrader
	sendBuffer int
}

type Options struct {
	AllowedOrigins []string
	SendBuffer     int
}

func NewServer(svc RoomService, hub *Hub, opts Options) *Server {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 16
	}
	return &Server{
		svc:        svc,
		hub:        hub,
		sendBuffer: opts.SendBuffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(opts.AllowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := map[string]bool{}
	for _, o := range allowed {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			set[o] = true
		}
	}
	return func(r *http.Request) bool {
		if len(set) == 0 || set["*"] {
			return true
		}
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &Client{
		id:   store.NewID(),
		conn: conn,
		send: make(chan []byte, s.sendBuffer),
		done: make(chan struct{}),
	}
	s.hub.Register(c)
	metricConnectionsTotal.Add(1)
	log.Debug().Str("connection_id", c.id).Str("remote", r.RemoteAddr).Msg("ws connected")

	go s.writeLoop(c)
	s.readLoop(c)
}

func (s *Server) readLoop(c *Client) {
	defer s.unregister(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		metricMessagesTotal.Add(1)
		s.handleMessage(context.Background(), c, msg)
	}
}

func (s *Server) writeLoop(c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) unregister(c *Client) {
	s.hub.Unregister(c.id)
	c.close()
	ctx, cancel := context.WithTimeout(context.Background(), disconnectWait)
	defer cancel()
	if err := s.svc.Disconnect(ctx, c.id); err != nil {
		log.Error().Err(err).Str("connection_id", c.id).Msg("disconnect cleanup failed")
	}
	log.Debug().Str("connection_id", c.id).Msg("ws disconnected")
}

func (s *Server) handleMessage(ctx context.Context, c *Client, msg []byte) {
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		s.sendError(c, "", room.ErrInvalidRequest.Error())
		return
	}
	if len(env.RequestID) > maxRequestIDLen {
		s.sendError(c, env.RequestID, "invalid_request_id")
		return
	}

	var (
		res *room.Result
		err error
	)
	switch env.Type {
	case TypeJoinRoom:
		var p JoinPayload
		if decodePayload(env.Payload, &p) != nil || p.RoomID == "" {
			err = room.ErrInvalidRequest
			break
		}
		res, err = s.svc.Join(ctx, strings.ToUpper(strings.TrimSpace(p.RoomID)), p.Name, c.id)
	case TypeFinalizeBoard:
		var p FinalizePayload
		if decodePayload(env.Payload, &p) != nil || p.RoomID == "" {
			err = room.ErrInvalidRequest
			break
		}
		res, err = s.svc.Finalize(ctx, strings.ToUpper(strings.TrimSpace(p.RoomID)), c.id, p.Board)
	case TypeMakeMove:
		var p MovePayload
		if decodePayload(env.Payload, &p) != nil || p.RoomID == "" || p.Index == nil {
			err = room.ErrInvalidRequest
			break
		}
		res, err = s.svc.Move(ctx, strings.ToUpper(strings.TrimSpace(p.RoomID)), c.id, *p.Index)
	default:
		err = errUnknownAction
	}
	if err != nil {
		s.sendError(c, env.RequestID, errorCode(err))
		return
	}
	ack := Ack{Type: TypeAck, RequestID: env.RequestID, OK: true, Room: &res.Room}
	if env.Type == TypeJoinRoom {
		slot := res.Slot
		ack.Slot = &slot
	}
	s.sendJSON(c, ack)
}

var errUnknownAction = errors.New("unknown_action")

func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return room.ErrInvalidRequest
	}
	return json.Unmarshal(raw, v)
}

func errorCode(err error) string {
	switch {
	case game.IsRuleError(err),
		errors.Is(err, room.ErrInvalidRequest),
		errors.Is(err, errUnknownAction):
		return err.Error()
	}
	return room.ErrServer.Error()
}

func (s *Server) sendError(c *Client, requestID, code string) {
	metricErrorAcksTotal.Add(1)
	s.sendJSON(c, Ack{Type: TypeAck, RequestID: requestID, Error: code})
}

func (s *Server) sendJSON(c *Client, v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("connection_id", c.id).Msg("marshal ack failed")
		return
	}
	if !c.trySend(msg) {
		log.Warn().Str("connection_id", c.id).Msg("client send buffer full; closing")
		metricSlowClientsClosed.Add(1)
		c.close()
	}
}
