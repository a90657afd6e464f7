package ws

import (
	"encoding/json"
	"sync"

	"bingo-battle/internal/game/viewmodel"

	"github.com/rs/zerolog/log"
)

// Hub tracks live connections and the room group each one belongs to.
type Hub struct {
	mu     sync.RWMutex
	conns  map[string]*Client
	groups map[string]map[string]struct{}
}

func NewHub() *Hub {
	return &Hub{
		conns:  map[string]*Client{},
		groups: map[string]map[string]struct{}{},
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c.id] = c
	metricConnectionsActive.Add(1)
}

// Unregister drops the connection and removes it from every group.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[connID]; !ok {
		return
	}
	delete(h.conns, connID)
	for roomID, members := range h.groups {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.groups, roomID)
		}
	}
	metricConnectionsActive.Add(-1)
}

func (h *Hub) Admit(roomID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members := h.groups[roomID]
	if members == nil {
		members = map[string]struct{}{}
		h.groups[roomID] = members
	}
	members[connID] = struct{}{}
}

func (h *Hub) Evict(roomID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members := h.groups[roomID]
	delete(members, connID)
	if len(members) == 0 {
		delete(h.groups, roomID)
	}
}

func (h *Hub) Members(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[roomID])
}

func (h *Hub) RoomUpdate(roomID string, view viewmodel.RoomView) {
	h.broadcast(roomID, RoomUpdate{Type: TypeRoomUpdate, Room: view})
}

func (h *Hub) GameOver(roomID string, reveal viewmodel.RevealView) {
	h.broadcast(roomID, GameOver{Type: TypeGameOver, Winner: reveal.Winner, Boards: reveal.Boards})
}

func (h *Hub) broadcast(roomID string, v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("room_id", roomID).Msg("marshal broadcast failed")
		return
	}
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.groups[roomID]))
	for connID := range h.groups[roomID] {
		if c := h.conns[connID]; c != nil {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if !c.trySend(msg) {
			log.Warn().Str("room_id", roomID).Str("connection_id", c.id).Msg("client send buffer full; closing")
			metricSlowClientsClosed.Add(1)
			c.close()
		}
	}
	metricBroadcastsTotal.Add(1)
}
