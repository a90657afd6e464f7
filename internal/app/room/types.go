package room

import (
	"context"
	"time"

	"bingo-battle/internal/game"
	"bingo-battle/internal/game/viewmodel"
)

// RoomStore persists rooms. UpdateRoom must apply fn atomically with respect
// to other updates of the same room and write nothing when fn fails.
type RoomStore interface {
	CreateRoom(ctx context.Context, r *game.Room) error
	GetRoom(ctx context.Context, roomID string) (*game.Room, error)
	UpdateRoom(ctx context.Context, roomID string, fn func(*game.Room) error) (*game.Room, error)
	FindRoomByConnection(ctx context.Context, connID string) (*game.Room, error)
	DeleteIdleRooms(ctx context.Context, cutoff time.Time) (int64, error)
}

// Registry remembers which room a connection joined.
type Registry interface {
	Bind(ctx context.Context, connID, roomID string) error
	Lookup(ctx context.Context, connID string) (string, bool, error)
	Unbind(ctx context.Context, connID string) error
}

// Broadcaster fans room events out to the connections joined to a room.
type Broadcaster interface {
	Admit(roomID, connID string)
	Evict(roomID, connID string)
	RoomUpdate(roomID string, view viewmodel.RoomView)
	GameOver(roomID string, reveal viewmodel.RevealView)
}

type Result struct {
	Room   viewmodel.RoomView
	Slot   int
	Reveal *viewmodel.RevealView
}

type CreateResult struct {
	RoomID string `json:"roomId"`
	Link   string `json:"link"`
}
