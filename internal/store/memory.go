package store

import (
	"context"
	"sync"
	"time"

	"bingo-battle/internal/game"
)

// MemoryStore is the in-process room store used when no database is
// configured. Rooms are cloned on the way in and out.
type MemoryStore struct {
	mu    sync.Mutex
	rooms map[string]*game.Room
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms: map[string]*game.Room{},
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) CreateRoom(_ context.Context, r *game.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[r.RoomID]; ok {
		return ErrConflict
	}
	m.rooms[r.RoomID] = r.Clone()
	return nil
}

func (m *MemoryStore) GetRoom(_ context.Context, roomID string) (*game.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[roomID]
	if !ok {
		return nil, ErrNotFound
	}
	return r.Clone(), nil
}

func (m *MemoryStore) UpdateRoom(ctx context.Context, roomID string, fn func(*game.Room) error) (*game.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rooms[roomID]
	if !ok {
		return nil, ErrNotFound
	}
	r := cur.Clone()
	if err := fn(r); err != nil {
		return nil, err
	}
	r.Version = cur.Version + 1
	r.UpdatedAt = m.now()
	m.rooms[roomID] = r.Clone()
	return r, nil
}

func (m *MemoryStore) FindRoomByConnection(_ context.Context, connID string) (*game.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rooms {
		if r.SlotOf(connID) >= 0 {
			return r.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) DeleteIdleRooms(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, r := range m.rooms {
		if len(r.Players) == 0 && r.UpdatedAt.Before(cutoff) {
			delete(m.rooms, id)
			n++
		}
	}
	return n, nil
}
