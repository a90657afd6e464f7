// Package presence tracks which room each live connection has joined.
package presence

import (
	"context"
	"sync"
)

type MemoryRegistry struct {
	mu    sync.RWMutex
	rooms map[string]string
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{rooms: map[string]string{}}
}

func (m *MemoryRegistry) Bind(_ context.Context, connID, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[connID] = roomID
	return nil
}

func (m *MemoryRegistry) Lookup(_ context.Context, connID string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	roomID, ok := m.rooms[connID]
	return roomID, ok, nil
}

func (m *MemoryRegistry) Unbind(_ context.Context, connID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, connID)
	return nil
}

func (m *MemoryRegistry) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}
