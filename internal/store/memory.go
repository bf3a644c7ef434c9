package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/nroche/timebomb/internal/game"
)

// Memory is an in-process game.Store. It round-trips snapshots through JSON
// so it exercises the same serialization boundary as Redis, and it ignores
// TTLs: without a durable backend there is nothing to expire against.
type Memory struct {
	mu       sync.RWMutex
	rooms    map[string][]byte
	sessions map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		rooms:    make(map[string][]byte),
		sessions: make(map[string][]byte),
	}
}

func (m *Memory) SaveRoom(_ context.Context, snap *game.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[snap.ID] = data
	return nil
}

func (m *Memory) LoadRoom(_ context.Context, roomID string) (*game.Snapshot, error) {
	m.mu.RLock()
	data, ok := m.rooms[roomID]
	m.mu.RUnlock()
	if !ok {
		return nil, game.ErrSnapshotNotFound
	}
	var snap game.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (m *Memory) DeleteRoom(_ context.Context, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, roomID)
	return nil
}

func (m *Memory) SaveSession(_ context.Context, playerID string, s game.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[playerID] = data
	return nil
}

func (m *Memory) LoadSession(_ context.Context, playerID string) (game.Session, error) {
	m.mu.RLock()
	data, ok := m.sessions[playerID]
	m.mu.RUnlock()
	if !ok {
		return game.Session{}, game.ErrSnapshotNotFound
	}
	var s game.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return game.Session{}, err
	}
	return s, nil
}
