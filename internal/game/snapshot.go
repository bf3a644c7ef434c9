package game

import (
	"context"
	"time"
)

// Snapshot is the durable wire form of a room. Players are stored as an
// ordered list; the in-memory keyed map is rebuilt by ToRoom. This is the
// single serialization boundary between engine state and the store.
type Snapshot struct {
	ID        string           `json:"id"`
	State     RoomState        `json:"state"`
	Options   RoomOptions      `json:"options"`
	Players   []SnapshotPlayer `json:"players"`
	Game      *GameState       `json:"game,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// SnapshotPlayer is a player as persisted: full hand and role included, so a
// rehydrated room can resume mid-game. Snapshots live only in the trusted
// store and are never sent to clients.
type SnapshotPlayer struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"displayName"`
	Avatar      string     `json:"avatar,omitempty"`
	Role        Role       `json:"role,omitempty"`
	Wires       []WireCard `json:"wires"`
	Master      bool       `json:"master"`
}

// Session is the per-player reconnection record. It outlives room snapshot
// rewrites so a player can find their way back after a long absence.
type Session struct {
	RoomID      string `json:"roomId"`
	DisplayName string `json:"displayName"`
}

// Store is the durable key-value persistence the engine consumes. Lookups
// for absent keys return ErrSnapshotNotFound; any other error is an
// infrastructure failure and the engine degrades to memory-only operation.
type Store interface {
	SaveRoom(ctx context.Context, snap *Snapshot) error
	LoadRoom(ctx context.Context, roomID string) (*Snapshot, error)
	DeleteRoom(ctx context.Context, roomID string) error
	SaveSession(ctx context.Context, playerID string, s Session) error
	LoadSession(ctx context.Context, playerID string) (Session, error)
}

// snapshotRoom captures a room into its wire form. Caller holds the room
// lock. Connection status is deliberately not persisted: every player in a
// rehydrated room starts disconnected until they present themselves.
func snapshotRoom(r *Room) *Snapshot {
	players := r.playerList()
	snap := &Snapshot{
		ID:        r.ID,
		State:     r.State,
		Options:   r.Options,
		Players:   make([]SnapshotPlayer, 0, len(players)),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	for _, p := range players {
		sp := SnapshotPlayer{
			ID:          p.ID,
			DisplayName: p.DisplayName,
			Avatar:      p.Avatar,
			Role:        p.Role,
			Master:      p.Master,
			Wires:       make([]WireCard, 0, len(p.Wires)),
		}
		for _, w := range p.Wires {
			sp.Wires = append(sp.Wires, *w)
		}
		snap.Players = append(snap.Players, sp)
	}
	if r.Game != nil {
		g := *r.Game
		g.TurnOrder = append([]string(nil), r.Game.TurnOrder...)
		if r.Game.Declarations != nil {
			g.Declarations = make(map[string]Declaration, len(r.Game.Declarations))
			for k, v := range r.Game.Declarations {
				g.Declarations[k] = v
			}
		}
		snap.Game = &g
	}
	return snap
}

// restoreRoom rebuilds an in-memory room from its wire form.
func restoreRoom(snap *Snapshot) *Room {
	r := &Room{
		ID:        snap.ID,
		State:     snap.State,
		Options:   snap.Options,
		Players:   make(map[string]*Player, len(snap.Players)),
		Game:      snap.Game,
		CreatedAt: snap.CreatedAt,
		UpdatedAt: snap.UpdatedAt,
	}
	for _, sp := range snap.Players {
		p := &Player{
			ID:          sp.ID,
			DisplayName: sp.DisplayName,
			Avatar:      sp.Avatar,
			Role:        sp.Role,
			Master:      sp.Master,
			Wires:       make([]*WireCard, 0, len(sp.Wires)),
		}
		for _, w := range sp.Wires {
			w := w
			p.Wires = append(p.Wires, &w)
		}
		r.Players[p.ID] = p
	}
	return r
}
