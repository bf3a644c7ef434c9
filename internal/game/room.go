package game

import (
	"sort"
	"time"
)

// Helpers on Room. These assume the caller holds room.mu.

// touch refreshes the room's update timestamp. Every mutating operation ends
// with a touch.
func (r *Room) touch(now time.Time) {
	r.UpdatedAt = now
}

// playerList returns the players in a stable order (masters first, then by
// display name). Map iteration order is not meaningful; broadcasts and deals
// need a deterministic sequence.
func (r *Room) playerList() []*Player {
	players := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool {
		if players[i].Master != players[j].Master {
			return players[i].Master
		}
		return players[i].DisplayName < players[j].DisplayName
	})
	return players
}

// playerByName finds a player by display name. Display names are the
// anti-duplicate-join key: joining with an existing name reconnects that
// player instead of seating a second one.
func (r *Room) playerByName(displayName string) *Player {
	for _, p := range r.Players {
		if p.DisplayName == displayName {
			return p
		}
	}
	return nil
}

// master returns the current master, or nil for an empty room.
func (r *Room) master() *Player {
	for _, p := range r.Players {
		if p.Master {
			return p
		}
	}
	return nil
}

// promoteNextMaster keeps the one-master invariant after the master leaves:
// the first remaining connected player takes over, or any player if none are
// connected.
func (r *Room) promoteNextMaster() *Player {
	var fallback *Player
	for _, p := range r.playerList() {
		if p.Connected {
			p.Master = true
			return p
		}
		if fallback == nil {
			fallback = p
		}
	}
	if fallback != nil {
		fallback.Master = true
	}
	return fallback
}

// canJoin checks the lobby-state and capacity rules for a brand new player.
func (r *Room) canJoin() error {
	if r.State != StateLobby {
		return ErrGameInProgress
	}
	if len(r.Players) >= r.Options.MaxPlayers {
		return ErrRoomFull
	}
	return nil
}
