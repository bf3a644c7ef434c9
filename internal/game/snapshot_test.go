package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	room, players := testRoomWithGame()
	room.CreatedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	room.UpdatedAt = room.CreatedAt.Add(time.Minute)
	room.Game.Declarations[players[1].ID] = Declaration{SafeWires: 2}
	players[3].Wires[0].Cut = true

	snap := snapshotRoom(room)
	restored := restoreRoom(snap)

	assert.Equal(t, room.ID, restored.ID)
	assert.Equal(t, room.State, restored.State)
	assert.Equal(t, room.Options, restored.Options)
	assert.Equal(t, room.CreatedAt, restored.CreatedAt)
	assert.Equal(t, room.UpdatedAt, restored.UpdatedAt)
	require.Len(t, restored.Players, len(room.Players))

	for id, orig := range room.Players {
		got, ok := restored.Players[id]
		require.True(t, ok, "player %s lost in round trip", id)
		assert.Equal(t, orig.DisplayName, got.DisplayName)
		assert.Equal(t, orig.Role, got.Role)
		assert.Equal(t, orig.Master, got.Master)
		require.Len(t, got.Wires, len(orig.Wires))
		for i := range orig.Wires {
			assert.Equal(t, *orig.Wires[i], *got.Wires[i])
		}
	}

	require.NotNil(t, restored.Game)
	assert.Equal(t, room.Game.Round, restored.Game.Round)
	assert.Equal(t, room.Game.TurnOrder, restored.Game.TurnOrder)
	assert.Equal(t, Declaration{SafeWires: 2}, restored.Game.Declarations[players[1].ID])
}

func TestSnapshotDropsConnectionState(t *testing.T) {
	room, players := testRoomWithGame()
	players[0].SessionID = "live-session"

	restored := restoreRoom(snapshotRoom(room))
	for _, p := range restored.Players {
		assert.False(t, p.Connected, "rehydrated players must start disconnected")
		assert.Empty(t, p.SessionID)
	}
}

func TestSnapshotIsDetachedFromRoom(t *testing.T) {
	room, players := testRoomWithGame()

	snap := snapshotRoom(room)

	// Mutating the live room must not reach into the captured snapshot.
	players[0].Wires[0].Cut = true
	room.Game.Round = 9
	room.Game.TurnOrder[0] = "tampered"
	room.Game.Declarations["p9"] = Declaration{HasBomb: true}

	for _, sp := range snap.Players {
		if sp.ID == players[0].ID {
			assert.False(t, sp.Wires[0].Cut)
		}
	}
	assert.Equal(t, 1, snap.Game.Round)
	assert.Equal(t, "p0", snap.Game.TurnOrder[0])
	assert.NotContains(t, snap.Game.Declarations, "p9")
}

func TestSnapshotLobbyRoomHasNoGame(t *testing.T) {
	room := &Room{
		ID:      "WXYZ",
		State:   StateLobby,
		Players: map[string]*Player{"p0": {ID: "p0", DisplayName: "alice", Master: true}},
	}

	snap := snapshotRoom(room)
	assert.Nil(t, snap.Game)

	restored := restoreRoom(snap)
	assert.Nil(t, restored.Game)
	assert.Equal(t, StateLobby, restored.State)
}
