package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nroche/timebomb/internal/game"
)

func TestEventMessageCarriesEventType(t *testing.T) {
	msg, err := eventMessage(game.PlayerTurn{PlayerID: "p1", DisplayName: "bob"})
	require.NoError(t, err)
	assert.Equal(t, MessageType("player_turn"), msg.Type)
	assert.False(t, msg.Timestamp.IsZero())

	var payload game.PlayerTurn
	require.NoError(t, json.Unmarshal(msg.Data, &payload))
	assert.Equal(t, "p1", payload.PlayerID)
}

func TestErrorCodeMapping(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{game.ErrRoomNotFound, "room_not_found"},
		{game.ErrRoomFull, "room_full"},
		{game.ErrNotYourTurn, "not_your_turn"},
		{game.ErrSelfTarget, "self_target"},
		{game.ErrWireAlreadyCut, "invalid_wire"},
		{game.ErrNotMaster, "not_allowed"},
		{game.ErrTooFewPlayers, "invalid_player_count"},
		{assert.AnError, "internal_error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, errorCode(tt.err), "%v", tt.err)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, httpStatus(game.ErrRoomNotFound))
	assert.Equal(t, http.StatusForbidden, httpStatus(game.ErrNotMaster))
	assert.Equal(t, http.StatusBadRequest, httpStatus(game.ErrRoomFull))
	assert.Equal(t, http.StatusInternalServerError, httpStatus(assert.AnError))
}
