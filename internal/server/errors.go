package server

import (
	"errors"
	"net/http"

	"github.com/nroche/timebomb/internal/game"
)

// errorCode maps engine failures to the stable codes clients switch on.
func errorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrDisplayNameRequired), errors.Is(err, game.ErrRoomIDRequired):
		return "invalid_request"
	case errors.Is(err, game.ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, game.ErrRoomFull):
		return "room_full"
	case errors.Is(err, game.ErrGameInProgress):
		return "game_already_started"
	case errors.Is(err, game.ErrGameNotStarted):
		return "game_not_started"
	case errors.Is(err, game.ErrPlayerNotFound):
		return "player_not_found"
	case errors.Is(err, game.ErrNotMaster), errors.Is(err, game.ErrTargetIsMaster):
		return "not_allowed"
	case errors.Is(err, game.ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, game.ErrSelfTarget):
		return "self_target"
	case errors.Is(err, game.ErrNoSuchWire), errors.Is(err, game.ErrWireAlreadyCut):
		return "invalid_wire"
	case errors.Is(err, game.ErrTooFewPlayers), errors.Is(err, game.ErrTooManyPlayers):
		return "invalid_player_count"
	case errors.Is(err, game.ErrSessionNotFound):
		return "session_not_found"
	default:
		return "internal_error"
	}
}

// httpStatus maps engine failures to HTTP statuses for the REST surface.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, game.ErrRoomNotFound), errors.Is(err, game.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrNotMaster), errors.Is(err, game.ErrTargetIsMaster):
		return http.StatusForbidden
	case errors.Is(err, game.ErrDisplayNameRequired),
		errors.Is(err, game.ErrRoomIDRequired),
		errors.Is(err, game.ErrRoomFull),
		errors.Is(err, game.ErrGameInProgress),
		errors.Is(err, game.ErrGameNotStarted),
		errors.Is(err, game.ErrPlayerNotFound),
		errors.Is(err, game.ErrNotYourTurn),
		errors.Is(err, game.ErrSelfTarget),
		errors.Is(err, game.ErrNoSuchWire),
		errors.Is(err, game.ErrWireAlreadyCut),
		errors.Is(err, game.ErrTooFewPlayers),
		errors.Is(err, game.ErrTooManyPlayers):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
