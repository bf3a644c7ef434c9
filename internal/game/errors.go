package game

import "errors"

// Validation errors: malformed input, rejected before anything is touched.
var (
	ErrDisplayNameRequired = errors.New("display name is required")
	ErrRoomIDRequired      = errors.New("room id is required")
)

// Rule violations: legal input that is illegal in the current state. These
// are ordinary return values; nothing is mutated when one is returned.
var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomFull        = errors.New("room is full")
	ErrGameInProgress  = errors.New("game already started")
	ErrGameNotStarted  = errors.New("game not in progress")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrNotMaster       = errors.New("only the room master may do that")
	ErrTargetIsMaster  = errors.New("the room master cannot be kicked")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrSelfTarget      = errors.New("you cannot cut your own wire")
	ErrNoSuchWire      = errors.New("no wire at that position")
	ErrWireAlreadyCut  = errors.New("wire already cut")
	ErrTooFewPlayers   = errors.New("not enough players to start")
	ErrTooManyPlayers  = errors.New("too many players to start")
	ErrSessionNotFound = errors.New("no session for that player")
)

// ErrSnapshotNotFound is returned by a Store when a key is absent. Absence is
// a normal condition, not a failure.
var ErrSnapshotNotFound = errors.New("snapshot not found")
