// Package game implements the wire-cutting game engine: rooms, players,
// dealing, turn order and the win/loss rules.
package game

import (
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/coder/quartz"
)

// CardType classifies a wire card.
type CardType string

const (
	CardBomb    CardType = "bomb"
	CardSafe    CardType = "safe"
	CardNeutral CardType = "neutral"
)

// Role is a player's hidden team.
type Role string

const (
	RoleGood Role = "good"
	RoleEvil Role = "evil"
)

// RoomState is the lifecycle phase of a room.
type RoomState string

const (
	StateLobby    RoomState = "lobby"
	StateInGame   RoomState = "in_game"
	StateFinished RoomState = "finished"
)

// WireCard is a single card in a player's hand. Position is the stable index
// within the current hand; once Cut is set the type is public.
type WireCard struct {
	ID       string   `json:"id"`
	Type     CardType `json:"type"`
	Cut      bool     `json:"cut"`
	Position int      `json:"position"`
}

// Player is a participant in a room. Role stays empty until a game starts and
// is fixed for the remainder of that game. SessionID is an opaque transport
// reference, swapped in place on reconnect.
type Player struct {
	ID          string      `json:"id"`
	DisplayName string      `json:"displayName"`
	Avatar      string      `json:"avatar,omitempty"`
	SessionID   string      `json:"-"`
	Role        Role        `json:"role,omitempty"`
	Wires       []*WireCard `json:"wires"`
	Connected   bool        `json:"connected"`
	Master      bool        `json:"master"`
}

// RoomOptions is a room's configuration. Caller-supplied partial options
// override the defaults at creation time.
type RoomOptions struct {
	MaxPlayers     int  `json:"maxPlayers"`
	Public         bool `json:"public"`
	WiresPerPlayer int  `json:"wiresPerPlayer"`
	TimerPerPhase  int  `json:"timerPerPhase,omitempty"`
}

// Declaration is a player's non-binding, round-scoped statement about their
// own hand. It never influences the outcome.
type Declaration struct {
	SafeWires int  `json:"safeWires"`
	HasBomb   bool `json:"hasBomb"`
}

// GameState is the per-game round and turn state, created fresh on every
// start and replaced wholesale on restart.
type GameState struct {
	TurnIndex         int                    `json:"turnIndex"`
	Round             int                    `json:"round"`
	DefusesFound      int                    `json:"defusesFound"`
	DefusesNeeded     int                    `json:"defusesNeeded"`
	BombFound         bool                   `json:"bombFound"`
	TurnOrder         []string               `json:"turnOrder"`
	Winner            Role                   `json:"winner,omitempty"`
	WiresPerPlayer    int                    `json:"wiresPerPlayer"`
	RevealedThisRound int                    `json:"revealedThisRound"`
	LastTargetID      string                 `json:"lastTargetId,omitempty"`
	Declarations      map[string]Declaration `json:"declarations,omitempty"`
}

// Room is an isolated game session. All mutation happens under mu; the
// engine's room map lock is never held while a room lock is held.
type Room struct {
	ID        string
	State     RoomState
	Options   RoomOptions
	Players   map[string]*Player
	Game      *GameState
	CreatedAt time.Time
	UpdatedAt time.Time

	mu      sync.Mutex
	rng     *rand.Rand
	deleted bool

	// Store write ordering. storeSeq is issued under mu, one per persisted
	// mutation; storeMu serializes the writes themselves and guards
	// storeApplied. A write that is stale by the time it runs is skipped, so
	// a slow save can neither clobber a newer snapshot nor resurrect a
	// deleted room.
	storeSeq     uint64
	storeMu      sync.Mutex
	storeApplied uint64

	// Deferred round transition bookkeeping. transitionGen invalidates a
	// scheduled transition when the room is deleted or the game restarts.
	transition    *quartz.Timer
	transitionGen uint64
}

// CurrentPlayerID returns the id whose turn it is.
func (g *GameState) CurrentPlayerID() string {
	return g.TurnOrder[g.TurnIndex]
}

// IsPlayerTurn reports whether it is playerID's turn.
func (g *GameState) IsPlayerTurn(playerID string) bool {
	return g.CurrentPlayerID() == playerID
}

// setTurnTo points the turn at playerID if it is part of the turn order.
func (g *GameState) setTurnTo(playerID string) {
	for i, id := range g.TurnOrder {
		if id == playerID {
			g.TurnIndex = i
			return
		}
	}
}

// recordCut bumps the reveal counter and remembers the probed player, who
// becomes the next actor unless the round just completed.
func (g *GameState) recordCut(targetID string) {
	g.RevealedThisRound++
	g.LastTargetID = targetID
}

// roundComplete reports whether every seat has been probed this round.
func (g *GameState) roundComplete(playerCount int) bool {
	return g.RevealedThisRound >= playerCount
}

// startNewRound resets per-round state after a successful redistribution and
// hands the turn to the player probed last, preserving continuity across
// rounds.
func (g *GameState) startNewRound(wiresPerPlayer int) {
	g.Round++
	g.WiresPerPlayer = wiresPerPlayer
	g.RevealedThisRound = 0
	g.Declarations = make(map[string]Declaration)
	if g.LastTargetID != "" {
		g.setTurnTo(g.LastTargetID)
	}
}

// nextWiresPerPlayer is the hand size for the following round: one smaller,
// floored at one.
func (g *GameState) nextWiresPerPlayer() int {
	if g.WiresPerPlayer <= 1 {
		return 1
	}
	return g.WiresPerPlayer - 1
}
