package game

// Outbound events, one struct per variant. The transport layer turns these
// into wire messages; the engine only decides who may see what. PrivateHand
// events go to a single player's connection, everything else to the room.

// EventType tags an outbound event.
type EventType string

const (
	EventLobbyUpdate        EventType = "lobby_update"
	EventGameStarted        EventType = "game_started"
	EventPrivateHand        EventType = "private_hand"
	EventPlayerTurn         EventType = "player_turn"
	EventWireCutResult      EventType = "wire_cut_result"
	EventPlayersUpdate      EventType = "players_update"
	EventRoundStarted       EventType = "round_started"
	EventGameOver           EventType = "game_over"
	EventPlayerDisconnected EventType = "player_disconnected"
	EventPlayerReconnected  EventType = "player_reconnected"
	EventPlayerKicked       EventType = "player_kicked"
	EventDeclaration        EventType = "wires_declared"
)

// Event is the closed set of outbound payloads.
type Event interface {
	Type() EventType
}

// Broadcaster delivers events to the real-time transport. Implementations
// must not block game logic: delivery latency is never on the critical path
// of turn legality.
type Broadcaster interface {
	// ToRoom delivers an event to every connection in the room.
	ToRoom(roomID string, ev Event)
	// ToPlayer delivers an event to the single connection owning playerID.
	ToPlayer(roomID, playerID string, ev Event)
}

// NopBroadcaster discards all events. Useful when running the engine without
// a transport, and in tests that don't care about emissions.
type NopBroadcaster struct{}

func (NopBroadcaster) ToRoom(string, Event)           {}
func (NopBroadcaster) ToPlayer(string, string, Event) {}

// LobbyUpdate is broadcast whenever lobby membership or options change.
type LobbyUpdate struct {
	RoomID  string         `json:"roomId"`
	State   RoomState      `json:"state"`
	Options RoomOptions    `json:"options"`
	Players []PublicPlayer `json:"players"`
}

func (LobbyUpdate) Type() EventType { return EventLobbyUpdate }

// GameStarted announces a new game. Hands travel separately, per player.
type GameStarted struct {
	RoomID          string   `json:"roomId"`
	Round           int      `json:"round"`
	TurnOrder       []string `json:"turnOrder"`
	CurrentPlayerID string   `json:"currentPlayerId"`
	WiresPerPlayer  int      `json:"wiresPerPlayer"`
	DefusesNeeded   int      `json:"defusesNeeded"`
	TotalCards      int      `json:"totalCards"`
}

func (GameStarted) Type() EventType { return EventGameStarted }

// PrivateHand carries a player's own cards and role. Addressed to the owning
// connection only, never broadcast.
type PrivateHand struct {
	PlayerID string    `json:"playerId"`
	Role     Role      `json:"role"`
	Wires    []OwnWire `json:"wires"`
}

func (PrivateHand) Type() EventType { return EventPrivateHand }

// PlayerTurn announces whose action is legal next.
type PlayerTurn struct {
	PlayerID    string `json:"playerId"`
	DisplayName string `json:"displayName"`
}

func (PlayerTurn) Type() EventType { return EventPlayerTurn }

// WireCutResult reports an applied cut and its consequences.
type WireCutResult struct {
	CutterID      string   `json:"cutterId"`
	TargetID      string   `json:"targetId"`
	WireIndex     int      `json:"wireIndex"`
	CardType      CardType `json:"cardType"`
	DefusesFound  int      `json:"defusesFound"`
	DefusesNeeded int      `json:"defusesNeeded"`
	BombFound     bool     `json:"bombFound"`
	RoundComplete bool     `json:"roundComplete"`
	GameOver      bool     `json:"gameOver"`
	Winner        Role     `json:"winner,omitempty"`
}

func (WireCutResult) Type() EventType { return EventWireCutResult }

// PlayersUpdate refreshes the public view of all players mid-game.
type PlayersUpdate struct {
	Players   []PublicPlayer   `json:"players"`
	GameState *PublicGameState `json:"gameState,omitempty"`
}

func (PlayersUpdate) Type() EventType { return EventPlayersUpdate }

// RoundStarted announces a completed redistribution.
type RoundStarted struct {
	Round          int `json:"round"`
	WiresPerPlayer int `json:"wiresPerPlayer"`
}

func (RoundStarted) Type() EventType { return EventRoundStarted }

// GameOver reveals the winner and every role.
type GameOver struct {
	Winner  Role         `json:"winner"`
	Players []RoleReveal `json:"players"`
}

func (GameOver) Type() EventType { return EventGameOver }

// PlayerDisconnected notes a transient connection loss; the seat stays.
type PlayerDisconnected struct {
	PlayerID    string `json:"playerId"`
	DisplayName string `json:"displayName"`
}

func (PlayerDisconnected) Type() EventType { return EventPlayerDisconnected }

// PlayerReconnected notes a player's return.
type PlayerReconnected struct {
	PlayerID    string `json:"playerId"`
	DisplayName string `json:"displayName"`
}

func (PlayerReconnected) Type() EventType { return EventPlayerReconnected }

// PlayerKicked notes a master-initiated removal.
type PlayerKicked struct {
	PlayerID    string `json:"playerId"`
	DisplayName string `json:"displayName"`
}

func (PlayerKicked) Type() EventType { return EventPlayerKicked }

// DeclarationMade publishes a player's non-binding end-of-round guess.
type DeclarationMade struct {
	PlayerID    string      `json:"playerId"`
	Declaration Declaration `json:"declaration"`
}

func (DeclarationMade) Type() EventType { return EventDeclaration }
