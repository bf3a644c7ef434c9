package game

// Outward-facing projections. Hidden information is omitted per recipient
// here, server-side; clients never receive fields they must ignore. A
// player's own uncut card types appear only in their PrivateHand, and roles
// stay private until the game ends.

// PublicWire is what everyone may know about a card: its position, whether it
// has been cut, and — only once cut — its type.
type PublicWire struct {
	Position int      `json:"position"`
	Cut      bool     `json:"cut"`
	Type     CardType `json:"type,omitempty"`
}

// OwnWire is a card as seen by its owner: type always visible.
type OwnWire struct {
	Position int      `json:"position"`
	Cut      bool     `json:"cut"`
	Type     CardType `json:"type"`
}

// PublicPlayer is a player as seen by the rest of the room.
type PublicPlayer struct {
	ID          string       `json:"id"`
	DisplayName string       `json:"displayName"`
	Avatar      string       `json:"avatar,omitempty"`
	Connected   bool         `json:"connected"`
	Master      bool         `json:"master"`
	Wires       []PublicWire `json:"wires,omitempty"`
	Declaration *Declaration `json:"declaration,omitempty"`
}

// PublicGameState is the game state everyone shares.
type PublicGameState struct {
	Round             int      `json:"round"`
	TurnOrder         []string `json:"turnOrder"`
	TurnIndex         int      `json:"turnIndex"`
	CurrentPlayerID   string   `json:"currentPlayerId"`
	WiresPerPlayer    int      `json:"wiresPerPlayer"`
	DefusesFound      int      `json:"defusesFound"`
	DefusesNeeded     int      `json:"defusesNeeded"`
	RevealedThisRound int      `json:"revealedThisRound"`
	Winner            Role     `json:"winner,omitempty"`
}

// RoleReveal is a player's role, published to everyone at game end only.
type RoleReveal struct {
	PlayerID    string `json:"playerId"`
	DisplayName string `json:"displayName"`
	Role        Role   `json:"role"`
}

// RoomSummary is the listing entry for the public lobby browser.
type RoomSummary struct {
	ID          string    `json:"id"`
	PlayerCount int       `json:"playerCount"`
	MaxPlayers  int       `json:"maxPlayers"`
	State       RoomState `json:"state"`
}

// RoomStatus is the HTTP status-query projection: public fields only.
type RoomStatus struct {
	ID          string         `json:"id"`
	State       RoomState      `json:"state"`
	Options     RoomOptions    `json:"options"`
	Players     []PublicPlayer `json:"players"`
	PlayerCount int            `json:"playerCount"`
	MaxPlayers  int            `json:"maxPlayers"`
}

func publicWires(p *Player) []PublicWire {
	wires := make([]PublicWire, 0, len(p.Wires))
	for _, w := range p.Wires {
		pw := PublicWire{Position: w.Position, Cut: w.Cut}
		if w.Cut {
			pw.Type = w.Type
		}
		wires = append(wires, pw)
	}
	return wires
}

func publicPlayer(p *Player, decl *Declaration) PublicPlayer {
	return PublicPlayer{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Avatar:      p.Avatar,
		Connected:   p.Connected,
		Master:      p.Master,
		Wires:       publicWires(p),
		Declaration: decl,
	}
}

// publicPlayers projects every player for a room-wide broadcast. Caller holds
// the room lock.
func (r *Room) publicPlayers() []PublicPlayer {
	players := r.playerList()
	out := make([]PublicPlayer, 0, len(players))
	for _, p := range players {
		var decl *Declaration
		if r.Game != nil {
			if d, ok := r.Game.Declarations[p.ID]; ok {
				d := d
				decl = &d
			}
		}
		out = append(out, publicPlayer(p, decl))
	}
	return out
}

// privateHand projects a player's own hand and role.
func privateHand(p *Player) PrivateHand {
	wires := make([]OwnWire, 0, len(p.Wires))
	for _, w := range p.Wires {
		wires = append(wires, OwnWire{Position: w.Position, Cut: w.Cut, Type: w.Type})
	}
	return PrivateHand{PlayerID: p.ID, Role: p.Role, Wires: wires}
}

// publicGameState projects the shared game state. Caller holds the room lock.
func (r *Room) publicGameState() *PublicGameState {
	g := r.Game
	if g == nil {
		return nil
	}
	return &PublicGameState{
		Round:             g.Round,
		TurnOrder:         append([]string(nil), g.TurnOrder...),
		TurnIndex:         g.TurnIndex,
		CurrentPlayerID:   g.CurrentPlayerID(),
		WiresPerPlayer:    g.WiresPerPlayer,
		DefusesFound:      g.DefusesFound,
		DefusesNeeded:     g.DefusesNeeded,
		RevealedThisRound: g.RevealedThisRound,
		Winner:            g.Winner,
	}
}

// roleReveals projects every role for the game-over broadcast.
func (r *Room) roleReveals() []RoleReveal {
	players := r.playerList()
	out := make([]RoleReveal, 0, len(players))
	for _, p := range players {
		out = append(out, RoleReveal{PlayerID: p.ID, DisplayName: p.DisplayName, Role: p.Role})
	}
	return out
}
