package game

import (
	"context"
	"errors"
	rand "math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/nroche/timebomb/internal/randutil"
	"github.com/nroche/timebomb/internal/roomid"
)

// Options configures engine-wide rules and timings.
type Options struct {
	// MinPlayers and MaxPlayers bound the player count a game may start with.
	MinPlayers int
	MaxPlayers int
	// DefaultRoomSize is the maxPlayers a room gets when the creator doesn't
	// choose one.
	DefaultRoomSize int
	// RoomCodeLength is the length of generated room codes.
	RoomCodeLength int
	// RoundDelay is how long after a round completes the redistribution
	// fires, giving clients time to animate the last reveal.
	RoundDelay time.Duration
	// PersistTimeout bounds each asynchronous store write.
	PersistTimeout time.Duration
}

// DefaultOptions mirrors the original deployment's settings.
func DefaultOptions() Options {
	return Options{
		MinPlayers:      4,
		MaxPlayers:      8,
		DefaultRoomSize: 6,
		RoomCodeLength:  roomid.DefaultLength,
		RoundDelay:      5 * time.Second,
		PersistTimeout:  3 * time.Second,
	}
}

// Engine owns every room and applies all game mutations. Each room is
// serialized by its own mutex; the engine's lock guards only the room map,
// so distinct rooms proceed in parallel.
type Engine struct {
	logger *log.Logger
	clock  quartz.Clock
	store  Store
	bc     Broadcaster
	opts   Options

	mu    sync.RWMutex
	rng   *rand.Rand // guarded by mu: room codes and per-room rng seeding
	codes *roomid.Generator
	rooms map[string]*Room

	// Session write ordering, mirroring the per-room snapshot sequencing.
	// sessMu guards the issue counter; sessWriteMu serializes the writes
	// themselves and guards sessApplied.
	sessMu      sync.Mutex
	sessSeq     map[string]uint64
	sessWriteMu sync.Mutex
	sessApplied map[string]uint64
}

// NewEngine wires an engine from its collaborators. rng is the root of all
// randomness; pass a fixed seed for reproducible games.
func NewEngine(logger *log.Logger, store Store, bc Broadcaster, clock quartz.Clock, rng *rand.Rand, opts Options) *Engine {
	if bc == nil {
		bc = NopBroadcaster{}
	}
	return &Engine{
		logger:      logger.WithPrefix("engine"),
		clock:       clock,
		store:       store,
		bc:          bc,
		opts:        opts,
		rng:         rng,
		codes:       roomid.NewGenerator(rng, opts.RoomCodeLength),
		rooms:       make(map[string]*Room),
		sessSeq:     make(map[string]uint64),
		sessApplied: make(map[string]uint64),
	}
}

// RoomOptionsPatch is the caller-supplied partial room configuration; nil
// fields keep their defaults.
type RoomOptionsPatch struct {
	MaxPlayers     *int  `json:"maxPlayers,omitempty"`
	Public         *bool `json:"public,omitempty"`
	WiresPerPlayer *int  `json:"wiresPerPlayer,omitempty"`
	TimerPerPhase  *int  `json:"timerPerPhase,omitempty"`
}

// CreatedRoom identifies a freshly created room and its master.
type CreatedRoom struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

// JoinResult identifies the joined room and seat. Reconnected is set when the
// display name matched an existing seat and no new player was created.
type JoinResult struct {
	RoomID      string `json:"roomId"`
	PlayerID    string `json:"playerId"`
	Reconnected bool   `json:"reconnected"`
}

// CreateRoom creates a room seeded with one connected master player and
// returns its code.
func (e *Engine) CreateRoom(displayName, avatar string, patch *RoomOptionsPatch) (*CreatedRoom, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, ErrDisplayNameRequired
	}

	opts := e.buildOptions(patch)
	master := &Player{
		ID:          uuid.NewString(),
		DisplayName: displayName,
		Avatar:      avatar,
		Wires:       []*WireCard{},
		Connected:   true,
		Master:      true,
	}

	now := e.clock.Now()
	e.mu.Lock()
	code := e.codes.Generate()
	for {
		if _, taken := e.rooms[code]; !taken {
			break
		}
		code = e.codes.Generate()
	}
	room := &Room{
		ID:        code,
		State:     StateLobby,
		Options:   opts,
		Players:   map[string]*Player{master.ID: master},
		CreatedAt: now,
		UpdatedAt: now,
		rng:       randutil.Child(e.rng),
	}
	e.rooms[code] = room
	e.mu.Unlock()

	e.logger.Info("room created", "room", code, "master", displayName)

	room.mu.Lock()
	e.emitLobbyUpdate(room)
	e.persist(room)
	room.mu.Unlock()
	e.saveSession(master.ID, Session{RoomID: code, DisplayName: displayName})

	return &CreatedRoom{RoomID: code, PlayerID: master.ID}, nil
}

func (e *Engine) buildOptions(patch *RoomOptionsPatch) RoomOptions {
	opts := RoomOptions{
		MaxPlayers:     e.opts.DefaultRoomSize,
		Public:         true,
		WiresPerPlayer: initialWiresPerPlayer,
	}
	if patch != nil {
		if patch.MaxPlayers != nil {
			opts.MaxPlayers = *patch.MaxPlayers
		}
		if patch.Public != nil {
			opts.Public = *patch.Public
		}
		if patch.WiresPerPlayer != nil {
			opts.WiresPerPlayer = *patch.WiresPerPlayer
		}
		if patch.TimerPerPhase != nil {
			opts.TimerPerPhase = *patch.TimerPerPhase
		}
	}
	if opts.MaxPlayers < e.opts.MinPlayers {
		opts.MaxPlayers = e.opts.MinPlayers
	}
	if opts.MaxPlayers > e.opts.MaxPlayers {
		opts.MaxPlayers = e.opts.MaxPlayers
	}
	return opts
}

// JoinRoom seats a new player, or reconnects the existing seat when the
// display name is already taken in that room. Capacity is re-checked under
// the room's lock, so concurrent joins cannot oversubscribe a room.
func (e *Engine) JoinRoom(ctx context.Context, roomID, displayName, avatar string) (*JoinResult, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, ErrDisplayNameRequired
	}
	room, err := e.findRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if room.deleted {
		return nil, ErrRoomNotFound
	}

	if existing := room.playerByName(displayName); existing != nil {
		existing.Connected = true
		room.touch(e.clock.Now())
		e.emitLobbyUpdate(room)
		e.persist(room)
		e.saveSession(existing.ID, Session{RoomID: room.ID, DisplayName: displayName})
		return &JoinResult{RoomID: room.ID, PlayerID: existing.ID, Reconnected: true}, nil
	}

	if err := room.canJoin(); err != nil {
		return nil, err
	}

	player := &Player{
		ID:          uuid.NewString(),
		DisplayName: displayName,
		Avatar:      avatar,
		Wires:       []*WireCard{},
		Connected:   true,
	}
	room.Players[player.ID] = player
	room.touch(e.clock.Now())

	e.logger.Info("player joined", "room", room.ID, "player", displayName)
	e.emitLobbyUpdate(room)
	e.persist(room)
	e.saveSession(player.ID, Session{RoomID: room.ID, DisplayName: displayName})

	return &JoinResult{RoomID: room.ID, PlayerID: player.ID}, nil
}

// LeaveRoom removes a player unconditionally. Emptying a room tears the room
// down, cancels any pending round transition and evicts the snapshot.
func (e *Engine) LeaveRoom(roomID, playerID string) error {
	room := e.room(roomID)
	if room == nil {
		return ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if room.deleted {
		return ErrRoomNotFound
	}
	player, ok := room.Players[playerID]
	if !ok {
		return ErrPlayerNotFound
	}

	delete(room.Players, playerID)
	if len(room.Players) == 0 {
		e.deleteRoomLocked(room)
		return nil
	}

	if player.Master {
		if next := room.promoteNextMaster(); next != nil {
			e.logger.Info("master handed over", "room", room.ID, "player", next.DisplayName)
		}
	}
	room.touch(e.clock.Now())
	e.emitLobbyUpdate(room)
	e.persist(room)
	return nil
}

// KickPlayer removes target from the room. Only the master may kick, the
// master cannot be kicked, and kicking is a lobby-only action.
func (e *Engine) KickPlayer(roomID, targetID, requesterID string) error {
	room := e.room(roomID)
	if room == nil {
		return ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if room.deleted {
		return ErrRoomNotFound
	}
	if room.State != StateLobby {
		return ErrGameInProgress
	}
	requester, ok := room.Players[requesterID]
	if !ok {
		return ErrPlayerNotFound
	}
	if !requester.Master {
		return ErrNotMaster
	}
	target, ok := room.Players[targetID]
	if !ok {
		return ErrPlayerNotFound
	}
	if target.Master {
		return ErrTargetIsMaster
	}

	delete(room.Players, targetID)
	room.touch(e.clock.Now())

	e.logger.Info("player kicked", "room", room.ID, "player", target.DisplayName)
	e.bc.ToRoom(room.ID, PlayerKicked{PlayerID: target.ID, DisplayName: target.DisplayName})
	e.emitLobbyUpdate(room)
	e.persist(room)
	return nil
}

// DisconnectPlayer marks a player as away without freeing the seat, so a
// transient network loss survives. Hand, role and turn position stay intact.
func (e *Engine) DisconnectPlayer(roomID, playerID string) error {
	room := e.room(roomID)
	if room == nil {
		return ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if room.deleted {
		return ErrRoomNotFound
	}
	player, ok := room.Players[playerID]
	if !ok {
		return ErrPlayerNotFound
	}

	player.Connected = false
	player.SessionID = ""
	room.touch(e.clock.Now())

	e.bc.ToRoom(room.ID, PlayerDisconnected{PlayerID: player.ID, DisplayName: player.DisplayName})
	e.persist(room)
	return nil
}

// ReconnectPlayer swaps a returning player's transport reference in place,
// resends their private state plus a public room snapshot, and tells the
// room. If the room is only in the durable store it is rehydrated first.
func (e *Engine) ReconnectPlayer(ctx context.Context, roomID, playerID, sessionID string) error {
	room, err := e.findRoom(ctx, roomID)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if room.deleted {
		return ErrRoomNotFound
	}
	player, ok := room.Players[playerID]
	if !ok {
		return ErrPlayerNotFound
	}

	player.Connected = true
	player.SessionID = sessionID
	room.touch(e.clock.Now())

	// Private state first, then the shared snapshot, then the notice.
	if room.Game != nil {
		e.bc.ToPlayer(room.ID, player.ID, privateHand(player))
	}
	e.bc.ToPlayer(room.ID, player.ID, PlayersUpdate{
		Players:   room.publicPlayers(),
		GameState: room.publicGameState(),
	})
	e.bc.ToRoom(room.ID, PlayerReconnected{PlayerID: player.ID, DisplayName: player.DisplayName})

	e.logger.Info("player reconnected", "room", room.ID, "player", player.DisplayName)
	e.persist(room)
	e.saveSession(player.ID, Session{RoomID: room.ID, DisplayName: player.DisplayName})
	return nil
}

// StartGame deals a fresh game: hidden roles, five-card hands, a shuffled
// turn order. Legal from the lobby or from a finished game (restart), master
// only, with a player count inside the configured bounds.
func (e *Engine) StartGame(roomID, requesterID string) error {
	room := e.room(roomID)
	if room == nil {
		return ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if room.deleted {
		return ErrRoomNotFound
	}
	if room.State == StateInGame {
		return ErrGameInProgress
	}
	requester, ok := room.Players[requesterID]
	if !ok {
		return ErrPlayerNotFound
	}
	if !requester.Master {
		return ErrNotMaster
	}
	if len(room.Players) < e.opts.MinPlayers {
		return ErrTooFewPlayers
	}
	if len(room.Players) > room.Options.MaxPlayers {
		return ErrTooManyPlayers
	}

	// A restart invalidates any transition still scheduled from the
	// previous game.
	e.cancelTransitionLocked(room)

	players := room.playerList()
	AssignRoles(room.rng, players)
	NewDealer(room.rng).DealInitialHands(players)

	order := make([]string, 0, len(players))
	for _, p := range players {
		order = append(order, p.ID)
	}
	randutil.Shuffle(room.rng, order)

	room.Game = &GameState{
		TurnIndex:      0,
		Round:          1,
		TurnOrder:      order,
		WiresPerPlayer: initialWiresPerPlayer,
		DefusesNeeded:  len(players),
		Declarations:   make(map[string]Declaration),
	}
	room.State = StateInGame
	room.touch(e.clock.Now())

	e.logger.Info("game started", "room", room.ID, "players", len(players))

	e.bc.ToRoom(room.ID, GameStarted{
		RoomID:          room.ID,
		Round:           1,
		TurnOrder:       append([]string(nil), order...),
		CurrentPlayerID: room.Game.CurrentPlayerID(),
		WiresPerPlayer:  initialWiresPerPlayer,
		DefusesNeeded:   room.Game.DefusesNeeded,
		TotalCards:      len(players) * initialWiresPerPlayer,
	})
	e.sendPrivateHands(room)
	e.announceTurn(room)
	e.persist(room)
	return nil
}

// CutWire applies the central game action: cutterID cuts the wire at
// wireIndex in targetID's hand. Every precondition failure is a distinct
// rule violation and leaves all state untouched.
func (e *Engine) CutWire(roomID, cutterID, targetID string, wireIndex int) (*WireCutResult, error) {
	room := e.room(roomID)
	if room == nil {
		return nil, ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if room.deleted {
		return nil, ErrRoomNotFound
	}
	if room.State != StateInGame || room.Game == nil {
		return nil, ErrGameNotStarted
	}
	g := room.Game
	if !g.IsPlayerTurn(cutterID) {
		return nil, ErrNotYourTurn
	}
	if cutterID == targetID {
		return nil, ErrSelfTarget
	}
	target, ok := room.Players[targetID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	if wireIndex < 0 || wireIndex >= len(target.Wires) {
		return nil, ErrNoSuchWire
	}
	wire := target.Wires[wireIndex]
	if wire.Cut {
		return nil, ErrWireAlreadyCut
	}

	wire.Cut = true
	g.recordCut(targetID)

	result := &WireCutResult{
		CutterID:  cutterID,
		TargetID:  targetID,
		WireIndex: wireIndex,
		CardType:  wire.Type,
	}

	switch wire.Type {
	case CardBomb:
		g.BombFound = true
		result.GameOver = true
		result.Winner = RoleEvil
	case CardSafe:
		g.DefusesFound++
		if g.DefusesFound >= g.DefusesNeeded {
			result.GameOver = true
			result.Winner = RoleGood
		}
	case CardNeutral:
		// Reveal counters only.
	}
	result.DefusesFound = g.DefusesFound
	result.DefusesNeeded = g.DefusesNeeded
	result.BombFound = g.BombFound

	if result.GameOver {
		e.finishGameLocked(room, result.Winner)
	} else if g.roundComplete(len(room.Players)) {
		result.RoundComplete = true
		e.scheduleTransitionLocked(room)
	} else {
		g.setTurnTo(targetID)
	}
	room.touch(e.clock.Now())

	e.logger.Debug("wire cut", "room", room.ID,
		"cutter", cutterID, "target", targetID, "card", wire.Type)

	e.bc.ToRoom(room.ID, *result)
	e.bc.ToRoom(room.ID, PlayersUpdate{
		Players:   room.publicPlayers(),
		GameState: room.publicGameState(),
	})
	if result.GameOver {
		e.bc.ToRoom(room.ID, GameOver{Winner: result.Winner, Players: room.roleReveals()})
	} else if !result.RoundComplete {
		e.announceTurn(room)
	}
	e.persist(room)
	return result, nil
}

// DeclareWires records a player's non-binding guess about their own hand.
// Purely informational: it is shown to the room and never touches win/loss.
func (e *Engine) DeclareWires(roomID, playerID string, decl Declaration) error {
	room := e.room(roomID)
	if room == nil {
		return ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if room.deleted {
		return ErrRoomNotFound
	}
	if room.State != StateInGame || room.Game == nil {
		return ErrGameNotStarted
	}
	if _, ok := room.Players[playerID]; !ok {
		return ErrPlayerNotFound
	}

	if room.Game.Declarations == nil {
		room.Game.Declarations = make(map[string]Declaration)
	}
	room.Game.Declarations[playerID] = decl
	room.touch(e.clock.Now())

	e.bc.ToRoom(room.ID, DeclarationMade{PlayerID: playerID, Declaration: decl})
	e.persist(room)
	return nil
}

// scheduleTransitionLocked arms the deferred redistribution. The generation
// counter makes a stale timer harmless: deletion, restart or a newer
// schedule all bump it.
func (e *Engine) scheduleTransitionLocked(room *Room) {
	e.cancelTransitionLocked(room)
	gen := room.transitionGen
	roomID := room.ID
	room.transition = e.clock.AfterFunc(e.opts.RoundDelay, func() {
		e.completeRound(roomID, gen)
	})
}

func (e *Engine) cancelTransitionLocked(room *Room) {
	room.transitionGen++
	if room.transition != nil {
		room.transition.Stop()
		room.transition = nil
	}
}

// completeRound fires after the round delay. It re-validates everything: the
// room may have been deleted, the game restarted or already finished. Either
// branch applies at most once.
func (e *Engine) completeRound(roomID string, gen uint64) {
	room := e.room(roomID)
	if room == nil {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if room.deleted || room.transitionGen != gen {
		return
	}
	room.transition = nil
	if room.State != StateInGame || room.Game == nil {
		return
	}

	g := room.Game
	players := room.playerList()
	next := g.nextWiresPerPlayer()
	dealer := NewDealer(room.rng)

	if !dealer.CanRedistribute(players, next) {
		// The deck physically cannot support another round.
		e.logger.Info("redistribution infeasible", "room", room.ID, "round", g.Round)
		e.finishGameLocked(room, RoleEvil)
		room.touch(e.clock.Now())
		e.bc.ToRoom(room.ID, PlayersUpdate{
			Players:   room.publicPlayers(),
			GameState: room.publicGameState(),
		})
		e.bc.ToRoom(room.ID, GameOver{Winner: RoleEvil, Players: room.roleReveals()})
		e.persist(room)
		return
	}

	dealer.Redistribute(players, next)
	g.startNewRound(next)
	room.touch(e.clock.Now())

	e.logger.Info("round started", "room", room.ID, "round", g.Round, "wiresPerPlayer", next)

	e.bc.ToRoom(room.ID, RoundStarted{Round: g.Round, WiresPerPlayer: next})
	e.bc.ToRoom(room.ID, PlayersUpdate{
		Players:   room.publicPlayers(),
		GameState: room.publicGameState(),
	})
	e.sendPrivateHands(room)
	e.announceTurn(room)
	e.persist(room)
}

// finishGameLocked ends the game exactly once: the winner transitions from
// unset to set and the room becomes terminal.
func (e *Engine) finishGameLocked(room *Room, winner Role) {
	if room.Game.Winner != "" {
		return
	}
	room.Game.Winner = winner
	room.State = StateFinished
	e.cancelTransitionLocked(room)
	e.logger.Info("game over", "room", room.ID, "winner", winner)
}

// RoomStatus returns the public projection of a room, consulting the durable
// store when the room is not in memory.
func (e *Engine) RoomStatus(ctx context.Context, roomID string) (*RoomStatus, error) {
	room, err := e.findRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if room.deleted {
		return nil, ErrRoomNotFound
	}
	return &RoomStatus{
		ID:          room.ID,
		State:       room.State,
		Options:     room.Options,
		Players:     room.publicPlayers(),
		PlayerCount: len(room.Players),
		MaxPlayers:  room.Options.MaxPlayers,
	}, nil
}

// ResolveSession reports where a player was last seated, so a client that
// lost all local state can find its way back to its room. The room is
// confirmed to still exist before the session is returned.
func (e *Engine) ResolveSession(ctx context.Context, playerID string) (Session, error) {
	sess, err := e.store.LoadSession(ctx, playerID)
	if err != nil {
		if errors.Is(err, ErrSnapshotNotFound) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, err
	}

	room, err := e.findRoom(ctx, sess.RoomID)
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, err
	}

	room.mu.Lock()
	_, seated := room.Players[playerID]
	gone := room.deleted
	room.mu.Unlock()
	if gone || !seated {
		return Session{}, ErrSessionNotFound
	}
	return sess, nil
}

// PublicRooms lists joinable rooms: public and still in the lobby.
func (e *Engine) PublicRooms() []RoomSummary {
	e.mu.RLock()
	rooms := make([]*Room, 0, len(e.rooms))
	for _, r := range e.rooms {
		rooms = append(rooms, r)
	}
	e.mu.RUnlock()

	var out []RoomSummary
	for _, r := range rooms {
		r.mu.Lock()
		if !r.deleted && r.Options.Public && r.State == StateLobby {
			out = append(out, RoomSummary{
				ID:          r.ID,
				PlayerCount: len(r.Players),
				MaxPlayers:  r.Options.MaxPlayers,
				State:       r.State,
			})
		}
		r.mu.Unlock()
	}
	return out
}

// Stats are coarse occupancy counters for monitoring.
type Stats struct {
	Rooms       int `json:"rooms"`
	RoomsInGame int `json:"roomsInGame"`
	Players     int `json:"players"`
	Connected   int `json:"connected"`
}

// Stats counts live rooms and players.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	rooms := make([]*Room, 0, len(e.rooms))
	for _, r := range e.rooms {
		rooms = append(rooms, r)
	}
	e.mu.RUnlock()

	var s Stats
	for _, r := range rooms {
		r.mu.Lock()
		if !r.deleted {
			s.Rooms++
			if r.State == StateInGame {
				s.RoomsInGame++
			}
			s.Players += len(r.Players)
			for _, p := range r.Players {
				if p.Connected {
					s.Connected++
				}
			}
		}
		r.mu.Unlock()
	}
	return s
}

// SweepIdle tears down rooms untouched for longer than maxAge and reports
// how many were removed.
func (e *Engine) SweepIdle(maxAge time.Duration) int {
	cutoff := e.clock.Now().Add(-maxAge)

	e.mu.RLock()
	rooms := make([]*Room, 0, len(e.rooms))
	for _, r := range e.rooms {
		rooms = append(rooms, r)
	}
	e.mu.RUnlock()

	removed := 0
	for _, r := range rooms {
		r.mu.Lock()
		if !r.deleted && r.UpdatedAt.Before(cutoff) {
			e.deleteRoomLocked(r)
			removed++
		}
		r.mu.Unlock()
	}
	if removed > 0 {
		e.logger.Info("idle rooms swept", "count", removed)
	}
	return removed
}

// deleteRoomLocked tears a room down: pending transition canceled, map entry
// removed, snapshot evicted. Caller holds the room lock.
func (e *Engine) deleteRoomLocked(room *Room) {
	room.deleted = true
	e.cancelTransitionLocked(room)

	e.mu.Lock()
	delete(e.rooms, room.ID)
	e.mu.Unlock()

	e.logger.Info("room removed", "room", room.ID)

	room.storeSeq++
	go e.dropRoomSnapshot(room, room.storeSeq)
}

// room returns the in-memory room, or nil.
func (e *Engine) room(roomID string) *Room {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rooms[roomid.Normalize(roomID)]
}

// findRoom resolves a room from memory, falling back to rehydrating the
// durable snapshot. Rehydrated players start disconnected; their seats,
// hands and roles are exactly as persisted.
func (e *Engine) findRoom(ctx context.Context, roomID string) (*Room, error) {
	if strings.TrimSpace(roomID) == "" {
		return nil, ErrRoomIDRequired
	}
	code := roomid.Normalize(roomID)
	if room := e.room(code); room != nil {
		return room, nil
	}

	snap, err := e.store.LoadRoom(ctx, code)
	if err != nil {
		if errors.Is(err, ErrSnapshotNotFound) {
			return nil, ErrRoomNotFound
		}
		// Store outage: in-memory state is authoritative and the room isn't
		// in it. Surface as retryable.
		e.logger.Warn("snapshot load failed", "room", code, "err", err)
		return nil, err
	}

	room := restoreRoom(snap)

	e.mu.Lock()
	defer e.mu.Unlock()
	if existing, ok := e.rooms[code]; ok {
		// Lost the race to another rehydration.
		return existing, nil
	}
	room.rng = randutil.Child(e.rng)
	e.rooms[code] = room
	e.logger.Info("room rehydrated", "room", code, "players", len(room.Players))
	return room, nil
}

// emitLobbyUpdate broadcasts the lobby projection. Caller holds the room lock.
func (e *Engine) emitLobbyUpdate(room *Room) {
	e.bc.ToRoom(room.ID, LobbyUpdate{
		RoomID:  room.ID,
		State:   room.State,
		Options: room.Options,
		Players: room.publicPlayers(),
	})
}

// sendPrivateHands delivers each player's hand to that player alone.
func (e *Engine) sendPrivateHands(room *Room) {
	for _, p := range room.Players {
		e.bc.ToPlayer(room.ID, p.ID, privateHand(p))
	}
}

func (e *Engine) announceTurn(room *Room) {
	current := room.Players[room.Game.CurrentPlayerID()]
	if current == nil {
		return
	}
	e.bc.ToRoom(room.ID, PlayerTurn{PlayerID: current.ID, DisplayName: current.DisplayName})
}

// persist snapshots the room under its lock and writes it out off the
// critical path. Each write carries a sequence issued under the room lock, so
// writes for the same room land in issue order even when the goroutines race.
// Store failures degrade to memory-only operation.
func (e *Engine) persist(room *Room) {
	room.storeSeq++
	seq := room.storeSeq
	snap := snapshotRoom(room)
	go e.writeRoomSnapshot(room, seq, snap)
}

// writeRoomSnapshot applies one issued room write. Callers must not hold the
// room lock. A write overtaken by a newer one is dropped.
func (e *Engine) writeRoomSnapshot(room *Room, seq uint64, snap *Snapshot) {
	room.storeMu.Lock()
	defer room.storeMu.Unlock()
	if seq <= room.storeApplied {
		return
	}
	room.storeApplied = seq

	ctx, cancel := context.WithTimeout(context.Background(), e.opts.PersistTimeout)
	defer cancel()
	if err := e.store.SaveRoom(ctx, snap); err != nil {
		e.logger.Warn("snapshot save failed", "room", snap.ID, "err", err)
	}
}

// dropRoomSnapshot evicts the persisted snapshot. Sequenced with the room's
// saves, so a save issued before the deletion cannot resurrect the room.
func (e *Engine) dropRoomSnapshot(room *Room, seq uint64) {
	room.storeMu.Lock()
	defer room.storeMu.Unlock()
	if seq <= room.storeApplied {
		return
	}
	room.storeApplied = seq

	ctx, cancel := context.WithTimeout(context.Background(), e.opts.PersistTimeout)
	defer cancel()
	if err := e.store.DeleteRoom(ctx, room.ID); err != nil && !errors.Is(err, ErrSnapshotNotFound) {
		e.logger.Warn("snapshot eviction failed", "room", room.ID, "err", err)
	}
}

func (e *Engine) saveSession(playerID string, s Session) {
	e.sessMu.Lock()
	e.sessSeq[playerID]++
	seq := e.sessSeq[playerID]
	e.sessMu.Unlock()

	go func() {
		e.sessWriteMu.Lock()
		defer e.sessWriteMu.Unlock()
		if seq <= e.sessApplied[playerID] {
			return
		}
		e.sessApplied[playerID] = seq

		ctx, cancel := context.WithTimeout(context.Background(), e.opts.PersistTimeout)
		defer cancel()
		if err := e.store.SaveSession(ctx, playerID, s); err != nil {
			e.logger.Warn("session save failed", "player", playerID, "err", err)
		}
	}()
}
