package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/nroche/timebomb/internal/auth"
	"github.com/nroche/timebomb/internal/game"
)

// Server owns the WebSocket connections and routes engine events to them. It
// is the engine's Broadcaster: room events fan out to every connection in
// the room, private events go to the single owning connection.
type Server struct {
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	register    chan *Connection
	unregister  chan *Connection
	logger      *log.Logger
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	engine      *game.Engine
	signer      *auth.Signer
}

// NewServer creates a WebSocket server. The engine may be attached later via
// SetEngine, since the engine itself needs the server as its Broadcaster.
func NewServer(engine *game.Engine, signer *auth.Signer, logger *log.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Origin policy is enforced by the HTTP layer's CORS config.
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		logger:      logger.WithPrefix("server"),
		ctx:         ctx,
		cancel:      cancel,
		engine:      engine,
		signer:      signer,
	}
}

// SetEngine attaches the engine. Must be called before Start when the server
// was constructed without one.
func (s *Server) SetEngine(engine *game.Engine) {
	s.engine = engine
}

// Start launches the connection lifecycle loop.
func (s *Server) Start() {
	go s.run()
}

// Stop closes every connection and stops accepting new ones.
func (s *Server) Stop() error {
	s.cancel()

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close() // Ignore close errors during shutdown
	}
	s.mu.Unlock()

	return nil
}

// run handles connection lifecycle
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("client connected", "total", total)

		case conn := <-s.unregister:
			s.mu.Lock()
			_, ok := s.connections[conn]
			if ok {
				delete(s.connections, conn)
			}
			total := len(s.connections)
			s.mu.Unlock()

			if ok {
				// A vanished connection is a disconnect, not a leave: the
				// seat stays so the player can come back.
				playerID, roomID := conn.Player(), conn.Room()
				if playerID != "" && roomID != "" {
					if err := s.engine.DisconnectPlayer(roomID, playerID); err != nil {
						s.logger.Debug("disconnect cleanup skipped", "player", playerID, "err", err)
					}
				}
				_ = conn.Close()
			}
			s.logger.Info("client disconnected", "total", total)

		case <-s.ctx.Done():
			return
		}
	}
}

// HandleWebSocket upgrades an HTTP request into a game connection.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade connection", "err", err)
		return
	}

	client := NewConnection(conn, s, s.logger)

	// The lifecycle loop is gone once the server stops; a bare channel send
	// would park this handler forever.
	select {
	case s.register <- client:
	case <-s.ctx.Done():
		_ = client.Close()
		return
	}
	client.Start()

	go func() {
		<-client.ctx.Done()
		select {
		case s.unregister <- client:
		case <-s.ctx.Done():
		}
	}()
}

// ToRoom implements game.Broadcaster.
func (s *Server) ToRoom(roomID string, ev game.Event) {
	msg, err := eventMessage(ev)
	if err != nil {
		s.logger.Error("failed to encode event", "type", ev.Type(), "err", err)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for conn := range s.connections {
		if conn.Room() == roomID {
			if err := conn.SendMessage(msg); err != nil {
				s.logger.Debug("event send failed", "player", conn.Player(), "err", err)
			}
		}
	}
}

// ToPlayer implements game.Broadcaster. Private payloads are addressed to
// the one connection owning the player id; they are never broadcast.
func (s *Server) ToPlayer(roomID, playerID string, ev game.Event) {
	msg, err := eventMessage(ev)
	if err != nil {
		s.logger.Error("failed to encode event", "type", ev.Type(), "err", err)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for conn := range s.connections {
		if conn.Room() == roomID && conn.Player() == playerID {
			if err := conn.SendMessage(msg); err != nil {
				s.logger.Debug("private send failed", "player", playerID, "err", err)
			}
			return
		}
	}
}

// broadcastChat relays a chat line to a room. Chat never touches game state.
func (s *Server) broadcastChat(roomID string, data ChatMessageData) {
	msg, err := NewMessage(MessageTypeChatMessage, data)
	if err != nil {
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for conn := range s.connections {
		if conn.Room() == roomID {
			_ = conn.SendMessage(msg)
		}
	}
}
