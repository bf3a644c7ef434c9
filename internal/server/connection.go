package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/nroche/timebomb/internal/game"
	"github.com/nroche/timebomb/internal/roomid"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var ErrConnectionClosed = websocket.ErrCloseSent

// Connection represents a WebSocket connection to a client. A connection
// carries at most one seat: a room id plus a player id, set when the client
// creates, joins, or reconnects.
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	sessionID string
	playerID  string
	roomID    string
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
	server    *Server
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, server *Server, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:      conn,
		send:      make(chan *Message, 256),
		sessionID: uuid.New().String(),
		logger:    logger.WithPrefix("conn"),
		ctx:       ctx,
		cancel:    cancel,
		server:    server,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, this is expected during shutdown
			c.logger.Debug("attempted to send on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("connection send buffer full, closing connection")
		_ = c.Close() // Ignore close errors
		return ErrConnectionClosed
	}
}

// setSeat associates this connection with a room and player.
func (c *Connection) setSeat(roomID, playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomID = roomID
	c.playerID = playerID
}

// clearSeat drops the association after an explicit leave.
func (c *Connection) clearSeat() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomID = ""
	c.playerID = ""
}

// Player returns the associated player ID
func (c *Connection) Player() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// Room returns the associated room ID
func (c *Connection) Room() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomID
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }() // Ignore close errors during cleanup

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // Ignore close errors during cleanup
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("received message", "type", msg.Type, "player", c.Player())

	switch msg.Type {
	case MessageTypeCreateRoom:
		var data CreateRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse create room data")
			return
		}
		c.handleCreateRoom(data)

	case MessageTypeJoinRoom:
		var data JoinRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse join room data")
			return
		}
		c.handleJoinRoom(data)

	case MessageTypeLeaveRoom:
		var data LeaveRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse leave room data")
			return
		}
		c.handleLeaveRoom(data)

	case MessageTypeKickPlayer:
		var data KickPlayerData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse kick player data")
			return
		}
		c.handleKickPlayer(data)

	case MessageTypeStartGame:
		var data StartGameData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse start game data")
			return
		}
		c.handleStartGame(data)

	case MessageTypeCutWire:
		var data CutWireData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse cut wire data")
			return
		}
		c.handleCutWire(data)

	case MessageTypeDeclareWires:
		var data DeclareWiresData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse declare wires data")
			return
		}
		c.handleDeclareWires(data)

	case MessageTypeSendChat:
		var data SendChatData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse chat data")
			return
		}
		c.handleSendChat(data)

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) handleCreateRoom(data CreateRoomData) {
	created, err := c.server.engine.CreateRoom(data.DisplayName, data.Avatar, data.Options)
	if err != nil {
		c.sendError(errorCode(err), err.Error())
		return
	}

	token, err := c.server.signer.Sign(created.RoomID, created.PlayerID, data.DisplayName)
	if err != nil {
		c.logger.Error("failed to sign token", "error", err)
		c.sendError("internal_error", "Failed to create session token")
		return
	}

	c.setSeat(created.RoomID, created.PlayerID)
	c.reply(MessageTypeRoomCreated, RoomCreatedData{
		RoomID:   created.RoomID,
		PlayerID: created.PlayerID,
		Token:    token,
	})
}

func (c *Connection) handleJoinRoom(data JoinRoomData) {
	roomID := roomid.Normalize(data.RoomID)

	// A player id plus a token is a returning player; everything else is a
	// fresh join (which may still resolve to a reconnect by display name).
	if data.PlayerID != "" && data.Token != "" {
		claims, err := c.server.signer.Verify(data.Token)
		if err != nil || claims.RoomID != roomID || claims.PlayerID != data.PlayerID {
			c.sendError("invalid_token", "Session token rejected")
			return
		}

		// Seat the connection before the engine resends state, so private
		// payloads route here.
		c.setSeat(roomID, data.PlayerID)
		if err := c.server.engine.ReconnectPlayer(c.ctx, roomID, data.PlayerID, c.sessionID); err != nil {
			c.clearSeat()
			c.sendError(errorCode(err), err.Error())
			return
		}

		c.reply(MessageTypeRoomJoined, RoomJoinedData{
			RoomID:      roomID,
			PlayerID:    data.PlayerID,
			Token:       data.Token,
			Reconnected: true,
		})
		return
	}

	result, err := c.server.engine.JoinRoom(c.ctx, roomID, data.DisplayName, data.Avatar)
	if err != nil {
		c.sendError(errorCode(err), err.Error())
		return
	}

	token, err := c.server.signer.Sign(result.RoomID, result.PlayerID, data.DisplayName)
	if err != nil {
		c.logger.Error("failed to sign token", "error", err)
		c.sendError("internal_error", "Failed to create session token")
		return
	}

	c.setSeat(result.RoomID, result.PlayerID)
	if result.Reconnected {
		// The seat already existed; flip it back to connected and resend
		// the private state the broadcast path cannot reconstruct.
		if err := c.server.engine.ReconnectPlayer(c.ctx, result.RoomID, result.PlayerID, c.sessionID); err != nil {
			c.logger.Warn("reconnect refresh failed", "error", err)
		}
	}

	c.reply(MessageTypeRoomJoined, RoomJoinedData{
		RoomID:      result.RoomID,
		PlayerID:    result.PlayerID,
		Token:       token,
		Reconnected: result.Reconnected,
	})
}

func (c *Connection) handleLeaveRoom(data LeaveRoomData) {
	playerID := c.Player()
	if playerID == "" {
		c.sendError("not_in_room", "Connection is not seated in a room")
		return
	}

	if err := c.server.engine.LeaveRoom(roomid.Normalize(data.RoomID), playerID); err != nil {
		c.sendError(errorCode(err), err.Error())
		return
	}
	c.clearSeat()
}

func (c *Connection) handleKickPlayer(data KickPlayerData) {
	requesterID := c.Player()
	if requesterID == "" {
		c.sendError("not_in_room", "Connection is not seated in a room")
		return
	}

	if err := c.server.engine.KickPlayer(roomid.Normalize(data.RoomID), data.PlayerID, requesterID); err != nil {
		c.sendError(errorCode(err), err.Error())
	}
}

func (c *Connection) handleStartGame(data StartGameData) {
	requesterID := c.Player()
	if requesterID == "" {
		c.sendError("not_in_room", "Connection is not seated in a room")
		return
	}

	if err := c.server.engine.StartGame(roomid.Normalize(data.RoomID), requesterID); err != nil {
		c.sendError(errorCode(err), err.Error())
	}
}

func (c *Connection) handleCutWire(data CutWireData) {
	cutterID := c.Player()
	if cutterID == "" {
		c.sendError("not_in_room", "Connection is not seated in a room")
		return
	}

	_, err := c.server.engine.CutWire(roomid.Normalize(data.RoomID), cutterID, data.TargetPlayerID, data.WireIndex)
	if err != nil {
		c.sendError(errorCode(err), err.Error())
	}
}

func (c *Connection) handleDeclareWires(data DeclareWiresData) {
	playerID := c.Player()
	if playerID == "" {
		c.sendError("not_in_room", "Connection is not seated in a room")
		return
	}

	decl := game.Declaration{SafeWires: data.SafeWires, HasBomb: data.HasBomb}
	if err := c.server.engine.DeclareWires(roomid.Normalize(data.RoomID), playerID, decl); err != nil {
		c.sendError(errorCode(err), err.Error())
	}
}

func (c *Connection) handleSendChat(data SendChatData) {
	playerID := c.Player()
	roomID := c.Room()
	if playerID == "" || roomID == "" {
		c.sendError("not_in_room", "Connection is not seated in a room")
		return
	}

	status, err := c.server.engine.RoomStatus(c.ctx, roomID)
	if err != nil {
		c.sendError(errorCode(err), err.Error())
		return
	}

	displayName := playerID
	for _, p := range status.Players {
		if p.ID == playerID {
			displayName = p.DisplayName
			break
		}
	}

	c.server.broadcastChat(roomID, ChatMessageData{
		PlayerID:    playerID,
		DisplayName: displayName,
		Message:     data.Message,
		Timestamp:   time.Now().UnixMilli(),
	})
}

func (c *Connection) reply(messageType MessageType, data any) {
	msg, err := NewMessage(messageType, data)
	if err != nil {
		c.logger.Error("failed to create message", "type", messageType, "error", err)
		return
	}
	if err := c.SendMessage(msg); err != nil {
		c.logger.Debug("failed to send message", "type", messageType, "error", err)
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	c.reply(MessageTypeError, ErrorData{Code: code, Message: message})
}
