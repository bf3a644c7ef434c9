package server

import (
	"encoding/json"
	"time"

	"github.com/nroche/timebomb/internal/game"
)

// Message is the base WebSocket message structure, both directions.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// eventMessage wraps an engine event for the wire, typed by the event's own
// tag.
func eventMessage(ev game.Event) (*Message, error) {
	return NewMessage(MessageType(ev.Type()), ev)
}

// Client → Server payloads

type CreateRoomData struct {
	DisplayName string                 `json:"displayName"`
	Avatar      string                 `json:"avatar,omitempty"`
	Options     *game.RoomOptionsPatch `json:"options,omitempty"`
}

type JoinRoomData struct {
	RoomID      string `json:"roomId"`
	DisplayName string `json:"displayName,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	// PlayerID plus Token identify a returning player; when present the join
	// is treated as a reconnection.
	PlayerID string `json:"playerId,omitempty"`
	Token    string `json:"token,omitempty"`
}

type LeaveRoomData struct {
	RoomID string `json:"roomId"`
}

type KickPlayerData struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type StartGameData struct {
	RoomID string `json:"roomId"`
}

type CutWireData struct {
	RoomID         string `json:"roomId"`
	TargetPlayerID string `json:"targetPlayerId"`
	WireIndex      int    `json:"wireIndex"`
}

type DeclareWiresData struct {
	RoomID    string `json:"roomId"`
	SafeWires int    `json:"safeWires"`
	HasBomb   bool   `json:"hasBomb"`
}

type SendChatData struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
}

// Server → Client payloads

type RoomCreatedData struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
	Token    string `json:"token"`
}

type RoomJoinedData struct {
	RoomID      string `json:"roomId"`
	PlayerID    string `json:"playerId"`
	Token       string `json:"token"`
	Reconnected bool   `json:"reconnected"`
}

type ChatMessageData struct {
	PlayerID    string `json:"playerId"`
	DisplayName string `json:"displayName"`
	Message     string `json:"message"`
	Timestamp   int64  `json:"timestamp"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
