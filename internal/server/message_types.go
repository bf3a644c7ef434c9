package server

// MessageType tags a WebSocket message. Inbound types form a closed set and
// are dispatched exhaustively; unknown types are rejected with an error
// message rather than ignored.
type MessageType string

const (
	// Client to server messages
	MessageTypeCreateRoom   MessageType = "create_room"
	MessageTypeJoinRoom     MessageType = "join_room"
	MessageTypeLeaveRoom    MessageType = "leave_room"
	MessageTypeKickPlayer   MessageType = "kick_player"
	MessageTypeStartGame    MessageType = "start_game"
	MessageTypeCutWire      MessageType = "cut_wire"
	MessageTypeDeclareWires MessageType = "declare_wires"
	MessageTypeSendChat     MessageType = "send_chat"

	// Server to client messages. Engine events reuse their game.EventType
	// strings; these cover the transport's own replies.
	MessageTypeRoomCreated MessageType = "room_created"
	MessageTypeRoomJoined  MessageType = "room_joined"
	MessageTypeChatMessage MessageType = "chat_message"
	MessageTypeError       MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
