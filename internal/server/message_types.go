package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
// These are used for client-server communication protocol
const (
	// Client to server messages
	MessageTypeUpdateName    MessageType = "update_name"
	MessageTypeCommitName    MessageType = "commit_name"
	MessageTypeHostSetConfig MessageType = "host_set_config"
	MessageTypeHostStart     MessageType = "host_start"
	MessageTypeHostRestart   MessageType = "host_restart"
	MessageTypePlayHand      MessageType = "play_hand"
	MessageTypeDrawPlay      MessageType = "draw_play"
	MessageTypeLeave         MessageType = "leave"
	MessageTypeHostDisband   MessageType = "host_disband"

	// Server to client messages
	MessageTypeWelcome       MessageType = "welcome"
	MessageTypeRoomState     MessageType = "room_state"
	MessageTypeGameState     MessageType = "game_state"
	MessageTypeGameStates    MessageType = "game_states"
	MessageTypeTurnTimeout   MessageType = "turn_timeout"
	MessageTypeRoomDisbanded MessageType = "room_disbanded"
	MessageTypeError         MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Error codes carried in ErrorData.Code
const (
	ErrCodeInvalidMessage = "invalid_message"
	ErrCodeUnknownType    = "unknown_message_type"
	ErrCodeNotAllowed     = "not_allowed"
	ErrCodeInvalidConfig  = "invalid_config"
	ErrCodeInvalidAction  = "invalid_action"
	ErrCodeInvalidJoker   = "invalid_joker_value"
	ErrCodeStaleAction    = "stale_action"
	ErrCodeNoGame         = "no_game"
	ErrCodeJoinFailed     = "join_failed"
)
